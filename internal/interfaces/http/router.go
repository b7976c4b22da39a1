package http

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/keyip-citation-network/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/keyip-citation-network/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/keyip-citation-network/internal/interfaces/http/handlers"
	"github.com/turtacn/keyip-citation-network/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and infrastructure the route tree needs.
// Nil handlers leave their routes unregistered.
type RouterConfig struct {
	CitationHandler *handlers.CitationHandler
	HealthHandler   *handlers.HealthHandler

	Logger           logging.Logger
	Metrics          *prometheus.AppMetrics
	MetricsCollector prometheus.MetricsCollector
	MetricsPath      string
	AllowedOrigins   []string
}

// NewRouter builds the gin engine: global middleware, health checks, metrics and the
// v1 API group.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	// Recovery sits innermost so logging and metrics see the 500 it writes.
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogging(logger, middleware.DefaultLoggingConfig()))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.AllowedOrigins)))
	}
	r.Use(middleware.Recovery(logger))

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}

	if cfg.MetricsCollector != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(cfg.MetricsCollector.Handler()))
	}

	api := r.Group("/api/v1")
	registerCitationRoutes(api, cfg.CitationHandler)

	return r
}

func registerCitationRoutes(rg *gin.RouterGroup, h *handlers.CitationHandler) {
	if h == nil {
		return
	}
	rg.GET("/patents/:patentId/citation-network", h.GetCitationNetwork)
}

//Personal.AI order the ending
