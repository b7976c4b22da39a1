package prometheus

import (
	"strconv"
	"time"

	"github.com/sony/gobreaker"
)

// networkCache labels cache metrics of the citation network result store.
const networkCache = "citation_network"

// AppMetrics holds all application metrics.
type AppMetrics struct {
	// HTTP Layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// gRPC Layer
	GRPCRequestsTotal   CounterVec
	GRPCRequestDuration HistogramVec

	// Citation network
	NetworkBuildsTotal  CounterVec
	GraphBuildDuration  HistogramVec
	GraphNodes          HistogramVec
	GraphEdges          HistogramVec
	UpstreamErrorsTotal CounterVec
	TruncationsTotal    CounterVec
	BreakerState        GaugeVec

	// Infrastructure
	CacheHitsTotal         CounterVec
	CacheMissesTotal       CounterVec
	MessagesConsumedTotal  CounterVec
	MessageProcessDuration HistogramVec
	HealthCheckStatus      GaugeVec
}

var (
	DefaultHTTPDurationBuckets  = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultBuildDurationBuckets = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}
	DefaultGraphSizeBuckets     = []float64{1, 5, 10, 25, 50, 75, 100, 150, 200}
)

// NewAppMetrics registers all metrics and returns AppMetrics struct.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method")

	m.GRPCRequestsTotal = collector.RegisterCounter("grpc_requests_total", "Total gRPC requests", "service", "method", "code")
	m.GRPCRequestDuration = collector.RegisterHistogram("grpc_request_duration_seconds", "gRPC request duration", DefaultHTTPDurationBuckets, "service", "method")

	m.NetworkBuildsTotal = collector.RegisterCounter("network_builds_total", "Citation networks built", "outcome")
	m.GraphBuildDuration = collector.RegisterHistogram("graph_build_duration_seconds", "Citation network build duration", DefaultBuildDurationBuckets, "outcome")
	m.GraphNodes = collector.RegisterHistogram("graph_nodes", "Nodes per built network", DefaultGraphSizeBuckets)
	m.GraphEdges = collector.RegisterHistogram("graph_edges", "Edges per built network", DefaultGraphSizeBuckets)
	m.UpstreamErrorsTotal = collector.RegisterCounter("upstream_errors_total", "Failed citation fetches", "direction")
	m.TruncationsTotal = collector.RegisterCounter("truncations_total", "Directions cut short by node limits", "direction")
	m.BreakerState = collector.RegisterGauge("breaker_state", "Circuit breaker state (0=closed, 1=half-open, 2=open)", "breaker")

	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.MessagesConsumedTotal = collector.RegisterCounter("mq_messages_total", "Messages consumed", "topic", "status")
	m.MessageProcessDuration = collector.RegisterHistogram("mq_process_duration_seconds", "Message processing duration", DefaultBuildDurationBuckets, "topic")
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")

	return m
}

// BuildCompleted records one finished network build.
func (m *AppMetrics) BuildCompleted(outcome string, elapsed time.Duration, nodes, edges int) {
	m.NetworkBuildsTotal.WithLabelValues(outcome).Inc()
	m.GraphBuildDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	m.GraphNodes.WithLabelValues().Observe(float64(nodes))
	m.GraphEdges.WithLabelValues().Observe(float64(edges))
}

func (m *AppMetrics) CacheHit()  { RecordCacheAccess(m, networkCache, true) }
func (m *AppMetrics) CacheMiss() { RecordCacheAccess(m, networkCache, false) }

func (m *AppMetrics) UpstreamError(direction string) {
	m.UpstreamErrorsTotal.WithLabelValues(direction).Inc()
}

func (m *AppMetrics) Truncated(direction string) {
	m.TruncationsTotal.WithLabelValues(direction).Inc()
}

// BreakerStateChanged matches the upstream breaker observer signature.
func (m *AppMetrics) BreakerStateChanged(name string, _, to gobreaker.State) {
	var v float64
	switch to {
	case gobreaker.StateHalfOpen:
		v = 1
	case gobreaker.StateOpen:
		v = 2
	}
	m.BreakerState.WithLabelValues(name).Set(v)
}

// Helpers

func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func RecordGRPCRequest(metrics *AppMetrics, service, method, code string, duration time.Duration) {
	metrics.GRPCRequestsTotal.WithLabelValues(service, method, code).Inc()
	metrics.GRPCRequestDuration.WithLabelValues(service, method).Observe(duration.Seconds())
}

func RecordCacheAccess(metrics *AppMetrics, cache string, hit bool) {
	if hit {
		metrics.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		metrics.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

func RecordMessage(metrics *AppMetrics, topic string, err error, duration time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.MessagesConsumedTotal.WithLabelValues(topic, status).Inc()
	metrics.MessageProcessDuration.WithLabelValues(topic).Observe(duration.Seconds())
}

func RecordHealth(metrics *AppMetrics, component string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	metrics.HealthCheckStatus.WithLabelValues(component).Set(v)
}

//Personal.AI order the ending
