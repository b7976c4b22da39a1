package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/keyip-citation-network/internal/infrastructure/monitoring/prometheus"
)

// Metrics records request count, latency and in-flight requests.  Requests
// that matched no route are labelled "unmatched" to bound cardinality.
func Metrics(m *prometheus.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		active := m.HTTPActiveRequests.WithLabelValues(method)
		active.Inc()
		start := time.Now()

		defer func() {
			active.Dec()
			route := c.FullPath()
			if route == "" {
				route = "unmatched"
			}
			prometheus.RecordHTTPRequest(m, method, route, c.Writer.Status(), time.Since(start))
		}()

		c.Next()
	}
}

//Personal.AI order the ending
