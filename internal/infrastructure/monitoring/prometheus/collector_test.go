package prometheus

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/keyip-citation-network/internal/infrastructure/monitoring/logging"
)

func newTestCollector(t *testing.T) MetricsCollector {
	cfg := CollectorConfig{
		Namespace: "test",
		Subsystem: "unit",
	}
	c, err := NewMetricsCollector(cfg, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func scrapeMetrics(t *testing.T, collector MetricsCollector) string {
	handler := collector.Handler()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestNewMetricsCollector_ValidConfig(t *testing.T) {
	c := newTestCollector(t)
	assert.NotNil(t, c)
	assert.NotNil(t, c.Gatherer())
}

func TestNewMetricsCollector_EmptyNamespace(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{Subsystem: "unit"}, logging.NewNopLogger())
	assert.Error(t, err)
}

func TestNewMetricsCollector_WithRuntimeMetrics(t *testing.T) {
	c, err := NewMetricsCollector(CollectorConfig{
		Namespace:            "test",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logging.NewNopLogger())
	require.NoError(t, err)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, "go_goroutines")
}

func TestRegisterCounter_WithLabels(t *testing.T) {
	c := newTestCollector(t)
	vec := c.RegisterCounter("requests_total", "Requests", "method")
	vec.WithLabelValues("GET").Inc()
	vec.WithLabelValues("GET").Add(2)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_requests_total{method="GET"} 3`)
}

func TestRegisterCounter_DuplicateSharesVector(t *testing.T) {
	c := newTestCollector(t)
	first := c.RegisterCounter("dup_total", "Dup", "k")
	second := c.RegisterCounter("dup_total", "Dup", "k")

	first.WithLabelValues("a").Inc()
	second.WithLabelValues("a").Inc()

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_dup_total{k="a"} 2`)
}

func TestRegister_TypeMismatchFallsBackToNoop(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterCounter("shared", "Counter first", "k")
	g := c.RegisterGauge("shared", "Gauge second", "k")

	assert.IsType(t, noopGaugeVec{}, g)
	assert.NotPanics(t, func() { g.WithLabelValues("x").Set(4) })
}

func TestRegisterGauge_SetIncDec(t *testing.T) {
	c := newTestCollector(t)
	g := c.RegisterGauge("in_flight", "In flight", "method").WithLabelValues("GET")
	g.Set(5)
	g.Inc()
	g.Dec()
	g.Dec()

	assert.Equal(t, float64(4), testutil.ToFloat64(g.(prometheus.Collector)))
}

func TestRegisterHistogram_DefaultBuckets(t *testing.T) {
	c := newTestCollector(t)
	h := c.RegisterHistogram("latency_seconds", "Latency", nil, "op")
	h.WithLabelValues("read").Observe(0.2)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_latency_seconds_bucket{op="read",le="0.25"} 1`)
	assert.Contains(t, output, `test_unit_latency_seconds_count{op="read"} 1`)
}

func TestTimer_MeasuresDuration(t *testing.T) {
	c := newTestCollector(t)
	h := c.RegisterHistogram("timer_seconds", "Timer", []float64{0.001, 1}, "op")

	timer := NewTimer(h.WithLabelValues("sleep"))
	time.Sleep(5 * time.Millisecond)
	timer.ObserveDuration()

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_timer_seconds_bucket{op="sleep",le="0.001"} 0`)
	assert.Contains(t, output, `test_unit_timer_seconds_count{op="sleep"} 1`)

	assert.NotPanics(t, func() { NewTimer(nil).ObserveDuration() })
}

func TestConcurrentRegistration(t *testing.T) {
	c := newTestCollector(t)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RegisterCounter("concurrent_total", "Concurrent").WithLabelValues().Inc()
		}()
	}
	wg.Wait()

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, "test_unit_concurrent_total 20")
}

func TestNoopMetric_NoPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		noopCounterVec{}.WithLabelValues("a").Add(1)
		noopGaugeVec{}.WithLabelValues("a").Inc()
		noopHistogramVec{}.WithLabelValues("a").Observe(1)
	})
}

//Personal.AI order the ending
