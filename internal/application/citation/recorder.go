package citation

import "time"

// Build outcomes reported to MetricsRecorder.
const (
	OutcomeComplete  = "complete"
	OutcomePartial   = "partial"
	OutcomeRecovered = "recovered"
)

// MetricsRecorder receives build telemetry.  Implementations must be safe for
// concurrent use.
type MetricsRecorder interface {
	BuildCompleted(outcome string, elapsed time.Duration, nodes, edges int)
	CacheHit()
	CacheMiss()
	UpstreamError(direction string)
	Truncated(direction string)
}

type nopRecorder struct{}

func (nopRecorder) BuildCompleted(string, time.Duration, int, int) {}
func (nopRecorder) CacheHit()                                      {}
func (nopRecorder) CacheMiss()                                     {}
func (nopRecorder) UpstreamError(string)                           {}
func (nopRecorder) Truncated(string)                               {}

// NopRecorder discards all telemetry.
func NopRecorder() MetricsRecorder { return nopRecorder{} }

//Personal.AI order the ending
