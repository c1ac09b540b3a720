package outbox

import "time"

// Metrics captures outbox and sync-loop telemetry.
type Metrics interface {
	// ObserveTickDuration records the wall-clock time spent in one
	// worker tick, including the sweep and connectivity check.
	ObserveTickDuration(duration time.Duration)
	// AddSent increments the count of operations the transport accepted.
	AddSent(count int)
	// AddRetried increments the count of retryable send failures.
	AddRetried(count int)
	// AddPermanentlyFailed increments the count of operations moved to
	// PermanentFailed.
	AddPermanentlyFailed(count int)
	// AddRequeued increments the count of in-flight operations recovered
	// by the timeout sweep.
	AddRequeued(count int)
	// SetPending updates the current count of Pending/Failed operations
	// ready to be claimed.
	SetPending(count int)
}

// NopMetrics is a no-op metrics recorder, the default when none is
// configured.
type NopMetrics struct{}

// ObserveTickDuration implements Metrics.
func (NopMetrics) ObserveTickDuration(time.Duration) {}

// AddSent implements Metrics.
func (NopMetrics) AddSent(int) {}

// AddRetried implements Metrics.
func (NopMetrics) AddRetried(int) {}

// AddPermanentlyFailed implements Metrics.
func (NopMetrics) AddPermanentlyFailed(int) {}

// AddRequeued implements Metrics.
func (NopMetrics) AddRequeued(int) {}

// SetPending implements Metrics.
func (NopMetrics) SetPending(int) {}
