package outbox

const (
	defaultMaxAttempts = 8
	defaultBaseDelayMs = 500
	defaultMaxDelayMs  = 30_000
	defaultFactor      = 2.0
	defaultJitterRatio = 0.2
)

// RetryPolicy is a pure, deterministic function from attempt count to
// backoff delay. It carries no state and is safe to recompute during
// recovery from just the persisted attempt counter.
type RetryPolicy struct {
	MaxAttempts uint32
	BaseDelayMs int64
	MaxDelayMs  int64
	// Factor is the exponential growth base: delay = BaseDelayMs * Factor^attempt.
	Factor float64
	// JitterRatio is advisory; the core never randomizes on its own. A
	// caller wrapping Delay may apply +/- JitterRatio itself.
	JitterRatio float64
}

// DefaultRetryPolicy returns the policy used when none is configured:
// 8 attempts, 500ms base, 30s cap, factor 2.0.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: defaultMaxAttempts,
		BaseDelayMs: defaultBaseDelayMs,
		MaxDelayMs:  defaultMaxDelayMs,
		Factor:      defaultFactor,
		JitterRatio: defaultJitterRatio,
	}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts == 0 {
		p.MaxAttempts = defaultMaxAttempts
	}
	if p.BaseDelayMs <= 0 {
		p.BaseDelayMs = defaultBaseDelayMs
	}
	if p.MaxDelayMs <= 0 {
		p.MaxDelayMs = defaultMaxDelayMs
	}
	if p.Factor <= 0 {
		p.Factor = defaultFactor
	}

	return p
}

// CanRetry reports whether attempt is still within the retry budget.
func (p RetryPolicy) CanRetry(attempt uint32) bool {
	p = p.withDefaults()

	return attempt < p.MaxAttempts
}

// Delay returns the backoff duration, in milliseconds, before attempt may
// be retried. It clamps to [BaseDelayMs, MaxDelayMs] and saturates to
// MaxDelayMs on overflow instead of wrapping.
func (p RetryPolicy) Delay(attempt uint32) int64 {
	p = p.withDefaults()

	delay := p.BaseDelayMs
	for i := uint32(0); i < attempt; i++ {
		next := float64(delay) * p.Factor
		if next >= float64(p.MaxDelayMs) || next < 0 {
			return p.MaxDelayMs
		}
		delay = int64(next)
	}

	if delay < p.BaseDelayMs {
		return p.BaseDelayMs
	}
	if delay > p.MaxDelayMs {
		return p.MaxDelayMs
	}

	return delay
}
