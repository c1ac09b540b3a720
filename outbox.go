package outbox

import "fmt"

const defaultOwner = "vix-sync"

// Config controls Outbox behavior.
type Config struct {
	// Owner identifies this process/engine instance when claiming
	// operations. Defaults to "vix-sync".
	Owner string
	// Retry is the backoff policy applied on retryable failures.
	Retry RetryPolicy
	// AutoGenerateIDs mints an ID via Generator when Enqueue receives an
	// operation with an empty ID. Defaults to true.
	AutoGenerateIDs bool
	// AutoGenerateIdempotencyKey mints an IdempotencyKey the same way.
	// Defaults to true.
	AutoGenerateIdempotencyKey bool
	// Generator mints ids and idempotency keys. Defaults to a
	// UUIDv7Generator using SystemClock.
	Generator IDGenerator
	// Logger receives structured diagnostics. Defaults to NopLogger.
	Logger Logger
}

func (c Config) withDefaults() Config {
	if c.Owner == "" {
		c.Owner = defaultOwner
	}
	c.Retry = c.Retry.withDefaults()
	if c.Generator == nil {
		c.Generator = NewUUIDv7Generator(SystemClock{})
	}
	if c.Logger == nil {
		c.Logger = NopLogger{}
	}

	return c
}

// Option configures an Outbox.
type Option func(*Config)

// WithOwner sets the owner string recorded on claim.
func WithOwner(owner string) Option {
	return func(c *Config) { c.Owner = owner }
}

// WithRetryPolicy sets the backoff policy.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(c *Config) { c.Retry = policy }
}

// WithAutoGenerateIDs toggles automatic ID minting.
func WithAutoGenerateIDs(enabled bool) Option {
	return func(c *Config) { c.AutoGenerateIDs = enabled }
}

// WithAutoGenerateIdempotencyKey toggles automatic idempotency key minting.
func WithAutoGenerateIdempotencyKey(enabled bool) Option {
	return func(c *Config) { c.AutoGenerateIdempotencyKey = enabled }
}

// WithGenerator sets the id/idempotency-key generator.
func WithGenerator(gen IDGenerator) Option {
	return func(c *Config) { c.Generator = gen }
}

// WithOutboxLogger sets the outbox's diagnostic logger.
func WithOutboxLogger(logger Logger) Option {
	return func(c *Config) { c.Logger = logger }
}

// Outbox is the façade coordinating durable state transitions on top of a
// Store. It owns id/idempotency-key minting and the retry decision on
// failure; the store is responsible only for persisting whichever
// mutation the façade chooses.
type Outbox struct {
	cfg   Config
	store Store
}

// NewOutbox constructs an Outbox with defaults (owner "vix-sync",
// DefaultRetryPolicy, auto-generated ids and idempotency keys) and
// optional overrides.
func NewOutbox(store Store, opts ...Option) (*Outbox, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	cfg := Config{
		AutoGenerateIDs:            true,
		AutoGenerateIdempotencyKey: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg = cfg.withDefaults()

	return &Outbox{cfg: cfg, store: store}, nil
}

// Store returns the underlying store, e.g. so a worker can drive its
// timeout sweep directly.
func (o *Outbox) Store() Store {
	return o.store
}

// Config returns the effective, defaulted configuration.
func (o *Outbox) Config() Config {
	return o.cfg
}

// Enqueue persists op, minting an ID and idempotency key when configured
// to do so and they are empty, stamping CreatedAtMs/UpdatedAtMs/
// NextRetryAtMs, and returns the effective id. The caller is expected to
// leave Status at its zero value, StatusPending.
func (o *Outbox) Enqueue(op Operation, now int64) (string, error) {
	if o.cfg.AutoGenerateIDs && op.ID == "" {
		id, err := o.cfg.Generator.New()
		if err != nil {
			return "", fmt.Errorf("outbox: generate id: %w", err)
		}
		op.ID = id
	}
	if o.cfg.AutoGenerateIdempotencyKey && op.IdempotencyKey == "" {
		key, err := o.cfg.Generator.New()
		if err != nil {
			return "", fmt.Errorf("outbox: generate idempotency key: %w", err)
		}
		op.IdempotencyKey = key
	}

	if op.CreatedAtMs == 0 {
		op.CreatedAtMs = now
	}
	op.UpdatedAtMs = now
	if op.NextRetryAtMs == 0 {
		op.NextRetryAtMs = now
	}

	if err := o.store.Put(op); err != nil {
		return "", err
	}

	return op.ID, nil
}

// PeekReady returns up to limit operations eligible for claiming at now:
// Pending or Failed, with NextRetryAtMs <= now, never InFlight/Done/
// PermanentFailed.
func (o *Outbox) PeekReady(now int64, limit int) ([]Operation, error) {
	return o.store.List(ListOptions{
		Limit:           limit,
		Now:             now,
		OnlyReady:       true,
		IncludeInFlight: false,
	})
}

// Claim attempts to reserve id for this Outbox's configured owner.
func (o *Outbox) Claim(id string, now int64) (bool, error) {
	return o.store.Claim(id, o.cfg.Owner, now)
}

// Complete marks id as delivered.
func (o *Outbox) Complete(id string, now int64) (bool, error) {
	return o.store.MarkDone(id, now)
}

// Fail records a delivery failure for id and applies the retry policy.
//
// A non-retryable failure always moves the operation to PermanentFailed.
// A retryable failure that still has attempts remaining schedules the
// next retry with exponential backoff. A retryable failure that has
// exhausted its attempt budget is also moved to PermanentFailed, with
// LastError set to "retries exhausted" — the reference behavior of
// leaving it Failed with next_retry_at_ms == now would make it eligible
// for peek_ready forever, since a Failed operation with no future
// schedule is indistinguishable from one that is simply ready again.
//
// Returns false without error when id is absent (already pruned, or
// never existed).
func (o *Outbox) Fail(id, errMsg string, now int64, retryable bool) (bool, error) {
	cur, err := o.store.Get(id)
	if err != nil {
		if err == ErrNotFound {
			return false, nil
		}

		return false, err
	}

	nextAttempt := cur.Attempt + 1

	if !retryable {
		return o.store.MarkPermanentFailed(id, errMsg, now)
	}

	if !o.cfg.Retry.CanRetry(nextAttempt) {
		return o.store.MarkPermanentFailed(id, "retries exhausted", now)
	}

	delay := o.cfg.Retry.Delay(nextAttempt)

	return o.store.MarkFailed(id, errMsg, now, now+delay)
}
