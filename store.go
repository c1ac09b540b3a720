package outbox

// ListOptions controls which operations Store.List returns.
type ListOptions struct {
	// Limit bounds the number of returned operations. A store must return
	// an empty slice, not an error, when Limit is 0.
	Limit int
	// Now is the caller's current time in monotonic milliseconds, used to
	// evaluate OnlyReady.
	Now int64
	// OnlyReady excludes operations whose NextRetryAtMs is in the future.
	OnlyReady bool
	// IncludeInFlight includes InFlight operations in the result. Defaults
	// to false in all constructors in this module; peek-ready callers
	// must never set it, since an in-flight operation is already owned.
	IncludeInFlight bool
}

// Store is the durable persistence backend behind an Outbox. Every method
// is a single linearization point with respect to the others: in a
// process-local implementation this is a critical section guarded by one
// mutex, and a durable commit happens before the call returns unless the
// implementation's configuration explicitly relaxes that (e.g. deferred
// fsync).
//
// Store implementations never return Done or PermanentFailed operations
// from List, regardless of the requested options.
type Store interface {
	// Put upserts op by ID. Returns a wrapped ErrStoreIO if the durable
	// representation cannot be written.
	Put(op Operation) error
	// Get returns the operation with the given id, or ErrNotFound.
	Get(id string) (Operation, error)
	// List returns operations matching opts, in unspecified order, never
	// including Done or PermanentFailed operations.
	List(opts ListOptions) ([]Operation, error)
	// Claim atomically transitions id from Pending or Failed to InFlight,
	// recording owner, and returns true. Returns false without error when
	// the operation is absent or not in a claimable state (already
	// InFlight, Done, or PermanentFailed) — this is the normal outcome of
	// losing a race with another worker, not a failure.
	Claim(id, owner string, now int64) (bool, error)
	// MarkDone transitions id to Done, clearing LastError and the owner.
	// Returns false when id is absent.
	MarkDone(id string, now int64) (bool, error)
	// MarkFailed transitions id to Failed, recording err, incrementing
	// Attempt, and scheduling nextRetryAtMs. Clears the owner. Returns
	// false when id is absent.
	MarkFailed(id, err string, now, nextRetryAtMs int64) (bool, error)
	// MarkPermanentFailed transitions id to the terminal PermanentFailed
	// state, incrementing Attempt and recording err. Clears the owner.
	// Returns false when id is absent.
	MarkPermanentFailed(id, err string, now int64) (bool, error)
	// PruneDone removes Done operations whose UpdatedAtMs is at or before
	// olderThanMs, returning the number removed.
	PruneDone(olderThanMs int64) (int, error)
	// RequeueInFlightOlderThan moves every InFlight operation whose age
	// (now - UpdatedAtMs) is at least timeoutMs back to Failed, ready for
	// immediate retry, incrementing Attempt and clearing the owner.
	// Returns the number of operations recovered this way.
	RequeueInFlightOlderThan(now, timeoutMs int64) (int, error)
}
