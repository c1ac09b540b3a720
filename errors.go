package outbox

import "errors"

var (
	// ErrStoreIO indicates the store could not read or write its durable
	// representation. Fatal to the enclosing call; the store is expected
	// to wrap the underlying cause with this sentinel via errors.Join or
	// fmt.Errorf("...: %w", ...).
	ErrStoreIO = errors.New("outbox: store i/o failure")
	// ErrNotFound is returned by Store.Get for an unknown id, and may be
	// used by store implementations to distinguish "absent" from "i/o
	// failure" in wrapped errors.
	ErrNotFound = errors.New("outbox: operation not found")
	// ErrInvalidBatchSize indicates that a requested limit is not positive.
	ErrInvalidBatchSize = errors.New("outbox: batch size must be positive")
	// ErrInvalidID is returned when parsing or scanning an ID fails.
	ErrInvalidID = errors.New("outbox: id is invalid")
	// ErrNilStore is returned by NewOutbox when store is nil.
	ErrNilStore = errors.New("outbox: store is required")
)
