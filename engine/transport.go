package engine

import "github.com/vixgo/sync"

// SendResult is the outcome of one delivery attempt.
type SendResult struct {
	// OK is true when the remote accepted the operation.
	OK bool
	// Retryable is meaningless when OK is true. When OK is false, a
	// retryable result schedules a future retry; a non-retryable one
	// moves the operation to PermanentFailed.
	Retryable bool
	// Error describes the failure. Ignored when OK is true.
	Error string
}

// Transport performs the actual delivery of an operation (HTTP,
// WebSocket, P2P, ...). Send may block, but implementations must not
// block indefinitely.
type Transport interface {
	Send(op outbox.Operation) SendResult
}

// TransportFunc adapts a plain function to a Transport.
type TransportFunc func(op outbox.Operation) SendResult

// Send implements Transport.
func (f TransportFunc) Send(op outbox.Operation) SendResult {
	return f(op)
}

const errNoTransport = "No transport configured"

// noTransport is used when a worker is constructed without one; it
// always synthesizes a retryable failure per spec.
type noTransport struct{}

func (noTransport) Send(outbox.Operation) SendResult {
	return SendResult{OK: false, Retryable: true, Error: errNoTransport}
}
