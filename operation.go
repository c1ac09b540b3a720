package outbox

// Operation is the durable unit of intent to deliver: a local write that
// must eventually reach a remote peer, together with the bookkeeping the
// outbox needs to retry it safely.
type Operation struct {
	// ID uniquely identifies the operation. Minted by Outbox.Enqueue when
	// empty and Config.AutoGenerateIDs is set.
	ID string
	// Kind is an opaque routing hint interpreted by the transport (e.g. a
	// rule-matching key).
	Kind string
	// Target names the delivery destination, e.g. a URL or peer id.
	Target string
	// Payload is the transport-defined message body.
	Payload []byte
	// IdempotencyKey is stable across retries so the remote peer can
	// deduplicate redelivery. Minted when empty and
	// Config.AutoGenerateIdempotencyKey is set.
	IdempotencyKey string

	CreatedAtMs   int64
	UpdatedAtMs   int64
	Attempt       uint32
	NextRetryAtMs int64
	Status        Status
	LastError     string
}

// Ready reports whether op would be returned by a ready listing at now,
// ignoring its terminal/in-flight state (see Store.List for the full rule).
func (op Operation) Ready(now int64) bool {
	return op.NextRetryAtMs <= now
}
