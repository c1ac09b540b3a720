// Package outbox provides the durable outbox at the core of an offline-first
// sync client: persisting intent-to-send operations, coordinating
// at-most-one-in-flight delivery across workers, applying retry and backoff
// policy, and recovering from crashes or stuck deliveries.
//
// Typical flow:
//  1. The host enqueues an Operation describing a local write that must
//     eventually reach a remote peer.
//  2. A Store (see the filestore and sqlstore packages) persists the
//     operation durably before any network attempt is made.
//  3. The engine package drives one or more workers that sweep timed-out
//     in-flight operations, check connectivity, claim ready operations, and
//     hand them to a transport.
//  4. Success marks the operation Done; retryable failures reschedule it
//     with exponential backoff; non-retryable failures move it to
//     PermanentFailed.
//
// The store, transport and connectivity probe are supplied by the host;
// this package only defines the contracts they must satisfy and the state
// machine that governs an Operation's lifecycle.
package outbox
