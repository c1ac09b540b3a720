// Package engine drives an outbox.Outbox against a Transport and a
// Probe: SyncWorker implements one tick (sweep stale in-flight ops,
// check connectivity, claim and send a batch); SyncEngine owns a fixed
// set of workers and exposes both a manual tick() and an optional
// self-driven background loop.
package engine
