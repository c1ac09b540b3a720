// Package filestore implements outbox.Store as an in-memory map
// guarded by a single mutex, lazily loaded from and flushed to a whole
// JSON snapshot file. It is the default persistence for an
// offline-first client that has no database available.
package filestore
