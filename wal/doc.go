// Package wal implements a small append-only binary write-ahead log,
// distinct from the outbox's JSON snapshot, intended for event-sourced
// recovery or audit tooling. A Writer appends fixed-header frames; a
// Reader replays them sequentially or from an arbitrary byte offset.
package wal
