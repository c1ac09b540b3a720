package sqlstore

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/vixgo/sync"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s, err := New(db, WithTable("outbox_operations"), WithDialect(DialectSQLite))
	require.NoError(t, err)
	require.NoError(t, s.EnsureSchema())

	return s
}

func TestStore_PutGetRoundTrip(t *testing.T) {
	s := newTestStore(t)

	op := outbox.Operation{ID: "op-1", Kind: "k", Target: "t", Payload: []byte("hi"), IdempotencyKey: "idem"}
	require.NoError(t, s.Put(op))

	got, err := s.Get("op-1")
	require.NoError(t, err)
	require.Equal(t, op.Kind, got.Kind)
	require.Equal(t, op.Payload, got.Payload)
}

func TestStore_PutUpserts(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Put(outbox.Operation{ID: "op-1", Kind: "a"}))
	require.NoError(t, s.Put(outbox.Operation{ID: "op-1", Kind: "b"}))

	got, err := s.Get("op-1")
	require.NoError(t, err)
	require.Equal(t, "b", got.Kind)
}

func TestStore_GetMissingReturnsErrNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get("missing")
	require.ErrorIs(t, err, outbox.ErrNotFound)
}

func TestStore_ClaimRejectsNonPendingNonFailed(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Put(outbox.Operation{ID: "op-1", Status: outbox.StatusPermanentFailed}))

	ok, err := s.Claim("op-1", "w", 0)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStore_ClaimAcceptsPendingAndFailed(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Put(outbox.Operation{ID: "pending", Status: outbox.StatusPending}))
	require.NoError(t, s.Put(outbox.Operation{ID: "failed", Status: outbox.StatusFailed}))

	ok, err := s.Claim("pending", "w", 10)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Claim("failed", "w", 10)
	require.NoError(t, err)
	require.True(t, ok)

	op, err := s.Get("pending")
	require.NoError(t, err)
	require.Equal(t, outbox.StatusInFlight, op.Status)
}

func TestStore_MarkFailedIncrementsAttempt(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Put(outbox.Operation{ID: "op-1", Status: outbox.StatusInFlight, Attempt: 2}))

	ok, err := s.MarkFailed("op-1", "boom", 10, 100)
	require.NoError(t, err)
	require.True(t, ok)

	op, err := s.Get("op-1")
	require.NoError(t, err)
	require.Equal(t, uint32(3), op.Attempt)
	require.Equal(t, outbox.StatusFailed, op.Status)
	require.Equal(t, int64(100), op.NextRetryAtMs)
}

func TestStore_MarkPermanentFailedClearsOwner(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Put(outbox.Operation{ID: "op-1", Status: outbox.StatusPending}))

	ok, err := s.Claim("op-1", "worker-1", 0)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.MarkPermanentFailed("op-1", "boom", 10)
	require.NoError(t, err)
	require.True(t, ok)

	var owner string
	require.NoError(t, s.db.QueryRow("SELECT owner FROM outbox_operations WHERE id = ?", "op-1").Scan(&owner))
	require.Empty(t, owner)
}

func TestStore_ListExcludesTerminalStates(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Put(outbox.Operation{ID: "done", Status: outbox.StatusDone}))
	require.NoError(t, s.Put(outbox.Operation{ID: "permanent", Status: outbox.StatusPermanentFailed}))
	require.NoError(t, s.Put(outbox.Operation{ID: "pending", Status: outbox.StatusPending}))

	ops, err := s.List(outbox.ListOptions{Limit: 10, Now: 0})
	require.NoError(t, err)
	require.Len(t, ops, 1)
	require.Equal(t, "pending", ops[0].ID)
}

func TestStore_RequeueInFlightOlderThanExactTimeoutIsEligible(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Put(outbox.Operation{ID: "op-1", Status: outbox.StatusInFlight, UpdatedAtMs: 0}))

	count, err := s.RequeueInFlightOlderThan(50, 50)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	op, err := s.Get("op-1")
	require.NoError(t, err)
	require.Equal(t, outbox.StatusFailed, op.Status)
	require.Equal(t, uint32(1), op.Attempt)
}

func TestStore_PruneDoneRemovesOldOnly(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Put(outbox.Operation{ID: "old", Status: outbox.StatusDone, UpdatedAtMs: 10}))
	require.NoError(t, s.Put(outbox.Operation{ID: "new", Status: outbox.StatusDone, UpdatedAtMs: 1000}))

	n, err := s.PruneDone(100)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	_, err = s.Get("old")
	require.ErrorIs(t, err, outbox.ErrNotFound)
}

func TestSchema_RejectsInvalidTableName(t *testing.T) {
	_, err := Schema("bad name!", DialectSQLite)
	require.ErrorIs(t, err, ErrInvalidTableName)
}

func TestNew_RejectsNilDB(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, ErrDBRequired)
}
