package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	syncoutbox "github.com/vixgo/sync"
)

// fakeStore is a minimal in-memory outbox.Store double shared by the
// worker and engine tests in this package.
type fakeStore struct {
	mu  sync.Mutex
	ops map[string]syncoutbox.Operation
}

func newFakeStore() *fakeStore {
	return &fakeStore{ops: map[string]syncoutbox.Operation{}}
}

func (s *fakeStore) Put(op syncoutbox.Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops[op.ID] = op

	return nil
}

func (s *fakeStore) Get(id string) (syncoutbox.Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	op, ok := s.ops[id]
	if !ok {
		return syncoutbox.Operation{}, syncoutbox.ErrNotFound
	}

	return op, nil
}

func (s *fakeStore) List(opts syncoutbox.ListOptions) ([]syncoutbox.Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []syncoutbox.Operation
	for _, op := range s.ops {
		if op.Status.Terminal() {
			continue
		}
		if !opts.IncludeInFlight && op.Status == syncoutbox.StatusInFlight {
			continue
		}
		if opts.OnlyReady && op.NextRetryAtMs > opts.Now {
			continue
		}
		out = append(out, op)
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}

	return out, nil
}

func (s *fakeStore) Claim(id, owner string, now int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	op, ok := s.ops[id]
	if !ok || !op.Status.Claimable() {
		return false, nil
	}
	op.Status = syncoutbox.StatusInFlight
	op.UpdatedAtMs = now
	s.ops[id] = op

	return true, nil
}

func (s *fakeStore) MarkDone(id string, now int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	op, ok := s.ops[id]
	if !ok {
		return false, nil
	}
	op.Status = syncoutbox.StatusDone
	op.UpdatedAtMs = now
	op.LastError = ""
	s.ops[id] = op

	return true, nil
}

func (s *fakeStore) MarkFailed(id, errMsg string, now, nextRetryAtMs int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	op, ok := s.ops[id]
	if !ok {
		return false, nil
	}
	op.Status = syncoutbox.StatusFailed
	op.Attempt++
	op.LastError = errMsg
	op.UpdatedAtMs = now
	op.NextRetryAtMs = nextRetryAtMs
	s.ops[id] = op

	return true, nil
}

func (s *fakeStore) MarkPermanentFailed(id, errMsg string, now int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	op, ok := s.ops[id]
	if !ok {
		return false, nil
	}
	op.Status = syncoutbox.StatusPermanentFailed
	op.Attempt++
	op.LastError = errMsg
	op.UpdatedAtMs = now
	s.ops[id] = op

	return true, nil
}

func (s *fakeStore) PruneDone(olderThanMs int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, op := range s.ops {
		if op.Status == syncoutbox.StatusDone && op.UpdatedAtMs <= olderThanMs {
			delete(s.ops, id)
			removed++
		}
	}

	return removed, nil
}

func (s *fakeStore) RequeueInFlightOlderThan(now, timeoutMs int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for id, op := range s.ops {
		if op.Status != syncoutbox.StatusInFlight {
			continue
		}
		if now-op.UpdatedAtMs < timeoutMs {
			continue
		}
		op.Status = syncoutbox.StatusFailed
		op.Attempt++
		op.UpdatedAtMs = now
		op.NextRetryAtMs = now
		op.LastError = "requeued after inflight timeout"
		s.ops[id] = op
		count++
	}

	return count, nil
}

// ruleTransport is a rule-based fake transport: outcomes can be
// overridden per target or per kind, falling back to a default.
type ruleTransport struct {
	mu       sync.Mutex
	def      SendResult
	byTarget map[string]SendResult
	byKind   map[string]SendResult
	calls    int
}

func newRuleTransport() *ruleTransport {
	return &ruleTransport{
		def:      SendResult{OK: true},
		byTarget: map[string]SendResult{},
		byKind:   map[string]SendResult{},
	}
}

func (t *ruleTransport) setDefault(r SendResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.def = r
}

func (t *ruleTransport) setRuleForTarget(target string, r SendResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byTarget[target] = r
}

func (t *ruleTransport) callCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.calls
}

func (t *ruleTransport) Send(op syncoutbox.Operation) SendResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls++

	if r, ok := t.byTarget[op.Target]; ok {
		return r
	}
	if r, ok := t.byKind[op.Kind]; ok {
		return r
	}

	return t.def
}

func TestSyncWorker_Smoke(t *testing.T) {
	store := newFakeStore()
	ob, err := syncoutbox.NewOutbox(store)
	require.NoError(t, err)
	id, err := ob.Enqueue(syncoutbox.Operation{Target: "t"}, 0)
	require.NoError(t, err)

	transport := newRuleTransport()
	w := NewSyncWorker(WorkerConfig{}, ob, AlwaysOnline{}, transport)

	processed := w.Tick(0)
	require.GreaterOrEqual(t, processed, 1)

	op, err := ob.Store().Get(id)
	require.NoError(t, err)
	require.Equal(t, syncoutbox.StatusDone, op.Status)
}

func TestSyncWorker_OfflineNoSend(t *testing.T) {
	store := newFakeStore()
	ob, err := syncoutbox.NewOutbox(store)
	require.NoError(t, err)
	id, err := ob.Enqueue(syncoutbox.Operation{Target: "t"}, 0)
	require.NoError(t, err)

	transport := newRuleTransport()
	w := NewSyncWorker(WorkerConfig{}, ob, ProbeFunc(func(int64) bool { return false }), transport)

	processed := w.Tick(0)
	require.Equal(t, 0, processed)
	require.Equal(t, 0, transport.callCount())

	op, err := ob.Store().Get(id)
	require.NoError(t, err)
	require.Equal(t, syncoutbox.StatusPending, op.Status)
}

func TestSyncWorker_RetryableThenSuccess(t *testing.T) {
	store := newFakeStore()
	ob, err := syncoutbox.NewOutbox(store, syncoutbox.WithRetryPolicy(syncoutbox.RetryPolicy{
		MaxAttempts: 8, BaseDelayMs: 10, MaxDelayMs: 1000, Factor: 2,
	}))
	require.NoError(t, err)
	id, err := ob.Enqueue(syncoutbox.Operation{Target: "flaky"}, 0)
	require.NoError(t, err)

	transport := newRuleTransport()
	transport.setRuleForTarget("flaky", SendResult{OK: false, Retryable: true, Error: "timeout"})
	w := NewSyncWorker(WorkerConfig{}, ob, AlwaysOnline{}, transport)

	processed := w.Tick(0)
	require.GreaterOrEqual(t, processed, 1)
	require.Equal(t, 1, transport.callCount())

	op, err := ob.Store().Get(id)
	require.NoError(t, err)
	require.Equal(t, syncoutbox.StatusFailed, op.Status)
	require.GreaterOrEqual(t, op.Attempt, uint32(1))

	transport.setRuleForTarget("flaky", SendResult{OK: true})
	processed = w.Tick(op.NextRetryAtMs)
	require.GreaterOrEqual(t, processed, 1)
	require.GreaterOrEqual(t, transport.callCount(), 2)

	op, err = ob.Store().Get(id)
	require.NoError(t, err)
	require.Equal(t, syncoutbox.StatusDone, op.Status)
}

func TestSyncWorker_PermanentFailure(t *testing.T) {
	store := newFakeStore()
	ob, err := syncoutbox.NewOutbox(store)
	require.NoError(t, err)
	id, err := ob.Enqueue(syncoutbox.Operation{Target: "bad"}, 0)
	require.NoError(t, err)

	transport := newRuleTransport()
	transport.setRuleForTarget("bad", SendResult{OK: false, Retryable: false, Error: "bad request (permanent)"})
	w := NewSyncWorker(WorkerConfig{}, ob, AlwaysOnline{}, transport)

	processed := w.Tick(0)
	require.GreaterOrEqual(t, processed, 1)
	require.Equal(t, 1, transport.callCount())

	op, err := ob.Store().Get(id)
	require.NoError(t, err)
	require.Equal(t, syncoutbox.StatusPermanentFailed, op.Status)
	require.Contains(t, op.LastError, "permanent")

	w.Tick(100)
	require.Equal(t, 1, transport.callCount())

	op, err = ob.Store().Get(id)
	require.NoError(t, err)
	require.Equal(t, syncoutbox.StatusPermanentFailed, op.Status)
}

func TestSyncWorker_InflightTimeoutRequeue(t *testing.T) {
	store := newFakeStore()
	ob, err := syncoutbox.NewOutbox(store)
	require.NoError(t, err)
	id, err := ob.Enqueue(syncoutbox.Operation{Target: "t"}, 0)
	require.NoError(t, err)

	ok, err := ob.Claim(id, 0)
	require.NoError(t, err)
	require.True(t, ok)

	op, err := ob.Store().Get(id)
	require.NoError(t, err)
	require.Equal(t, syncoutbox.StatusInFlight, op.Status)

	transport := newRuleTransport()
	w := NewSyncWorker(WorkerConfig{InflightTimeoutMs: 50}, ob, AlwaysOnline{}, transport)

	w.Tick(60)
	op, err = ob.Store().Get(id)
	require.NoError(t, err)
	require.NotEqual(t, syncoutbox.StatusInFlight, op.Status)

	w.Tick(61)
	op, err = ob.Store().Get(id)
	require.NoError(t, err)
	require.Equal(t, syncoutbox.StatusDone, op.Status)
	require.GreaterOrEqual(t, transport.callCount(), 1)
}

func TestSyncEngine_TickSumsWorkers(t *testing.T) {
	store := newFakeStore()
	ob, err := syncoutbox.NewOutbox(store)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := ob.Enqueue(syncoutbox.Operation{Target: "t"}, 0)
		require.NoError(t, err)
	}

	transport := newRuleTransport()
	eng := NewSyncEngine(EngineConfig{WorkerCount: 2}, ob, AlwaysOnline{}, transport, nil)

	processed := eng.Tick(0)
	require.Equal(t, 3, processed)
}

func TestSyncEngine_StartStopIsIdempotent(t *testing.T) {
	store := newFakeStore()
	ob, err := syncoutbox.NewOutbox(store)
	require.NoError(t, err)

	eng := NewSyncEngine(EngineConfig{IdleSleepMs: 5}, ob, AlwaysOnline{}, newRuleTransport(), nil)

	eng.Start()
	eng.Start()
	require.True(t, eng.Running())

	eng.Stop()
	eng.Stop()
	require.False(t, eng.Running())
}
