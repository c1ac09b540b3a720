package filestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vixgo/sync"
)

// Store is a mutex-guarded, lazily-loaded outbox.Store backed by a
// single JSON snapshot file. Every mutation flushes the entire
// snapshot; acceptable for client-side outbox sizes and much simpler
// to reason about than incremental persistence.
type Store struct {
	cfg Config

	mu     sync.Mutex
	loaded bool
	ops    map[string]outbox.Operation
	owners map[string]string
}

// New constructs a Store. The backing file is not touched until the
// first operation.
func New(cfg Config) *Store {
	return &Store{
		cfg:    cfg.withDefaults(),
		ops:    map[string]outbox.Operation{},
		owners: map[string]string{},
	}
}

func (s *Store) loadLocked() error {
	if s.loaded {
		return nil
	}
	s.loaded = true

	data, err := os.ReadFile(s.cfg.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("%w: read: %v", outbox.ErrStoreIO, err)
	}
	if len(data) == 0 {
		return nil
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("%w: decode: %v", outbox.ErrStoreIO, err)
	}

	for id, op := range snap.Ops {
		s.ops[id] = fromSnapshotOp(op)
	}
	for id, owner := range snap.Owners {
		s.owners[id] = owner
	}

	return nil
}

// flushLocked rewrites the entire snapshot file. It writes to a
// temporary file in the same directory and renames it into place so a
// crash mid-write leaves either the previous or the new snapshot, never
// a torn one.
func (s *Store) flushLocked() error {
	dir := filepath.Dir(s.cfg.FilePath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: mkdir: %v", outbox.ErrStoreIO, err)
		}
	}

	snap := snapshot{
		Version: snapshotVersion,
		Ops:     make(map[string]snapshotOp, len(s.ops)),
		Owners:  make(map[string]string, len(s.owners)),
	}
	for id, op := range s.ops {
		snap.Ops[id] = toSnapshotOp(op)
	}
	for id, owner := range s.owners {
		snap.Owners[id] = owner
	}

	var data []byte
	var err error
	if s.cfg.PrettyJSON {
		data, err = json.MarshalIndent(snap, "", "  ")
	} else {
		data, err = json.Marshal(snap)
	}
	if err != nil {
		return fmt.Errorf("%w: encode: %v", outbox.ErrStoreIO, err)
	}

	tmp, err := os.CreateTemp(dir, ".outbox-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp: %v", outbox.ErrStoreIO, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)

		return fmt.Errorf("%w: write: %v", outbox.ErrStoreIO, err)
	}
	if s.cfg.FsyncOnWrite {
		if err := tmp.Sync(); err != nil {
			tmp.Close()
			os.Remove(tmpPath)

			return fmt.Errorf("%w: fsync: %v", outbox.ErrStoreIO, err)
		}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)

		return fmt.Errorf("%w: close temp: %v", outbox.ErrStoreIO, err)
	}

	if err := os.Rename(tmpPath, s.cfg.FilePath); err != nil {
		os.Remove(tmpPath)

		return fmt.Errorf("%w: rename: %v", outbox.ErrStoreIO, err)
	}

	return nil
}

// Put implements outbox.Store.
func (s *Store) Put(op outbox.Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return err
	}
	s.ops[op.ID] = op

	return s.flushLocked()
}

// Get implements outbox.Store.
func (s *Store) Get(id string) (outbox.Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return outbox.Operation{}, err
	}

	op, ok := s.ops[id]
	if !ok {
		return outbox.Operation{}, outbox.ErrNotFound
	}

	return op, nil
}

// List implements outbox.Store.
func (s *Store) List(opts outbox.ListOptions) ([]outbox.Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return nil, err
	}
	if opts.Limit == 0 {
		return []outbox.Operation{}, nil
	}

	var out []outbox.Operation
	for _, op := range s.ops {
		if op.Status.Terminal() {
			continue
		}
		if !opts.IncludeInFlight && op.Status == outbox.StatusInFlight {
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

// Claim implements outbox.Store. It only succeeds when the current
// status is Pending or Failed — unlike claiming any status other than
// Done/InFlight, which would wrongly let a PermanentFailed operation
// be claimed again.
func (s *Store) Claim(id, owner string, now int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return false, err
	}

	op, ok := s.ops[id]
	if !ok || !op.Status.Claimable() {
		return false, nil
	}

	op.Status = outbox.StatusInFlight
	op.UpdatedAtMs = now
	s.ops[id] = op
	s.owners[id] = owner

	return true, s.flushLocked()
}

// MarkDone implements outbox.Store.
func (s *Store) MarkDone(id string, now int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return false, err
	}

	op, ok := s.ops[id]
	if !ok {
		return false, nil
	}

	op.Status = outbox.StatusDone
	op.UpdatedAtMs = now
	op.LastError = ""
	s.ops[id] = op
	delete(s.owners, id)

	return true, s.flushLocked()
}

// MarkFailed implements outbox.Store. attempt is incremented here,
// the single site chosen for that responsibility (see the store's
// package-level contract in the outbox package).
func (s *Store) MarkFailed(id, errMsg string, now, nextRetryAtMs int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return false, err
	}

	op, ok := s.ops[id]
	if !ok {
		return false, nil
	}

	op.Status = outbox.StatusFailed
	op.Attempt++
	op.LastError = errMsg
	op.UpdatedAtMs = now
	op.NextRetryAtMs = nextRetryAtMs
	s.ops[id] = op
	delete(s.owners, id)

	return true, s.flushLocked()
}

// MarkPermanentFailed implements outbox.Store.
func (s *Store) MarkPermanentFailed(id, errMsg string, now int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return false, err
	}

	op, ok := s.ops[id]
	if !ok {
		return false, nil
	}

	op.Status = outbox.StatusPermanentFailed
	op.Attempt++
	op.LastError = errMsg
	op.UpdatedAtMs = now
	s.ops[id] = op
	delete(s.owners, id)

	return true, s.flushLocked()
}

// PruneDone implements outbox.Store.
func (s *Store) PruneDone(olderThanMs int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return 0, err
	}

	removed := 0
	for id, op := range s.ops {
		if op.Status == outbox.StatusDone && op.UpdatedAtMs <= olderThanMs {
			delete(s.ops, id)
			delete(s.owners, id)
			removed++
		}
	}

	if removed == 0 {
		return 0, nil
	}

	return removed, s.flushLocked()
}

// RequeueInFlightOlderThan implements outbox.Store.
func (s *Store) RequeueInFlightOlderThan(now, timeoutMs int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return 0, err
	}

	count := 0
	for id, op := range s.ops {
		if op.Status != outbox.StatusInFlight {
			continue
		}
		if now-op.UpdatedAtMs < timeoutMs {
			continue
		}

		op.Status = outbox.StatusFailed
		op.Attempt++
		op.UpdatedAtMs = now
		op.NextRetryAtMs = now
		op.LastError = "requeued after inflight timeout"
		s.ops[id] = op
		delete(s.owners, id)
		count++
	}

	if count == 0 {
		return 0, nil
	}

	return count, s.flushLocked()
}
