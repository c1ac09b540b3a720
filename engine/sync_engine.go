package engine

import (
	"runtime"
	"sync/atomic"
	"time"

	syncoutbox "github.com/vixgo/sync"
)

// EngineConfig controls a SyncEngine's worker pool and pacing.
type EngineConfig struct {
	// WorkerCount is the number of SyncWorker instances stepped
	// sequentially on every tick. Defaults to 1.
	WorkerCount int
	// IdleSleepMs is how long the background loop sleeps after a tick
	// that processed zero operations.
	IdleSleepMs int64
	// OfflineSleepMs is defaulted and forwarded to workers but not read
	// by the background loop: Tick does not report offline separately
	// from idle, so a tick that found itself offline is followed by an
	// IdleSleepMs sleep like any other tick that processed nothing.
	OfflineSleepMs int64
	// BatchLimit and InflightTimeoutMs are forwarded to every worker.
	BatchLimit        int
	InflightTimeoutMs int64
}

func (c EngineConfig) withDefaults() EngineConfig {
	if c.WorkerCount <= 0 {
		c.WorkerCount = 1
	}
	if c.IdleSleepMs <= 0 {
		c.IdleSleepMs = defaultIdleSleepMs
	}
	if c.OfflineSleepMs <= 0 {
		c.OfflineSleepMs = defaultOfflineSleepMs
	}
	if c.BatchLimit <= 0 {
		c.BatchLimit = defaultBatchLimit
	}
	if c.InflightTimeoutMs <= 0 {
		c.InflightTimeoutMs = defaultInflightTimeout
	}

	return c
}

func (c EngineConfig) workerConfig() WorkerConfig {
	return WorkerConfig{
		BatchLimit:        c.BatchLimit,
		IdleSleepMs:       c.IdleSleepMs,
		OfflineSleepMs:    c.OfflineSleepMs,
		InflightTimeoutMs: c.InflightTimeoutMs,
	}
}

// SyncEngine owns a fixed set of workers built from one shared config
// and exposes both a manual Tick and an optional self-driven
// background loop. Only one of the two drivers may be active at a
// time: either the background loop calls Tick, or a single external
// caller does, never both concurrently.
type SyncEngine struct {
	cfg     EngineConfig
	workers []*SyncWorker
	clock   syncoutbox.Clock

	running atomic.Bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewSyncEngine constructs an engine with cfg.WorkerCount workers, each
// wired to the same outbox, probe, and transport.
func NewSyncEngine(cfg EngineConfig, ob *syncoutbox.Outbox, probe Probe, transport Transport, clock syncoutbox.Clock) *SyncEngine {
	cfg = cfg.withDefaults()
	if clock == nil {
		clock = syncoutbox.SystemClock{}
	}

	workers := make([]*SyncWorker, cfg.WorkerCount)
	for i := range workers {
		workers[i] = NewSyncWorker(cfg.workerConfig(), ob, probe, transport)
	}

	return &SyncEngine{cfg: cfg, workers: workers, clock: clock}
}

// Tick steps every worker in order and returns the sum of operations
// processed. Safe to call directly (embedded-driver mode) as long as
// the background loop is not also running.
func (e *SyncEngine) Tick(nowMs int64) int {
	total := 0
	for _, w := range e.workers {
		total += w.Tick(nowMs)
	}

	return total
}

// Start spawns the background loop if it is not already running.
// Idempotent.
func (e *SyncEngine) Start() {
	if !e.running.CompareAndSwap(false, true) {
		return
	}
	e.stopCh = make(chan struct{})
	e.doneCh = make(chan struct{})

	go e.runLoop()
}

// Stop signals the background loop to exit and waits for it to
// finish. Idempotent.
func (e *SyncEngine) Stop() {
	if !e.running.CompareAndSwap(true, false) {
		return
	}
	close(e.stopCh)
	<-e.doneCh
}

// Running reports whether the background loop is active.
func (e *SyncEngine) Running() bool {
	return e.running.Load()
}

func (e *SyncEngine) runLoop() {
	defer close(e.doneCh)

	for {
		select {
		case <-e.stopCh:
			return
		default:
		}

		now := syncoutbox.NowMillis(e.clock)
		processed := e.Tick(now)

		if processed == 0 {
			select {
			case <-e.stopCh:
				return
			case <-time.After(time.Duration(e.cfg.IdleSleepMs) * time.Millisecond):
			}
		} else {
			runtime.Gosched()
		}
	}
}
