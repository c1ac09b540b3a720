package engine

import (
	"time"

	"github.com/vixgo/sync"
)

const (
	defaultBatchLimit       = 25
	defaultIdleSleepMs      = 250
	defaultOfflineSleepMs   = 500
	defaultInflightTimeout  = 10_000
)

// WorkerConfig controls one SyncWorker's tick behavior.
type WorkerConfig struct {
	// BatchLimit caps how many ready operations a single tick claims.
	BatchLimit int
	// IdleSleepMs and OfflineSleepMs are not read by the worker; they
	// are copied from EngineConfig so an engine's per-worker config
	// derives from one struct. SyncEngine's background loop paces itself
	// from its own EngineConfig.
	IdleSleepMs    int64
	OfflineSleepMs int64
	// InflightTimeoutMs bounds how long a claimed operation may stay
	// InFlight before the sweep assumes its owner died and requeues it.
	InflightTimeoutMs int64
}

func (c WorkerConfig) withDefaults() WorkerConfig {
	if c.BatchLimit <= 0 {
		c.BatchLimit = defaultBatchLimit
	}
	if c.IdleSleepMs <= 0 {
		c.IdleSleepMs = defaultIdleSleepMs
	}
	if c.OfflineSleepMs <= 0 {
		c.OfflineSleepMs = defaultOfflineSleepMs
	}
	if c.InflightTimeoutMs <= 0 {
		c.InflightTimeoutMs = defaultInflightTimeout
	}

	return c
}

// SyncWorker runs one outbox against one transport, gated by one
// connectivity probe. It has no blocking primitives of its own; the
// only blocking call inside Tick is Transport.Send.
type SyncWorker struct {
	cfg       WorkerConfig
	outbox    *outbox.Outbox
	probe     Probe
	transport Transport
	metrics   outbox.Metrics
	logger    outbox.Logger
}

// NewSyncWorker constructs a worker. A nil probe behaves as
// AlwaysOnline; a nil transport synthesizes "No transport configured"
// retryable failures, matching the reference implementation.
func NewSyncWorker(cfg WorkerConfig, ob *outbox.Outbox, probe Probe, transport Transport) *SyncWorker {
	if probe == nil {
		probe = AlwaysOnline{}
	}
	if transport == nil {
		transport = noTransport{}
	}

	return &SyncWorker{
		cfg:       cfg.withDefaults(),
		outbox:    ob,
		probe:     probe,
		transport: transport,
		metrics:   outbox.NopMetrics{},
		logger:    outbox.NopLogger{},
	}
}

// WithMetrics attaches a metrics recorder.
func (w *SyncWorker) WithMetrics(m outbox.Metrics) *SyncWorker {
	if m != nil {
		w.metrics = m
	}

	return w
}

// WithLogger attaches a diagnostics logger.
func (w *SyncWorker) WithLogger(l outbox.Logger) *SyncWorker {
	if l != nil {
		w.logger = l
	}

	return w
}

// Tick performs one non-blocking-style step: sweep stale in-flight
// operations unconditionally, then (only if online) claim and send a
// batch of ready operations. It never retries within a tick; a failed
// send is rescheduled for a future tick via next_retry_at_ms.
//
// Returns the number of operations for which a send was attempted,
// successful or not — losing a claim race does not count.
func (w *SyncWorker) Tick(nowMs int64) int {
	start := time.Now()
	defer func() {
		w.metrics.ObserveTickDuration(time.Since(start))
	}()

	if w.outbox == nil {
		return 0
	}

	requeued, err := w.outbox.Store().RequeueInFlightOlderThan(nowMs, w.cfg.InflightTimeoutMs)
	if err != nil {
		w.logger.Warn("sweep failed", "error", err)
	} else if requeued > 0 {
		w.metrics.AddRequeued(requeued)
		w.logger.Info("requeued stale in-flight operations", "count", requeued)
	}

	if !w.probe.Refresh(nowMs) {
		return 0
	}

	return w.processReady(nowMs)
}

func (w *SyncWorker) processReady(nowMs int64) int {
	ops, err := w.outbox.PeekReady(nowMs, w.cfg.BatchLimit)
	if err != nil {
		w.logger.Warn("peek ready failed", "error", err)

		return 0
	}
	if len(ops) == 0 {
		return 0
	}

	processed := 0
	for _, op := range ops {
		claimed, err := w.outbox.Claim(op.ID, nowMs)
		if err != nil {
			w.logger.Warn("claim failed", "id", op.ID, "error", err)

			continue
		}
		if !claimed {
			continue
		}

		result := w.transport.Send(op)
		if result.OK {
			if _, err := w.outbox.Complete(op.ID, nowMs); err != nil {
				w.logger.Warn("complete failed", "id", op.ID, "error", err)
			}
			w.metrics.AddSent(1)
		} else {
			errMsg := result.Error
			if errMsg == "" {
				errMsg = "send failed"
			}
			if _, err := w.outbox.Fail(op.ID, errMsg, nowMs, result.Retryable); err != nil {
				w.logger.Warn("fail failed", "id", op.ID, "error", err)
			}
			if result.Retryable {
				w.metrics.AddRetried(1)
			} else {
				w.metrics.AddPermanentlyFailed(1)
			}
		}

		processed++
	}

	return processed
}
