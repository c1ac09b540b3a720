package filestore

import "github.com/vixgo/sync"

const snapshotVersion = 1

// snapshot is the on-disk JSON layout: a version tag plus the id→op
// and id→owner maps, per the field set fixed by the external
// interface contract.
type snapshot struct {
	Version int                      `json:"version"`
	Ops     map[string]snapshotOp    `json:"ops"`
	Owners  map[string]string        `json:"owners"`
}

type snapshotOp struct {
	ID             string `json:"id"`
	Kind           string `json:"kind"`
	Target         string `json:"target"`
	Payload        []byte `json:"payload"`
	IdempotencyKey string `json:"idempotency_key"`
	CreatedAtMs    int64  `json:"created_at_ms"`
	UpdatedAtMs    int64  `json:"updated_at_ms"`
	Attempt        uint32 `json:"attempt"`
	NextRetryAtMs  int64  `json:"next_retry_at_ms"`
	Status         int16  `json:"status"`
	LastError      string `json:"last_error"`
}

func toSnapshotOp(op outbox.Operation) snapshotOp {
	return snapshotOp{
		ID:             op.ID,
		Kind:           op.Kind,
		Target:         op.Target,
		Payload:        op.Payload,
		IdempotencyKey: op.IdempotencyKey,
		CreatedAtMs:    op.CreatedAtMs,
		UpdatedAtMs:    op.UpdatedAtMs,
		Attempt:        op.Attempt,
		NextRetryAtMs:  op.NextRetryAtMs,
		Status:         int16(op.Status),
		LastError:      op.LastError,
	}
}

func fromSnapshotOp(s snapshotOp) outbox.Operation {
	return outbox.Operation{
		ID:             s.ID,
		Kind:           s.Kind,
		Target:         s.Target,
		Payload:        s.Payload,
		IdempotencyKey: s.IdempotencyKey,
		CreatedAtMs:    s.CreatedAtMs,
		UpdatedAtMs:    s.UpdatedAtMs,
		Attempt:        s.Attempt,
		NextRetryAtMs:  s.NextRetryAtMs,
		Status:         outbox.Status(s.Status),
		LastError:      s.LastError,
	}
}
