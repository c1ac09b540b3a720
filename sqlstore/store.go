package sqlstore

import (
	"database/sql"
	"fmt"

	"github.com/vixgo/sync"
)

// Store implements outbox.Store on top of database/sql.
type Store struct {
	db      *sql.DB
	cfg     Config
	queries queries
	table   string
}

// New constructs a Store. It does not create the table; call
// EnsureSchema or run the statements from Schema yourself first.
func New(db *sql.DB, opts ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrDBRequired
	}

	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg = cfg.withDefaults()

	table, err := sanitizeTableName(cfg.Table)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:      db,
		cfg:     cfg,
		queries: newQueries(table, cfg.Dialect),
		table:   table,
	}, nil
}

// Option configures a Store.
type Option func(*Config)

// WithTable overrides the table name.
func WithTable(table string) Option {
	return func(c *Config) { c.Table = table }
}

// WithDialect overrides the SQL dialect.
func WithDialect(d Dialect) Option {
	return func(c *Config) { c.Dialect = d }
}

// WithClock overrides the clock (see Config.Clock).
func WithClock(clock outbox.Clock) Option {
	return func(c *Config) { c.Clock = clock }
}

// EnsureSchema runs the CREATE TABLE / CREATE INDEX statements for
// this store's table and dialect.
func (s *Store) EnsureSchema() error {
	stmts, err := Schema(s.table, s.cfg.Dialect)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("%w: schema: %v", outbox.ErrStoreIO, err)
		}
	}

	return nil
}

// Put implements outbox.Store.
func (s *Store) Put(op outbox.Operation) error {
	_, err := s.db.Exec(
		s.queries.insert,
		op.ID, op.Kind, op.Target, op.Payload, op.IdempotencyKey,
		op.CreatedAtMs, op.UpdatedAtMs, op.Attempt, op.NextRetryAtMs,
		int16(op.Status), op.LastError,
	)
	if err != nil {
		return fmt.Errorf("%w: insert: %v", outbox.ErrStoreIO, err)
	}

	return nil
}

func scanOp(row *sql.Row) (outbox.Operation, error) {
	var op outbox.Operation
	var status int16

	err := row.Scan(
		&op.ID, &op.Kind, &op.Target, &op.Payload, &op.IdempotencyKey,
		&op.CreatedAtMs, &op.UpdatedAtMs, &op.Attempt, &op.NextRetryAtMs,
		&status, &op.LastError,
	)
	if err != nil {
		return outbox.Operation{}, err
	}
	op.Status = outbox.Status(status)

	return op, nil
}

// Get implements outbox.Store.
func (s *Store) Get(id string) (outbox.Operation, error) {
	row := s.db.QueryRow(s.queries.get, id)

	op, err := scanOp(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return outbox.Operation{}, outbox.ErrNotFound
		}

		return outbox.Operation{}, fmt.Errorf("%w: get: %v", outbox.ErrStoreIO, err)
	}

	return op, nil
}

// List implements outbox.Store.
func (s *Store) List(opts outbox.ListOptions) ([]outbox.Operation, error) {
	if opts.Limit == 0 {
		return []outbox.Operation{}, nil
	}

	query := s.queries.listBase
	args := []any{int16(outbox.StatusDone), int16(outbox.StatusPermanentFailed)}

	if !opts.IncludeInFlight {
		query += " AND status != ?"
		args = append(args, int16(outbox.StatusInFlight))
	}
	if opts.OnlyReady {
		query += " AND next_retry_at_ms <= ?"
		args = append(args, opts.Now)
	}
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %v", outbox.ErrStoreIO, err)
	}
	defer rows.Close()

	var out []outbox.Operation
	for rows.Next() {
		var op outbox.Operation
		var status int16
		if err := rows.Scan(
			&op.ID, &op.Kind, &op.Target, &op.Payload, &op.IdempotencyKey,
			&op.CreatedAtMs, &op.UpdatedAtMs, &op.Attempt, &op.NextRetryAtMs,
			&status, &op.LastError,
		); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", outbox.ErrStoreIO, err)
		}
		op.Status = outbox.Status(status)
		out = append(out, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows: %v", outbox.ErrStoreIO, err)
	}

	return out, nil
}

// Claim implements outbox.Store as a single conditional UPDATE; the
// atomicity guarantee comes from RowsAffected, the SQL analogue of the
// file store's mutex-guarded compare-and-set. Only Pending or Failed
// rows are eligible, matching the fixed claim precondition documented
// on outbox.Store.
func (s *Store) Claim(id, owner string, now int64) (bool, error) {
	res, err := s.db.Exec(
		s.queries.claim,
		int16(outbox.StatusInFlight), now, owner, id,
		int16(outbox.StatusPending), int16(outbox.StatusFailed),
	)
	if err != nil {
		return false, fmt.Errorf("%w: claim: %v", outbox.ErrStoreIO, err)
	}

	return rowsAffected(res)
}

// MarkDone implements outbox.Store.
func (s *Store) MarkDone(id string, now int64) (bool, error) {
	res, err := s.db.Exec(s.queries.markDone, int16(outbox.StatusDone), now, id)
	if err != nil {
		return false, fmt.Errorf("%w: mark done: %v", outbox.ErrStoreIO, err)
	}

	return rowsAffected(res)
}

// MarkFailed implements outbox.Store. attempt is incremented in SQL
// (attempt = attempt + 1), the single site chosen for that
// responsibility across both store implementations.
func (s *Store) MarkFailed(id, errMsg string, now, nextRetryAtMs int64) (bool, error) {
	res, err := s.db.Exec(s.queries.markFailed, int16(outbox.StatusFailed), errMsg, now, nextRetryAtMs, id)
	if err != nil {
		return false, fmt.Errorf("%w: mark failed: %v", outbox.ErrStoreIO, err)
	}

	return rowsAffected(res)
}

// MarkPermanentFailed implements outbox.Store.
func (s *Store) MarkPermanentFailed(id, errMsg string, now int64) (bool, error) {
	res, err := s.db.Exec(s.queries.markPermanentFailed, int16(outbox.StatusPermanentFailed), errMsg, now, id)
	if err != nil {
		return false, fmt.Errorf("%w: mark permanent failed: %v", outbox.ErrStoreIO, err)
	}

	return rowsAffected(res)
}

// PruneDone implements outbox.Store.
func (s *Store) PruneDone(olderThanMs int64) (int, error) {
	res, err := s.db.Exec(s.queries.pruneDone, int16(outbox.StatusDone), olderThanMs)
	if err != nil {
		return 0, fmt.Errorf("%w: prune done: %v", outbox.ErrStoreIO, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: prune done rows affected: %v", outbox.ErrStoreIO, err)
	}

	return int(n), nil
}

// RequeueInFlightOlderThan implements outbox.Store. It selects
// candidate ids, then requeues each with a status-guarded UPDATE so a
// row claimed by a concurrent worker between the select and the
// update is simply skipped rather than double-counted.
func (s *Store) RequeueInFlightOlderThan(now, timeoutMs int64) (int, error) {
	rows, err := s.db.Query(s.queries.selectInflightOlderThan, int16(outbox.StatusInFlight), now, timeoutMs)
	if err != nil {
		return 0, fmt.Errorf("%w: select inflight: %v", outbox.ErrStoreIO, err)
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()

			return 0, fmt.Errorf("%w: scan inflight: %v", outbox.ErrStoreIO, err)
		}
		ids = append(ids, id)
	}
	rowErr := rows.Err()
	rows.Close()
	if rowErr != nil {
		return 0, fmt.Errorf("%w: rows inflight: %v", outbox.ErrStoreIO, rowErr)
	}

	count := 0
	for _, id := range ids {
		res, err := s.db.Exec(
			s.queries.requeueOne,
			int16(outbox.StatusFailed), now, now, "requeued after inflight timeout",
			id, int16(outbox.StatusInFlight),
		)
		if err != nil {
			return count, fmt.Errorf("%w: requeue: %v", outbox.ErrStoreIO, err)
		}

		ok, err := rowsAffected(res)
		if err != nil {
			return count, err
		}
		if ok {
			count++
		}
	}

	return count, nil
}

func rowsAffected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: rows affected: %v", outbox.ErrStoreIO, err)
	}

	return n > 0, nil
}
