package sqlstore

import "fmt"

// queries holds the fully-rendered SQL text for one table. Both
// supported dialects accept "?" placeholders, so the same templates
// serve both; only DDL (schema.go) differs by dialect.
type queries struct {
	insert                  string
	get                     string
	listBase                string
	claim                   string
	markDone                string
	markFailed              string
	markPermanentFailed     string
	pruneDone               string
	selectInflightOlderThan string
	requeueOne              string
}

const opColumns = "id, kind, target, payload, idempotency_key, created_at_ms, updated_at_ms, attempt, next_retry_at_ms, status, last_error"

// upsertQuery renders an insert-or-replace statement for Put. SQLite
// uses the standard SQL UPSERT clause; MySQL has no ON CONFLICT
// syntax and instead uses ON DUPLICATE KEY UPDATE.
func upsertQuery(table string, dialect Dialect) string {
	base := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, table, opColumns)

	if dialect == DialectMySQL {
		return base + ` ON DUPLICATE KEY UPDATE
			kind=VALUES(kind), target=VALUES(target), payload=VALUES(payload),
			idempotency_key=VALUES(idempotency_key), created_at_ms=VALUES(created_at_ms),
			updated_at_ms=VALUES(updated_at_ms), attempt=VALUES(attempt),
			next_retry_at_ms=VALUES(next_retry_at_ms), status=VALUES(status),
			last_error=VALUES(last_error)`
	}

	return base + ` ON CONFLICT(id) DO UPDATE SET
			kind=excluded.kind, target=excluded.target, payload=excluded.payload,
			idempotency_key=excluded.idempotency_key, created_at_ms=excluded.created_at_ms,
			updated_at_ms=excluded.updated_at_ms, attempt=excluded.attempt,
			next_retry_at_ms=excluded.next_retry_at_ms, status=excluded.status,
			last_error=excluded.last_error`
}

func newQueries(table string, dialect Dialect) queries {
	return queries{
		insert: upsertQuery(table, dialect),
		get: fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, opColumns, table),
		listBase: fmt.Sprintf(
			`SELECT %s FROM %s WHERE status NOT IN (?, ?)`,
			opColumns, table,
		),
		claim: fmt.Sprintf(
			`UPDATE %s SET status = ?, updated_at_ms = ?, owner = ? WHERE id = ? AND status IN (?, ?)`,
			table,
		),
		markDone: fmt.Sprintf(
			`UPDATE %s SET status = ?, updated_at_ms = ?, last_error = '', owner = '' WHERE id = ?`,
			table,
		),
		markFailed: fmt.Sprintf(
			`UPDATE %s SET status = ?, attempt = attempt + 1, last_error = ?, updated_at_ms = ?, next_retry_at_ms = ?, owner = '' WHERE id = ?`,
			table,
		),
		markPermanentFailed: fmt.Sprintf(
			`UPDATE %s SET status = ?, attempt = attempt + 1, last_error = ?, updated_at_ms = ?, owner = '' WHERE id = ?`,
			table,
		),
		pruneDone: fmt.Sprintf(
			`DELETE FROM %s WHERE status = ? AND updated_at_ms <= ?`,
			table,
		),
		selectInflightOlderThan: fmt.Sprintf(
			`SELECT id FROM %s WHERE status = ? AND (? - updated_at_ms) >= ?`,
			table,
		),
		requeueOne: fmt.Sprintf(
			`UPDATE %s SET status = ?, attempt = attempt + 1, updated_at_ms = ?, next_retry_at_ms = ?, last_error = ?, owner = '' WHERE id = ? AND status = ?`,
			table,
		),
	}
}
