// Package sqlstore implements outbox.Store on top of database/sql,
// supporting both MySQL (github.com/go-sql-driver/mysql) and SQLite
// (modernc.org/sqlite) via one dialect-parameterized query set. Claim
// is implemented as a single conditional UPDATE, using RowsAffected as
// the atomicity check that replaces the file store's mutex.
package sqlstore
