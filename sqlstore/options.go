package sqlstore

import "github.com/vixgo/sync"

const defaultTable = "outbox_operations"

// Config controls Store behavior.
type Config struct {
	// Table names the backing table. Sanitized before use since it is
	// interpolated into DDL/DML text. Defaults to
	// "outbox_operations".
	Table string
	// Dialect selects MySQL or SQLite query/DDL variants. Defaults to
	// DialectSQLite.
	Dialect Dialect
	// Clock is used only by helpers that need "now" independent of a
	// caller-supplied timestamp (currently unused by Store itself,
	// kept for parity with the file store's configuration surface and
	// for callers building a schema-migration helper on top).
	Clock outbox.Clock
}

func (c Config) withDefaults() Config {
	if c.Table == "" {
		c.Table = defaultTable
	}
	if c.Dialect == "" {
		c.Dialect = DialectSQLite
	}
	if c.Clock == nil {
		c.Clock = outbox.SystemClock{}
	}

	return c
}
