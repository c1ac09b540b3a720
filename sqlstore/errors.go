package sqlstore

import "errors"

var (
	// ErrDBRequired is returned when New is given a nil *sql.DB.
	ErrDBRequired = errors.New("sqlstore: db is required")
	// ErrTableNameRequired is returned when Schema is given an empty
	// table name. New never returns it: an empty Config.Table is
	// replaced by the default table name.
	ErrTableNameRequired = errors.New("sqlstore: table name is required")
	// ErrInvalidTableName is returned when Config.Table contains
	// characters unsafe to interpolate into DDL/DML.
	ErrInvalidTableName = errors.New("sqlstore: invalid table name")
	// ErrUnknownDialect is returned for a Dialect other than MySQL or
	// SQLite.
	ErrUnknownDialect = errors.New("sqlstore: unknown dialect")
)
