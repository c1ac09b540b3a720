package sqlstore

// Dialect selects the SQL variant a Store speaks.
type Dialect string

const (
	// DialectMySQL targets github.com/go-sql-driver/mysql.
	DialectMySQL Dialect = "mysql"
	// DialectSQLite targets modernc.org/sqlite, the default for
	// offline-first/embedded usage since it needs no server process
	// and no cgo.
	DialectSQLite Dialect = "sqlite"
)

func (d Dialect) blobType() (string, error) {
	switch d {
	case DialectMySQL:
		return "LONGBLOB", nil
	case DialectSQLite, "":
		return "BLOB", nil
	default:
		return "", ErrUnknownDialect
	}
}
