package sqlstore

import "fmt"

const schemaTemplate = `CREATE TABLE IF NOT EXISTS %s (
	id               VARCHAR(191)  NOT NULL PRIMARY KEY,
	kind             VARCHAR(191)  NOT NULL,
	target           VARCHAR(191)  NOT NULL,
	payload          %s            NULL,
	idempotency_key  VARCHAR(191)  NOT NULL,
	created_at_ms    BIGINT        NOT NULL,
	updated_at_ms    BIGINT        NOT NULL,
	attempt          INTEGER       NOT NULL DEFAULT 0,
	next_retry_at_ms BIGINT        NOT NULL DEFAULT 0,
	status           SMALLINT      NOT NULL DEFAULT 0,
	last_error       VARCHAR(1024) NOT NULL DEFAULT '',
	owner            VARCHAR(191)  NOT NULL DEFAULT ''
)`

const indexTemplate = `CREATE INDEX IF NOT EXISTS %s ON %s (status, next_retry_at_ms)`

// Schema returns the CREATE TABLE / CREATE INDEX statements for table
// under dialect.
func Schema(table string, dialect Dialect) ([]string, error) {
	table, err := sanitizeTableName(table)
	if err != nil {
		return nil, err
	}

	blob, err := dialect.blobType()
	if err != nil {
		return nil, err
	}

	return []string{
		fmt.Sprintf(schemaTemplate, table, blob),
		fmt.Sprintf(indexTemplate, "idx_"+table+"_status_retry", table),
	}, nil
}
