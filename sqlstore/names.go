package sqlstore

import "fmt"

// sanitizeTableName rejects anything but ASCII letters, digits, and
// underscores/dots (for schema-qualified names), since the table name
// is interpolated directly into DDL and query text rather than passed
// as a bind parameter.
func sanitizeTableName(name string) (string, error) {
	if name == "" {
		return "", ErrTableNameRequired
	}

	for _, r := range name {
		switch {
		case r == '_' || r == '.':
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		default:
			return "", fmt.Errorf("%w: %s", ErrInvalidTableName, name)
		}
	}

	return name, nil
}
