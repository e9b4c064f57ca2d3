// internal/output/postgresql.go
package output

import (
	"context"
	"strconv"

	_ "github.com/lib/pq" // PostgreSQL driver
)

var postgresDialect = sqlDialect{
	name:        "postgresql",
	driver:      "postgres",
	maxIdentLen: MaxPostgreSQLIdentifierLength,
	quote:       doubleQuote,
	placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	keyType:     "TEXT",
	textType:    "TEXT",
	intType:     "BIGINT",
	boolType:    "BOOLEAN",
	timeType:    "TIMESTAMPTZ",
}

// NewPostgreSQLWriter connects with a postgres:// URL or key=value DSN.
func NewPostgreSQLWriter(ctx context.Context, options SQLOptions) (*SQLWriter, error) {
	w, err := newSQLWriter(ctx, postgresDialect, options)
	if err != nil {
		return nil, err
	}
	w.db.SetMaxOpenConns(4)
	return w, nil
}
