// internal/output/mysql.go
package output

import (
	"context"
	"strings"

	"github.com/go-sql-driver/mysql"
)

var mysqlDialect = sqlDialect{
	name:        "mysql",
	driver:      "mysql",
	maxIdentLen: MaxMySQLIdentifierLength,
	quote:       func(identifier string) string { return "`" + strings.ReplaceAll(identifier, "`", "``") + "`" },
	placeholder: questionMark,
	// MySQL cannot index unbounded TEXT columns
	keyType:  "VARCHAR(64)",
	textType: "TEXT",
	intType:  "BIGINT",
	boolType: "BOOLEAN",
	timeType: "DATETIME(6)",
}

// NewMySQLWriter connects with a go-sql-driver DSN such as
// user:pass@tcp(host:3306)/db. parseTime is enabled on the DSN.
func NewMySQLWriter(ctx context.Context, options SQLOptions) (*SQLWriter, error) {
	if options.DSN != "" {
		cfg, err := mysql.ParseDSN(options.DSN)
		if err != nil {
			return nil, err
		}
		cfg.ParseTime = true
		options.DSN = cfg.FormatDSN()
	}
	w, err := newSQLWriter(ctx, mysqlDialect, options)
	if err != nil {
		return nil, err
	}
	w.db.SetMaxOpenConns(4)
	return w, nil
}
