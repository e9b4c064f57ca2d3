// internal/output/sqlite.go
package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

var sqliteDialect = sqlDialect{
	name:        "sqlite",
	driver:      "sqlite3",
	maxIdentLen: MaxSQLiteIdentifierLength,
	quote:       doubleQuote,
	placeholder: questionMark,
	keyType:     "TEXT",
	textType:    "TEXT",
	intType:     "INTEGER",
	boolType:    "BOOLEAN",
	timeType:    "DATETIME",
}

// NewSQLiteWriter opens or creates the database file at path. Missing tables
// are always created.
func NewSQLiteWriter(ctx context.Context, path string, options SQLOptions) (*SQLWriter, error) {
	if path == "" {
		return nil, fmt.Errorf("SQLite database path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	options.DSN = path + "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"
	options.CreateTable = true

	w, err := newSQLWriter(ctx, sqliteDialect, options)
	if err != nil {
		return nil, err
	}
	w.db.SetMaxOpenConns(1)
	return w, nil
}
