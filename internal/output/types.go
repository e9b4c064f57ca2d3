// internal/output/types.go
package output

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/valpere/ProfileScrapexter/internal/extract"
)

// OutputFormat represents supported output formats
type OutputFormat string

const (
	FormatJSON       OutputFormat = "json"
	FormatYAML       OutputFormat = "yaml"
	FormatCSV        OutputFormat = "csv"
	FormatExcel      OutputFormat = "excel"
	FormatSQLite     OutputFormat = "sqlite"
	FormatPostgreSQL OutputFormat = "postgresql"
	FormatMySQL      OutputFormat = "mysql"
	FormatMongoDB    OutputFormat = "mongodb"
)

// ValidOutputFormats returns all valid output format values
func ValidOutputFormats() []OutputFormat {
	return []OutputFormat{FormatJSON, FormatYAML, FormatCSV, FormatExcel, FormatSQLite, FormatPostgreSQL, FormatMySQL, FormatMongoDB}
}

// IsValid checks if the output format is valid
func (of OutputFormat) IsValid() bool {
	for _, valid := range ValidOutputFormats() {
		if of == valid {
			return true
		}
	}
	return false
}

// GetFileExtension returns the appropriate file extension for the format
func (of OutputFormat) GetFileExtension() string {
	switch of {
	case FormatJSON:
		return ".json"
	case FormatYAML:
		return ".yaml"
	case FormatCSV:
		return ".csv"
	case FormatExcel:
		return ".xlsx"
	case FormatSQLite:
		return ".db"
	default:
		return ""
	}
}

// Run is one finished profile run as handed to a Writer.
type Run struct {
	ID        string
	Username  string
	ScrapedAt time.Time
	Result    *extract.AggregateResult
}

// Writer persists runs. Writers are not safe for concurrent use unless
// documented otherwise.
type Writer interface {
	Write(ctx context.Context, run Run) error
	Close() error
}

// SQL identifier validation
var (
	// SQL identifier regex: starts with letter or underscore, contains letters, digits, underscores
	sqlIdentifierRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

	// Reserved words shared by the supported SQL dialects that could collide with table names
	reservedWords = map[string]bool{
		"ALL": true, "ALTER": true, "AND": true, "AS": true, "ASC": true, "BETWEEN": true, "BY": true,
		"CASE": true, "CHECK": true, "COLUMN": true, "CONSTRAINT": true, "CREATE": true, "CROSS": true,
		"DEFAULT": true, "DELETE": true, "DESC": true, "DISTINCT": true, "DROP": true, "ELSE": true,
		"EXISTS": true, "FOREIGN": true, "FROM": true, "GROUP": true, "HAVING": true, "IN": true,
		"INDEX": true, "INNER": true, "INSERT": true, "INTO": true, "IS": true, "JOIN": true, "KEY": true,
		"LEFT": true, "LIKE": true, "LIMIT": true, "NOT": true, "NULL": true, "ON": true, "OR": true,
		"ORDER": true, "PRIMARY": true, "REFERENCES": true, "RIGHT": true, "SELECT": true, "SET": true,
		"TABLE": true, "THEN": true, "TO": true, "UNION": true, "UNIQUE": true, "UPDATE": true,
		"USER": true, "USING": true, "VALUES": true, "WHEN": true, "WHERE": true, "WITH": true,
	}
)

// Database-specific identifier limits
const (
	MaxPostgreSQLIdentifierLength = 63
	MaxMySQLIdentifierLength      = 64
	MaxSQLiteIdentifierLength     = 999
)

// ValidateSQLIdentifier checks that identifier is safe to splice into SQL
// for a dialect with the given length limit.
func ValidateSQLIdentifier(identifier string, maxLen int) error {
	if identifier == "" {
		return fmt.Errorf("identifier cannot be empty")
	}
	if len(identifier) > maxLen {
		return fmt.Errorf("identifier too long (max %d characters): %s", maxLen, identifier)
	}
	if !sqlIdentifierRegex.MatchString(identifier) {
		return fmt.Errorf("invalid identifier format: %s", identifier)
	}
	if reservedWords[strings.ToUpper(identifier)] {
		return fmt.Errorf("identifier is a reserved SQL keyword: %s", identifier)
	}
	return nil
}
