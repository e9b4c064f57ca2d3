// internal/output/manager.go
package output

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/valpere/ProfileScrapexter/internal/config"
	"github.com/valpere/ProfileScrapexter/internal/extract"
	"github.com/valpere/ProfileScrapexter/internal/utils"
)

// Manager stamps results as runs and hands them to the configured sink.
type Manager struct {
	format OutputFormat
	writer Writer
	now    func() time.Time
	logger utils.Logger
	// OnWrite, when set, observes every write
	OnWrite func(format string, err error)
}

// NewManager opens the sink named by cfg.
func NewManager(ctx context.Context, cfg *config.OutputConfig, logger utils.Logger) (*Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("output configuration is required")
	}
	if logger == nil {
		logger = utils.NopLogger()
	}
	format := OutputFormat(cfg.Format)
	if format == "" {
		format = FormatJSON
	}
	writer, err := NewWriter(ctx, format, cfg, logger)
	if err != nil {
		return nil, err
	}
	return NewManagerWithWriter(format, writer, logger), nil
}

// NewManagerWithWriter wraps an already open writer.
func NewManagerWithWriter(format OutputFormat, writer Writer, logger utils.Logger) *Manager {
	if logger == nil {
		logger = utils.NopLogger()
	}
	return &Manager{format: format, writer: writer, now: time.Now, logger: logger}
}

// NewWriter returns the writer for format.
func NewWriter(ctx context.Context, format OutputFormat, cfg *config.OutputConfig, logger utils.Logger) (Writer, error) {
	db := cfg.Database
	if db == nil {
		db = &config.DatabaseConfig{}
	}
	sqlOptions := SQLOptions{DSN: db.URL, TablePrefix: db.TablePrefix, CreateTable: db.CreateTable, Logger: logger}

	switch format {
	case FormatJSON:
		return NewJSONWriter(cfg.File)
	case FormatYAML:
		return NewYAMLWriter(cfg.File)
	case FormatCSV:
		return NewCSVWriter(cfg.File)
	case FormatExcel:
		return NewExcelWriter(cfg.File)
	case FormatSQLite:
		return NewSQLiteWriter(ctx, cfg.File, sqlOptions)
	case FormatPostgreSQL:
		return NewPostgreSQLWriter(ctx, sqlOptions)
	case FormatMySQL:
		return NewMySQLWriter(ctx, sqlOptions)
	case FormatMongoDB:
		return NewMongoDBWriter(ctx, MongoDBOptions{
			URI:        db.URL,
			Database:   db.Database,
			Collection: db.Collection,
			Logger:     logger,
		})
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// Write stamps result with a fresh run id and writes it.
func (m *Manager) Write(ctx context.Context, username string, result *extract.AggregateResult) (Run, error) {
	run := Run{
		ID:        uuid.NewString(),
		Username:  username,
		ScrapedAt: m.now(),
		Result:    result,
	}
	err := m.writer.Write(ctx, run)
	if m.OnWrite != nil {
		m.OnWrite(string(m.format), err)
	}
	if err != nil {
		return run, fmt.Errorf("failed to write %s output: %w", m.format, err)
	}
	m.logger.WithFields(map[string]interface{}{"run_id": run.ID, "format": m.format}).Info("results written")
	return run, nil
}

// Close closes the underlying writer.
func (m *Manager) Close() error {
	return m.writer.Close()
}
