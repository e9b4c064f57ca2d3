// internal/output/database.go
package output

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/valpere/ProfileScrapexter/internal/utils"
)

// sqlDialect captures what differs between the supported SQL databases.
type sqlDialect struct {
	name        string
	driver      string
	maxIdentLen int
	quote       func(string) string
	placeholder func(n int) string

	keyType  string
	textType string
	intType  string
	boolType string
	timeType string
}

// SQLOptions configures a SQLWriter.
type SQLOptions struct {
	DSN         string
	TablePrefix string
	CreateTable bool
	Logger      utils.Logger
}

// SQLWriter stores runs in three tables: runs, profiles and posts. All rows
// of one run are written in a single transaction.
type SQLWriter struct {
	db      *sql.DB
	dialect sqlDialect
	tables  struct{ runs, profiles, posts string }
	logger  utils.Logger
}

func newSQLWriter(ctx context.Context, d sqlDialect, options SQLOptions) (*SQLWriter, error) {
	if options.DSN == "" {
		return nil, fmt.Errorf("%s connection string is required", d.name)
	}
	if options.Logger == nil {
		options.Logger = utils.NopLogger()
	}

	w := &SQLWriter{dialect: d, logger: options.Logger.WithField("sink", d.name)}
	for _, t := range []struct {
		dst  *string
		base string
	}{
		{&w.tables.runs, "runs"},
		{&w.tables.profiles, "profiles"},
		{&w.tables.posts, "posts"},
	} {
		name := options.TablePrefix + t.base
		if err := ValidateSQLIdentifier(name, d.maxIdentLen); err != nil {
			return nil, fmt.Errorf("invalid table name: %w", err)
		}
		*t.dst = name
	}

	db, err := sql.Open(d.driver, options.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", d.name, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", d.name, err)
	}
	w.db = db

	if options.CreateTable {
		if err := w.createTables(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *SQLWriter) createTables(ctx context.Context) error {
	d := w.dialect
	q := d.quote
	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s %s PRIMARY KEY,
	%s %s NOT NULL,
	%s %s NOT NULL,
	%s %s
)`, q(w.tables.runs),
			q("run_id"), d.keyType,
			q("username"), d.keyType,
			q("scraped_at"), d.timeType,
			q("error"), d.textType),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s %s PRIMARY KEY,
	%s %s NOT NULL,
	%s %s,
	%s %s,
	%s %s,
	%s %s,
	%s %s
)`, q(w.tables.profiles),
			q("run_id"), d.keyType,
			q("username"), d.keyType,
			q("bio"), d.textType,
			q("followers"), d.intType,
			q("following"), d.intType,
			q("likes"), d.intType,
			q("verified"), d.boolType),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s %s NOT NULL,
	%s %s NOT NULL,
	%s %s NOT NULL,
	%s %s,
	%s %s,
	%s %s,
	%s %s,
	%s %s,
	%s %s,
	%s %s,
	%s %s,
	PRIMARY KEY (%s, %s)
)`, q(w.tables.posts),
			q("run_id"), d.keyType,
			q("position"), d.intType,
			q("post_id"), d.keyType,
			q("likes"), d.intType,
			q("comments"), d.intType,
			q("shares"), d.intType,
			q("views"), d.intType,
			q("description"), d.textType,
			q("hashtags"), d.textType,
			q("timestamp"), d.intType,
			q("error"), d.textType,
			q("run_id"), q("position")),
	}
	for _, stmt := range statements {
		if _, err := w.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create %s table: %w", w.dialect.name, err)
		}
	}
	return nil
}

// Write inserts the run, its profile and its posts.
func (w *SQLWriter) Write(ctx context.Context, run Run) error {
	start := time.Now()
	profile, posts := Flatten(run)

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, w.insert(w.tables.runs, "run_id", "username", "scraped_at", "error"),
		profile.RunID, profile.Username, profile.ScrapedAt, nullString(profile.Error)); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	if profile.Error == "" {
		if _, err := tx.ExecContext(ctx,
			w.insert(w.tables.profiles, "run_id", "username", "bio", "followers", "following", "likes", "verified"),
			profile.RunID, profile.Username, nullable(profile.Bio), nullable(profile.Followers),
			nullable(profile.Following), nullable(profile.Likes), nullable(profile.Verified)); err != nil {
			return fmt.Errorf("failed to insert profile: %w", err)
		}
	}

	if len(posts) > 0 {
		stmt, err := tx.PrepareContext(ctx, w.insert(w.tables.posts,
			"run_id", "position", "post_id", "likes", "comments", "shares", "views",
			"description", "hashtags", "timestamp", "error"))
		if err != nil {
			return fmt.Errorf("failed to prepare post insert: %w", err)
		}
		defer stmt.Close()

		for _, p := range posts {
			if _, err := stmt.ExecContext(ctx,
				p.RunID, p.Position, p.PostID, nullable(p.Likes), nullable(p.Comments),
				nullable(p.Shares), nullable(p.Views), nullable(p.Description),
				hashtagCell(p.Hashtags), nullable(p.Timestamp), nullString(p.Error)); err != nil {
				return fmt.Errorf("failed to insert post %s: %w", p.PostID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	w.logger.WithFields(map[string]interface{}{
		"run_id":   profile.RunID,
		"posts":    len(posts),
		"duration": time.Since(start).String(),
	}).Debug("run stored")
	return nil
}

// Close closes the database handle.
func (w *SQLWriter) Close() error {
	if w.db == nil {
		return nil
	}
	err := w.db.Close()
	w.db = nil
	return err
}

func (w *SQLWriter) insert(table string, columns ...string) string {
	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = w.dialect.quote(c)
		placeholders[i] = w.dialect.placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		w.dialect.quote(table), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func questionMark(int) string { return "?" }

func doubleQuote(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}
