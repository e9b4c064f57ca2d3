// internal/output/csv.go
package output

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// CSVHeader lists the columns written by CSVWriter. Profile rows leave the
// post columns empty and post rows leave the profile columns empty.
var CSVHeader = []string{
	"run_id", "scraped_at", "record_type", "username",
	"bio", "followers", "following", "verified",
	"position", "post_id", "likes", "comments", "shares", "views",
	"description", "hashtags", "timestamp", "error",
}

// CSVWriter writes runs as flat CSV rows
type CSVWriter struct {
	closer        io.Closer
	writer        *csv.Writer
	headerWritten bool
}

// NewCSVWriter creates a CSV writer on filename; "" or "-" is stdout.
func NewCSVWriter(filename string) (*CSVWriter, error) {
	out, closer, err := openTarget(filename)
	if err != nil {
		return nil, err
	}
	w := NewCSVStreamWriter(out)
	w.closer = closer
	return w, nil
}

// NewCSVStreamWriter creates a CSV writer on out.
func NewCSVStreamWriter(out io.Writer) *CSVWriter {
	return &CSVWriter{writer: csv.NewWriter(out)}
}

// Write writes one profile row followed by one row per post
func (w *CSVWriter) Write(_ context.Context, run Run) error {
	if !w.headerWritten {
		if err := w.writer.Write(CSVHeader); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		w.headerWritten = true
	}

	profile, posts := Flatten(run)
	scrapedAt := profile.ScrapedAt.Format(time.RFC3339)
	records := [][]string{{
		profile.RunID, scrapedAt, "profile", profile.Username,
		textCell(profile.Bio), intCell(profile.Followers), intCell(profile.Following), boolCell(profile.Verified),
		"", "", intCell(profile.Likes), "", "", "",
		"", "", "", profile.Error,
	}}
	for _, p := range posts {
		records = append(records, []string{
			p.RunID, scrapedAt, "post", profile.Username,
			"", "", "", "",
			fmt.Sprint(p.Position), p.PostID, intCell(p.Likes), intCell(p.Comments), intCell(p.Shares), intCell(p.Views),
			textCell(p.Description), hashtagCell(p.Hashtags), intCell(p.Timestamp), p.Error,
		})
	}
	if err := w.writer.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

// Close flushes and closes the CSV writer
func (w *CSVWriter) Close() error {
	w.writer.Flush()
	err := w.writer.Error()
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
		w.closer = nil
	}
	return err
}
