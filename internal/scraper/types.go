// internal/scraper/types.go
package scraper

import (
	"context"
	"time"

	"github.com/valpere/ProfileScrapexter/internal/extract"
)

// Session acquires raw page snapshots for one profile run. Implementations
// are used by a single goroutine.
type Session interface {
	// LoadProfilePage opens the profile and returns its HTML
	LoadProfilePage(ctx context.Context, username string) (string, error)

	// NextLinkBatch scrolls the profile once and returns every post link now visible
	NextLinkBatch(ctx context.Context) ([]string, error)

	// LoadPostPage opens one post and returns its HTML
	LoadPostPage(ctx context.Context, username, postID string) (string, error)

	Close() error
}

// SessionFactory opens a new Session.
type SessionFactory func(ctx context.Context) (Session, error)

// RunStats summarizes one ScrapeProfile call.
type RunStats struct {
	Username     string        `json:"username"`
	PostsFound   int           `json:"posts_found"`
	PostsFailed  int           `json:"posts_failed"`
	LinkBatches  int           `json:"link_batches"`
	Duration     time.Duration `json:"duration"`
	ProfileError bool          `json:"profile_error"`
}

// RunHook observes finished runs.
type RunHook func(result *extract.AggregateResult, stats RunStats)
