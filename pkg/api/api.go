// pkg/api/api.go
package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/valpere/ProfileScrapexter/internal/browser"
	"github.com/valpere/ProfileScrapexter/internal/config"
	"github.com/valpere/ProfileScrapexter/internal/extract"
	"github.com/valpere/ProfileScrapexter/internal/scraper"
	"github.com/valpere/ProfileScrapexter/internal/utils"
)

// Client extracts profiles with a private browser pool, or with the sessions
// supplied through WithSessions.
type Client struct {
	config  *ScraperConfig
	engine  *extract.Engine
	scraper *scraper.Scraper
	logger  Logger
	closeFn func() error
}

// Option customizes a Client.
type Option func(*clientOptions)

type clientOptions struct {
	logger    Logger
	trace     TraceFunc
	sessions SessionFactory
	poolSize int
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(logger Logger) Option {
	return func(o *clientOptions) { o.logger = logger }
}

// WithTrace observes every field resolution.
func WithTrace(trace TraceFunc) Option {
	return func(o *clientOptions) { o.trace = trace }
}

// WithSessions replaces the browser with another page source.
func WithSessions(sessions SessionFactory) Option {
	return func(o *clientOptions) { o.sessions = sessions }
}

// WithPoolSize bounds the number of concurrent browser pages.
func WithPoolSize(n int) Option {
	return func(o *clientOptions) { o.poolSize = n }
}

// NewClient creates a client for cfg. A nil cfg means DefaultConfig().
func NewClient(cfg *ScraperConfig, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := clientOptions{poolSize: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = utils.NopLogger()
	}

	c := &Client{
		config:  cfg,
		engine:  scraper.NewEngineFromConfig(cfg, o.trace, o.logger),
		logger:  o.logger,
		closeFn: func() error { return nil },
	}

	sessions := o.sessions
	if sessions == nil {
		pool := browser.NewPool(browser.ChromeFactory(browser.FromConfig(cfg.Browser)), o.poolSize)
		sessions = scraper.PooledSessionFactory(pool, scraper.SessionOptionsFromConfig(cfg, o.logger))
		c.closeFn = pool.Close
	}

	c.scraper = scraper.New(scraper.Options{
		Sessions:     sessions,
		Engine:       c.engine,
		LinkSelector: cfg.Selectors.PostLink,
		MaxScrolls:   cfg.Target.MaxScrolls,
		Logger:       o.logger,
	})
	return c, nil
}

// Scrape extracts username and up to maxPosts of its recent posts. Invalid
// arguments are errors; everything else, including a profile that cannot be
// loaded, is reported in the returned result.
func (c *Client) Scrape(ctx context.Context, username string, maxPosts int) (*AggregateResult, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return nil, errors.New("username is required")
	}
	if maxPosts == 0 {
		maxPosts = c.config.Target.MaxPosts
	}
	if maxPosts < 1 || maxPosts > config.MaxPostsLimit {
		return nil, fmt.Errorf("max posts must be between 1 and %d", config.MaxPostsLimit)
	}
	return c.scraper.ScrapeProfile(ctx, username, maxPosts), nil
}

// ScrapePost extracts one post of username. post is a bare id or a post link.
// A post page that cannot be loaded is reported on the returned record.
func (c *Client) ScrapePost(ctx context.Context, username, post string) (*PostRecord, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return nil, errors.New("username is required")
	}
	rec, err := c.scraper.ScrapePost(ctx, username, post)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Aggregate builds a result from pages captured elsewhere. Posts are used in
// order and the first blob of a repeated id wins. At most maxPosts are kept;
// zero keeps all.
func (c *Client) Aggregate(ctx context.Context, username, profileHTML string, posts []PostBlob, maxPosts int) *AggregateResult {
	byID := make(map[string]PostBlob, len(posts))
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		if _, seen := byID[p.PostID]; !seen {
			byID[p.PostID] = p
			ids = append(ids, p.PostID)
		}
	}

	return c.engine.Aggregate(ctx, extract.AggregateRequest{
		Username:    username,
		ProfileBlob: profileHTML,
		PostIDs:     ids,
		MaxPosts:    maxPosts,
		FetchPost: func(_ context.Context, postID string) (string, error) {
			p := byID[postID]
			return p.HTML, p.Err
		},
	})
}

// Close releases the browser pool.
func (c *Client) Close() error {
	return c.closeFn()
}
