// internal/scraper/engine.go
package scraper

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/valpere/ProfileScrapexter/internal/config"
	scrapeerrors "github.com/valpere/ProfileScrapexter/internal/errors"
	"github.com/valpere/ProfileScrapexter/internal/extract"
	"github.com/valpere/ProfileScrapexter/internal/utils"
)

// Options configures a Scraper.
type Options struct {
	Sessions     SessionFactory
	Engine       *extract.Engine
	LinkSelector string
	MaxScrolls   int
	Logger       utils.Logger
	OnRun        RunHook
}

// Scraper runs the profile workflow: load the profile, collect post ids by
// scrolling, then aggregate profile and posts through the extraction engine.
type Scraper struct {
	sessions     SessionFactory
	engine       atomic.Pointer[extract.Engine]
	linkSelector atomic.Pointer[string]
	maxScrolls   int
	logger       utils.Logger
	onRun        RunHook
}

// New creates a Scraper. Sessions is required.
func New(opts Options) *Scraper {
	if opts.Logger == nil {
		opts.Logger = utils.NopLogger()
	}
	if opts.Engine == nil {
		opts.Engine = extract.NewEngine(&extract.Config{Logger: opts.Logger})
	}
	if opts.LinkSelector == "" {
		opts.LinkSelector = config.DefaultSelectors().PostLink
	}
	s := &Scraper{
		sessions:   opts.Sessions,
		maxScrolls: opts.MaxScrolls,
		logger:     opts.Logger,
		onRun:      opts.OnRun,
	}
	s.engine.Store(opts.Engine)
	s.linkSelector.Store(&opts.LinkSelector)
	return s
}

// NewEngineFromConfig builds an extraction engine observing the DOM with the
// configured selectors.
func NewEngineFromConfig(cfg *config.ScraperConfig, trace extract.TraceFunc, logger utils.Logger) *extract.Engine {
	return extract.NewEngine(&extract.Config{
		Observer:            NewDOMObserver(cfg.Selectors),
		Trace:               trace,
		IDTimestampFallback: cfg.Extraction.IDTimestampFallback,
		Logger:              logger,
	})
}

// SessionOptionsFromConfig derives page session settings from cfg.
func SessionOptionsFromConfig(cfg *config.ScraperConfig, logger utils.Logger) SessionOptions {
	retry := scrapeerrors.NewServiceWithConfig(scrapeerrors.RetryConfig{
		MaxRetries:    cfg.Request.RetryAttempts,
		BaseDelay:     cfg.Request.RetryDelay,
		BackoffFactor: 2,
	})
	return SessionOptions{
		BaseURL:      cfg.Target.BaseURL,
		LinkSelector: cfg.Selectors.PostLink,
		ScrollPause:  cfg.Browser.ScrollPause,
		PostDelay:    cfg.Request.PostDelay,
		Retry:        retry,
		Logger:       logger,
	}
}

// Reconfigure swaps the engine and link selector used by later runs.
// Runs in progress keep what they started with.
func (s *Scraper) Reconfigure(engine *extract.Engine, linkSelector string) {
	if engine != nil {
		s.engine.Store(engine)
	}
	if linkSelector != "" {
		s.linkSelector.Store(&linkSelector)
	}
}

// ApplyConfig rebuilds the engine from the selectors and extraction settings
// of cfg, as after a config reload.
func (s *Scraper) ApplyConfig(cfg *config.ScraperConfig, trace extract.TraceFunc) {
	s.Reconfigure(NewEngineFromConfig(cfg, trace, s.logger), cfg.Selectors.PostLink)
}

// ScrapeProfile collects up to maxPosts posts of username. The result is
// never nil; a profile that cannot be opened yields an error-only result.
func (s *Scraper) ScrapeProfile(ctx context.Context, username string, maxPosts int) *extract.AggregateResult {
	start := time.Now()
	engine := s.engine.Load()
	linkSelector := *s.linkSelector.Load()
	log := s.logger.WithField("username", username)
	stats := RunStats{Username: username}

	finish := func(result *extract.AggregateResult) *extract.AggregateResult {
		stats.Duration = time.Since(start)
		stats.ProfileError = result.Failed()
		stats.PostsFound = len(result.Posts)
		for _, p := range result.Posts {
			if p.Failed() {
				stats.PostsFailed++
			}
		}
		if s.onRun != nil {
			s.onRun(result, stats)
		}
		log.WithFields(map[string]interface{}{
			"posts":    stats.PostsFound,
			"failed":   stats.PostsFailed,
			"duration": stats.Duration.String(),
		}).Info("profile run finished")
		return result
	}

	session, err := s.sessions(ctx)
	if err != nil {
		return finish(engine.Aggregate(ctx, extract.AggregateRequest{
			Username:   username,
			ProfileErr: fmt.Errorf("%w: %v", extract.ErrProfileLoad, err),
		}))
	}
	defer session.Close()

	profileHTML, err := session.LoadProfilePage(ctx, username)
	if err != nil {
		return finish(engine.Aggregate(ctx, extract.AggregateRequest{Username: username, ProfileErr: err}))
	}

	first, err := ExtractLinks(profileHTML, linkSelector)
	if err != nil {
		log.Warnf("reading post links: %v", err)
	}
	batches := LinkBatches(ctx, session, first, s.maxScrolls, log)
	counted := func(yield func([]string) bool) {
		for b := range batches {
			stats.LinkBatches++
			if !yield(b) {
				return
			}
		}
	}
	ids := extract.CollectPostIDs(counted, maxPosts)
	log.Infof("collected %d post ids in %d batches", len(ids), stats.LinkBatches)

	return finish(engine.Aggregate(ctx, extract.AggregateRequest{
		Username:    username,
		ProfileBlob: profileHTML,
		PostIDs:     ids,
		MaxPosts:    maxPosts,
		FetchPost: func(ctx context.Context, postID string) (string, error) {
			return session.LoadPostPage(ctx, username, postID)
		},
	}))
}

// ScrapePost resolves a single post of username. post is a bare id or a post
// link. Only an unusable reference is an error; a page that cannot be loaded
// is recorded on the returned post.
func (s *Scraper) ScrapePost(ctx context.Context, username, post string) (extract.PostRecord, error) {
	id, ok := extract.PostIDFromCandidate(post)
	if !ok {
		return extract.PostRecord{}, fmt.Errorf("invalid post id or link %q", post)
	}
	engine := s.engine.Load()
	log := s.logger.WithFields(map[string]interface{}{"username": username, "post_id": id})

	session, err := s.sessions(ctx)
	if err != nil {
		log.Warnf("no page session: %v", err)
		return engine.BuildPost(id, "", fmt.Errorf("%w: %v", extract.ErrPostLoad, err)), nil
	}
	defer session.Close()

	html, err := session.LoadPostPage(ctx, username, id)
	rec := engine.BuildPost(id, html, err)
	log.WithField("failed", rec.Failed()).Info("post run finished")
	return rec, nil
}
