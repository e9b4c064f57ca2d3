// internal/scraper/client.go
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valpere/ProfileScrapexter/internal/browser"
	scrapeerrors "github.com/valpere/ProfileScrapexter/internal/errors"
	"github.com/valpere/ProfileScrapexter/internal/extract"
	"github.com/valpere/ProfileScrapexter/internal/utils"
)

// SessionOptions configures a PageSession.
type SessionOptions struct {
	BaseURL      string
	LinkSelector string
	// ScrollPause is waited after each scroll before links are read
	ScrollPause time.Duration
	// PostDelay is the minimum interval between post page loads
	PostDelay time.Duration
	Retry     *scrapeerrors.Service
	Logger    utils.Logger
}

// PageSession drives one browser tab through a profile run.
type PageSession struct {
	page         browser.Page
	baseURL      string
	linkSelector string
	scrollPause  time.Duration
	pacer        *utils.RateLimiter
	retry        *scrapeerrors.Service
	logger       utils.Logger
	release      func(browser.Page)
	discard      func(browser.Page)
	// broken is set once the page itself failed, as opposed to the site
	broken       bool
}

// NewPageSession wraps page. Closing the session closes the page.
func NewPageSession(page browser.Page, opts SessionOptions) *PageSession {
	if opts.Retry == nil {
		opts.Retry = scrapeerrors.NewService()
	}
	if opts.Logger == nil {
		opts.Logger = utils.NopLogger()
	}
	return &PageSession{
		page:         page,
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		linkSelector: opts.LinkSelector,
		scrollPause:  opts.ScrollPause,
		pacer:        utils.NewIntervalLimiter(opts.PostDelay),
		retry:        opts.Retry,
		logger:       opts.Logger,
		release:      func(p browser.Page) { p.Close() },
		discard:      func(p browser.Page) { p.Close() },
	}
}

// PooledSessionFactory opens sessions on pages borrowed from pool. Closing a
// session returns its page, or discards it when the browser failed under it.
func PooledSessionFactory(pool *browser.Pool, opts SessionOptions) SessionFactory {
	return func(ctx context.Context) (Session, error) {
		page, err := pool.Get(ctx)
		if err != nil {
			return nil, err
		}
		s := NewPageSession(page, opts)
		s.release = pool.Put
		s.discard = pool.Discard
		return s, nil
	}
}

// ProfileURL returns the profile address of username under baseURL.
func ProfileURL(baseURL, username string) string {
	return strings.TrimRight(baseURL, "/") + "/@" + url.PathEscape(strings.TrimPrefix(username, "@"))
}

// PostURL returns the address of one post.
func PostURL(baseURL, username, postID string) string {
	return ProfileURL(baseURL, username) + "/video/" + url.PathEscape(postID)
}

func (s *PageSession) LoadProfilePage(ctx context.Context, username string) (string, error) {
	target := ProfileURL(s.baseURL, username)
	s.logger.WithField("url", target).Info("loading profile page")

	html, err := s.load(ctx, target, "profile_load")
	if err != nil {
		return "", fmt.Errorf("%w: %v", extract.ErrProfileLoad, err)
	}
	return html, nil
}

func (s *PageSession) NextLinkBatch(ctx context.Context) ([]string, error) {
	if err := s.page.ScrollToBottom(ctx); err != nil {
		s.markBroken(ctx)
		return nil, err
	}
	if err := sleep(ctx, s.scrollPause); err != nil {
		return nil, err
	}
	html, err := s.page.GetHTML(ctx)
	if err != nil {
		s.markBroken(ctx)
		return nil, err
	}
	return ExtractLinks(html, s.linkSelector)
}

func (s *PageSession) LoadPostPage(ctx context.Context, username, postID string) (string, error) {
	if err := s.pacer.Wait(ctx); err != nil {
		return "", err
	}
	target := PostURL(s.baseURL, username, postID)
	s.logger.WithField("url", target).Debug("loading post page")

	html, err := s.load(ctx, target, "post_load")
	if err != nil {
		return "", fmt.Errorf("%w: %v", extract.ErrPostLoad, err)
	}
	return html, nil
}

// Broken reports whether the page failed and will not be reused.
func (s *PageSession) Broken() bool {
	return s.broken
}

// Close releases the underlying page.
func (s *PageSession) Close() error {
	if s.page == nil {
		return nil
	}
	if s.broken {
		s.logger.Warn("discarding failed browser page")
		s.discard(s.page)
	} else {
		s.release(s.page)
	}
	s.page = nil
	return nil
}

// markBroken flags the page after a browser call failed. Cancellation by the
// caller says nothing about the page.
func (s *PageSession) markBroken(ctx context.Context) {
	if ctx.Err() == nil {
		s.broken = true
	}
}

func (s *PageSession) load(ctx context.Context, target, operation string) (string, error) {
	var html string
	var browserErr error
	err := s.retry.ExecuteWithRetry(ctx, func() error {
		browserErr = nil
		if err := s.page.Navigate(ctx, target); err != nil {
			browserErr = err
			return err
		}
		h, err := s.page.GetHTML(ctx)
		if err != nil {
			browserErr = err
			return err
		}
		if strings.TrimSpace(h) == "" {
			return fmt.Errorf("empty page at %s", target)
		}
		html = h
		return nil
	}, operation)
	if err != nil && browserErr != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		s.markBroken(ctx)
	}
	return html, err
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
