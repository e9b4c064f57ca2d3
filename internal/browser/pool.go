// internal/browser/pool.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrPoolClosed is returned by Get after Close.
var ErrPoolClosed = errors.New("pool is closed")

// PageFactory opens a new Page.
type PageFactory func() (Page, error)

// ChromeFactory returns a PageFactory starting Chrome with config.
func ChromeFactory(config *BrowserConfig) PageFactory {
	return func() (Page, error) {
		return NewChromeClient(config)
	}
}

// Pool bounds the number of live pages and reuses idle ones.
// A page is used by one caller at a time.
type Pool struct {
	factory PageFactory
	idle    chan Page
	slots   chan struct{}
	mu      sync.Mutex
	closed  bool
}

// NewPool creates a pool of at most maxSize pages.
func NewPool(factory PageFactory, maxSize int) *Pool {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &Pool{
		factory: factory,
		idle:    make(chan Page, maxSize),
		slots:   make(chan struct{}, maxSize),
	}
}

// Get returns an idle page, opens a new one while under the limit, or waits.
func (p *Pool) Get(ctx context.Context) (Page, error) {
	if p.isClosed() {
		return nil, ErrPoolClosed
	}

	select {
	case page := <-p.idle:
		return page, nil
	default:
	}

	select {
	case page := <-p.idle:
		return page, nil
	case p.slots <- struct{}{}:
		page, err := p.factory()
		if err != nil {
			<-p.slots
			return nil, fmt.Errorf("failed to create browser: %w", err)
		}
		return page, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Put returns a healthy page to the pool.
func (p *Pool) Put(page Page) {
	if page == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		page.Close()
		<-p.slots
		return
	}
	p.idle <- page
}

// Discard closes a broken page and frees its slot.
func (p *Pool) Discard(page Page) {
	if page != nil {
		page.Close()
	}
	<-p.slots
}

// Size returns the number of live pages, idle or in use.
func (p *Pool) Size() int {
	return len(p.slots)
}

// Close closes idle pages; pages in use are closed when they are returned.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	for {
		select {
		case page := <-p.idle:
			page.Close()
			<-p.slots
		default:
			return nil
		}
	}
}

// Ping reports ErrPoolClosed once the pool is closed.
func (p *Pool) Ping(context.Context) error {
	if p.isClosed() {
		return ErrPoolClosed
	}
	return nil
}

func (p *Pool) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
