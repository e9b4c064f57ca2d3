// internal/browser/chromedp.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/device"
)

// ChromeClient implements Page using chromedp
type ChromeClient struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	config      *BrowserConfig

	navigationSuccess bool
	stats             BrowserStats
	mu                sync.Mutex
}

// NewChromeClient starts a Chrome process and opens one tab in it.
func NewChromeClient(config *BrowserConfig) (*ChromeClient, error) {
	if config == nil {
		config = DefaultBrowserConfig()
	}

	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.DisableGPU,
		chromedp.NoSandbox, // Required for Docker environments
	}
	if config.Headless {
		opts = append(opts, chromedp.Headless)
	}
	if config.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(config.ExecPath))
	}
	if config.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(config.UserAgent))
	}
	if config.DisableImages {
		opts = append(opts, chromedp.Flag("blink-settings", "imagesEnabled=false"))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, cancel := chromedp.NewContext(allocCtx)

	client := &ChromeClient{
		ctx:         ctx,
		cancel:      cancel,
		allocCancel: allocCancel,
		config:      config,
	}

	if err := client.initialize(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize browser: %w", err)
	}

	return client, nil
}

// initialize starts the browser and sets the viewport. The first Run on a
// chromedp context allocates the browser, so it must not carry a timeout.
func (c *ChromeClient) initialize() error {
	tasks := []chromedp.Action{
		chromedp.EmulateViewport(int64(c.config.ViewportWidth), int64(c.config.ViewportHeight)),
	}
	if c.config.ViewportWidth > 0 && c.config.ViewportWidth < 768 {
		tasks = append(tasks, chromedp.Emulate(device.IPhone8))
	}

	return chromedp.Run(c.ctx, tasks...)
}

// opContext derives a chromedp context bounded by the configured timeout and
// cancelled together with the caller's ctx.
func (c *ChromeClient) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	opCtx, cancel := context.WithTimeout(c.ctx, c.config.Timeout)
	stop := context.AfterFunc(ctx, cancel)
	return opCtx, func() {
		stop()
		cancel()
	}
}

// Navigate navigates to a URL and waits for page load
func (c *ChromeClient) Navigate(ctx context.Context, url string) error {
	start := time.Now()

	tasks := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	}
	if c.config.WaitForElement != "" && c.config.WaitForElement != "body" {
		tasks = append(tasks, chromedp.WaitVisible(c.config.WaitForElement))
	}
	if c.config.WaitDelay > 0 {
		tasks = append(tasks, chromedp.Sleep(c.config.WaitDelay))
	}

	opCtx, cancel := c.opContext(ctx)
	defer cancel()
	err := chromedp.Run(opCtx, tasks...)
	loadTime := time.Since(start)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.stats.Errors++
		if errors.Is(err, context.DeadlineExceeded) {
			c.stats.TimeoutsOccurred++
		}
		c.navigationSuccess = false
		return fmt.Errorf("navigation failed: %w", err)
	}

	c.navigationSuccess = true
	c.stats.PagesLoaded++
	if c.stats.PagesLoaded == 1 {
		c.stats.AverageLoadTime = loadTime
	} else {
		c.stats.AverageLoadTime = (c.stats.AverageLoadTime + loadTime) / 2
	}
	return nil
}

// GetHTML returns the current page HTML
func (c *ChromeClient) GetHTML(ctx context.Context) (string, error) {
	c.mu.Lock()
	navSuccess := c.navigationSuccess
	c.mu.Unlock()
	if !navSuccess {
		return "", fmt.Errorf("cannot extract HTML: navigation has not completed successfully")
	}

	opCtx, cancel := c.opContext(ctx)
	defer cancel()

	var html string
	if err := chromedp.Run(opCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		c.mu.Lock()
		c.stats.Errors++
		c.mu.Unlock()
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}
	return html, nil
}

// ScrollToBottom scrolls the document once so lazily loaded links render.
func (c *ChromeClient) ScrollToBottom(ctx context.Context) error {
	opCtx, cancel := c.opContext(ctx)
	defer cancel()

	var height float64
	script := `window.scrollTo(0, document.body.scrollHeight); document.body.scrollHeight`
	if err := chromedp.Run(opCtx, chromedp.Evaluate(script, &height)); err != nil {
		return fmt.Errorf("scroll failed: %w", err)
	}
	return nil
}

// GetStats returns a snapshot of browser statistics
func (c *ChromeClient) GetStats() BrowserStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Close closes the tab and stops the browser process
func (c *ChromeClient) Close() error {
	if c.cancel != nil {
		c.cancel()
	}
	if c.allocCancel != nil {
		c.allocCancel()
	}
	return nil
}
