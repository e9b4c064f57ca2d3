// internal/browser/types.go
package browser

import (
	"context"
	"time"

	"github.com/valpere/ProfileScrapexter/internal/config"
)

// BrowserConfig defines browser automation configuration
type BrowserConfig struct {
	Headless       bool          `yaml:"headless" json:"headless"`
	ExecPath       string        `yaml:"exec_path,omitempty" json:"exec_path,omitempty"`
	Timeout        time.Duration `yaml:"timeout" json:"timeout"`
	ViewportWidth  int           `yaml:"viewport_width" json:"viewport_width"`
	ViewportHeight int           `yaml:"viewport_height" json:"viewport_height"`
	WaitForElement string        `yaml:"wait_for_element,omitempty" json:"wait_for_element,omitempty"`
	WaitDelay      time.Duration `yaml:"wait_delay,omitempty" json:"wait_delay,omitempty"`
	UserAgent      string        `yaml:"user_agent,omitempty" json:"user_agent,omitempty"`
	DisableImages  bool          `yaml:"disable_images" json:"disable_images"`
}

// DefaultBrowserConfig returns default browser configuration
func DefaultBrowserConfig() *BrowserConfig {
	return &BrowserConfig{
		Headless:       true,
		Timeout:        30 * time.Second,
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		WaitForElement: "body",
		WaitDelay:      2 * time.Second,
	}
}

// FromConfig converts the browser section of a scraper configuration.
func FromConfig(bc config.BrowserConfig) *BrowserConfig {
	c := DefaultBrowserConfig()
	c.Headless = !bc.ShowBrowser
	c.ExecPath = bc.ChromePath
	c.UserAgent = bc.UserAgent
	c.DisableImages = bc.DisableImages
	if bc.Timeout > 0 {
		c.Timeout = bc.Timeout
	}
	if bc.ViewportWidth > 0 {
		c.ViewportWidth = bc.ViewportWidth
	}
	if bc.ViewportHeight > 0 {
		c.ViewportHeight = bc.ViewportHeight
	}
	if bc.WaitForElement != "" {
		c.WaitForElement = bc.WaitForElement
	}
	if bc.WaitDelay > 0 {
		c.WaitDelay = bc.WaitDelay
	}
	return c
}

// Page is one navigable browser tab.
type Page interface {
	// Navigate loads url and waits until the page is ready
	Navigate(ctx context.Context, url string) error

	// GetHTML returns the current page HTML
	GetHTML(ctx context.Context) (string, error)

	// ScrollToBottom scrolls once to the end of the document
	ScrollToBottom(ctx context.Context) error

	// Close releases the tab and its browser process
	Close() error
}

// BrowserStats contains browser automation statistics
type BrowserStats struct {
	PagesLoaded      int           `json:"pages_loaded"`
	AverageLoadTime  time.Duration `json:"average_load_time"`
	Errors           int           `json:"errors"`
	TimeoutsOccurred int           `json:"timeouts_occurred"`
}
