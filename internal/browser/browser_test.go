// internal/browser/browser_test.go
package browser

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/ProfileScrapexter/internal/config"
)

func TestDefaultBrowserConfig(t *testing.T) {
	c := DefaultBrowserConfig()

	assert.True(t, c.Headless)
	assert.Equal(t, 1920, c.ViewportWidth)
	assert.Equal(t, 1080, c.ViewportHeight)
	assert.Equal(t, 30*time.Second, c.Timeout)
}

func TestFromConfig(t *testing.T) {
	c := FromConfig(config.BrowserConfig{
		ShowBrowser:   true,
		Timeout:       10 * time.Second,
		ViewportWidth: 800,
		UserAgent:     "agent",
		ChromePath:    "/usr/bin/chromium",
	})

	assert.False(t, c.Headless)
	assert.Equal(t, 10*time.Second, c.Timeout)
	assert.Equal(t, 800, c.ViewportWidth)
	assert.Equal(t, 1080, c.ViewportHeight)
	assert.Equal(t, "agent", c.UserAgent)
	assert.Equal(t, "/usr/bin/chromium", c.ExecPath)
}

func TestChromeClient_GetHTMLBeforeNavigate(t *testing.T) {
	client := &ChromeClient{config: DefaultBrowserConfig()}
	_, err := client.GetHTML(context.Background())
	assert.ErrorContains(t, err, "navigation has not completed")
}

func TestChromeClient_Live(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	c := DefaultBrowserConfig()
	c.Timeout = 15 * time.Second
	c.WaitDelay = 0

	client, err := NewChromeClient(c)
	if err != nil {
		t.Skipf("Skipping browser test - Chrome may not be available: %v", err)
	}
	defer client.Close()

	ctx := context.Background()
	page := `data:text/html,<html><body><a href="/@u/video/7234567890123456789">v</a></body></html>`
	require.NoError(t, client.Navigate(ctx, page))
	require.NoError(t, client.ScrollToBottom(ctx))

	html, err := client.GetHTML(ctx)
	require.NoError(t, err)
	assert.True(t, strings.Contains(html, "7234567890123456789"))
	assert.Equal(t, 1, client.GetStats().PagesLoaded)
}
