// internal/config/types.go

// Package config provides configuration types and loading for ProfileScrapexter.
// A configuration names the profile to scrape, how the browser is driven, which
// DOM selectors back the structured-state lookup, and where results are written.
package config

import (
	"time"
)

// ScraperConfig represents the main configuration structure for a scraping job.
type ScraperConfig struct {
	// Name identifies this configuration
	Name string `yaml:"name" json:"name"`

	Target     TargetConfig     `yaml:"target" json:"target"`
	Browser    BrowserConfig    `yaml:"browser" json:"browser"`
	Selectors  SelectorConfig   `yaml:"selectors" json:"selectors"`
	Extraction ExtractionConfig `yaml:"extraction" json:"extraction"`
	Request    RequestConfig    `yaml:"request" json:"request"`
	Output     OutputConfig     `yaml:"output" json:"output"`
	Server     ServerConfig     `yaml:"server" json:"server"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level,omitempty" json:"log_level,omitempty"`
}

// TargetConfig defines which profile is scraped and how many posts are collected.
type TargetConfig struct {
	// BaseURL is the site root; profile pages live at BaseURL/@username
	BaseURL string `yaml:"base_url" json:"base_url"`

	// Username may be left empty and supplied on the command line
	Username string `yaml:"username,omitempty" json:"username,omitempty"`

	// MaxPosts is the number of post identifiers to collect
	MaxPosts int `yaml:"max_posts" json:"max_posts"`

	// MaxScrolls bounds the number of link batches requested from the profile page
	MaxScrolls int `yaml:"max_scrolls" json:"max_scrolls"`
}

// BrowserConfig defines headless browser settings.
type BrowserConfig struct {
	// ShowBrowser runs Chrome with a visible window instead of headless
	ShowBrowser    bool          `yaml:"show_browser" json:"show_browser"`
	Timeout        time.Duration `yaml:"timeout" json:"timeout"`
	ViewportWidth  int           `yaml:"viewport_width" json:"viewport_width"`
	ViewportHeight int           `yaml:"viewport_height" json:"viewport_height"`
	UserAgent      string        `yaml:"user_agent,omitempty" json:"user_agent,omitempty"`
	// WaitDelay is applied after each navigation before the page is snapshotted
	WaitDelay time.Duration `yaml:"wait_delay" json:"wait_delay"`
	// ScrollPause is applied after each scroll step
	ScrollPause time.Duration `yaml:"scroll_pause" json:"scroll_pause"`
	// WaitForElement is a selector that marks a page as loaded
	WaitForElement string `yaml:"wait_for_element,omitempty" json:"wait_for_element,omitempty"`
	DisableImages  bool   `yaml:"disable_images" json:"disable_images"`
	ChromePath     string `yaml:"chrome_path,omitempty" json:"chrome_path,omitempty"`
}

// SelectorConfig lists DOM selectors for each observed field. Selectors in a
// list are tried in order and the first non-empty match wins.
type SelectorConfig struct {
	Profile  ProfileSelectors `yaml:"profile" json:"profile"`
	Post     PostSelectors    `yaml:"post" json:"post"`
	PostLink string           `yaml:"post_link" json:"post_link"`
}

// ProfileSelectors locate profile-level fields.
type ProfileSelectors struct {
	Bio       []string `yaml:"bio" json:"bio"`
	Followers []string `yaml:"followers" json:"followers"`
	Following []string `yaml:"following" json:"following"`
	Likes     []string `yaml:"likes" json:"likes"`
}

// PostSelectors locate post-level fields.
type PostSelectors struct {
	Likes       []string `yaml:"likes" json:"likes"`
	Comments    []string `yaml:"comments" json:"comments"`
	Shares      []string `yaml:"shares" json:"shares"`
	Views       []string `yaml:"views" json:"views"`
	Description []string `yaml:"description" json:"description"`
	Time        []string `yaml:"time" json:"time"`
}

// ExtractionConfig tunes field resolution.
type ExtractionConfig struct {
	// IDTimestampFallback derives a timestamp from the post id when nothing else resolves
	IDTimestampFallback bool `yaml:"id_timestamp_fallback" json:"id_timestamp_fallback"`
}

// RequestConfig defines retry and pacing for page loads.
type RequestConfig struct {
	RetryAttempts int           `yaml:"retry_attempts" json:"retry_attempts"`
	RetryDelay    time.Duration `yaml:"retry_delay" json:"retry_delay"`
	// PostDelay is the minimum interval between two post page loads
	PostDelay time.Duration `yaml:"post_delay" json:"post_delay"`
}

// OutputConfig defines where results go.
type OutputConfig struct {
	// Format is one of json, yaml, csv, excel, sqlite, postgresql, mysql, mongodb
	Format   string          `yaml:"format" json:"format"`
	File     string          `yaml:"file,omitempty" json:"file,omitempty"`
	Database *DatabaseConfig `yaml:"database,omitempty" json:"database,omitempty"`
}

// DatabaseConfig holds settings for database sinks.
type DatabaseConfig struct {
	// URL is a DSN for SQL sinks or a mongodb:// URI
	URL         string `yaml:"url" json:"url"`
	Database    string `yaml:"database,omitempty" json:"database,omitempty"`
	Collection  string `yaml:"collection,omitempty" json:"collection,omitempty"`
	TablePrefix string `yaml:"table_prefix,omitempty" json:"table_prefix,omitempty"`
	CreateTable bool   `yaml:"create_table" json:"create_table"`
}

// ServerConfig defines the HTTP surface.
type ServerConfig struct {
	Listen            string  `yaml:"listen" json:"listen"`
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int     `yaml:"burst" json:"burst"`
	// MaxPostsCap bounds the max_posts query parameter
	MaxPostsCap int `yaml:"max_posts_cap" json:"max_posts_cap"`
	// WatchConfig reloads selectors when the config file changes
	WatchConfig bool `yaml:"watch_config" json:"watch_config"`
}

// Output formats accepted in OutputConfig.Format.
var SupportedFormats = []string{"json", "yaml", "csv", "excel", "sqlite", "postgresql", "mysql", "mongodb"}

// Limits for TargetConfig.MaxPosts.
const (
	DefaultMaxPosts = 5
	MaxPostsLimit   = 50
)
