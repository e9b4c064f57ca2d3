// pkg/api/types.go
package api

import (
	"github.com/valpere/ProfileScrapexter/internal/config"
	"github.com/valpere/ProfileScrapexter/internal/extract"
	"github.com/valpere/ProfileScrapexter/internal/scraper"
	"github.com/valpere/ProfileScrapexter/internal/utils"
)

// Re-export types from internal packages for public API
type (
	ScraperConfig   = config.ScraperConfig
	SelectorConfig  = config.SelectorConfig
	OutputConfig    = config.OutputConfig
	AggregateResult = extract.AggregateResult
	ProfileRecord   = extract.ProfileRecord
	PostRecord      = extract.PostRecord
	TraceFunc       = extract.TraceFunc
	TraceEvent      = extract.TraceEvent
	Session         = scraper.Session
	SessionFactory  = scraper.SessionFactory
	Logger          = utils.Logger
)

// Sentinel errors carried in result error strings.
var (
	ErrProfileLoad = extract.ErrProfileLoad
	ErrPostLoad    = extract.ErrPostLoad
)

// PostBlob is one already captured post page.
type PostBlob struct {
	PostID string
	HTML   string
	// Err marks a post page that could not be captured
	Err error
}

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() *ScraperConfig {
	return config.Default()
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (*ScraperConfig, error) {
	return config.LoadFromFile(path)
}
