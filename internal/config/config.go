// internal/config/config.go
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(filename string) (*ScraperConfig, error) {
	if filename == "" {
		return nil, fmt.Errorf("configuration filename cannot be empty")
	}

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", filename)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	return LoadFromBytes(data)
}

// LoadFromBytes loads configuration from YAML bytes. ${VAR} references are
// expanded from the environment before parsing.
func LoadFromBytes(data []byte) (*ScraperConfig, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("configuration data cannot be empty")
	}

	expanded := expandEnvironmentVariables(string(data))

	var config ScraperConfig
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML configuration: %w", err)
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadFromReader loads configuration from an io.Reader
func LoadFromReader(reader io.Reader) (*ScraperConfig, error) {
	if reader == nil {
		return nil, fmt.Errorf("reader cannot be nil")
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read from reader: %w", err)
	}

	return LoadFromBytes(data)
}

// SaveToFile saves configuration to a YAML file
func SaveToFile(config *ScraperConfig, filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}
	defer f.Close()

	return SaveToWriter(config, f)
}

// SaveToWriter validates config and writes it as YAML.
func SaveToWriter(config *ScraperConfig, writer io.Writer) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}
	if writer == nil {
		return fmt.Errorf("writer cannot be nil")
	}

	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	enc := yaml.NewEncoder(writer)
	enc.SetIndent(2)
	if err := enc.Encode(config); err != nil {
		return fmt.Errorf("failed to marshal configuration to YAML: %w", err)
	}
	return enc.Close()
}

// Default returns a configuration with every default applied.
func Default() *ScraperConfig {
	config := &ScraperConfig{}
	applyDefaults(config)
	return config
}

// GenerateTemplate returns a starter configuration for the CLI.
func GenerateTemplate() ScraperConfig {
	config := Default()
	config.Name = "profile_scraper"
	config.Target.Username = "${PROFILE_USERNAME}"
	config.Output.File = "profile.json"
	return *config
}

// DefaultSelectors returns the DOM selectors known to back each field.
func DefaultSelectors() SelectorConfig {
	return SelectorConfig{
		Profile: ProfileSelectors{
			Bio:       []string{`h2[data-e2e="user-bio"]`, `[data-e2e="user-bio"]`},
			Followers: []string{`strong[data-e2e="followers-count"]`},
			Following: []string{`strong[data-e2e="following-count"]`},
			Likes:     []string{`strong[data-e2e="likes-count"]`},
		},
		Post: PostSelectors{
			Likes:    []string{`strong[data-e2e="like-count"]`, `strong[data-e2e="browse-like-count"]`},
			Comments: []string{`strong[data-e2e="comment-count"]`, `strong[data-e2e="browse-comment-count"]`},
			Shares:   []string{`strong[data-e2e="share-count"]`},
			Views: []string{
				`strong[data-e2e="video-views"]`,
				`[data-e2e="video-views"] strong`,
				`.video-meta-item-views strong`,
			},
			Description: []string{
				`[data-e2e="video-desc"]`,
				`[data-e2e="browse-video-desc"]`,
				`.video-caption`,
				`.desc-text`,
			},
			Time: []string{
				`[data-e2e="video-time"]`,
				`[data-e2e="browse-video-time"]`,
				`.video-time`,
				`time`,
			},
		},
		PostLink: `a[href*="/video/"], a[href*="/photo/"]`,
	}
}

func expandEnvironmentVariables(content string) string {
	return os.ExpandEnv(content)
}

// applyDefaults fills zero values; explicit values are never overwritten.
func applyDefaults(config *ScraperConfig) {
	if config.Target.BaseURL == "" {
		config.Target.BaseURL = "https://www.tiktok.com"
	}
	if config.Target.MaxPosts == 0 {
		config.Target.MaxPosts = DefaultMaxPosts
	}
	if config.Target.MaxScrolls == 0 {
		config.Target.MaxScrolls = 6
	}

	if config.Browser.Timeout == 0 {
		config.Browser.Timeout = 30 * time.Second
	}
	if config.Browser.ViewportWidth == 0 {
		config.Browser.ViewportWidth = 1920
	}
	if config.Browser.ViewportHeight == 0 {
		config.Browser.ViewportHeight = 1080
	}
	if config.Browser.WaitDelay == 0 {
		config.Browser.WaitDelay = 2 * time.Second
	}
	if config.Browser.ScrollPause == 0 {
		config.Browser.ScrollPause = 2 * time.Second
	}
	if config.Browser.WaitForElement == "" {
		config.Browser.WaitForElement = "body"
	}

	defaults := DefaultSelectors()
	sel := &config.Selectors
	fillSelectors(&sel.Profile.Bio, defaults.Profile.Bio)
	fillSelectors(&sel.Profile.Followers, defaults.Profile.Followers)
	fillSelectors(&sel.Profile.Following, defaults.Profile.Following)
	fillSelectors(&sel.Profile.Likes, defaults.Profile.Likes)
	fillSelectors(&sel.Post.Likes, defaults.Post.Likes)
	fillSelectors(&sel.Post.Comments, defaults.Post.Comments)
	fillSelectors(&sel.Post.Shares, defaults.Post.Shares)
	fillSelectors(&sel.Post.Views, defaults.Post.Views)
	fillSelectors(&sel.Post.Description, defaults.Post.Description)
	fillSelectors(&sel.Post.Time, defaults.Post.Time)
	if sel.PostLink == "" {
		sel.PostLink = defaults.PostLink
	}

	if config.Request.RetryAttempts == 0 {
		config.Request.RetryAttempts = 3
	}
	if config.Request.RetryDelay == 0 {
		config.Request.RetryDelay = 2 * time.Second
	}
	if config.Request.PostDelay == 0 {
		config.Request.PostDelay = 3 * time.Second
	}

	if config.Output.Format == "" {
		config.Output.Format = "json"
	}

	if config.Server.Listen == "" {
		config.Server.Listen = ":8080"
	}
	if config.Server.RequestsPerSecond == 0 {
		config.Server.RequestsPerSecond = 1
	}
	if config.Server.Burst == 0 {
		config.Server.Burst = 2
	}
	if config.Server.MaxPostsCap == 0 {
		config.Server.MaxPostsCap = 20
	}

	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
}

func fillSelectors(dst *[]string, defaults []string) {
	if len(*dst) == 0 {
		*dst = append([]string(nil), defaults...)
	}
}
