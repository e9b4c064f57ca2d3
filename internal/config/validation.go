// internal/config/validation.go - validation with detailed error messages
package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"
)

// ValidationError represents a detailed validation error
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

// ValidationResult holds validation results
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationError `json:"errors"`
	Warnings []string          `json:"warnings"`
}

func (r *ValidationResult) addError(field, value, message string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: message})
}

// Validate checks the configuration and returns every problem found at once.
func (sc *ScraperConfig) Validate() error {
	result := sc.ValidateWithDetails()
	if !result.Valid {
		return formatValidationError(result)
	}
	return nil
}

// ValidateWithDetails provides detailed validation results
func (sc *ScraperConfig) ValidateWithDetails() *ValidationResult {
	result := &ValidationResult{
		Errors:   make([]ValidationError, 0),
		Warnings: make([]string, 0),
	}

	sc.validateTarget(result)
	sc.validateBrowser(result)
	sc.validateSelectors(result)
	sc.validateRequest(result)
	sc.validateOutput(result)
	sc.validateServer(result)

	result.Valid = len(result.Errors) == 0
	return result
}

func (sc *ScraperConfig) validateTarget(result *ValidationResult) {
	u, err := url.Parse(sc.Target.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		result.addError("target.base_url", sc.Target.BaseURL, "must be an absolute http(s) URL")
	}

	if strings.ContainsAny(strings.TrimPrefix(sc.Target.Username, "@"), "/?# ") {
		result.addError("target.username", sc.Target.Username, "must not contain path or whitespace characters")
	}

	if sc.Target.MaxPosts < 1 || sc.Target.MaxPosts > MaxPostsLimit {
		result.addError("target.max_posts", fmt.Sprint(sc.Target.MaxPosts),
			fmt.Sprintf("must be between 1 and %d", MaxPostsLimit))
	}
	if sc.Target.MaxScrolls < 0 {
		result.addError("target.max_scrolls", fmt.Sprint(sc.Target.MaxScrolls), "cannot be negative")
	}
}

func (sc *ScraperConfig) validateBrowser(result *ValidationResult) {
	if sc.Browser.Timeout < time.Second {
		result.addError("browser.timeout", sc.Browser.Timeout.String(), "must be at least 1s")
	}
	if sc.Browser.ViewportWidth < 0 || sc.Browser.ViewportHeight < 0 {
		result.addError("browser.viewport", fmt.Sprintf("%dx%d", sc.Browser.ViewportWidth, sc.Browser.ViewportHeight),
			"cannot be negative")
	}
	if sc.Browser.ScrollPause > time.Minute {
		result.Warnings = append(result.Warnings, "browser.scroll_pause above 1m makes collection very slow")
	}
}

func (sc *ScraperConfig) validateSelectors(result *ValidationResult) {
	check := func(field string, selectors []string) {
		for i, s := range selectors {
			if err := validateCSSSelector(s); err != nil {
				result.addError(fmt.Sprintf("selectors.%s[%d]", field, i), s, err.Error())
			}
		}
	}
	p, q := sc.Selectors.Profile, sc.Selectors.Post
	check("profile.bio", p.Bio)
	check("profile.followers", p.Followers)
	check("profile.following", p.Following)
	check("profile.likes", p.Likes)
	check("post.likes", q.Likes)
	check("post.comments", q.Comments)
	check("post.shares", q.Shares)
	check("post.views", q.Views)
	check("post.description", q.Description)
	check("post.time", q.Time)
	check("post_link", []string{sc.Selectors.PostLink})
}

func (sc *ScraperConfig) validateRequest(result *ValidationResult) {
	if sc.Request.RetryAttempts < 0 {
		result.addError("request.retry_attempts", fmt.Sprint(sc.Request.RetryAttempts), "cannot be negative")
	}
	if sc.Request.RetryDelay < 0 {
		result.addError("request.retry_delay", sc.Request.RetryDelay.String(), "cannot be negative")
	}
	if sc.Request.PostDelay < 0 {
		result.addError("request.post_delay", sc.Request.PostDelay.String(), "cannot be negative")
	}
}

func (sc *ScraperConfig) validateOutput(result *ValidationResult) {
	format := strings.ToLower(sc.Output.Format)
	if !slices.Contains(SupportedFormats, format) {
		result.addError("output.format", sc.Output.Format,
			fmt.Sprintf("unsupported format, expected one of %s", strings.Join(SupportedFormats, ", ")))
		return
	}

	switch format {
	case "excel", "sqlite":
		if sc.Output.File == "" {
			result.addError("output.file", "", fmt.Sprintf("required for %s output", format))
		}
	case "postgresql", "mysql", "mongodb":
		if sc.Output.Database == nil || sc.Output.Database.URL == "" {
			result.addError("output.database.url", "", fmt.Sprintf("required for %s output", format))
		}
	}
}

func (sc *ScraperConfig) validateServer(result *ValidationResult) {
	if sc.Server.RequestsPerSecond < 0 {
		result.addError("server.requests_per_second", fmt.Sprint(sc.Server.RequestsPerSecond), "cannot be negative")
	}
	if sc.Server.Burst < 0 {
		result.addError("server.burst", fmt.Sprint(sc.Server.Burst), "cannot be negative")
	}
	if sc.Server.MaxPostsCap < 1 || sc.Server.MaxPostsCap > MaxPostsLimit {
		result.addError("server.max_posts_cap", fmt.Sprint(sc.Server.MaxPostsCap),
			fmt.Sprintf("must be between 1 and %d", MaxPostsLimit))
	}
}

// validateCSSSelector performs basic CSS selector validation
func validateCSSSelector(selector string) error {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return fmt.Errorf("empty selector")
	}

	for _, pattern := range []string{"<<", ">>", "|||", "&&&", "{", "}"} {
		if strings.Contains(selector, pattern) {
			return fmt.Errorf("invalid character sequence: %s", pattern)
		}
	}

	if strings.Count(selector, "[") != strings.Count(selector, "]") {
		return fmt.Errorf("unbalanced attribute brackets")
	}
	if strings.Count(selector, "'")%2 != 0 {
		return fmt.Errorf("unclosed single quote")
	}
	if strings.Count(selector, "\"")%2 != 0 {
		return fmt.Errorf("unclosed double quote")
	}

	return nil
}

func formatValidationError(result *ValidationResult) error {
	var b strings.Builder

	b.WriteString("configuration validation failed:\n")
	for i, err := range result.Errors {
		fmt.Fprintf(&b, "  %d. %s", i+1, err.Message)
		if err.Field != "" {
			fmt.Fprintf(&b, " (field: %s)", err.Field)
		}
		if err.Value != "" {
			fmt.Fprintf(&b, " (value: %s)", err.Value)
		}
		b.WriteString("\n")
	}

	return fmt.Errorf("%s", b.String())
}
