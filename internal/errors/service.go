// internal/errors/service.go - retry, circuit breaking and CLI error reporting
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
)

// Service provides retry and circuit breaking for page acquisition, plus
// user facing error formatting for the CLI.
type Service struct {
	retryConfig     RetryConfig
	breakerConfig   CircuitBreakerConfig
	showTechnical   bool
	circuitBreakers map[string]*CircuitBreaker
	mu              sync.Mutex
}

// RetryConfig defines retry behavior
type RetryConfig struct {
	MaxRetries    int           `yaml:"max_retries" json:"max_retries"`
	BaseDelay     time.Duration `yaml:"base_delay" json:"base_delay"`
	BackoffFactor float64       `yaml:"backoff_factor" json:"backoff_factor"`
	MaxDelay      time.Duration `yaml:"max_delay" json:"max_delay"`
}

// DefaultRetryConfig returns three retries with exponential backoff from 2s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		BaseDelay:     2 * time.Second,
		BackoffFactor: 2.0,
		MaxDelay:      time.Minute,
	}
}

// NewService creates a service with DefaultRetryConfig.
func NewService() *Service {
	return NewServiceWithConfig(DefaultRetryConfig())
}

// NewServiceWithConfig creates a service with the given retry policy.
func NewServiceWithConfig(rc RetryConfig) *Service {
	if rc.BackoffFactor < 1 {
		rc.BackoffFactor = 1
	}
	if rc.MaxDelay <= 0 {
		rc.MaxDelay = time.Minute
	}
	return &Service{
		retryConfig:     rc,
		breakerConfig:   CircuitBreakerConfig{MaxFailures: 5, ResetTimeout: time.Minute},
		circuitBreakers: make(map[string]*CircuitBreaker),
	}
}

// WithVerbose enables technical error details
func (s *Service) WithVerbose(verbose bool) *Service {
	s.showTechnical = verbose
	return s
}

// WithCircuitBreaker sets the policy for breakers created afterwards.
func (s *Service) WithCircuitBreaker(config CircuitBreakerConfig) *Service {
	s.breakerConfig = config
	return s
}

// ExecuteWithRetry runs operation until it succeeds, fails with a
// non-retryable error, or the retry budget is spent. The operation's breaker
// rejects calls outright while open.
func (s *Service) ExecuteWithRetry(ctx context.Context, operation func() error, operationName string) error {
	cb := s.CircuitBreaker(operationName)
	if !cb.CanExecute() {
		return fmt.Errorf("operation %s: %w", operationName, ErrCircuitOpen)
	}

	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= s.retryConfig.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		attempts++
		err := operation()
		if err == nil {
			cb.RecordSuccess()
			return nil
		}
		lastErr = err

		if !s.shouldRetry(err, attempt) {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.calculateDelay(attempt)):
		}
	}

	cb.RecordFailure()
	return fmt.Errorf("operation %s failed after %d attempts: %w", operationName, attempts, lastErr)
}

// shouldRetry determines if error is retryable
func (s *Service) shouldRetry(err error, attempt int) bool {
	if attempt >= s.retryConfig.MaxRetries {
		return false
	}
	if stderrors.Is(err, context.Canceled) {
		return false
	}
	var temp interface{ Temporary() bool }
	if stderrors.As(err, &temp) && temp.Temporary() {
		return true
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	retryableErrors := []string{
		"timeout", "connection refused", "connection reset", "no such host",
		"net::err_", "navigation failed", "page not ready",
		"500", "502", "503", "504", "429",
		"temporary", "service unavailable",
	}
	for _, retryable := range retryableErrors {
		if strings.Contains(errStr, retryable) {
			return true
		}
	}
	return false
}

// calculateDelay computes exponential backoff delay
func (s *Service) calculateDelay(attempt int) time.Duration {
	delay := time.Duration(float64(s.retryConfig.BaseDelay) * math.Pow(s.retryConfig.BackoffFactor, float64(attempt)))
	if delay > s.retryConfig.MaxDelay {
		delay = s.retryConfig.MaxDelay
	}
	return delay
}

// CircuitBreaker returns the breaker for operationName, creating it on first use.
func (s *Service) CircuitBreaker(operationName string) *CircuitBreaker {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cb, ok := s.circuitBreakers[operationName]; ok {
		return cb
	}
	cb := NewCircuitBreaker(operationName, s.breakerConfig)
	s.circuitBreakers[operationName] = cb
	return cb
}

// GetUserFriendlyError converts technical errors to user-friendly messages
func (s *Service) GetUserFriendlyError(err error) (title, message string, suggestions []string) {
	if err == nil {
		return "", "", nil
	}

	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "profile page could not be loaded") || strings.Contains(errStr, "profile @"):
		return "Profile Not Loaded",
			"The profile page did not reach a usable state.",
			[]string{
				"Check that the username exists and is public",
				"Increase browser.timeout in the configuration",
				"Run with --verbose to see the navigation error",
			}
	case strings.Contains(errStr, "executable file not found") || strings.Contains(errStr, "chrome"):
		return "Browser Unavailable",
			"Chrome or Chromium could not be started.",
			[]string{
				"Install Chrome or Chromium",
				"Set browser.chrome_path to the browser binary",
			}
	case strings.Contains(errStr, "circuit breaker is open"):
		return "Too Many Failures",
			"Page loads failed repeatedly and were paused.",
			[]string{
				"Wait a minute before retrying",
				"Increase request.post_delay",
			}
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded"):
		return "Connection Timeout",
			"The page took too long to load.",
			[]string{
				"Check your internet connection",
				"Increase browser.timeout in the configuration",
			}
	case strings.Contains(errStr, "no such host"):
		return "Domain Not Found",
			"Could not resolve the site's domain.",
			[]string{
				"Check target.base_url",
				"Check your DNS settings",
			}
	case strings.Contains(errStr, "yaml") || strings.Contains(errStr, "configuration"):
		return "Configuration Error",
			"The configuration file could not be used.",
			[]string{
				"Run the validate command for details",
				"Check YAML indentation (use spaces, not tabs)",
			}
	case strings.Contains(errStr, "429") || strings.Contains(errStr, "rate limit"):
		return "Rate Limit Exceeded",
			"Requests are being made too quickly.",
			[]string{
				"Increase request.post_delay",
				"Reduce max_posts",
			}
	}

	return "Unexpected Error",
		"An unexpected error occurred during the operation.",
		[]string{
			"Try running the command again",
			"Check your configuration file",
		}
}

// GetExitCode returns appropriate exit code for error
func (s *Service) GetExitCode(err error) int {
	if err == nil {
		return 0
	}

	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "config") || strings.Contains(errStr, "yaml"):
		return 2 // Configuration error
	case strings.Contains(errStr, "network") || strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection") || strings.Contains(errStr, "host") ||
		strings.Contains(errStr, "profile"):
		return 3 // Network / page acquisition error
	case strings.Contains(errStr, "parse") || strings.Contains(errStr, "selector"):
		return 4 // Parsing error
	case strings.Contains(errStr, "output") || strings.Contains(errStr, "write"):
		return 5 // Output error
	case strings.Contains(errStr, "validation"):
		return 6 // Validation error
	case strings.Contains(errStr, "rate limit") || strings.Contains(errStr, "429"):
		return 7 // Rate limit error
	default:
		return 1 // General error
	}
}

// FormatErrorForCLI formats error for command-line display
func (s *Service) FormatErrorForCLI(err error) string {
	title, message, suggestions := s.GetUserFriendlyError(err)

	var b strings.Builder
	fmt.Fprintf(&b, "Error: %s\n%s\n", title, message)

	if s.showTechnical {
		fmt.Fprintf(&b, "\nTechnical details: %s\n", err.Error())
	}

	if len(suggestions) > 0 {
		b.WriteString("\nSuggestions:\n")
		for _, suggestion := range suggestions {
			fmt.Fprintf(&b, "  - %s\n", suggestion)
		}
	}

	return b.String()
}
