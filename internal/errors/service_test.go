// internal/errors/service_test.go
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastService(retries int) *Service {
	return NewServiceWithConfig(RetryConfig{
		MaxRetries:    retries,
		BaseDelay:     time.Millisecond,
		BackoffFactor: 2,
		MaxDelay:      5 * time.Millisecond,
	})
}

func TestService_ExecuteWithRetry_Success(t *testing.T) {
	calls := 0
	err := fastService(3).ExecuteWithRetry(context.Background(), func() error {
		calls++
		return nil
	}, "load")

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestService_ExecuteWithRetry_RetriesTransientErrors(t *testing.T) {
	calls := 0
	err := fastService(3).ExecuteWithRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("navigation failed: net::ERR_CONNECTION_RESET")
		}
		return nil
	}, "load")

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestService_ExecuteWithRetry_StopsOnPermanentError(t *testing.T) {
	calls := 0
	err := fastService(3).ExecuteWithRetry(context.Background(), func() error {
		calls++
		return stderrors.New("profile is private")
	}, "load")

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Contains(t, err.Error(), "failed after 1 attempts")
}

func TestService_ExecuteWithRetry_ExhaustsBudget(t *testing.T) {
	calls := 0
	sentinel := stderrors.New("timeout waiting for page")
	err := fastService(2).ExecuteWithRetry(context.Background(), func() error {
		calls++
		return sentinel
	}, "load")

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 3, calls)
}

func TestService_ExecuteWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := fastService(3).ExecuteWithRetry(ctx, func() error {
		calls++
		return nil
	}, "load")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestService_ExecuteWithRetry_CircuitOpens(t *testing.T) {
	s := fastService(0).WithCircuitBreaker(CircuitBreakerConfig{MaxFailures: 2, ResetTimeout: time.Hour})
	fail := func() error { return stderrors.New("boom") }

	require.Error(t, s.ExecuteWithRetry(context.Background(), fail, "post"))
	require.Error(t, s.ExecuteWithRetry(context.Background(), fail, "post"))

	calls := 0
	err := s.ExecuteWithRetry(context.Background(), func() error {
		calls++
		return nil
	}, "post")
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Zero(t, calls)
	assert.Equal(t, CircuitOpen, s.CircuitBreaker("post").State())

	// other operations are unaffected
	assert.NoError(t, s.ExecuteWithRetry(context.Background(), func() error { return nil }, "profile"))
}

func TestCircuitBreaker_HalfOpen(t *testing.T) {
	now := time.Unix(0, 0)
	cb := NewCircuitBreaker("x", CircuitBreakerConfig{MaxFailures: 1, ResetTimeout: time.Minute})
	cb.now = func() time.Time { return now }

	cb.RecordFailure()
	assert.False(t, cb.CanExecute())

	now = now.Add(2 * time.Minute)
	assert.True(t, cb.CanExecute())
	assert.Equal(t, CircuitHalfOpen, cb.State())

	cb.RecordSuccess()
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestService_CalculateDelay(t *testing.T) {
	s := NewServiceWithConfig(RetryConfig{BaseDelay: time.Second, BackoffFactor: 2, MaxDelay: 5 * time.Second})
	assert.Equal(t, time.Second, s.calculateDelay(0))
	assert.Equal(t, 2*time.Second, s.calculateDelay(1))
	assert.Equal(t, 4*time.Second, s.calculateDelay(2))
	assert.Equal(t, 5*time.Second, s.calculateDelay(3))
}

func TestService_GetExitCode(t *testing.T) {
	s := NewService()
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{stderrors.New("invalid configuration: bad"), 2},
		{stderrors.New("navigation timeout"), 3},
		{stderrors.New("profile @x: profile page could not be loaded"), 3},
		{stderrors.New("failed to write output file"), 5},
		{stderrors.New("something odd"), 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.GetExitCode(tt.err), "%v", tt.err)
	}
}

func TestService_FormatErrorForCLI(t *testing.T) {
	err := stderrors.New("profile @ghost: profile page could not be loaded: timeout")

	out := NewService().FormatErrorForCLI(err)
	assert.True(t, strings.HasPrefix(out, "Error: Profile Not Loaded"))
	assert.Contains(t, out, "Suggestions:")
	assert.NotContains(t, out, "Technical details")

	verbose := NewService().WithVerbose(true).FormatErrorForCLI(err)
	assert.Contains(t, verbose, "Technical details: "+err.Error())
}
