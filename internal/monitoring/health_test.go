// internal/monitoring/health_test.go
package monitoring

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthManager_Statuses(t *testing.T) {
	tests := []struct {
		name   string
		checks []HealthCheck
		want   HealthStatus
	}{
		{name: "no checks", want: HealthStatusHealthy},
		{
			name:   "all passing",
			checks: []HealthCheck{{Name: "a", Critical: true, Check: func(context.Context) error { return nil }}},
			want:   HealthStatusHealthy,
		},
		{
			name:   "optional failing",
			checks: []HealthCheck{{Name: "a", Check: func(context.Context) error { return errors.New("slow") }}},
			want:   HealthStatusDegraded,
		},
		{
			name: "critical failing",
			checks: []HealthCheck{
				{Name: "a", Check: func(context.Context) error { return errors.New("slow") }},
				{Name: "b", Critical: true, Check: func(context.Context) error { return errors.New("down") }},
			},
			want: HealthStatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hm := NewHealthManager("test", time.Second)
			for _, c := range tt.checks {
				hm.RegisterCheck(c)
			}
			health := hm.GetHealth(context.Background())
			assert.Equal(t, tt.want, health.Status)
			assert.Len(t, health.Checks, len(tt.checks))
		})
	}
}

func TestHealthManager_CheckTimeout(t *testing.T) {
	hm := NewHealthManager("test", 10*time.Millisecond)
	hm.RegisterCheck(HealthCheck{Name: "blocked", Critical: true, Check: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}})

	health := hm.GetHealth(context.Background())
	require.Len(t, health.Checks, 1)
	assert.Equal(t, HealthStatusUnhealthy, health.Checks[0].Status)
	assert.Contains(t, health.Checks[0].Error, "deadline exceeded")
}

func TestHealthManager_Handler(t *testing.T) {
	hm := NewHealthManager("1.0.0", time.Second)
	hm.RegisterCheck(HealthCheck{Name: "browser", Critical: true, Check: func(context.Context) error {
		return errors.New("no chrome")
	}})

	rec := httptest.NewRecorder()
	hm.HealthHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body SystemHealth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, HealthStatusUnhealthy, body.Status)
	assert.Equal(t, "1.0.0", body.Version)
	assert.Equal(t, "no chrome", body.Checks[0].Error)
}
