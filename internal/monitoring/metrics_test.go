// internal/monitoring/metrics_test.go
package monitoring

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/ProfileScrapexter/internal/extract"
	"github.com/valpere/ProfileScrapexter/internal/scraper"
)

func TestMetricsManager_Trace(t *testing.T) {
	mm := NewMetricsManager(MetricsConfig{})
	trace := mm.Trace()

	trace(extract.TraceEvent{Field: extract.FieldLikes, Source: extract.SourceStructured, Outcome: extract.OutcomeResolved})
	trace(extract.TraceEvent{Field: extract.FieldLikes, Source: extract.SourceStructured, Outcome: extract.OutcomeResolved})
	trace(extract.TraceEvent{Field: extract.FieldViews, Source: extract.SourceNone, Outcome: extract.OutcomeUnresolved})

	assert.Equal(t, 2.0, testutil.ToFloat64(mm.fieldResolutions.WithLabelValues("likes", "structured", "resolved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(mm.fieldResolutions.WithLabelValues("views", "none", "unresolved")))
}

func TestMetricsManager_RecordRun(t *testing.T) {
	mm := NewMetricsManager(MetricsConfig{})
	hook := mm.RunHook()

	hook(&extract.AggregateResult{
		Profile: &extract.ProfileRecord{Username: "creator"},
		Posts: []extract.PostRecord{
			{PostID: "1"},
			{PostID: "2", Error: "post page could not be loaded"},
		},
	}, scraper.RunStats{Duration: 2 * time.Second, LinkBatches: 2})
	hook(&extract.AggregateResult{Error: "profile @ghost: gone"}, scraper.RunStats{})

	assert.Equal(t, 1.0, testutil.ToFloat64(mm.runsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(mm.runsTotal.WithLabelValues("profile_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(mm.postsProcessed.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(mm.postsProcessed.WithLabelValues("failed")))
	assert.Equal(t, 1, testutil.CollectAndCount(mm.linkBatches))
}

func TestMetricsManager_Handler(t *testing.T) {
	mm := NewMetricsManager(MetricsConfig{Namespace: "test"})
	mm.RecordHTTPRequest("/profile", http.StatusOK)
	mm.RecordRateLimitHit()
	mm.RecordOutput("json", nil)
	mm.RecordOutput("sqlite", errors.New("disk full"))

	rec := httptest.NewRecorder()
	mm.MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `test_http_requests_total{code="200",route="/profile"} 1`)
	assert.Contains(t, body, "test_http_rate_limited_total 1")
	assert.Contains(t, body, `test_output_writes_total{format="sqlite",outcome="error"} 1`)
	assert.False(t, strings.Contains(body, "go_goroutines"))
}

func TestMetricsManager_SeparateRegistries(t *testing.T) {
	a := NewMetricsManager(MetricsConfig{EnableGoMetrics: true})
	b := NewMetricsManager(MetricsConfig{EnableGoMetrics: true})

	a.RecordRateLimitHit()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.rateLimitHits))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.rateLimitHits))
}
