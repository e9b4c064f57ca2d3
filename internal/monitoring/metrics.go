// internal/monitoring/metrics.go
package monitoring

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/valpere/ProfileScrapexter/internal/extract"
	"github.com/valpere/ProfileScrapexter/internal/scraper"
)

// MetricsManager owns the Prometheus metrics of profile runs. Each manager
// has its own registry so several can coexist in one process.
type MetricsManager struct {
	registry *prometheus.Registry

	// Extraction metrics
	fieldResolutions *prometheus.CounterVec
	postsProcessed   *prometheus.CounterVec

	// Run metrics
	runsTotal   *prometheus.CounterVec
	runDuration prometheus.Histogram
	linkBatches prometheus.Histogram

	// Surface metrics
	httpRequests  *prometheus.CounterVec
	rateLimitHits prometheus.Counter
	outputWrites  *prometheus.CounterVec
}

// MetricsConfig configuration for metrics
type MetricsConfig struct {
	Namespace            string `json:"namespace" yaml:"namespace"`
	EnableGoMetrics      bool   `json:"enable_go_metrics" yaml:"enable_go_metrics"`
	EnableProcessMetrics bool   `json:"enable_process_metrics" yaml:"enable_process_metrics"`
}

// NewMetricsManager creates a new metrics manager
func NewMetricsManager(config MetricsConfig) *MetricsManager {
	if config.Namespace == "" {
		config.Namespace = "profilescrapexter"
	}

	reg := prometheus.NewRegistry()
	if config.EnableGoMetrics {
		reg.MustRegister(collectors.NewGoCollector())
	}
	if config.EnableProcessMetrics {
		reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	factory := promauto.With(reg)
	ns := config.Namespace

	return &MetricsManager{
		registry: reg,
		fieldResolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "extract",
			Name:      "field_resolutions_total",
			Help:      "Field resolutions by field, winning source and outcome",
		}, []string{"field", "source", "outcome"}),
		postsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "extract",
			Name:      "posts_processed_total",
			Help:      "Post records produced, split by whether the post failed",
		}, []string{"outcome"}),
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "scraper",
			Name:      "runs_total",
			Help:      "Profile runs by outcome",
		}, []string{"outcome"}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: "scraper",
			Name:      "run_duration_seconds",
			Help:      "Wall time of one profile run",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		linkBatches: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: "scraper",
			Name:      "link_batches",
			Help:      "Link batches read before enough post ids were collected",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"route", "code"}),
		rateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		}),
		outputWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "output",
			Name:      "writes_total",
			Help:      "Result writes by format and outcome",
		}, []string{"format", "outcome"}),
	}
}

// Registry exposes the underlying registry.
func (mm *MetricsManager) Registry() *prometheus.Registry { return mm.registry }

// Trace returns a resolution observer for extract.Config.
func (mm *MetricsManager) Trace() extract.TraceFunc {
	return func(ev extract.TraceEvent) {
		mm.fieldResolutions.WithLabelValues(string(ev.Field), string(ev.Source), string(ev.Outcome)).Inc()
	}
}

// RunHook returns a hook recording finished profile runs.
func (mm *MetricsManager) RunHook() scraper.RunHook {
	return func(result *extract.AggregateResult, stats scraper.RunStats) {
		mm.RecordRun(result, stats)
	}
}

// RecordRun records one finished profile run.
func (mm *MetricsManager) RecordRun(result *extract.AggregateResult, stats scraper.RunStats) {
	outcome := "ok"
	if result.Failed() {
		outcome = "profile_error"
	}
	mm.runsTotal.WithLabelValues(outcome).Inc()
	mm.runDuration.Observe(stats.Duration.Seconds())
	if !result.Failed() {
		mm.linkBatches.Observe(float64(stats.LinkBatches))
	}
	for _, p := range result.Posts {
		if p.Failed() {
			mm.postsProcessed.WithLabelValues("failed").Inc()
		} else {
			mm.postsProcessed.WithLabelValues("ok").Inc()
		}
	}
}

// RecordHTTPRequest counts one served request.
func (mm *MetricsManager) RecordHTTPRequest(route string, code int) {
	mm.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// RecordRateLimitHit counts one rejected request.
func (mm *MetricsManager) RecordRateLimitHit() {
	mm.rateLimitHits.Inc()
}

// RecordOutput counts one result write.
func (mm *MetricsManager) RecordOutput(format string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	mm.outputWrites.WithLabelValues(format, outcome).Inc()
}

// MetricsHandler returns an HTTP handler for metrics endpoint
func (mm *MetricsManager) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(mm.registry, promhttp.HandlerOpts{Registry: mm.registry})
}
