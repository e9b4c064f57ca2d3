// internal/server/server.go
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"github.com/valpere/ProfileScrapexter/internal/config"
	"github.com/valpere/ProfileScrapexter/internal/extract"
	"github.com/valpere/ProfileScrapexter/internal/monitoring"
	"github.com/valpere/ProfileScrapexter/internal/output"
	"github.com/valpere/ProfileScrapexter/internal/utils"
)

// ProfileScraper runs one profile extraction. *scraper.Scraper implements it.
type ProfileScraper interface {
	ScrapeProfile(ctx context.Context, username string, maxPosts int) *extract.AggregateResult
}

// Options configures a Server. Scraper is required.
type Options struct {
	Scraper     ProfileScraper
	Limiter     *utils.RateLimiter
	MaxPostsCap int
	Metrics     *monitoring.MetricsManager
	Health      *monitoring.HealthManager
	// Sink, when set, also persists every result served
	Sink   *output.Manager
	Logger utils.Logger
}

// Server is the HTTP surface over a ProfileScraper.
type Server struct {
	scraper     ProfileScraper
	limiter     *utils.RateLimiter
	maxPostsCap int
	metrics     *monitoring.MetricsManager
	health      *monitoring.HealthManager
	sink        *output.Manager
	sinkMu      sync.Mutex
	logger      utils.Logger
	router      *mux.Router
}

// New creates a Server and its routes.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = utils.NopLogger()
	}
	if opts.Limiter == nil {
		opts.Limiter = utils.NewRateLimiter(1, 2)
	}
	if opts.MaxPostsCap <= 0 {
		opts.MaxPostsCap = config.MaxPostsLimit
	}
	if opts.Metrics == nil {
		opts.Metrics = monitoring.NewMetricsManager(monitoring.MetricsConfig{})
	}
	if opts.Health == nil {
		opts.Health = monitoring.NewHealthManager("", 0)
	}

	s := &Server{
		scraper:     opts.Scraper,
		limiter:     opts.Limiter,
		maxPostsCap: opts.MaxPostsCap,
		metrics:     opts.Metrics,
		health:      opts.Health,
		sink:        opts.Sink,
		logger:      opts.Logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := mux.NewRouter()
	r.Use(s.instrument)
	r.HandleFunc("/profile", s.handleProfile).Methods(http.MethodGet)
	r.HandleFunc("/health", s.health.HealthHandler()).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.MetricsHandler()).Methods(http.MethodGet)
	s.router = r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	username := strings.TrimPrefix(strings.TrimSpace(query.Get("username")), "@")
	if username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}

	maxPosts, err := s.parseMaxPosts(query.Get("max_posts"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !s.limiter.Allow() {
		s.metrics.RecordRateLimitHit()
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	log := s.logger.WithFields(map[string]interface{}{"username": username, "max_posts": maxPosts})
	log.Info("profile request")

	result := s.scraper.ScrapeProfile(r.Context(), username, maxPosts)
	if s.sink != nil {
		s.persist(r.Context(), username, result, log)
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) parseMaxPosts(raw string) (int, error) {
	if raw == "" {
		return min(config.DefaultMaxPosts, s.maxPostsCap), nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > s.maxPostsCap {
		return 0, fmt.Errorf("max_posts must be an integer between 1 and %d", s.maxPostsCap)
	}
	return n, nil
}

func (s *Server) persist(ctx context.Context, username string, result *extract.AggregateResult, log utils.Logger) {
	s.sinkMu.Lock()
	defer s.sinkMu.Unlock()
	if _, err := s.sink.Write(ctx, username, result); err != nil {
		log.Errorf("persisting result: %v", err)
	}
}

// instrument logs and counts every request by route template.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		s.metrics.RecordHTTPRequest(route, rec.status)
		s.logger.WithFields(map[string]interface{}{
			"method":   r.Method,
			"route":    route,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Debug("request served")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
