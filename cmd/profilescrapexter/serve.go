// cmd/profilescrapexter/serve.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/valpere/ProfileScrapexter/internal/config"
	"github.com/valpere/ProfileScrapexter/internal/monitoring"
	"github.com/valpere/ProfileScrapexter/internal/output"
	"github.com/valpere/ProfileScrapexter/internal/scraper"
	"github.com/valpere/ProfileScrapexter/internal/server"
	"github.com/valpere/ProfileScrapexter/internal/utils"
)

func newServeCmd(opts *cliOptions) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve profile extraction over HTTP",
		Long: `Serve GET /profile?username=&max_posts=, GET /health and GET /metrics.
With server.watch_config enabled, selector and extraction changes in the
configuration file apply to later requests without a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts.configFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				cfg.Server.Listen = listen
			}

			logger := newLogger(cfg, opts.verbose)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			source := openSessions(cfg, max(1, cfg.Server.Burst), logger)
			defer source.Close()

			srv, cleanup, err := newServer(ctx, cfg, opts.configFile, source, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			return srv.ListenAndServe(ctx, cfg.Server.Listen)
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (overrides server.listen)")
	return cmd
}

// newServer wires scraper, metrics, health, optional result sink and config
// reload into an HTTP server. cleanup releases everything but source.
func newServer(ctx context.Context, cfg *config.ScraperConfig, configPath string, source sessionSource, logger utils.Logger) (*server.Server, func(), error) {
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warnf("shutdown: %v", err)
			}
		}
	}

	metrics := monitoring.NewMetricsManager(monitoring.MetricsConfig{
		EnableGoMetrics:      true,
		EnableProcessMetrics: true,
	})

	s := scraper.New(scraper.Options{
		Sessions:     source.Sessions,
		Engine:       scraper.NewEngineFromConfig(cfg, metrics.Trace(), logger),
		LinkSelector: cfg.Selectors.PostLink,
		MaxScrolls:   cfg.Target.MaxScrolls,
		Logger:       logger,
		OnRun:        metrics.RunHook(),
	})

	health := monitoring.NewHealthManager(version, 5*time.Second)
	if source.Ping != nil {
		health.RegisterCheck(monitoring.HealthCheck{Name: "browser_pool", Critical: true, Check: source.Ping})
	}

	var sink *output.Manager
	if persistsResults(cfg.Output) {
		m, err := output.NewManager(ctx, &cfg.Output, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create output writer: %w", err)
		}
		m.OnWrite = metrics.RecordOutput
		sink = m
		closers = append(closers, m.Close)
	}

	limiter := utils.NewRateLimiter(cfg.Server.RequestsPerSecond, cfg.Server.Burst)

	if cfg.Server.WatchConfig && configPath != "" {
		watcher, err := config.NewConfigWatcher(configPath, logger)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		watcher.OnChange(func(updated *config.ScraperConfig) {
			s.ApplyConfig(updated, metrics.Trace())
			limiter.SetLimit(updated.Server.RequestsPerSecond)
		})
		closers = append(closers, watcher.Close)
	}

	srv := server.New(server.Options{
		Scraper:     s,
		Limiter:     limiter,
		MaxPostsCap: cfg.Server.MaxPostsCap,
		Metrics:     metrics,
		Health:      health,
		Sink:        sink,
		Logger:      logger,
	})
	return srv, cleanup, nil
}

// persistsResults reports whether served results also go to a sink. Stream
// formats without a file would only echo to stdout.
func persistsResults(oc config.OutputConfig) bool {
	switch output.OutputFormat(oc.Format) {
	case output.FormatPostgreSQL, output.FormatMySQL, output.FormatMongoDB:
		return oc.Database != nil && oc.Database.URL != ""
	default:
		return oc.File != "" && oc.File != "-"
	}
}
