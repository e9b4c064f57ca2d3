// cmd/profilescrapexter/run.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/valpere/ProfileScrapexter/internal/config"
	"github.com/valpere/ProfileScrapexter/internal/extract"
	"github.com/valpere/ProfileScrapexter/internal/output"
	"github.com/valpere/ProfileScrapexter/internal/scraper"
	"github.com/valpere/ProfileScrapexter/internal/utils"
)

type runFlags struct {
	username   string
	maxPosts   int
	outputFile string
	format     string
	post       string
}

func newRunCmd(opts *cliOptions) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Extract one profile and its most recent posts",
		Long: `Load the profile page, collect post links by scrolling and resolve every
post. The result is written in the configured output format; a profile that
cannot be loaded is written as an error-only result and exits non-zero.

With --post only that post is resolved and the profile page is not opened.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts.configFile)
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, cfg); err != nil {
				return err
			}

			logger := newLogger(cfg, opts.verbose)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			source := openSessions(cfg, 1, logger)
			defer source.Close()

			if flags.post != "" {
				return runPost(ctx, cfg, flags.post, source.Sessions, logger)
			}
			return runProfile(ctx, cfg, source.Sessions, logger)
		},
	}

	cmd.Flags().StringVarP(&flags.username, "username", "u", "", "profile to extract (overrides target.username)")
	cmd.Flags().IntVarP(&flags.maxPosts, "max-posts", "n", 0, "number of recent posts (overrides target.max_posts)")
	cmd.Flags().StringVarP(&flags.outputFile, "output", "o", "", "output file, - for stdout (overrides output.file)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "output format (overrides output.format)")
	cmd.Flags().StringVarP(&flags.post, "post", "p", "", "extract only this post id or link")
	return cmd
}

// apply copies explicitly set flags over cfg and validates the result.
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.ScraperConfig) error {
	if cmd.Flags().Changed("username") {
		cfg.Target.Username = f.username
	}
	if cmd.Flags().Changed("max-posts") {
		cfg.Target.MaxPosts = f.maxPosts
	}
	if cmd.Flags().Changed("output") {
		cfg.Output.File = f.outputFile
	}
	if cmd.Flags().Changed("format") {
		cfg.Output.Format = strings.ToLower(f.format)
	}

	cfg.Target.Username = strings.TrimPrefix(strings.TrimSpace(cfg.Target.Username), "@")
	if cfg.Target.Username == "" {
		return fmt.Errorf("configuration: target.username is required (or pass --username)")
	}

	switch format := output.OutputFormat(cfg.Output.Format); format {
	case output.FormatExcel, output.FormatSQLite:
		if cfg.Output.File == "" {
			cfg.Output.File = utils.GenerateOutputFileName(cfg.Target.Username, format.GetFileExtension(), time.Now())
		}
	}
	return cfg.Validate()
}

func newCLIScraper(cfg *config.ScraperConfig, sessions scraper.SessionFactory, logger utils.Logger) *scraper.Scraper {
	return scraper.New(scraper.Options{
		Sessions:     sessions,
		Engine:       scraper.NewEngineFromConfig(cfg, nil, logger),
		LinkSelector: cfg.Selectors.PostLink,
		MaxScrolls:   cfg.Target.MaxScrolls,
		Logger:       logger,
	})
}

// writeResult writes one result through a fresh output manager.
func writeResult(ctx context.Context, cfg *config.ScraperConfig, result *extract.AggregateResult, logger utils.Logger) (output.Run, error) {
	sink, err := output.NewManager(ctx, &cfg.Output, logger)
	if err != nil {
		return output.Run{}, fmt.Errorf("failed to create output writer: %w", err)
	}
	run, err := sink.Write(ctx, cfg.Target.Username, result)
	if cerr := sink.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return output.Run{}, fmt.Errorf("failed to write output: %w", err)
	}
	return run, nil
}

// runPost resolves a single post of cfg.Target.Username and writes it as a
// result holding only that post.
func runPost(ctx context.Context, cfg *config.ScraperConfig, post string, sessions scraper.SessionFactory, logger utils.Logger) error {
	rec, err := newCLIScraper(cfg, sessions, logger).ScrapePost(ctx, cfg.Target.Username, post)
	if err != nil {
		return err
	}
	run, err := writeResult(ctx, cfg, &extract.AggregateResult{Posts: []extract.PostRecord{rec}}, logger)
	if err != nil {
		return err
	}
	if rec.Failed() {
		return errors.New(rec.Error)
	}
	logger.WithFields(map[string]interface{}{
		"run_id":   run.ID,
		"username": cfg.Target.Username,
		"post_id":  rec.PostID,
		"format":   cfg.Output.Format,
	}).Info("post extracted")
	return nil
}

// runProfile scrapes cfg.Target.Username once and writes the result.
func runProfile(ctx context.Context, cfg *config.ScraperConfig, sessions scraper.SessionFactory, logger utils.Logger) error {
	username := cfg.Target.Username
	result := newCLIScraper(cfg, sessions, logger).ScrapeProfile(ctx, username, cfg.Target.MaxPosts)

	run, err := writeResult(ctx, cfg, result, logger)
	if err != nil {
		return err
	}

	if result.Failed() {
		return errors.New(result.Error)
	}

	failed := 0
	for _, p := range result.Posts {
		if p.Failed() {
			failed++
		}
	}
	logger.WithFields(map[string]interface{}{
		"run_id":       run.ID,
		"username":     username,
		"posts":        len(result.Posts),
		"posts_failed": failed,
		"format":       cfg.Output.Format,
		"file":         cfg.Output.File,
	}).Info("profile extracted")
	return nil
}
