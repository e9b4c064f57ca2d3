// cmd/profilescrapexter/main.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/valpere/ProfileScrapexter/internal/browser"
	"github.com/valpere/ProfileScrapexter/internal/config"
	scrapeerrors "github.com/valpere/ProfileScrapexter/internal/errors"
	"github.com/valpere/ProfileScrapexter/internal/scraper"
	"github.com/valpere/ProfileScrapexter/internal/utils"
)

// Version information (set by build flags)
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// cliOptions holds the persistent flags shared by every command.
type cliOptions struct {
	configFile string
	verbose    bool
}

// sessionSource is where commands get their page sessions from.
type sessionSource struct {
	Sessions scraper.SessionFactory
	Ping     func(context.Context) error
	Close    func() error
}

// openSessions starts a Chrome page pool of size pages for cfg.
var openSessions = func(cfg *config.ScraperConfig, size int, logger utils.Logger) sessionSource {
	pool := browser.NewPool(browser.ChromeFactory(browser.FromConfig(cfg.Browser)), size)
	return sessionSource{
		Sessions: scraper.PooledSessionFactory(pool, scraper.SessionOptionsFromConfig(cfg, logger)),
		Ping:     pool.Ping,
		Close:    pool.Close,
	}
}

func main() {
	opts := &cliOptions{}
	if err := newRootCmd(opts).Execute(); err != nil {
		errorService := scrapeerrors.NewService().WithVerbose(opts.verbose)
		fmt.Fprint(os.Stderr, errorService.FormatErrorForCLI(err))
		os.Exit(errorService.GetExitCode(err))
	}
}

func newRootCmd(opts *cliOptions) *cobra.Command {
	root := &cobra.Command{
		Use:   "profilescrapexter",
		Short: "Profile and post metadata extraction",
		Long: `ProfileScrapexter loads a public profile in a headless browser, collects the
identifiers of its recent posts and resolves engagement counts, captions,
hashtags and timestamps from embedded page state and the rendered DOM.

Example usage:
  profilescrapexter run --username creator --max-posts 5
  profilescrapexter run --config profile.yaml --format csv --output posts.csv
  profilescrapexter serve --config profile.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "configuration file (YAML)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		newRunCmd(opts),
		newServeCmd(opts),
		newValidateCmd(opts),
		newTemplateCmd(),
		newVersionCmd(),
	)
	return root
}

// loadConfig reads path, or returns the defaults when path is empty.
func loadConfig(path string) (*config.ScraperConfig, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.ScraperConfig, verbose bool) utils.Logger {
	level := utils.ParseLogLevel(cfg.LogLevel)
	if verbose {
		level = utils.DebugLevel
	}
	return utils.NewConsoleLogger(level)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ProfileScrapexter %s\n", version)
			fmt.Fprintf(out, "Build time: %s\n", buildTime)
			fmt.Fprintf(out, "Git commit: %s\n", gitCommit)
		},
	}
}
