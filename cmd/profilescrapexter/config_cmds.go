// cmd/profilescrapexter/config_cmds.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valpere/ProfileScrapexter/internal/config"
)

func newValidateCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [config.yaml]",
		Short: "Validate a configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.configFile
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("configuration file required")
			}

			cfg, err := loadConfig(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Configuration file '%s' is valid\n", path)
			if opts.verbose {
				fmt.Fprintf(out, "  Base URL: %s\n", cfg.Target.BaseURL)
				fmt.Fprintf(out, "  Max posts: %d\n", cfg.Target.MaxPosts)
				fmt.Fprintf(out, "  Output format: %s\n", cfg.Output.Format)
			}
			for _, w := range cfg.ValidateWithDetails().Warnings {
				fmt.Fprintf(out, "⚠ %s\n", w)
			}
			return nil
		},
	}
}

func newTemplateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "template",
		Short: "Print a starter configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tmpl := config.GenerateTemplate()
			if err := config.SaveToWriter(&tmpl, cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("failed to render template: %w", err)
			}
			return nil
		},
	}
}
