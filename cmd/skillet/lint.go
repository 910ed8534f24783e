package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skilletlabs/skillet/pkg/lint"
	"github.com/skilletlabs/skillet/pkg/lintcache"
	"github.com/skilletlabs/skillet/pkg/logger"
)

// LintConfig holds configuration for the lint command
type LintConfig struct {
	Format  string
	Jobs    int
	Strict  bool
	NoCache bool
}

// NewLintConfig creates a new LintConfig with default values
func NewLintConfig() *LintConfig {
	return &LintConfig{
		Format: "text",
		Jobs:   0, // 0 means one worker per CPU
	}
}

// Validate validates the lint configuration
func (c *LintConfig) Validate() error {
	if c.Format != "text" && c.Format != "json" {
		return errors.Errorf("invalid format %q: must be 'text' or 'json'", c.Format)
	}
	if c.Jobs < 0 {
		return errors.Errorf("jobs cannot be negative: %d", c.Jobs)
	}
	return nil
}

var lintCmd = &cobra.Command{
	Use:   "lint [target]...",
	Short: "Validate skill documents",
	Long: `Validate SKILL.md documents against the skill frontmatter contract.

Targets can be files, directories (searched recursively for SKILL.md), or
glob patterns. With no targets the current directory is linted.

All violations are reported, not just the first one. The command exits
non-zero when any error is found; with --strict, warnings also fail the
run.

Examples:
  skillet lint                              # Lint the current directory
  skillet lint ./skills                     # Lint a directory
  skillet lint 'skills/*/SKILL.md'          # Lint a glob pattern
  skillet lint --format json ./skills      # Machine-readable output
  skillet lint --strict ./skills           # Treat warnings as errors
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		config := getLintConfigFromFlags(cmd)

		if err := config.Validate(); err != nil {
			return err
		}

		targets := args
		if len(targets) == 0 {
			targets = []string{"."}
		}

		opts := []lint.Option{lint.WithJobs(config.Jobs)}

		appConfig, err := loadConfig()
		if err != nil {
			return err
		}
		if appConfig.Cache.Enabled && !config.NoCache {
			cachePath := appConfig.Cache.Path
			if cachePath == "" {
				cachePath, err = lintcache.DefaultPath()
				if err != nil {
					return err
				}
			}
			cache, err := lintcache.Open(ctx, cachePath)
			if err != nil {
				// Linting works without the cache, just slower.
				logger.G(ctx).WithError(err).Warn("failed to open lint cache")
			} else {
				defer cache.Close()
				opts = append(opts, lint.WithCache(cache))
			}
		}

		report, err := lint.NewRunner(opts...).Run(ctx, targets)
		if err != nil {
			return err
		}

		switch config.Format {
		case "json":
			if err := report.WriteJSON(os.Stdout); err != nil {
				return err
			}
		default:
			if err := report.WriteText(os.Stdout); err != nil {
				return err
			}
		}

		if report.Failed(config.Strict) {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	defaults := NewLintConfig()
	lintCmd.Flags().StringP("format", "f", defaults.Format, "Output format (text, json)")
	lintCmd.Flags().IntP("jobs", "j", defaults.Jobs, "Number of parallel workers (0 = number of CPUs)")
	lintCmd.Flags().Bool("strict", defaults.Strict, "Treat warnings as errors")
	lintCmd.Flags().Bool("no-cache", defaults.NoCache, "Disable the lint result cache")
}

// getLintConfigFromFlags extracts lint configuration from command flags
func getLintConfigFromFlags(cmd *cobra.Command) *LintConfig {
	config := NewLintConfig()

	if format, err := cmd.Flags().GetString("format"); err == nil {
		config.Format = format
	}
	if jobs, err := cmd.Flags().GetInt("jobs"); err == nil {
		config.Jobs = jobs
	}
	if strict, err := cmd.Flags().GetBool("strict"); err == nil {
		config.Strict = strict
	}
	if noCache, err := cmd.Flags().GetBool("no-cache"); err == nil {
		config.NoCache = noCache
	}

	return config
}
