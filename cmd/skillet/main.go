package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skilletlabs/skillet/pkg/logger"
	"github.com/skilletlabs/skillet/pkg/presenter"
)

func init() {
	// Environment variables
	viper.SetEnvPrefix("SKILLET")
	viper.AutomaticEnv()

	// Config file support
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.skillet")
	viper.AddConfigPath(".")

	// Load config file if it exists (ignore errors if it doesn't)
	_ = viper.ReadInConfig()
}

var tracingShutdown func(context.Context) error

var rootCmd = &cobra.Command{
	Use:   "skillet",
	Short: "Skillet validates, discovers, and serves agent skills",
	Long: `Skillet is a CLI tool for working with agent skills: SKILL.md documents
with YAML frontmatter that describe reusable instructions for AI assistants.

It validates skill documents against the frontmatter contract, discovers
skills across project, personal, and plugin scopes, and exposes them to
agents over HTTP or MCP.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.SetLogLevel(viper.GetString("log_level")); err != nil {
			return err
		}
		logger.SetLogFormat(viper.GetString("log_format"))

		if quiet, err := cmd.Flags().GetBool("quiet"); err == nil {
			presenter.SetQuiet(quiet)
		}

		if viper.GetBool("tracing.enabled") {
			shutdown, err := initTracing(cmd.Context())
			if err != nil {
				logger.G(cmd.Context()).WithError(err).Warn("failed to initialize tracing")
			} else {
				tracingShutdown = shutdown
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if tracingShutdown != nil {
			if err := tracingShutdown(cmd.Context()); err != nil {
				logger.G(cmd.Context()).WithError(err).Warn("failed to shut down tracing")
			}
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
		os.Exit(1)
	},
}

func main() {
	// Add global flags
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "fmt", "Log format (fmt, json)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().String("profile", "", "Configuration profile to apply")

	// Bind flags to viper
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("profile", rootCmd.PersistentFlags().Lookup("profile"))

	// Add subcommands
	rootCmd.AddCommand(withTracing(lintCmd))
	rootCmd.AddCommand(withTracing(listCmd))
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(withTracing(fmtCmd))
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	// Execute
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
