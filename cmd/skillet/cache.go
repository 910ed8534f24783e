package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/skilletlabs/skillet/pkg/lintcache"
	"github.com/skilletlabs/skillet/pkg/presenter"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the lint result cache",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove stale entries from the lint cache",
	Long: `Remove lint cache entries older than the given age.

Examples:
  skillet cache prune                       # Drop entries older than 30 days
  skillet cache prune --age 24h             # Drop entries older than a day
  skillet cache prune --age 0s              # Drop everything
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		age, _ := cmd.Flags().GetDuration("age")

		config, err := loadConfig()
		if err != nil {
			return err
		}
		cachePath := config.Cache.Path
		if cachePath == "" {
			cachePath, err = lintcache.DefaultPath()
			if err != nil {
				return err
			}
		}

		cache, err := lintcache.Open(cmd.Context(), cachePath)
		if err != nil {
			return err
		}
		defer cache.Close()

		pruned, err := cache.Prune(age)
		if err != nil {
			return err
		}

		presenter.Success(fmt.Sprintf("Pruned %d cache entries", pruned))
		return nil
	},
}

func init() {
	cachePruneCmd.Flags().Duration("age", 30*24*time.Hour, "Remove entries older than this")
	cacheCmd.AddCommand(cachePruneCmd)
}
