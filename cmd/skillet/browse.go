package main

import (
	"github.com/spf13/cobra"

	"github.com/skilletlabs/skillet/pkg/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse discovered skills interactively",
	Long: `Open an interactive terminal browser over the discovered skills. Type to
filter, enter to read a skill's document, esc to go back, q to quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		disc, err := newDiscoveryFromConfig()
		if err != nil {
			return err
		}
		return tui.Run(cmd.Context(), disc)
	},
}
