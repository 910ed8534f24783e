package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skilletlabs/skillet/pkg/discovery"
	"github.com/skilletlabs/skillet/pkg/presenter"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List discovered skills",
	Long: `List all skills discovered across the three scopes, in precedence order:
project (./.skillet/skills), personal (~/.skillet/skills), and installed
plugins. When the same name exists in multiple scopes, only the
highest-precedence skill is shown.

Examples:
  skillet list                              # List all discovered skills
  skillet list --scope project              # Only project-scope skills
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		scopeFilter, _ := cmd.Flags().GetString("scope")

		disc, err := newDiscoveryFromConfig()
		if err != nil {
			return err
		}

		entries, err := disc.Discover()
		if err != nil {
			return err
		}
		names, err := disc.ListNames()
		if err != nil {
			return err
		}

		if len(names) == 0 {
			presenter.Info("No skills found")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tSCOPE\tDESCRIPTION")
		fmt.Fprintln(tw, "----\t-----\t-----------")

		shown := 0
		for _, name := range names {
			entry := entries[name]
			if scopeFilter != "" && string(entry.Scope) != scopeFilter {
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", entry.Name, entry.Scope, truncate(entry.Descriptor.Description, 80))
			shown++
		}
		tw.Flush()

		if shown == 0 {
			presenter.Info(fmt.Sprintf("No skills found in scope %q", scopeFilter))
		}
		return nil
	},
}

func init() {
	listCmd.Flags().String("scope", "", "Only show skills from one scope (project, personal, plugin)")
}

// newDiscoveryFromConfig builds a Discovery over the default roots,
// applying the configured allowlist.
func newDiscoveryFromConfig() (*discovery.Discovery, error) {
	config, err := loadConfig()
	if err != nil {
		return nil, err
	}

	return discovery.New(
		discovery.WithDefaultRoots(),
		discovery.WithAllowed(config.Skills.Allowed...),
	)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
