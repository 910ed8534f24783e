package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skilletlabs/skillet/pkg/presenter"
)

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a skill's full document",
	Long: `Show the resolved document for a discovered skill, including where it
was found and which scope won if the name exists in several.

Examples:
  skillet show code-review                  # Show a project or personal skill
  skillet show acme/toolkit/deploy          # Show a plugin skill
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		disc, err := newDiscoveryFromConfig()
		if err != nil {
			return err
		}

		entry, err := disc.Get(args[0])
		if err != nil {
			return err
		}

		presenter.Section(entry.Name)
		presenter.Info(fmt.Sprintf("Scope: %s", entry.Scope))
		presenter.Info(fmt.Sprintf("Path:  %s", entry.Path))
		if len(entry.Descriptor.AllowedTools) > 0 {
			presenter.Info(fmt.Sprintf("Tools: %s", strings.Join(entry.Descriptor.AllowedTools, ", ")))
		}
		presenter.Separator()

		fmt.Println(entry.Descriptor.Description)
		fmt.Println()
		fmt.Println(entry.Descriptor.Body)
		return nil
	},
}
