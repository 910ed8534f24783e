package main

import (
	"github.com/spf13/cobra"

	"github.com/skilletlabs/skillet/pkg/mcp"
	"github.com/skilletlabs/skillet/pkg/presenter"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve skills over the Model Context Protocol",
	Long: `Start an MCP server on stdio that exposes the discovered skills to MCP
clients through two tools:

  list_skills    Enumerate skills with names and descriptions
  get_skill      Load one skill's full instructions

Register it in an MCP client configuration as:

  {"command": "skillet", "args": ["mcp"]}
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		disc, err := newDiscoveryFromConfig()
		if err != nil {
			return err
		}

		// stdout carries the protocol, keep chatter off it
		presenter.SetQuiet(true)

		return mcp.NewServer(disc).ServeStdio()
	},
}
