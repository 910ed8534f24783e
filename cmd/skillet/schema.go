package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skilletlabs/skillet/pkg/skill"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema for skill frontmatter",
	Long: `Print the JSON schema describing valid SKILL.md frontmatter. The schema
can be fed to editors and other validators.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		schema, err := skill.FrontmatterSchema()
		if err != nil {
			return err
		}
		fmt.Println(string(schema))
		return nil
	},
}
