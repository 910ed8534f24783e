package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skilletlabs/skillet/pkg/presenter"
	"github.com/skilletlabs/skillet/pkg/skill"
)

var initCmd = &cobra.Command{
	Use:   "init <name>",
	Short: "Scaffold a new skill",
	Long: `Create a new skill directory with a SKILL.md template. The directory is
named after the skill, as discovery expects.

By default the skill is created under ./.skillet/skills; use --global for
~/.skillet/skills or --dir for an explicit parent directory.

Examples:
  skillet init code-review                  # ./.skillet/skills/code-review
  skillet init code-review -g               # ~/.skillet/skills/code-review
  skillet init code-review --dir ./skills   # ./skills/code-review
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		global, _ := cmd.Flags().GetBool("global")
		parentDir, _ := cmd.Flags().GetString("dir")

		descriptor := &skill.Descriptor{
			Name:        name,
			Description: "Describe what this skill does and when to use it.",
			Body:        "# " + name + "\n\n## Instructions\n\n1. Replace this with the skill's instructions.",
		}
		if violations := descriptor.Validate(); len(violations) > 0 {
			return errors.Errorf("invalid skill name %q: %s", name, violations[0].Message)
		}

		if parentDir == "" {
			if global {
				home, err := os.UserHomeDir()
				if err != nil {
					return errors.Wrap(err, "failed to get user home directory")
				}
				parentDir = filepath.Join(home, ".skillet", "skills")
			} else {
				parentDir = filepath.Join(".", ".skillet", "skills")
			}
		}

		skillDir := filepath.Join(parentDir, name)
		skillPath := filepath.Join(skillDir, skill.FileName)
		if _, err := os.Stat(skillPath); err == nil {
			return errors.Errorf("skill already exists at %s", skillPath)
		}

		if err := os.MkdirAll(skillDir, 0o755); err != nil {
			return errors.Wrap(err, "failed to create skill directory")
		}

		document, err := descriptor.MarshalDocument()
		if err != nil {
			return errors.Wrap(err, "failed to render skill template")
		}
		if err := os.WriteFile(skillPath, document, 0o644); err != nil {
			return errors.Wrap(err, "failed to write SKILL.md")
		}

		presenter.Success(fmt.Sprintf("Created %s", skillPath))
		presenter.Info("Edit the description so agents know when to use this skill")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolP("global", "g", false, "Create under ~/.skillet/skills")
	initCmd.Flags().String("dir", "", "Parent directory for the new skill")
}
