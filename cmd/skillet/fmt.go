package main

import (
	"fmt"
	"os"

	"github.com/aymanbagabas/go-udiff"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skilletlabs/skillet/pkg/lint"
	"github.com/skilletlabs/skillet/pkg/presenter"
	"github.com/skilletlabs/skillet/pkg/skill"
)

// FmtConfig holds configuration for the fmt command
type FmtConfig struct {
	Write bool
	Diff  bool
}

var fmtCmd = &cobra.Command{
	Use:   "fmt [target]...",
	Short: "Canonicalize skill documents",
	Long: `Rewrite SKILL.md documents in canonical form: normalized frontmatter
field order, a single delimiter pair, and exactly one trailing newline.
Formatting a canonical document is a no-op.

By default the canonical document is printed to stdout. Use --write to
update files in place, or --diff to see what would change.

Examples:
  skillet fmt ./skills                      # Print canonical documents
  skillet fmt --diff ./skills               # Show pending changes
  skillet fmt --write ./skills              # Rewrite files in place
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		config := getFmtConfigFromFlags(cmd)
		if config.Write && config.Diff {
			return errors.New("--write and --diff are mutually exclusive")
		}

		targets := args
		if len(targets) == 0 {
			targets = []string{"."}
		}

		paths, err := lint.ResolveTargets(targets)
		if err != nil {
			return err
		}

		changed := 0
		for _, path := range paths {
			original, err := os.ReadFile(path)
			if err != nil {
				return errors.Wrapf(err, "failed to read %s", path)
			}

			descriptor, err := skill.Parse(string(original))
			if err != nil {
				presenter.Warning(fmt.Sprintf("Skipping %s: %s", path, err))
				continue
			}

			canonical, err := descriptor.MarshalDocument()
			if err != nil {
				return errors.Wrapf(err, "failed to format %s", path)
			}

			if string(canonical) == string(original) {
				continue
			}
			changed++

			switch {
			case config.Diff:
				fmt.Print(udiff.Unified(path, path, string(original), string(canonical)))
			case config.Write:
				if err := os.WriteFile(path, canonical, 0o644); err != nil {
					return errors.Wrapf(err, "failed to write %s", path)
				}
				presenter.Success(fmt.Sprintf("Formatted %s", path))
			default:
				fmt.Print(string(canonical))
			}
		}

		if config.Diff && changed > 0 {
			os.Exit(1)
		}
		if changed == 0 {
			presenter.Info("All documents already canonical")
		}
		return nil
	},
}

func init() {
	fmtCmd.Flags().BoolP("write", "w", false, "Rewrite files in place")
	fmtCmd.Flags().BoolP("diff", "d", false, "Print a unified diff and exit non-zero if changes are needed")
}

// getFmtConfigFromFlags extracts fmt configuration from command flags
func getFmtConfigFromFlags(cmd *cobra.Command) *FmtConfig {
	config := &FmtConfig{}

	if write, err := cmd.Flags().GetBool("write"); err == nil {
		config.Write = write
	}
	if diff, err := cmd.Flags().GetBool("diff"); err == nil {
		config.Diff = diff
	}

	return config
}
