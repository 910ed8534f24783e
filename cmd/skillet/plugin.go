package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skilletlabs/skillet/pkg/plugins"
	"github.com/skilletlabs/skillet/pkg/presenter"
)

var pluginCmd = &cobra.Command{
	Use:   "plugin",
	Short: "Manage skill plugins",
	Long:  `Install, list, and remove skill plugins from GitHub repositories.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var pluginAddCmd = &cobra.Command{
	Use:   "add <repo>[@ref]...",
	Short: "Install skill plugins from GitHub repositories",
	Long: `Install skills from one or more GitHub repositories. Every directory in
the repository containing a SKILL.md is installed as a skill; discovery
namespaces them as org/repo/<skill>.

Examples:
  skillet plugin add acme/toolkit           # Install all skills from repo
  skillet plugin add acme/a acme/b          # Install from multiple repos
  skillet plugin add acme/toolkit@v1.0.0    # Install from a specific tag
  skillet plugin add acme/toolkit -g        # Install globally
  skillet plugin add acme/toolkit --force   # Overwrite an existing install
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		global, _ := cmd.Flags().GetBool("global")
		force, _ := cmd.Flags().GetBool("force")

		pluginsRoot, err := plugins.PluginsDir(global)
		if err != nil {
			return err
		}
		installer := plugins.NewInstaller(pluginsRoot, plugins.WithForce(force))

		for _, arg := range args {
			repo, ref := parseRepoRef(arg)
			presenter.Info(fmt.Sprintf("Installing skills from %s...", repo))

			result, err := installer.Install(cmd.Context(), repo, ref)
			if err != nil {
				return errors.Wrapf(err, "failed to install from %s", repo)
			}

			presenter.Success(fmt.Sprintf("Installed skills: %s", strings.Join(result.Skills, ", ")))

			location := "local (.skillet/plugins/)"
			if global {
				location = "global (~/.skillet/plugins/)"
			}
			presenter.Info(fmt.Sprintf("Plugin '%s' installed to %s", result.PluginName, location))
		}

		return nil
	},
}

var pluginListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all installed plugins",
	Long: `List all installed plugins with their skills.

Shows both local (.skillet/plugins/) and global (~/.skillet/plugins/)
plugins.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		localRoot, err := plugins.PluginsDir(false)
		if err != nil {
			return err
		}
		globalRoot, err := plugins.PluginsDir(true)
		if err != nil {
			return err
		}

		localPlugins, err := plugins.List(localRoot)
		if err != nil {
			return errors.Wrap(err, "failed to list local plugins")
		}
		globalPlugins, err := plugins.List(globalRoot)
		if err != nil {
			return errors.Wrap(err, "failed to list global plugins")
		}

		if len(localPlugins) == 0 && len(globalPlugins) == 0 {
			presenter.Info("No plugins installed")
			return nil
		}

		type located struct {
			plugin   plugins.InstalledPlugin
			location string
		}

		all := make([]located, 0, len(localPlugins)+len(globalPlugins))
		for _, p := range localPlugins {
			all = append(all, located{p, "local"})
		}
		for _, p := range globalPlugins {
			all = append(all, located{p, "global"})
		}
		sort.Slice(all, func(i, j int) bool {
			return all[i].plugin.Name < all[j].plugin.Name
		})

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tLOCATION\tSKILLS")
		fmt.Fprintln(tw, "----\t--------\t------")

		for _, entry := range all {
			p := entry.plugin
			skillsStr := fmt.Sprintf("%d", len(p.Skills))
			if len(p.Skills) > 0 && len(p.Skills) <= 3 {
				skillsStr = strings.Join(p.Skills, ", ")
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, entry.location, skillsStr)
		}
		tw.Flush()

		return nil
	},
}

var pluginRemoveCmd = &cobra.Command{
	Use:   "remove <name>...",
	Short: "Remove one or more plugins",
	Long: `Remove one or more installed plugins by their org/repo name.

Examples:
  skillet plugin remove acme/toolkit        # Remove a single plugin
  skillet plugin remove acme/a acme/b       # Remove multiple plugins
  skillet plugin remove acme/toolkit -g     # Remove from the global directory
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		global, _ := cmd.Flags().GetBool("global")

		pluginsRoot, err := plugins.PluginsDir(global)
		if err != nil {
			return err
		}

		var removed []string
		for _, name := range args {
			if err := plugins.Remove(pluginsRoot, name); err != nil {
				return errors.Wrapf(err, "failed to remove %s", name)
			}
			removed = append(removed, name)
		}

		presenter.Success(fmt.Sprintf("Removed plugins: %s", strings.Join(removed, ", ")))
		return nil
	},
}

func parseRepoRef(arg string) (repo, ref string) {
	if idx := strings.LastIndex(arg, "@"); idx != -1 {
		return arg[:idx], arg[idx+1:]
	}
	return arg, ""
}

func init() {
	pluginAddCmd.Flags().BoolP("global", "g", false, "Install to global directory (~/.skillet/)")
	pluginAddCmd.Flags().Bool("force", false, "Overwrite existing plugins")

	pluginRemoveCmd.Flags().BoolP("global", "g", false, "Remove from global directory")

	pluginCmd.AddCommand(pluginAddCmd)
	pluginCmd.AddCommand(pluginListCmd)
	pluginCmd.AddCommand(pluginRemoveCmd)

	rootCmd.AddCommand(pluginCmd)
}
