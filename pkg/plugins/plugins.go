// Package plugins manages skill plugins: GitHub repositories whose skills/
// directory is installed under a plugins root and discovered with an
// org/repo name prefix.
package plugins

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/skilletlabs/skillet/pkg/skill"
)

const (
	skilletDir    = ".skillet"
	pluginsSubdir = "plugins"
	skillsSubdir  = "skills"
)

// InstalledPlugin is a plugin package on disk and the skills it contains.
type InstalledPlugin struct {
	// Name is the "org/repo" identifier.
	Name string
	// Path is the plugin directory.
	Path string
	// Skills are the skill directory names inside the plugin.
	Skills []string
}

// ValidateRepoName checks a GitHub repository reference in "owner/repo"
// form.
func ValidateRepoName(repo string) error {
	if repo == "" {
		return errors.New("repository name cannot be empty")
	}
	parts := strings.SplitN(repo, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return errors.Errorf("invalid repository format %q: expected 'owner/repo'", repo)
	}
	return nil
}

// PluginsDir returns the plugins root for the given scope.
func PluginsDir(global bool) (string, error) {
	if global {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "failed to get user home directory")
		}
		return filepath.Join(homeDir, skilletDir, pluginsSubdir), nil
	}
	return filepath.Join(".", skilletDir, pluginsSubdir), nil
}

// List returns the plugins installed under the given plugins root, sorted
// by name.
func List(pluginsRoot string) ([]InstalledPlugin, error) {
	var installed []InstalledPlugin

	orgs, err := os.ReadDir(pluginsRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to read plugins directory %s", pluginsRoot)
	}

	for _, org := range orgs {
		if !org.IsDir() {
			continue
		}
		repos, err := os.ReadDir(filepath.Join(pluginsRoot, org.Name()))
		if err != nil {
			continue
		}
		for _, repo := range repos {
			if !repo.IsDir() {
				continue
			}
			pluginPath := filepath.Join(pluginsRoot, org.Name(), repo.Name())
			skills := listSkills(filepath.Join(pluginPath, skillsSubdir))
			if len(skills) == 0 {
				continue
			}
			installed = append(installed, InstalledPlugin{
				Name:   org.Name() + "/" + repo.Name(),
				Path:   pluginPath,
				Skills: skills,
			})
		}
	}

	sort.Slice(installed, func(i, j int) bool { return installed[i].Name < installed[j].Name })
	return installed, nil
}

func listSkills(skillsDir string) []string {
	entries, err := os.ReadDir(skillsDir)
	if err != nil {
		return nil
	}

	var skills []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(skillsDir, entry.Name(), skill.FileName)); err == nil {
			skills = append(skills, entry.Name())
		}
	}
	sort.Strings(skills)
	return skills
}

// Remove deletes an installed plugin by its "org/repo" name.
func Remove(pluginsRoot, name string) error {
	if err := ValidateRepoName(name); err != nil {
		return err
	}

	pluginDir := filepath.Join(pluginsRoot, filepath.FromSlash(name))
	if _, err := os.Stat(pluginDir); os.IsNotExist(err) {
		return errors.Errorf("plugin '%s' is not installed", name)
	}

	if err := os.RemoveAll(pluginDir); err != nil {
		return errors.Wrapf(err, "failed to remove plugin '%s'", name)
	}

	// Drop the org directory once its last plugin is gone.
	orgDir := filepath.Dir(pluginDir)
	if entries, err := os.ReadDir(orgDir); err == nil && len(entries) == 0 {
		_ = os.Remove(orgDir)
	}

	return nil
}
