package plugins

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"
	"github.com/rogpeppe/go-internal/lockedfile"

	"github.com/skilletlabs/skillet/pkg/logger"
	"github.com/skilletlabs/skillet/pkg/skill"
)

// Installer installs skill plugins from GitHub repositories using the gh
// CLI. Concurrent installs against the same plugins root are serialized
// with a lock file.
type Installer struct {
	pluginsRoot string
	force       bool
}

// InstallerOption configures an Installer.
type InstallerOption func(*Installer)

// WithForce overwrites an already-installed plugin.
func WithForce(force bool) InstallerOption {
	return func(i *Installer) {
		i.force = force
	}
}

// NewInstaller creates an installer targeting the given plugins root.
func NewInstaller(pluginsRoot string, opts ...InstallerOption) *Installer {
	i := &Installer{pluginsRoot: pluginsRoot}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// InstallResult describes what an install produced.
type InstallResult struct {
	PluginName string
	Skills     []string
}

// Install clones "owner/repo" (optionally at ref) and copies every skill
// directory it ships into the plugins root.
func (i *Installer) Install(ctx context.Context, repo, ref string) (*InstallResult, error) {
	if err := ValidateRepoName(repo); err != nil {
		return nil, err
	}
	if err := validateGHCLI(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(i.pluginsRoot, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create plugins directory")
	}

	unlock, err := lockedfile.MutexAt(filepath.Join(i.pluginsRoot, ".lock")).Lock()
	if err != nil {
		return nil, errors.Wrap(err, "failed to lock plugins directory")
	}
	defer unlock()

	pluginDir := filepath.Join(i.pluginsRoot, filepath.FromSlash(repo))
	if _, err := os.Stat(pluginDir); err == nil && !i.force {
		return nil, errors.Errorf("plugin '%s' is already installed (use --force to overwrite)", repo)
	}

	tempDir, err := i.cloneRepo(ctx, repo, ref)
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tempDir)

	skillDirs, err := findSkillDirs(tempDir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan repository for skills")
	}
	if len(skillDirs) == 0 {
		return nil, errors.New("no skills found in repository (expected directories containing SKILL.md)")
	}

	destSkillsDir := filepath.Join(pluginDir, skillsSubdir)
	if i.force {
		if err := os.RemoveAll(pluginDir); err != nil {
			return nil, errors.Wrap(err, "failed to remove existing plugin")
		}
	}
	if err := os.MkdirAll(destSkillsDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create plugin skills directory")
	}

	result := &InstallResult{PluginName: repo}
	for _, dir := range skillDirs {
		name := filepath.Base(dir)
		if err := copyDir(dir, filepath.Join(destSkillsDir, name)); err != nil {
			return nil, errors.Wrapf(err, "failed to install skill '%s'", name)
		}
		result.Skills = append(result.Skills, name)
	}

	return result, nil
}

func validateGHCLI() error {
	if _, err := exec.LookPath("gh"); err != nil {
		return errors.New("gh CLI is not installed; see https://cli.github.com")
	}
	if err := exec.Command("gh", "auth", "status").Run(); err != nil {
		return errors.New("gh CLI is not authenticated; run 'gh auth login'")
	}
	return nil
}

// cloneRepo shallow-clones the repository into a temp directory, retrying
// transient failures.
func (i *Installer) cloneRepo(ctx context.Context, repo, ref string) (string, error) {
	tempDir, err := os.MkdirTemp("", "skillet-plugin-*")
	if err != nil {
		return "", errors.Wrap(err, "failed to create temp directory")
	}

	cloneArgs := []string{"repo", "clone", repo, tempDir, "--", "--depth", "1"}
	if ref != "" {
		cloneArgs = append(cloneArgs, "--branch", ref, "--single-branch")
	}

	err = retry.Do(
		func() error {
			cmd := exec.CommandContext(ctx, "gh", cloneArgs...)
			if output, err := cmd.CombinedOutput(); err != nil {
				// A partial clone poisons the next attempt.
				os.RemoveAll(tempDir)
				if mkErr := os.Mkdir(tempDir, 0o755); mkErr != nil {
					return retry.Unrecoverable(mkErr)
				}
				return errors.Wrapf(err, "output: %s", string(output))
			}
			return nil
		},
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			logger.G(ctx).WithError(err).WithField("attempt", n+1).Warn("retrying repository clone")
		}),
	)
	if err != nil {
		os.RemoveAll(tempDir)
		return "", errors.Wrapf(err, "failed to clone repository %s", repo)
	}

	return tempDir, nil
}

// findSkillDirs walks a checkout and returns every directory containing a
// SKILL.md.
func findSkillDirs(root string) ([]string, error) {
	var skillDirs []string

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() && (info.Name() == ".git" || info.Name() == "node_modules") {
			return filepath.SkipDir
		}
		if !info.IsDir() && info.Name() == skill.FileName {
			skillDirs = append(skillDirs, filepath.Dir(path))
		}
		return nil
	})

	return skillDirs, err
}

func copyDir(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		destPath := filepath.Join(dst, relPath)

		if info.IsDir() {
			return os.MkdirAll(destPath, info.Mode())
		}
		return copyFile(path, destPath, info.Mode())
	})
}

func copyFile(src, dst string, mode os.FileMode) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer dstFile.Close()

	_, err = io.Copy(dstFile, srcFile)
	return err
}
