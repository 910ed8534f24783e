package plugins

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func installFakePlugin(t *testing.T, pluginsRoot, repo string, skills ...string) {
	t.Helper()
	for _, name := range skills {
		dir := filepath.Join(pluginsRoot, filepath.FromSlash(repo), skillsSubdir, name)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		content := "---\nname: " + name + "\ndescription: Test skill.\n---\n\nBody.\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "SKILL.md"), []byte(content), 0o644))
	}
}

func TestValidateRepoName(t *testing.T) {
	tests := []struct {
		name    string
		repo    string
		wantErr bool
	}{
		{"valid", "acme/toolkit", false},
		{"empty", "", true},
		{"missing repo", "acme/", true},
		{"missing owner", "/toolkit", true},
		{"no slash", "acme", true},
		{"extra path segments allowed in repo part", "acme/toolkit/extra", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRepoName(tt.repo)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestList(t *testing.T) {
	pluginsRoot := t.TempDir()
	installFakePlugin(t, pluginsRoot, "acme/toolkit", "deploy", "audit")
	installFakePlugin(t, pluginsRoot, "zeta/helpers", "review")

	// A plugin directory without skills is not listed.
	require.NoError(t, os.MkdirAll(filepath.Join(pluginsRoot, "empty", "repo"), 0o755))

	installed, err := List(pluginsRoot)
	require.NoError(t, err)
	require.Len(t, installed, 2)

	assert.Equal(t, "acme/toolkit", installed[0].Name)
	assert.Equal(t, []string{"audit", "deploy"}, installed[0].Skills)
	assert.Equal(t, "zeta/helpers", installed[1].Name)
	assert.Equal(t, []string{"review"}, installed[1].Skills)
}

func TestListMissingRoot(t *testing.T) {
	installed, err := List(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, installed)
}

func TestRemove(t *testing.T) {
	pluginsRoot := t.TempDir()
	installFakePlugin(t, pluginsRoot, "acme/toolkit", "deploy")

	require.NoError(t, Remove(pluginsRoot, "acme/toolkit"))

	installed, err := List(pluginsRoot)
	require.NoError(t, err)
	assert.Empty(t, installed)

	// The org directory goes away with its last plugin.
	_, err = os.Stat(filepath.Join(pluginsRoot, "acme"))
	assert.True(t, os.IsNotExist(err))
}

func TestRemoveKeepsSiblingPlugins(t *testing.T) {
	pluginsRoot := t.TempDir()
	installFakePlugin(t, pluginsRoot, "acme/toolkit", "deploy")
	installFakePlugin(t, pluginsRoot, "acme/other", "review")

	require.NoError(t, Remove(pluginsRoot, "acme/toolkit"))

	installed, err := List(pluginsRoot)
	require.NoError(t, err)
	require.Len(t, installed, 1)
	assert.Equal(t, "acme/other", installed[0].Name)
}

func TestRemoveNotInstalled(t *testing.T) {
	err := Remove(t.TempDir(), "acme/missing")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not installed")
}

func TestFindSkillDirs(t *testing.T) {
	repoDir := t.TempDir()

	for _, dir := range []string{"skills/deploy", "skills/audit", "docs"} {
		require.NoError(t, os.MkdirAll(filepath.Join(repoDir, dir), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(repoDir, "skills/deploy/SKILL.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(repoDir, "skills/audit/SKILL.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(repoDir, "docs/README.md"), []byte("x"), 0o644))

	// .git contents are skipped.
	require.NoError(t, os.MkdirAll(filepath.Join(repoDir, ".git/objects"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(repoDir, ".git/objects/SKILL.md"), []byte("x"), 0o644))

	dirs, err := findSkillDirs(repoDir)
	require.NoError(t, err)
	assert.Len(t, dirs, 2)
	assert.Contains(t, dirs, filepath.Join(repoDir, "skills/deploy"))
	assert.Contains(t, dirs, filepath.Join(repoDir, "skills/audit"))
}

func TestCopyDir(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "scripts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "SKILL.md"), []byte("skill"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "scripts/run.sh"), []byte("#!/bin/sh\n"), 0o755))

	dst := filepath.Join(t.TempDir(), "deploy")
	require.NoError(t, copyDir(src, dst))

	content, err := os.ReadFile(filepath.Join(dst, "SKILL.md"))
	require.NoError(t, err)
	assert.Equal(t, "skill", string(content))

	info, err := os.Stat(filepath.Join(dst, "scripts/run.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}
