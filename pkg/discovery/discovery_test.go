package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSkill(t *testing.T, root, dir, name, description string) string {
	t.Helper()
	skillDir := filepath.Join(root, dir)
	require.NoError(t, os.MkdirAll(skillDir, 0o755))
	content := `---
name: ` + name + `
description: ` + description + `
---

# ` + name + `

Instructions for ` + name + `.
`
	require.NoError(t, os.WriteFile(filepath.Join(skillDir, "SKILL.md"), []byte(content), 0o644))
	return skillDir
}

func TestNew(t *testing.T) {
	t.Run("with custom dirs", func(t *testing.T) {
		d, err := New(WithSkillDirs("/tmp/skills1", "/tmp/skills2"))
		require.NoError(t, err)
		require.Len(t, d.Roots(), 2)
		assert.Equal(t, "/tmp/skills1", d.Roots()[0].Dir)
		assert.Equal(t, ScopeProject, d.Roots()[0].Scope)
	})

	t.Run("with explicit roots", func(t *testing.T) {
		d, err := New(WithRoots(
			Root{Dir: "/a", Scope: ScopeProject},
			Root{Dir: "/b", Scope: ScopePersonal},
		))
		require.NoError(t, err)
		assert.Len(t, d.Roots(), 2)
	})
}

func TestDiscover(t *testing.T) {
	tmpDir := t.TempDir()
	skillDir := writeSkill(t, tmpDir, "test-skill", "test-skill", "A test skill. Use when testing.")
	writeSkill(t, tmpDir, "another-skill", "another-skill", "Another test skill.")

	d, err := New(WithSkillDirs(tmpDir))
	require.NoError(t, err)

	entries, err := d.Discover()
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entry, exists := entries["test-skill"]
	require.True(t, exists)
	assert.Equal(t, "test-skill", entry.Name)
	assert.Equal(t, "A test skill. Use when testing.", entry.Descriptor.Description)
	assert.Equal(t, skillDir, entry.Directory)
	assert.Equal(t, filepath.Join(skillDir, "SKILL.md"), entry.Path)
	assert.Equal(t, ScopeProject, entry.Scope)
	assert.Contains(t, entry.Descriptor.Body, "# test-skill")
	assert.NotContains(t, entry.Descriptor.Body, "---")
}

func TestDiscoverPrecedence(t *testing.T) {
	projectDir := t.TempDir()
	personalDir := t.TempDir()

	writeSkill(t, projectDir, "shared-skill", "shared-skill", "From project scope.")
	writeSkill(t, personalDir, "shared-skill", "shared-skill", "From personal scope.")

	d, err := New(WithRoots(
		Root{Dir: projectDir, Scope: ScopeProject},
		Root{Dir: personalDir, Scope: ScopePersonal},
	))
	require.NoError(t, err)

	entries, err := d.Discover()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries["shared-skill"]
	assert.Equal(t, "From project scope.", entry.Descriptor.Description)
	assert.Equal(t, ScopeProject, entry.Scope)
}

func TestDiscoverPluginRoots(t *testing.T) {
	tmpDir := t.TempDir()
	pluginsDir := filepath.Join(tmpDir, "plugins")
	skillsDir := filepath.Join(pluginsDir, "acme", "toolkit", "skills")
	writeSkill(t, skillsDir, "deploy", "deploy", "Deploys things. Use when deploying.")

	d := &Discovery{}
	d.addPluginRoots(pluginsDir)
	require.Len(t, d.roots, 1)
	assert.Equal(t, ScopePlugin, d.roots[0].Scope)
	assert.Equal(t, "acme/toolkit/", d.roots[0].Prefix)

	entries, err := d.Discover()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry, exists := entries["acme/toolkit/deploy"]
	require.True(t, exists)
	assert.Equal(t, "acme/toolkit/deploy", entry.Name)
	assert.Equal(t, ScopePlugin, entry.Scope)
}

func TestDiscoverSkipsInvalidSkills(t *testing.T) {
	tmpDir := t.TempDir()

	noName := filepath.Join(tmpDir, "no-name")
	require.NoError(t, os.MkdirAll(noName, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(noName, "SKILL.md"),
		[]byte("---\ndescription: Missing name.\n---\nBody.\n"), 0o644))

	noFrontmatter := filepath.Join(tmpDir, "no-frontmatter")
	require.NoError(t, os.MkdirAll(noFrontmatter, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(noFrontmatter, "SKILL.md"),
		[]byte("# Just content\n"), 0o644))

	writeSkill(t, tmpDir, "good", "good", "A valid skill.")

	d, err := New(WithSkillDirs(tmpDir))
	require.NoError(t, err)

	entries, err := d.Discover()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries, "good")
}

func TestDiscoverSymlinkedSkillDir(t *testing.T) {
	tmpDir := t.TempDir()
	skillsDir := filepath.Join(tmpDir, "skills")
	require.NoError(t, os.MkdirAll(skillsDir, 0o755))

	actual := writeSkill(t, tmpDir, filepath.Join("elsewhere", "linked-skill"), "linked-skill", "Accessed via symlink.")
	require.NoError(t, os.Symlink(actual, filepath.Join(skillsDir, "linked-skill")))

	d, err := New(WithSkillDirs(skillsDir))
	require.NoError(t, err)

	entries, err := d.Discover()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries, "linked-skill")
}

func TestDiscoverAllowedToolsForms(t *testing.T) {
	tmpDir := t.TempDir()

	listDir := filepath.Join(tmpDir, "list-skill")
	require.NoError(t, os.MkdirAll(listDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(listDir, "SKILL.md"), []byte(`---
name: list-skill
description: Uses tools.
allowed-tools:
  - bash
  - read
---
Body.
`), 0o644))

	stringDir := filepath.Join(tmpDir, "string-skill")
	require.NoError(t, os.MkdirAll(stringDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(stringDir, "SKILL.md"), []byte(`---
name: string-skill
description: Uses tools.
allowed-tools: bash, read
---
Body.
`), 0o644))

	d, err := New(WithSkillDirs(tmpDir))
	require.NoError(t, err)

	entries, err := d.Discover()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, []string{"bash", "read"}, entries["list-skill"].Descriptor.AllowedTools)
	assert.Equal(t, []string{"bash", "read"}, entries["string-skill"].Descriptor.AllowedTools)
}

func TestGet(t *testing.T) {
	tmpDir := t.TempDir()
	writeSkill(t, tmpDir, "test-skill", "test-skill", "A test skill.")

	d, err := New(WithSkillDirs(tmpDir))
	require.NoError(t, err)

	t.Run("existing skill", func(t *testing.T) {
		entry, err := d.Get("test-skill")
		require.NoError(t, err)
		assert.Equal(t, "test-skill", entry.Name)
	})

	t.Run("non-existent skill", func(t *testing.T) {
		entry, err := d.Get("unknown")
		assert.Error(t, err)
		assert.Nil(t, entry)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestListNames(t *testing.T) {
	tmpDir := t.TempDir()
	for _, name := range []string{"gamma", "alpha", "beta"} {
		writeSkill(t, tmpDir, name, name, "Skill "+name+".")
	}

	d, err := New(WithSkillDirs(tmpDir))
	require.NoError(t, err)

	names, err := d.ListNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, names)
}

func TestNonExistentRoot(t *testing.T) {
	d, err := New(WithSkillDirs("/non/existent/path"))
	require.NoError(t, err)

	entries, err := d.Discover()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWithAllowed(t *testing.T) {
	tmpDir := t.TempDir()
	writeSkill(t, tmpDir, "deploy-prod", "deploy-prod", "Deploys to prod.")
	writeSkill(t, tmpDir, "deploy-staging", "deploy-staging", "Deploys to staging.")
	writeSkill(t, tmpDir, "code-review", "code-review", "Reviews code.")

	d, err := New(WithSkillDirs(tmpDir), WithAllowed("deploy-*"))
	require.NoError(t, err)

	names, err := d.ListNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"deploy-prod", "deploy-staging"}, names)

	_, err = d.Get("code-review")
	assert.Error(t, err)
}

func TestFilterAllowed(t *testing.T) {
	entries := map[string]*Entry{
		"skill-a":          {Name: "skill-a"},
		"skill-b":          {Name: "skill-b"},
		"acme/tools/build": {Name: "acme/tools/build"},
	}

	t.Run("empty allowlist returns all", func(t *testing.T) {
		assert.Len(t, FilterAllowed(entries, nil), 3)
	})

	t.Run("exact names", func(t *testing.T) {
		filtered := FilterAllowed(entries, []string{"skill-a"})
		assert.Len(t, filtered, 1)
		assert.Contains(t, filtered, "skill-a")
	})

	t.Run("glob patterns", func(t *testing.T) {
		filtered := FilterAllowed(entries, []string{"skill-*"})
		assert.Len(t, filtered, 2)
		assert.NotContains(t, filtered, "acme/tools/build")
	})

	t.Run("namespaced glob", func(t *testing.T) {
		filtered := FilterAllowed(entries, []string{"acme/**"})
		assert.Len(t, filtered, 1)
		assert.Contains(t, filtered, "acme/tools/build")
	})
}
