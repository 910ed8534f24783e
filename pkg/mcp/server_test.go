package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skilletlabs/skillet/pkg/discovery"
)

func newTestMCPServer(t *testing.T) *Server {
	t.Helper()

	root := t.TempDir()
	skillDir := filepath.Join(root, "code-review")
	require.NoError(t, os.MkdirAll(skillDir, 0o755))
	doc := `---
name: code-review
description: Reviews code. Use when asked to review a pull request.
allowed-tools:
  - bash
  - file_read
---

# Steps

1. Read the diff.
`
	require.NoError(t, os.WriteFile(filepath.Join(skillDir, "SKILL.md"), []byte(doc), 0o644))

	disc, err := discovery.New(discovery.WithRoots(discovery.Root{Dir: root, Scope: discovery.ScopeProject}))
	require.NoError(t, err)
	return NewServer(disc)
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestHandleListSkills(t *testing.T) {
	server := newTestMCPServer(t)

	result, err := server.handleListSkills(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	require.False(t, result.IsError)

	var listings []skillListing
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &listings))
	require.Len(t, listings, 1)
	assert.Equal(t, "code-review", listings[0].Name)
	assert.Equal(t, "project", listings[0].Scope)
}

func TestHandleListSkillsSorted(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"zeta-skill", "alpha-skill"} {
		dir := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		doc := "---\nname: " + name + "\ndescription: Does X. Use when Y.\n---\n\nBody.\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "SKILL.md"), []byte(doc), 0o644))
	}

	disc, err := discovery.New(discovery.WithRoots(discovery.Root{Dir: root, Scope: discovery.ScopeProject}))
	require.NoError(t, err)
	server := NewServer(disc)

	result, err := server.handleListSkills(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	require.False(t, result.IsError)

	var listings []skillListing
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &listings))
	require.Len(t, listings, 2)
	assert.Equal(t, "alpha-skill", listings[0].Name)
	assert.Equal(t, "zeta-skill", listings[1].Name)
}

func TestHandleGetSkill(t *testing.T) {
	server := newTestMCPServer(t)

	req := mcp.CallToolRequest{}
	req.Params.Name = "get_skill"
	req.Params.Arguments = map[string]any{"name": "code-review"}

	result, err := server.handleGetSkill(context.Background(), req)
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := textContent(t, result)
	assert.Contains(t, text, "# Skill: code-review")
	assert.Contains(t, text, "Allowed tools: bash, file_read")
	assert.Contains(t, text, "1. Read the diff.")
}

func TestHandleGetSkillNotFound(t *testing.T) {
	server := newTestMCPServer(t)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"name": "no-such-skill"}

	result, err := server.handleGetSkill(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleGetSkillMissingArgument(t *testing.T) {
	server := newTestMCPServer(t)

	result, err := server.handleGetSkill(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
