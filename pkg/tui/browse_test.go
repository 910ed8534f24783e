package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skilletlabs/skillet/pkg/discovery"
	"github.com/skilletlabs/skillet/pkg/skill"
)

func testEntries() (map[string]*discovery.Entry, []string) {
	entries := map[string]*discovery.Entry{
		"code-review": {
			Name: "code-review",
			Descriptor: &skill.Descriptor{
				Name:         "code-review",
				Description:  "Reviews code. Use when asked to review a pull request.",
				AllowedTools: []string{"bash", "file_read"},
				Body:         "# Steps\n\n1. Read the diff.",
			},
			Path:  "/skills/code-review/SKILL.md",
			Scope: discovery.ScopeProject,
		},
		"deploy": {
			Name: "deploy",
			Descriptor: &skill.Descriptor{
				Name:        "deploy",
				Description: "Deploys the app.",
				Body:        "Run the deploy script.",
			},
			Path:  "/skills/deploy/SKILL.md",
			Scope: discovery.ScopePersonal,
		},
	}
	return entries, []string{"code-review", "deploy"}
}

func TestNewModel(t *testing.T) {
	entries, names := testEntries()
	model := NewModel(entries, names)

	items := model.list.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "code-review", items[0].(skillItem).Title())
	assert.Contains(t, items[0].(skillItem).Description(), "[project]")
}

func TestUpdateEnterShowsDetail(t *testing.T) {
	entries, names := testEntries()
	model := NewModel(entries, names)

	updated, _ := model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	model = updated.(Model)
	assert.True(t, model.ready)

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model = updated.(Model)

	assert.Equal(t, stateDetail, model.state)
	require.NotNil(t, model.selected)
	assert.Equal(t, "code-review", model.selected.Name)
	assert.Contains(t, model.View(), "esc: back")
}

func TestUpdateEscReturnsToList(t *testing.T) {
	entries, names := testEntries()
	model := NewModel(entries, names)

	updated, _ := model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	model = updated.(Model)
	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model = updated.(Model)
	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	model = updated.(Model)

	assert.Equal(t, stateList, model.state)
}

func TestUpdateQuit(t *testing.T) {
	entries, names := testEntries()
	model := NewModel(entries, names)

	updated, _ := model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	model = updated.(Model)

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestRenderSkill(t *testing.T) {
	entries, _ := testEntries()
	out := renderSkill(entries["code-review"])

	assert.Contains(t, out, "code-review")
	assert.Contains(t, out, "allowed-tools: bash, file_read")
	assert.Contains(t, out, "# Steps")
}
