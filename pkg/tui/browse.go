// Package tui implements the interactive skill browser used by
// `skillet browse`. It shows the discovered skills in a filterable list and
// renders the selected skill's document in a pager.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/skilletlabs/skillet/pkg/discovery"
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	toolsStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
)

// skillItem adapts a discovered skill to the list widget.
type skillItem struct {
	entry *discovery.Entry
}

func (i skillItem) Title() string { return i.entry.Name }

func (i skillItem) Description() string {
	desc := i.entry.Descriptor.Description
	return fmt.Sprintf("[%s] %s", i.entry.Scope, desc)
}

func (i skillItem) FilterValue() string {
	return i.entry.Name + " " + i.entry.Descriptor.Description
}

// viewState tracks which pane has focus.
type viewState int

const (
	stateList viewState = iota
	stateDetail
)

// Model is the browser's bubbletea model.
type Model struct {
	list     list.Model
	viewport viewport.Model
	state    viewState
	ready    bool
	width    int
	height   int
	selected *discovery.Entry
}

// NewModel builds the browser model from discovered skills, ordered by
// name.
func NewModel(entries map[string]*discovery.Entry, names []string) Model {
	items := make([]list.Item, 0, len(names))
	for _, name := range names {
		items = append(items, skillItem{entry: entries[name]})
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Skills"
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)

	return Model{
		list:     l,
		viewport: viewport.New(0, 0),
		state:    stateList,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height)
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 2 // leave room for the footer
		m.ready = true

	case tea.KeyMsg:
		switch m.state {
		case stateList:
			// Do not intercept keys while the user is typing a filter.
			if m.list.FilterState() == list.Filtering {
				break
			}
			switch msg.String() {
			case "q", "ctrl+c":
				return m, tea.Quit
			case "enter":
				if item, ok := m.list.SelectedItem().(skillItem); ok {
					m.selected = item.entry
					m.viewport.SetContent(renderSkill(item.entry))
					m.viewport.GotoTop()
					m.state = stateDetail
					return m, nil
				}
			}
		case stateDetail:
			switch msg.String() {
			case "q", "esc":
				m.state = stateList
				return m, nil
			case "ctrl+c":
				return m, tea.Quit
			}
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case stateList:
		m.list, cmd = m.list.Update(msg)
	case stateDetail:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.state == stateDetail {
		footer := dimStyle.Render("esc: back • q: back • ctrl+c: quit")
		return m.viewport.View() + "\n" + footer
	}
	return m.list.View()
}

// renderSkill formats a skill document for the detail pane.
func renderSkill(entry *discovery.Entry) string {
	var sb strings.Builder

	sb.WriteString(headerStyle.Render(entry.Name))
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(fmt.Sprintf("%s · %s", entry.Scope, entry.Path)))
	sb.WriteString("\n\n")
	sb.WriteString(entry.Descriptor.Description)
	sb.WriteString("\n")
	if len(entry.Descriptor.AllowedTools) > 0 {
		sb.WriteString("\n")
		sb.WriteString(toolsStyle.Render("allowed-tools: " + strings.Join(entry.Descriptor.AllowedTools, ", ")))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(entry.Descriptor.Body)
	sb.WriteString("\n")

	return sb.String()
}

// Run discovers skills and starts the browser in the alternate screen.
func Run(ctx context.Context, disc *discovery.Discovery) error {
	entries, err := disc.Discover()
	if err != nil {
		return err
	}
	names, err := disc.ListNames()
	if err != nil {
		return err
	}

	program := tea.NewProgram(NewModel(entries, names), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = program.Run()
	return err
}
