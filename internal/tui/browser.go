// Package tui provides the interactive stack browser used by
// `laddr log --interactive`.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"laddr.dev/laddr/internal/stack"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "checkout")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

type row struct {
	branch string
	depth  int
}

// Model is the bubbletea model for the stack browser.
type Model struct {
	rows     []row
	cursor   int
	current  string
	Selected string
}

// NewModel builds a browser over a detected forest. The cursor starts on
// the checked-out branch when it appears in the forest.
func NewModel(stacks []*stack.DetectedStack, currentBranch string) Model {
	m := Model{current: currentBranch}
	for _, st := range stacks {
		for _, branch := range st.Branches {
			node := st.Nodes[branch]
			m.rows = append(m.rows, row{branch: branch, depth: node.Depth})
			if branch == currentBranch {
				m.cursor = len(m.rows) - 1
			}
		}
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keys.Quit):
		return m, tea.Quit
	case key.Matches(keyMsg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, keys.Select):
		if len(m.rows) > 0 {
			m.Selected = m.rows[m.cursor].branch
		}
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("stacks"))
	sb.WriteString("\n\n")

	for i, r := range m.rows {
		line := strings.Repeat("  ", r.depth) + r.branch
		if r.branch == m.current {
			line += " *"
		}
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("↑/↓ move · enter checkout · q quit"))
	sb.WriteString("\n")
	return sb.String()
}

// Run shows the browser and returns the branch chosen for checkout, or ""
// when the user quit without selecting.
func Run(stacks []*stack.DetectedStack, currentBranch string) (string, error) {
	program := tea.NewProgram(NewModel(stacks, currentBranch))
	final, err := program.Run()
	if err != nil {
		return "", fmt.Errorf("failed to run stack browser: %w", err)
	}
	model, ok := final.(Model)
	if !ok {
		return "", nil
	}
	return model.Selected, nil
}
