package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/xab-mack/tactscan/internal/model"
)

var (
	cursorStyle = lipgloss.NewStyle().Bold(true)
	faintStyle  = lipgloss.NewStyle().Faint(true)
)

type modelT struct {
	warnings []model.Warning
	cursor   int
}

func initialModel(warnings []model.Warning) modelT { return modelT{warnings: warnings} }

func (m modelT) Init() tea.Cmd { return nil }

func (m modelT) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.warnings)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

func (m modelT) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Warnings (%d)  q to quit\n\n", len(m.warnings))
	for i, w := range m.warnings {
		line := fmt.Sprintf("%s [%s] %s %s", strings.ToUpper(string(w.Severity)), w.DetectorID, w.Position, w.Message)
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteByte('\n')
	}
	if len(m.warnings) > 0 {
		w := m.warnings[m.cursor]
		if w.Suggestion != "" {
			b.WriteByte('\n')
			b.WriteString(faintStyle.Render("hint: " + w.Suggestion))
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Run launches the interactive warning list.
func Run(warnings []model.Warning) error {
	p := tea.NewProgram(initialModel(warnings))
	_, err := p.Run()
	return err
}
