package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/xab-mack/tactscan/internal/model"
)

var severityStyles = map[model.Severity]lipgloss.Style{
	model.SeverityCritical: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	model.SeverityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	model.SeverityMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	model.SeverityLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	model.SeverityInfo:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
}

var posStyle = lipgloss.NewStyle().Faint(true)

// Table renders a human-readable listing, one warning per block, already in
// pipeline order (most severe first).
func Table(warnings []model.Warning) string {
	if len(warnings) == 0 {
		return "No warnings found.\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Warnings: %d\n\n", len(warnings))
	for _, w := range warnings {
		sev := severityStyles[w.Severity].Render(strings.ToUpper(string(w.Severity)))
		fmt.Fprintf(&b, "%s [%s] %s\n", sev, w.DetectorID, w.Message)
		fmt.Fprintf(&b, "  %s\n", posStyle.Render(w.Position.String()))
		if w.Suggestion != "" {
			fmt.Fprintf(&b, "  hint: %s\n", w.Suggestion)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
