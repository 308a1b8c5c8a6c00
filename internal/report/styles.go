package report

import "github.com/charmbracelet/lipgloss"

// Terminal styles for diagnostics and build output. Lipgloss degrades
// colors to what the terminal supports.
var (
	styleLocation = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	styleLinter   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleHeading  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	styleWritten  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))

	// Carets take the color of the issue's severity.
	styleError   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	styleWarning = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
)

// severityStyle picks the caret style for an issue severity. Unknown
// severities render as warnings.
func severityStyle(severity string) lipgloss.Style {
	if severity == SeverityError {
		return styleError
	}
	return styleWarning
}

// paint applies style to text when colors are enabled.
func paint(style lipgloss.Style, text string, useColors bool) string {
	if !useColors {
		return text
	}
	return style.Render(text)
}
