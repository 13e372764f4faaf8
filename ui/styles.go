package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	dimColor       = lipgloss.Color("7")
	accentColor    = lipgloss.Color("12")
	successColor   = lipgloss.Color("10")
	warningColor   = lipgloss.Color("11")
	dangerColor    = lipgloss.Color("9")
	highlightColor = lipgloss.Color("13")

	// Transparent backgrounds throughout
	UserStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	AssistantStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	// Timestamps, hints, step notices
	DimStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	TitleStyle = lipgloss.NewStyle().
			Bold(true)

	StatusStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true)

	HighlightStyle = lipgloss.NewStyle().
			Foreground(highlightColor).
			Bold(true)

	ErrorBannerStyle = lipgloss.NewStyle().
				Foreground(dangerColor).
				BorderTop(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(dangerColor)

	FlashStyle = lipgloss.NewStyle().
			Foreground(successColor)
)

// FormatFooter joins key/description pairs into a footer line, descriptions
// in assistant blue.
// Usage: FormatFooter("j/k", "Navigate", "Enter", "Select", "Esc", "Close")
func FormatFooter(parts ...string) string {
	descStyle := lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	var result []string
	for i := 0; i+1 < len(parts); i += 2 {
		result = append(result, parts[i]+" "+descStyle.Render(parts[i+1]))
	}
	return strings.Join(result, "  ")
}
