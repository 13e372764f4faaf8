package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrorModal is shown instead of the chat when startup fails (bad config,
// invalid agent URL). Enter quits.
type ErrorModal struct {
	title   string
	message string
	width   int
	height  int
}

func NewErrorModal(title, message string) ErrorModal {
	return ErrorModal{
		title:   title,
		message: message,
	}
}

func (m ErrorModal) Init() tea.Cmd {
	return nil
}

func (m ErrorModal) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m ErrorModal) View() string {
	if m.width < 20 || m.height < 10 {
		return m.title + ": " + m.message
	}

	modalWidth := 60
	if m.width < modalWidth+10 {
		modalWidth = m.width - 10
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(dangerColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render(m.title)

	body := lipgloss.NewStyle().
		Width(modalWidth).
		Align(lipgloss.Center).
		Padding(1, 0).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(m.message)

	footer := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render("Press Enter to quit")

	content := strings.Join([]string{title, body, footer}, "\n")
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}
