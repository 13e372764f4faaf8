package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func (a AppView) renderHelpModal(width, height int) string {
	kb := a.keys

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(successColor).
		Render("slidechat - Keyboard Shortcuts")

	heading := lipgloss.NewStyle().Foreground(accentColor)
	entry := func(action, desc string) string {
		return fmt.Sprintf("• %-13s %s", kb.DisplayActionKey(action), desc)
	}

	chatActions := lipgloss.JoinVertical(
		lipgloss.Left,
		heading.Render("## Chat"),
		"• Enter         Send message",
		"• Alt+Enter     New line",
		entry("clear_chat", "Clear conversation"),
		entry("search_messages", "Search conversation"),
		entry("yank_last_response", "Copy last answer"),
		entry("yank_conversation", "Copy conversation"),
		entry("help", "Toggle this help"),
		entry("quit", "Quit"),
	)

	navigation := lipgloss.JoinVertical(
		lipgloss.Left,
		heading.Render("## Navigation"),
		entry("scroll_down", "Scroll down 1 line"),
		entry("scroll_up", "Scroll up 1 line"),
		entry("half_page_down", "Half page down"),
		entry("half_page_up", "Half page up"),
		entry("page_down", "Full page down"),
		entry("page_up", "Full page up"),
		entry("scroll_to_top", "Jump to top"),
		entry("scroll_to_bottom", "Jump to bottom"),
	)

	about := DimStyle.Render(fmt.Sprintf("slidechat %s (%s)", a.dataModel.Version, a.dataModel.License))

	columnStyle := lipgloss.NewStyle().Width(42).PaddingLeft(4)
	columns := lipgloss.JoinHorizontal(
		lipgloss.Top,
		columnStyle.Render(chatActions),
		columnStyle.Render(navigation),
	)

	footer := lipgloss.NewStyle().
		Foreground(dimColor).
		Render(fmt.Sprintf("Press %s or Esc to close this help", kb.DisplayActionKey("help")))

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		columns,
		"",
		about,
		footer,
	)

	helpBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(1, 2)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, helpBox.Render(content))
}
