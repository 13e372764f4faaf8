package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"slidechat/model"
)

// Border(2) + Padding(2) + Title(1) + Blank(1) + SearchInput(1) + Blank(1) +
// "Found X matches:"(1) + Blank(1) + Footer(1) + Blank(1)
const searchModalOverhead = 12

// Conservative, previews can wrap
const linesPerResult = 4

func maxVisibleResults(height int) int {
	available := height - searchModalOverhead - 4 // scroll indicators
	n := available / linesPerResult
	if n < 1 {
		return 1
	}
	return n
}

func renderMessageSearch(a AppView, searchInput textinput.Model, results []model.MessageMatch, selectedIdx, scrollIdx, width, height int) string {
	modalWidth := width - 4
	if modalWidth > 100 {
		modalWidth = 100
	}

	modalStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dimColor).
		Padding(1, 2)

	title := TitleStyle.Render("🔍 Search Conversation")

	var resultsView strings.Builder
	switch {
	case len(results) == 0 && searchInput.Value() == "":
		resultsView.WriteString(DimStyle.Render("Type to search messages..."))
	case len(results) == 0:
		resultsView.WriteString(DimStyle.Render("No matches found"))
	default:
		endIdx := scrollIdx + maxVisibleResults(height)
		if endIdx > len(results) {
			endIdx = len(results)
		}

		resultsView.WriteString(fmt.Sprintf("Found %d matches:\n\n", len(results)))
		if scrollIdx > 0 {
			resultsView.WriteString(DimStyle.Render(fmt.Sprintf("↑ %d more above", scrollIdx)) + "\n\n")
		}

		for i := scrollIdx; i < endIdx; i++ {
			match := results[i]
			matchText := fmt.Sprintf("%s [%s]\n  %s",
				roleLabel(match.Role),
				match.Timestamp.Format("Jan 2, 3:04 PM"),
				match.Preview,
			)
			if i == selectedIdx {
				matchText = SelectedStyle.Render("> " + matchText)
			} else {
				matchText = "  " + matchText
			}
			resultsView.WriteString(matchText + "\n\n")
		}

		if endIdx < len(results) {
			resultsView.WriteString(DimStyle.Render(fmt.Sprintf("↓ %d more below", len(results)-endIdx)))
		}
	}

	navKeys := a.keys.DisplayActionKey("search_next") + "/" + a.keys.DisplayActionKey("search_previous")
	footer := FormatFooter("Type", "to search", navKeys, "Navigate", "Enter", "Jump", "Esc", "Close")

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		"",
		searchInput.View(),
		"",
		strings.TrimRight(resultsView.String(), "\n"),
		"",
		footer,
	)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		modalStyle.Width(modalWidth).Render(content))
}

func (a AppView) handleMessageSearchUpdate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.closeAllModals()
		return a, nil

	case "up", a.keys.GetActionKey("search_previous"):
		if a.selectedSearchIdx > 0 {
			a.selectedSearchIdx--
		}
		if a.selectedSearchIdx < a.searchScrollIdx {
			a.searchScrollIdx = a.selectedSearchIdx
		}
		return a, nil

	case "down", a.keys.GetActionKey("search_next"):
		if a.selectedSearchIdx < len(a.messageSearchResults)-1 {
			a.selectedSearchIdx++
		}
		if visible := maxVisibleResults(a.height); a.selectedSearchIdx >= a.searchScrollIdx+visible {
			a.searchScrollIdx = a.selectedSearchIdx - visible + 1
		}
		return a, nil

	case "enter":
		if a.selectedSearchIdx < 0 || a.selectedSearchIdx >= len(a.messageSearchResults) {
			return a, nil
		}
		a.jumpToMessage(a.messageSearchResults[a.selectedSearchIdx].MessageIndex)
		a.closeAllModals()
		return a, tickFlash()
	}

	var cmd tea.Cmd
	a.messageSearchInput, cmd = a.messageSearchInput.Update(msg)
	a.messageSearchResults = model.SearchMessages(a.dataModel.Transcript.Messages(), a.messageSearchInput.Value())
	a.selectedSearchIdx = 0
	a.searchScrollIdx = 0
	return a, cmd
}

// jumpToMessage centres the viewport on the message at idx and starts the
// highlight flash.
func (a *AppView) jumpToMessage(idx int) {
	a.highlightedMessageIdx = idx
	a.highlightFlashCount = 1
	a.updateViewportContent(false)

	var before strings.Builder
	for i, msg := range a.dataModel.Transcript.Messages() {
		if i >= idx {
			break
		}
		before.WriteString(a.renderMessageBlock(i, msg))
	}

	offset := strings.Count(before.String(), "\n") - a.viewport.Height/2
	if maxOffset := a.viewport.TotalLineCount() - a.viewport.Height; offset > maxOffset {
		offset = maxOffset
	}
	if offset < 0 {
		offset = 0
	}
	a.viewport.SetYOffset(offset)
}
