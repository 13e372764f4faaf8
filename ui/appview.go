package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"slidechat/config"
	"slidechat/model"
)

// AppView is the chat screen: transcript viewport, input box, error banner
// and the help and search overlays.
type AppView struct {
	dataModel *model.Model
	keys      *config.KeyBindingsConfig

	viewport       viewport.Model
	textarea       textarea.Model
	loadingSpinner spinner.Model

	width  int
	height int
	ready  bool

	showHelp bool

	showMessageSearch    bool
	messageSearchInput   textinput.Model
	messageSearchResults []model.MessageMatch
	selectedSearchIdx    int
	searchScrollIdx      int

	highlightedMessageIdx int
	highlightFlashCount   int

	// One-line notice in the status bar ("Copied last response")
	statusFlash string
}

func NewAppView(cfg *config.Config, client model.Converser, version, license string) AppView {
	keys := cfg.Keybindings
	if keys == nil {
		keys = config.DefaultKeybindings()
	}

	ta := textarea.New()
	ta.Placeholder = "Ask the slides agent something..."
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(80)

	// Enter sends; Alt+Enter inserts a newline
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))

	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = AssistantStyle

	si := textinput.New()
	si.Placeholder = "Search messages..."
	si.CharLimit = 200

	return AppView{
		dataModel:             model.NewModel(cfg, client, version, license),
		keys:                  keys,
		viewport:              viewport.New(0, 0),
		textarea:              ta,
		loadingSpinner:        sp,
		messageSearchInput:    si,
		highlightedMessageIdx: -1,
	}
}

func (a AppView) Init() tea.Cmd {
	return textarea.Blink
}

func (a AppView) View() string {
	if !a.ready {
		return "Loading slidechat..."
	}

	// Overlays, top layer first
	if a.showHelp {
		return a.renderHelpModal(a.width, a.height)
	}
	if a.showMessageSearch {
		return renderMessageSearch(a, a.messageSearchInput, a.messageSearchResults, a.selectedSearchIdx, a.searchScrollIdx, a.width, a.height)
	}

	title := AssistantStyle.Render("slidechat") + TitleStyle.Render(" - "+a.dataModel.Config.AgentURL)
	if a.dataModel.Streaming() {
		title += DimStyle.Render(" | " + a.dataModel.State.String())
	}

	parts := []string{title, "", a.viewport.View()}
	if banner := a.renderErrorBanner(); banner != "" {
		parts = append(parts, banner)
	}
	parts = append(parts, a.textarea.View(), a.renderStatusBar())

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a AppView) renderStatusBar() string {
	if a.statusFlash != "" {
		return FlashStyle.Render(a.statusFlash)
	}

	descStyle := lipgloss.NewStyle().Foreground(successColor).Bold(true)
	bar := fmt.Sprintf("%s %s  %s %s  %s %s  %s %s  Enter %s  Alt+Enter %s",
		a.keys.DisplayActionKey("quit"), descStyle.Render("Quit"),
		a.keys.DisplayActionKey("clear_chat"), descStyle.Render("Clear"),
		a.keys.DisplayActionKey("search_messages"), descStyle.Render("Search"),
		a.keys.DisplayActionKey("help"), descStyle.Render("Help"),
		descStyle.Render("Send"),
		descStyle.Render("New Line"),
	)
	return StatusStyle.Render(bar)
}

// layout sizes the viewport around the fixed chrome: title, blank line,
// textarea, status bar and, while shown, the error banner.
func (a *AppView) layout() {
	chrome := 1 + 1 + a.textarea.Height() + 1
	if a.dataModel.Error != "" {
		chrome += 2
	}
	h := a.height - chrome
	if h < 1 {
		h = 1
	}
	a.viewport.Width = a.width
	a.viewport.Height = h
	a.textarea.SetWidth(a.width)
}

func (a *AppView) closeAllModals() {
	a.showHelp = false
	a.showMessageSearch = false
	if a.messageSearchInput.Focused() {
		a.messageSearchInput.Blur()
	}
	a.textarea.Focus()
}
