package ui

import (
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"slidechat/config"
	"slidechat/model"
)

const (
	flashInterval     = 300 * time.Millisecond
	flashTicks        = 6
	statusFlashPeriod = 2 * time.Second
)

// clipboardWrite is swapped out in tests.
var clipboardWrite = clipboard.WriteAll

func (a AppView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		widthChanged := a.ready && msg.Width != a.width
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.layout()
		a.updateViewportContent(true)
		if widthChanged {
			return a, a.rerenderCompleted()
		}
		return a, nil

	case spinner.TickMsg:
		if !a.dataModel.Streaming() {
			return a, nil
		}
		var cmd tea.Cmd
		a.loadingSpinner, cmd = a.loadingSpinner.Update(msg)
		a.updateViewportContent(a.highlightedMessageIdx < 0)
		return a, cmd

	case tea.KeyMsg:
		return a.handleKey(msg)

	case streamRenderMsg, streamDoneMsg, streamErrorMsg:
		return a.handleStreamingMessage(msg)

	case markdownRenderedMsg:
		if a.dataModel.Transcript.SetRendered(msg.MessageID, msg.Rendered) {
			a.updateViewportContent(a.highlightedMessageIdx < 0)
		}
		return a, nil

	case clipboardCopiedMsg:
		if msg.Err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[UI] clipboard write failed: %v", msg.Err)
			}
			return a.flashStatus("Copy failed: " + msg.Err.Error())
		}
		return a.flashStatus("Copied " + msg.What)

	case statusFlashExpiredMsg:
		if a.statusFlash == msg.text {
			a.statusFlash = ""
		}
		return a, nil

	case flashTickMsg:
		if a.highlightFlashCount > 0 && a.highlightFlashCount < flashTicks {
			a.highlightFlashCount++
			a.updateViewportContent(false)
			return a, tickFlash()
		}
		a.highlightedMessageIdx = -1
		a.highlightFlashCount = 0
		a.updateViewportContent(false)
		return a, nil
	}

	// Cursor blinks and the like
	var cmd tea.Cmd
	if a.showMessageSearch {
		a.messageSearchInput, cmd = a.messageSearchInput.Update(msg)
		return a, cmd
	}
	a.textarea, cmd = a.textarea.Update(msg)
	return a, cmd
}

func (a AppView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kb := a.keys
	pressed := msg.String()

	// Always-global: quit and help
	if pressed == "ctrl+c" || pressed == kb.GetActionKey("quit") {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[UI] quit requested (streaming=%v)", a.dataModel.Streaming())
		}
		a.dataModel.Quitting = true
		a.dataModel.Clear()
		return a, tea.Quit
	}

	if pressed == kb.GetActionKey("help") {
		wasOpen := a.showHelp
		a.closeAllModals()
		a.showHelp = !wasOpen
		return a, nil
	}

	if a.showHelp {
		if pressed == "esc" {
			a.showHelp = false
		}
		return a, nil
	}

	if a.showMessageSearch {
		return a.handleMessageSearchUpdate(msg)
	}

	switch pressed {
	case "enter":
		return a.submit()

	case kb.GetActionKey("search_messages"):
		a.closeAllModals()
		a.showMessageSearch = true
		a.textarea.Blur()
		a.messageSearchInput.SetValue("")
		a.messageSearchResults = []model.MessageMatch{}
		a.selectedSearchIdx = 0
		a.searchScrollIdx = 0
		focus := a.messageSearchInput.Focus()
		return a, tea.Batch(focus, textinput.Blink)

	case kb.GetActionKey("clear_chat"):
		a.dataModel.Clear()
		a.highlightedMessageIdx = -1
		a.highlightFlashCount = 0
		a.layout()
		a.updateViewportContent(true)
		return a, nil

	case kb.GetActionKey("yank_last_response"):
		last, ok := a.dataModel.Transcript.LastAssistant()
		if !ok {
			return a.flashStatus("Nothing to copy yet")
		}
		return a, copyToClipboard("last response", last.Content)

	case kb.GetActionKey("yank_conversation"):
		text := conversationText(a.dataModel.Transcript.Messages())
		if text == "" {
			return a.flashStatus("Nothing to copy yet")
		}
		return a, copyToClipboard("conversation", text)

	case kb.GetActionKey("scroll_down"):
		a.viewport.LineDown(1)
		return a, nil

	case kb.GetActionKey("scroll_up"):
		a.viewport.LineUp(1)
		return a, nil

	case kb.GetActionKey("half_page_down"), "alt+down":
		a.viewport.HalfViewDown()
		return a, nil

	case kb.GetActionKey("half_page_up"), "alt+up":
		a.viewport.HalfViewUp()
		return a, nil

	case kb.GetActionKey("page_down"):
		a.viewport.ViewDown()
		return a, nil

	case kb.GetActionKey("page_up"):
		a.viewport.ViewUp()
		return a, nil

	case kb.GetActionKey("scroll_to_top"):
		a.viewport.GotoTop()
		return a, nil

	case kb.GetActionKey("scroll_to_bottom"):
		a.viewport.GotoBottom()
		return a, nil
	}

	var cmd tea.Cmd
	a.textarea, cmd = a.textarea.Update(msg)
	return a, cmd
}

// submit sends the input box as a new turn. The input is kept when the turn
// is rejected so nothing typed is lost.
func (a AppView) submit() (tea.Model, tea.Cmd) {
	hadError := a.dataModel.Error != ""

	cmd, ok := a.dataModel.Submit(a.textarea.Value())
	if !ok {
		if hadError != (a.dataModel.Error != "") {
			a.layout()
			a.updateViewportContent(true)
		}
		return a, nil
	}

	a.textarea.Reset()
	a.highlightedMessageIdx = -1
	a.highlightFlashCount = 0
	a.layout()
	a.updateViewportContent(true)

	return a, tea.Batch(cmd, a.loadingSpinner.Tick)
}

// handleStreamingMessage applies updates from the in-flight turn. Stale
// updates from a cleared turn are dropped by the model.
func (a AppView) handleStreamingMessage(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case streamRenderMsg:
		cmd := a.dataModel.HandleRender(msg)
		a.updateViewportContent(a.highlightedMessageIdx < 0)
		return a, cmd

	case streamDoneMsg:
		if !a.dataModel.HandleDone(msg) {
			return a, nil
		}
		a.updateViewportContent(a.highlightedMessageIdx < 0)

		last, ok := a.dataModel.Transcript.Last()
		if !ok || last.ID != msg.MessageID || last.Content == "" {
			return a, nil
		}
		return a, a.renderMarkdownAsync(last.ID, last.Content)

	case streamErrorMsg:
		if !a.dataModel.HandleError(msg) {
			return a, nil
		}
		a.layout()
		a.updateViewportContent(true)
		return a, nil
	}

	return a, nil
}

func (a AppView) flashStatus(text string) (tea.Model, tea.Cmd) {
	a.statusFlash = text
	return a, tea.Tick(statusFlashPeriod, func(time.Time) tea.Msg {
		return statusFlashExpiredMsg{text: text}
	})
}

func copyToClipboard(what, text string) tea.Cmd {
	return func() tea.Msg {
		return clipboardCopiedMsg{What: what, Err: clipboardWrite(text)}
	}
}

func tickFlash() tea.Cmd {
	return tea.Tick(flashInterval, func(time.Time) tea.Msg {
		return flashTickMsg{}
	})
}
