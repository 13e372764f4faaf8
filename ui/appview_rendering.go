package ui

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	markdown "github.com/MichaelMure/go-term-markdown"
	tea "github.com/charmbracelet/bubbletea"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"
	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"

	"slidechat/config"
	"slidechat/model"
)

const gutter = "┃"

var (
	inlineCodeRegex = regexp.MustCompile(`(?s)\x1b\[44;3m(.*?)\x1b\[0m`)
	mdLinkRegex     = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)
	urlRegex        = regexp.MustCompile(`(https?://[^\s]+)`)
)

func roleLabel(role string) string {
	switch role {
	case model.RoleUser:
		return UserStyle.Render("You")
	case model.RoleAssistant:
		return AssistantStyle.Render("Agent")
	default:
		return DimStyle.Render(role)
	}
}

func (a *AppView) updateViewportContent(gotoBottom bool) {
	messages := a.dataModel.Transcript.Messages()
	if len(messages) == 0 {
		a.viewport.SetContent(DimStyle.Render("Start a conversation with the agent."))
		return
	}

	var content strings.Builder
	for i, msg := range messages {
		content.WriteString(a.renderMessageBlock(i, msg))
	}

	a.viewport.SetContent(content.String())
	if gotoBottom {
		a.viewport.GotoBottom()
	}
}

func (a AppView) renderMessageBlock(idx int, msg model.Message) string {
	highlightPrefix := ""
	if idx == a.highlightedMessageIdx && a.highlightFlashCount%2 == 1 {
		highlightPrefix = HighlightStyle.Render(">>> ")
	}

	timestamp := DimStyle.Render(msg.Timestamp.Format("[15:04]"))
	role := roleLabel(msg.Role)

	if msg.Role == model.RoleUser {
		return formatUserMessage(highlightPrefix, timestamp, role, msg.Content)
	}

	return fmt.Sprintf("%s%s %s\n%s\n\n", highlightPrefix, timestamp, role, a.assistantBody(msg))
}

// assistantBody picks the markdown rendering when one exists, the raw
// streamed text otherwise, and the spinner for an empty in-flight message.
func (a AppView) assistantBody(msg model.Message) string {
	if msg.Rendered != "" {
		return msg.Rendered
	}
	if msg.Content == "" {
		if id, ok := a.dataModel.InFlightMessageID(); ok && id == msg.ID {
			return a.loadingSpinner.View() + DimStyle.Render(" Waiting for the agent...")
		}
	}
	return msg.Content
}

func formatUserMessage(highlightPrefix, timestamp, role, content string) string {
	bar := UserStyle.Render(gutter)

	var result strings.Builder
	result.WriteString(fmt.Sprintf("%s%s %s %s\n", highlightPrefix, bar, timestamp, role))
	for _, line := range strings.Split(content, "\n") {
		result.WriteString(fmt.Sprintf("%s %s\n", bar, line))
	}
	result.WriteString("\n")

	return result.String()
}

// renderErrorBanner shows the current error on a single line above the
// input, truncated to the terminal width.
func (a AppView) renderErrorBanner() string {
	if a.dataModel.Error == "" {
		return ""
	}
	text := strings.Join(strings.Fields(a.dataModel.Error), " ")
	if a.width > 4 {
		text = runewidth.Truncate(text, a.width-2, "...")
	}
	return ErrorBannerStyle.Width(a.width).Render("✗ " + text)
}

// conversationText is the plain-text transcript used for the clipboard.
func conversationText(messages []model.Message) string {
	var b strings.Builder
	for _, msg := range messages {
		if msg.Content == "" {
			continue
		}
		name := "You"
		if msg.Role == model.RoleAssistant {
			name = "Agent"
		}
		b.WriteString(fmt.Sprintf("[%s] %s:\n%s\n\n", msg.Timestamp.Format("15:04"), name, msg.Content))
	}
	return strings.TrimSuffix(b.String(), "\n\n")
}

func postProcessMarkdown(rendered string, width int) string {
	rendered = fixInlineCode(rendered)
	rendered = colorURLs(rendered)
	return frameCodeBlocks(rendered, width)
}

// preprocessLinks turns [text](url) into the bare url so every link is
// shown the same way.
func preprocessLinks(content string) string {
	return mdLinkRegex.ReplaceAllString(content, "$2")
}

// fixInlineCode swaps the renderer's blue-background inline code for red text.
func fixInlineCode(s string) string {
	return inlineCodeRegex.ReplaceAllString(s, "\x1b[31m$1\x1b[0m")
}

func colorURLs(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if !strings.Contains(line, gutter) {
			lines[i] = urlRegex.ReplaceAllString(line, "\x1b[31m$1\x1b[0m")
		}
	}
	return strings.Join(lines, "\n")
}

// frameCodeBlocks replaces the renderer's gutter on code lines with a
// horizontal rule above and below the block.
func frameCodeBlocks(s string, width int) string {
	const darkGray, reset = "\x1b[90m", "\x1b[0m"

	ruleWidth := width - 4
	if ruleWidth < 10 {
		ruleWidth = 10
	}
	topRule := func() string {
		label := "[code]"
		left := (ruleWidth - len(label)) / 2
		right := ruleWidth - len(label) - left
		return darkGray + strings.Repeat("━", left) + reset + label + darkGray + strings.Repeat("━", right) + reset
	}
	bottomRule := darkGray + strings.Repeat("━", ruleWidth) + reset

	var result []string
	inCodeBlock := false
	for _, line := range strings.Split(s, "\n") {
		if strings.Contains(line, gutter) {
			if !inCodeBlock {
				inCodeBlock = true
				result = append(result, "", topRule(), "")
			}
			result = append(result, stripCodeBlockPrefix(line))
			continue
		}
		if inCodeBlock {
			result = append(result, "", bottomRule, "")
			inCodeBlock = false
		}
		result = append(result, line)
	}
	if inCodeBlock {
		result = append(result, "", bottomRule, "")
	}

	return strings.Join(result, "\n")
}

func stripCodeBlockPrefix(line string) string {
	idx := strings.Index(line, gutter)
	if idx < 0 {
		return line
	}
	rest := line[idx+len(gutter):]
	return strings.TrimPrefix(rest, " ")
}

// renderMarkdown converts markdown to terminal text at the given width.
func renderMarkdown(content string, width int) string {
	if width < 20 {
		width = 20
	}
	content = preprocessLinks(content)

	// Autolink off: plain URLs stay plain text for the terminal to detect
	p := parser.NewWithExtensions(markdown.Extensions() &^ parser.Autolink)
	r := markdown.NewRenderer(width-4, 0)
	rendered := gomarkdown.Render(p.Parse([]byte(content)), r)

	return strings.TrimRight(postProcessMarkdown(string(rendered), width), "\n")
}

func (a AppView) renderMarkdownAsync(id uuid.UUID, content string) tea.Cmd {
	width := a.width
	return func() tea.Msg {
		start := time.Now()
		rendered := renderMarkdown(content, width)
		if config.DebugLog != nil {
			config.DebugLog.Printf("[UI] markdown for message %s rendered in %v (%d chars)", id, time.Since(start), len(content))
		}
		return model.MarkdownRenderedMsg{MessageID: id, Rendered: rendered}
	}
}

// rerenderCompleted re-renders every finished assistant message, used after
// the terminal width changes.
func (a AppView) rerenderCompleted() tea.Cmd {
	inFlight, streaming := a.dataModel.InFlightMessageID()

	var cmds []tea.Cmd
	for _, msg := range a.dataModel.Transcript.Messages() {
		if msg.Role != model.RoleAssistant || msg.Content == "" {
			continue
		}
		if streaming && msg.ID == inFlight {
			continue
		}
		cmds = append(cmds, a.renderMarkdownAsync(msg.ID, msg.Content))
	}
	return tea.Batch(cmds...)
}
