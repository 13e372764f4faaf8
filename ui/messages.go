package ui

import (
	"slidechat/model"
)

type streamRenderMsg = model.StreamRenderMsg
type streamDoneMsg = model.StreamDoneMsg
type streamErrorMsg = model.StreamErrorMsg
type markdownRenderedMsg = model.MarkdownRenderedMsg
type clipboardCopiedMsg = model.ClipboardCopiedMsg
type flashTickMsg = model.FlashTickMsg

// statusFlashExpiredMsg clears the status-bar notice it was scheduled for.
type statusFlashExpiredMsg struct {
	text string
}
