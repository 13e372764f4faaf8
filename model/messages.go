package model

import "github.com/google/uuid"

// StreamRenderMsg carries the full assistant message after a change.
type StreamRenderMsg struct {
	TurnID    uuid.UUID
	MessageID uuid.UUID
	Content   string
}

type StreamDoneMsg struct {
	TurnID    uuid.UUID
	MessageID uuid.UUID
	Content   string
}

type StreamErrorMsg struct {
	TurnID    uuid.UUID
	MessageID uuid.UUID
	Err       error
}

type MarkdownRenderedMsg struct {
	MessageID uuid.UUID
	Rendered  string
}

type ClipboardCopiedMsg struct {
	What string
	Err  error
}

type FlashTickMsg struct{}
