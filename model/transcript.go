package model

import "github.com/google/uuid"

// Transcript is the ordered list of messages in the chat. It only grows at
// the end; the single in-place mutation is a content overwrite of the
// trailing message, addressed by its ID.
type Transcript struct {
	messages []Message
}

func (t *Transcript) Append(msg Message) {
	t.messages = append(t.messages, msg)
}

// Overwrite replaces the content of the trailing message if it still has
// the given id. It reports whether the update was applied.
func (t *Transcript) Overwrite(id uuid.UUID, content string) bool {
	n := len(t.messages)
	if n == 0 || t.messages[n-1].ID != id {
		return false
	}
	t.messages[n-1].Content = content
	t.messages[n-1].Rendered = ""
	return true
}

// SetRendered stores a markdown rendering for the message with id.
func (t *Transcript) SetRendered(id uuid.UUID, rendered string) bool {
	for i := range t.messages {
		if t.messages[i].ID == id {
			t.messages[i].Rendered = rendered
			return true
		}
	}
	return false
}

// Messages returns a copy of the transcript.
func (t *Transcript) Messages() []Message {
	return append([]Message(nil), t.messages...)
}

func (t *Transcript) Len() int {
	return len(t.messages)
}

func (t *Transcript) Last() (Message, bool) {
	if len(t.messages) == 0 {
		return Message{}, false
	}
	return t.messages[len(t.messages)-1], true
}

// LastAssistant returns the most recent assistant message with content.
func (t *Transcript) LastAssistant() (Message, bool) {
	for i := len(t.messages) - 1; i >= 0; i-- {
		if t.messages[i].Role == RoleAssistant && t.messages[i].Content != "" {
			return t.messages[i], true
		}
	}
	return Message{}, false
}

func (t *Transcript) Reset() {
	t.messages = nil
}
