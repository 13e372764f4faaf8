package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a chat message in the conversation
type Message struct {
	ID        uuid.UUID
	Role      string
	Content   string // Raw content as rendered by the stream consumer
	Rendered  string // Cached markdown rendering, empty until the turn completes
	Timestamp time.Time
}

func NewMessage(role, content string) Message {
	return Message{
		ID:        uuid.New(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}
