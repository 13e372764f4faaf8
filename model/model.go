package model

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"slidechat/agentstream"
	"slidechat/config"
)

// TurnState tracks the request/response cycle of the current user turn.
type TurnState int

const (
	Idle TurnState = iota
	Streaming
	Completed
	Failed
)

func (s TurnState) String() string {
	switch s {
	case Streaming:
		return "streaming"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Converser sends one user turn to the agent and reports every change of the
// assistant message through render.
type Converser interface {
	Converse(ctx context.Context, input string, render agentstream.RenderFunc) (string, error)
}

// turn is the in-flight request. Its ids are the liveness handle checked on
// every update coming back from the stream goroutine.
type turn struct {
	id        uuid.UUID
	messageID uuid.UUID
	cancel    context.CancelFunc
	updates   chan tea.Msg
}

// Model holds the core application data and business logic state
type Model struct {
	Config *config.Config
	Client Converser

	Transcript Transcript
	State      TurnState
	Error      string

	Quitting bool

	Version string
	License string

	current *turn
}

func NewModel(cfg *config.Config, client Converser, version, license string) *Model {
	return &Model{
		Config:  cfg,
		Client:  client,
		State:   Idle,
		Version: version,
		License: license,
	}
}

// Streaming reports whether a turn is in flight.
func (m *Model) Streaming() bool {
	return m.State == Streaming && m.current != nil
}

// InFlightMessageID returns the id of the assistant message the current turn
// writes to.
func (m *Model) InFlightMessageID() (uuid.UUID, bool) {
	if !m.Streaming() {
		return uuid.Nil, false
	}
	return m.current.messageID, true
}

// Submit starts a new turn. Blank input and submissions while a turn is in
// flight are rejected and return false.
func (m *Model) Submit(input string) (tea.Cmd, bool) {
	input = strings.TrimSpace(input)
	if input == "" || m.Streaming() {
		return nil, false
	}
	if m.Client == nil {
		m.SetError("Agent service is not configured.")
		return nil, false
	}

	m.ClearError()
	m.AppendMessage(NewMessage(RoleUser, input))

	placeholder := NewMessage(RoleAssistant, "")
	m.AppendMessage(placeholder)

	ctx, cancel := context.WithCancel(context.Background())
	t := &turn{
		id:        uuid.New(),
		messageID: placeholder.ID,
		cancel:    cancel,
		updates:   make(chan tea.Msg, updateBuffer),
	}
	m.current = t
	m.State = Streaming

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Model] turn %s started (message %s, %d chars)", t.id, t.messageID, len(input))
	}

	return m.startTurn(ctx, t, input), true
}

// Clear drops the transcript and error banner and abandons any in-flight
// turn. Updates still arriving for that turn are ignored.
func (m *Model) Clear() {
	if m.current != nil {
		m.current.cancel()
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Model] turn %s abandoned by clear", m.current.id)
		}
	}
	m.current = nil
	m.Transcript.Reset()
	m.State = Idle
	m.ClearError()
}

// AppendMessage adds msg to the end of the transcript.
func (m *Model) AppendMessage(msg Message) {
	m.Transcript.Append(msg)
}

// OverwriteContent replaces the content of the in-flight assistant message.
// Anything but the current turn's trailing message is left alone.
func (m *Model) OverwriteContent(id uuid.UUID, content string) bool {
	live, ok := m.InFlightMessageID()
	if !ok || live != id {
		return false
	}
	return m.Transcript.Overwrite(id, content)
}

func (m *Model) SetError(message string) {
	m.Error = message
}

func (m *Model) ClearError() {
	m.Error = ""
}

func (m *Model) isCurrent(turnID uuid.UUID) bool {
	return m.current != nil && m.current.id == turnID
}

// HandleRender applies a streamed update and returns the command that waits
// for the next one. Updates from an abandoned turn return nil.
func (m *Model) HandleRender(msg StreamRenderMsg) tea.Cmd {
	if !m.isCurrent(msg.TurnID) {
		return nil
	}
	m.OverwriteContent(msg.MessageID, msg.Content)
	return WaitForStream(m.current.updates)
}

// HandleDone completes the current turn. It reports false for stale messages.
func (m *Model) HandleDone(msg StreamDoneMsg) bool {
	if !m.isCurrent(msg.TurnID) {
		return false
	}
	if msg.Content != "" {
		m.OverwriteContent(msg.MessageID, msg.Content)
	}
	m.finish(Completed)
	return true
}

// HandleError fails the current turn and raises the error banner. Content
// already rendered into the assistant message is kept.
func (m *Model) HandleError(msg StreamErrorMsg) bool {
	if !m.isCurrent(msg.TurnID) {
		return false
	}
	m.SetError(FriendlyError(msg.Err))
	m.finish(Failed)

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Model] turn %s failed: %v", msg.TurnID, msg.Err)
	}
	return true
}

func (m *Model) finish(state TurnState) {
	m.current.cancel()
	m.current = nil
	m.State = state
}
