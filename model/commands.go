package model

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"slidechat/config"
)

const updateBuffer = 16

// startTurn runs the request on its own goroutine and returns the first
// update. Later updates are picked up by the WaitForStream command that
// HandleRender returns, so the UI loop stays the only writer of transcript
// state.
func (m *Model) startTurn(ctx context.Context, t *turn, input string) tea.Cmd {
	client := m.Client
	return func() tea.Msg {
		go runTurn(ctx, client, t, input)
		return <-t.updates
	}
}

func runTurn(ctx context.Context, client Converser, t *turn, input string) {
	defer close(t.updates)

	start := time.Now()
	if config.DebugLog != nil {
		config.DebugLog.Printf("[Model] turn %s goroutine started", t.id)
	}

	final, err := client.Converse(ctx, input, func(content string) {
		send(ctx, t.updates, StreamRenderMsg{TurnID: t.id, MessageID: t.messageID, Content: content})
	})

	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Model] turn %s cancelled after %v", t.id, time.Since(start))
		}
		return
	}

	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Model] turn %s error after %v: %v", t.id, time.Since(start), err)
		}
		send(ctx, t.updates, StreamErrorMsg{TurnID: t.id, MessageID: t.messageID, Err: err})
		return
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Model] turn %s done after %v - %d chars", t.id, time.Since(start), len(final))
	}
	send(ctx, t.updates, StreamDoneMsg{TurnID: t.id, MessageID: t.messageID, Content: final})
}

// send delivers msg unless the turn has been abandoned.
func send(ctx context.Context, ch chan<- tea.Msg, msg tea.Msg) {
	select {
	case ch <- msg:
	case <-ctx.Done():
	}
}

// WaitForStream returns the next update of a turn, or nil once the turn's
// goroutine has exited.
func WaitForStream(updates <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-updates
		if !ok {
			return nil
		}
		return msg
	}
}
