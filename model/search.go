package model

import (
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"
)

const previewWidth = 100

// MessageMatch represents a search result within the transcript
type MessageMatch struct {
	MessageID    string
	MessageIndex int
	Role         string
	Preview      string
	Timestamp    time.Time
	Score        int
}

type messageSource []Message

func (s messageSource) String(i int) string { return s[i].Content }
func (s messageSource) Len() int            { return len(s) }

// SearchMessages finds messages containing query. Plain substring hits are
// returned in transcript order; when there are none it falls back to fuzzy
// matching, best score first.
func SearchMessages(messages []Message, query string) []MessageMatch {
	query = strings.TrimSpace(query)
	if query == "" {
		return []MessageMatch{}
	}

	queryLower := strings.ToLower(query)
	var matches []MessageMatch
	for i, msg := range messages {
		if msg.Content == "" {
			continue
		}
		if strings.Contains(strings.ToLower(msg.Content), queryLower) {
			matches = append(matches, newMatch(i, msg, 0))
		}
	}
	if len(matches) > 0 {
		return matches
	}

	for _, fm := range fuzzy.FindFrom(query, messageSource(messages)) {
		matches = append(matches, newMatch(fm.Index, messages[fm.Index], fm.Score))
	}
	if matches == nil {
		return []MessageMatch{}
	}
	return matches
}

func newMatch(idx int, msg Message, score int) MessageMatch {
	return MessageMatch{
		MessageID:    msg.ID.String(),
		MessageIndex: idx,
		Role:         msg.Role,
		Preview:      Preview(msg.Content, previewWidth),
		Timestamp:    msg.Timestamp,
		Score:        score,
	}
}

// Preview flattens content onto one line and truncates it to width cells.
func Preview(content string, width int) string {
	flat := strings.Join(strings.Fields(content), " ")
	return runewidth.Truncate(flat, width, "...")
}
