package agentstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineReaderFeed(t *testing.T) {
	tests := []struct {
		name    string
		chunks  []string
		lines   []string
		flushed string
	}{
		{
			name:   "single chunk with complete lines",
			chunks: []string{"a\nb\n"},
			lines:  []string{"a", "b"},
		},
		{
			name:   "line split across chunks",
			chunks: []string{"data: {\"respo", "nse\":{\"message\":\"hi\"}}\n"},
			lines:  []string{`data: {"response":{"message":"hi"}}`},
		},
		{
			name:    "unterminated tail is flushed",
			chunks:  []string{"one\ntw", "o"},
			lines:   []string{"one"},
			flushed: "two",
		},
		{
			name:   "blank lines are kept",
			chunks: []string{"\n\nx\n"},
			lines:  []string{"", "", "x"},
		},
		{
			name:   "empty chunks are no-ops",
			chunks: []string{"", "a", "", "\n"},
			lines:  []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r LineReader
			var got []string
			for _, c := range tt.chunks {
				got = append(got, r.Feed([]byte(c))...)
			}
			assert.Equal(t, tt.lines, got)

			tail, ok := r.Flush()
			assert.Equal(t, tt.flushed != "", ok)
			assert.Equal(t, tt.flushed, tail)
			assert.Zero(t, r.Pending())
		})
	}
}

func TestLineReaderKeepsSplitRunes(t *testing.T) {
	var r LineReader
	text := []byte("🤔 thinking\n")

	assert.Empty(t, r.Feed(text[:2]))
	assert.Equal(t, 2, r.Pending())
	assert.Equal(t, []string{"🤔 thinking"}, r.Feed(text[2:]))
}
