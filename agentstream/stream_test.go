package agentstream

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleStream = "event: reasoning\n" +
	"data: {\"data\":{\"reasoning\":\"checking index\"}}\n\n" +
	": keep-alive\n" +
	"event: tool_call\n" +
	"data: {\"data\":{\"tool_id\":\"platform.core.search\",\"params\":{\"query\":\"graph theory\"}}}\n\n" +
	"data: {\"data\":{\"tool_id\":\"platform.core.search\",\"params\":{\"query\":\"graph theory\"}}}\n\n" +
	"data: {not json\n\n" +
	"event: tool_result\n" +
	"data: {\"data\":{\"message\":\"Found 3 slides\"}}\n\n" +
	"event: message_complete\n" +
	"data: {\"response\":{\"message\":\"Graphs have vertices and edges.\"}}\n\n" +
	"event: reasoning\n" +
	"data: {\"data\":{\"reasoning\":\"too late\"}}\n\n" +
	"event: round_complete\n" +
	"data: {\"data\":{\"round\":{\"response\":{\"message\":\"Graphs have **vertices** and edges.\"}}}}"

func collect(t *testing.T, chunks ...[]byte) []string {
	t.Helper()

	var renders []string
	s := NewConsumer().NewStream(func(content string) {
		renders = append(renders, content)
	})
	for _, c := range chunks {
		n, err := s.Write(c)
		require.NoError(t, err)
		require.Equal(t, len(c), n)
	}
	require.NoError(t, s.Close())
	return renders
}

func TestStreamRenderProgression(t *testing.T) {
	renders := collect(t, []byte(sampleStream))

	assert.Equal(t, []string{
		"🤔 checking index",
		"🤔 checking index\n\n🔍 Searching: graph theory",
		"🤔 checking index\n\n🔍 Searching: graph theory\n\n🔧 Found 3 slides",
		"Graphs have vertices and edges.",
		"Graphs have **vertices** and edges.",
	}, renders)
}

func TestStreamChunkBoundaryInvariance(t *testing.T) {
	data := []byte(sampleStream)
	want := collect(t, data)

	for i := 0; i <= len(data); i++ {
		got := collect(t, data[:i], data[i:])
		require.Equal(t, want, got, "split at byte %d", i)
	}

	for size := 1; size <= 3; size++ {
		var chunks [][]byte
		for off := 0; off < len(data); off += size {
			end := min(off+size, len(data))
			chunks = append(chunks, data[off:end])
		}
		require.Equal(t, want, collect(t, chunks...), "chunk size %d", size)
	}
}

func TestStreamReasoningThenFinal(t *testing.T) {
	in := "event: message\ndata: {\"data\":{\"reasoning\":\"checking index\"}}\n\ndata: {\"response\":{\"message\":\"Graphs have vertices and edges.\"}}\n\n"

	assert.Equal(t, []string{
		"🤔 checking index",
		"Graphs have vertices and edges.",
	}, collect(t, []byte(in)))
}

func TestStreamDuplicateToolSteps(t *testing.T) {
	line := "data: {\"data\":{\"message\":\"Calling search\"}}\n"

	s := NewConsumer().NewStream(nil)
	s.Write([]byte(line + line))
	s.Close()

	assert.Equal(t, "🔧 Calling search", s.Rendered())
}

func TestStreamSplitFinalAnswer(t *testing.T) {
	renders := collect(t, []byte(`data: {"respo`), []byte("nse\":{\"message\":\"hi\"}}\n"))
	assert.Equal(t, []string{"hi"}, renders)
}

func TestStreamMalformedLinesDoNotInterrupt(t *testing.T) {
	var logs bytes.Buffer
	c := NewConsumer(WithLogger(log.New(&logs, "", 0)))

	var renders []string
	s := c.NewStream(func(content string) { renders = append(renders, content) })
	s.Write([]byte("data: {\"response\":\n"))
	s.Write([]byte("data: ]]]\n"))
	s.Write([]byte("data: {\"response\":{\"message\":\"ok\"}}\n"))
	s.Close()

	assert.Equal(t, []string{"ok"}, renders)
	assert.Equal(t, 2, strings.Count(logs.String(), "skipped data line"))
}

func TestStreamEmptyBody(t *testing.T) {
	assert.Empty(t, collect(t))
	assert.Empty(t, collect(t, []byte(": ping\n\n")))
}

func TestStreamWriteAfterClose(t *testing.T) {
	s := NewConsumer().NewStream(nil)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err := s.Write([]byte("data: {}\n"))
	assert.Error(t, err)
}

func TestConsume(t *testing.T) {
	var renders []string
	final, err := NewConsumer().Consume(context.Background(),
		iotest.OneByteReader(strings.NewReader(sampleStream)),
		func(content string) { renders = append(renders, content) })

	require.NoError(t, err)
	assert.Equal(t, "Graphs have **vertices** and edges.", final)
	assert.Len(t, renders, 5)
}

func TestConsumeReadError(t *testing.T) {
	boom := errors.New("connection reset")
	r := io.MultiReader(
		strings.NewReader("data: {\"data\":{\"reasoning\":\"partial\"}}\n"),
		iotest.ErrReader(boom),
	)

	final, err := NewConsumer().Consume(context.Background(), r, nil)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "🤔 partial", final)
}

func TestConsumeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var renders []string
	r := iotest.OneByteReader(strings.NewReader("data: {\"data\":{\"reasoning\":\"a\"}}\ndata: {\"data\":{\"reasoning\":\"b\"}}\n"))
	_, err := NewConsumer().Consume(ctx, r, func(content string) {
		renders = append(renders, content)
		cancel()
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"🤔 a"}, renders)
}

func TestConsumeWithSearchTools(t *testing.T) {
	c := NewConsumer(WithSearchTools("slides.search"))
	final, err := c.Consume(context.Background(),
		strings.NewReader(`data: {"data":{"tool_id":"slides.search","params":{"index":"lectures"}}}`), nil)

	require.NoError(t, err)
	assert.Equal(t, "🔍 Searching: lectures", final)
}
