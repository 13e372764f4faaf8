package agentstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
)

const readBufferSize = 4096

// RenderFunc receives the full rendered message each time it changes.
type RenderFunc func(content string)

// Option configures a Consumer.
type Option func(*Consumer)

// WithLogger logs skipped and unrecognized lines to l.
func WithLogger(l *log.Logger) Option {
	return func(c *Consumer) {
		c.logger = l
	}
}

// WithSearchTools sets the tool ids rendered as search notices.
func WithSearchTools(ids ...string) Option {
	return func(c *Consumer) {
		c.extractor = NewExtractor(ids...)
	}
}

// Consumer turns streamed agent responses into progressively rendered
// messages. A Consumer holds no per-request state and may be shared; each
// call to Consume or NewStream gets its own buffers.
type Consumer struct {
	extractor *Extractor
	logger    *log.Logger
}

func NewConsumer(opts ...Option) *Consumer {
	c := &Consumer{}
	for _, opt := range opts {
		opt(c)
	}
	if c.extractor == nil {
		c.extractor = NewExtractor()
	}
	return c
}

// Stream is the per-request pipeline. It implements io.WriteCloser: every
// Write is one network chunk, Close signals end of stream.
type Stream struct {
	lines     LineReader
	frames    Classifier
	acc       Accumulator
	extractor *Extractor
	logger    *log.Logger
	render    RenderFunc
	closed    bool
}

// NewStream starts a pipeline that calls render after every change to the
// rendered message. render may be nil.
func (c *Consumer) NewStream(render RenderFunc) *Stream {
	return &Stream{
		extractor: c.extractor,
		logger:    c.logger,
		render:    render,
	}
}

func (s *Stream) Write(chunk []byte) (int, error) {
	if s.closed {
		return 0, errors.New("agentstream: write to closed stream")
	}
	for _, line := range s.lines.Feed(chunk) {
		s.handleLine(line)
	}
	return len(chunk), nil
}

// Close treats any unterminated tail as a final line.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if line, ok := s.lines.Flush(); ok {
		s.handleLine(line)
	}
	return nil
}

// Rendered returns the current message text.
func (s *Stream) Rendered() string {
	return s.acc.Rendered()
}

func (s *Stream) handleLine(line string) {
	payload, ok := s.frames.Classify(line)
	if !ok {
		return
	}

	frag := s.extractor.Extract(payload.Data)
	if frag.Kind == Unrecognized {
		if s.logger != nil {
			s.logger.Printf("agentstream: skipped data line (event=%q, %d bytes)", payload.Event, len(payload.Data))
		}
		return
	}

	if s.acc.Apply(frag) && s.render != nil {
		s.render(s.acc.Rendered())
	}
}

// Consume reads r until EOF, feeding every chunk through a fresh Stream. It
// returns the final rendered message. On a read error the partial message is
// returned alongside the error. Cancelling ctx stops consumption at the next
// chunk boundary.
func (c *Consumer) Consume(ctx context.Context, r io.Reader, render RenderFunc) (string, error) {
	s := c.NewStream(render)
	buf := make([]byte, readBufferSize)

	for {
		if err := ctx.Err(); err != nil {
			return s.Rendered(), err
		}

		n, err := r.Read(buf)
		if n > 0 {
			if ctx.Err() != nil {
				return s.Rendered(), ctx.Err()
			}
			s.Write(buf[:n])
		}

		if errors.Is(err, io.EOF) {
			s.Close()
			return s.Rendered(), nil
		}
		if err != nil {
			return s.Rendered(), fmt.Errorf("reading stream: %w", err)
		}
	}
}
