package agentstream

import "bytes"

// LineReader reassembles newline-terminated lines from arbitrarily split
// chunks. Bytes after the last newline of a chunk are carried over and
// prefixed onto the next one, so multi-byte runes and JSON objects cut by a
// chunk boundary come out whole.
//
// A LineReader belongs to exactly one stream; it is not safe for concurrent use.
type LineReader struct {
	tail []byte
}

// Feed consumes one chunk and returns the lines it completed, without their
// terminating newline.
func (r *LineReader) Feed(chunk []byte) []string {
	if len(chunk) == 0 {
		return nil
	}

	r.tail = append(r.tail, chunk...)

	var lines []string
	for {
		idx := bytes.IndexByte(r.tail, '\n')
		if idx < 0 {
			break
		}
		lines = append(lines, string(r.tail[:idx]))
		r.tail = r.tail[idx+1:]
	}

	// Compact so a long-lived stream doesn't pin every chunk it has seen
	if len(r.tail) == 0 {
		r.tail = nil
	} else if len(lines) > 0 {
		r.tail = append([]byte(nil), r.tail...)
	}

	return lines
}

// Flush returns the residual unterminated tail as a final line. It reports
// false when nothing is buffered.
func (r *LineReader) Flush() (string, bool) {
	if len(r.tail) == 0 {
		return "", false
	}
	line := string(r.tail)
	r.tail = nil
	return line, true
}

// Pending reports how many bytes are waiting for a newline.
func (r *LineReader) Pending() int {
	return len(r.tail)
}
