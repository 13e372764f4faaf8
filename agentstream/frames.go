package agentstream

import "strings"

const (
	eventPrefix = "event:"
	dataPrefix  = "data:"
)

// Payload is one data line together with the event name in effect when it
// arrived.
type Payload struct {
	Event string
	Data  string
}

// Classifier applies event-stream framing to reassembled lines. The only
// state it keeps is the current event name, which persists across data lines
// until the next event line replaces it.
type Classifier struct {
	event string
}

// Classify returns the payload carried by line, if any. Event lines update
// the current event name; comments, keep-alives and blank lines yield
// nothing.
func (c *Classifier) Classify(line string) (Payload, bool) {
	line = strings.TrimSuffix(line, "\r")

	switch {
	case line == "":
		return Payload{}, false
	case strings.HasPrefix(line, eventPrefix):
		c.event = strings.TrimSpace(line[len(eventPrefix):])
		return Payload{}, false
	case strings.HasPrefix(line, ":"):
		// comment / keep-alive
		return Payload{}, false
	case strings.HasPrefix(line, dataPrefix):
		return Payload{
			Event: c.event,
			Data:  strings.TrimSpace(line[len(dataPrefix):]),
		}, true
	}

	return Payload{}, false
}

// Event returns the current event name.
func (c *Classifier) Event() string {
	return c.event
}
