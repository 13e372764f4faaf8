package agentstream

import "strings"

const stepSeparator = "\n\n"

// Accumulator merges fragments into the single assistant message of one
// request. A terminal answer replaces everything shown before it; steps are
// deduplicated and only collected while no answer has arrived.
type Accumulator struct {
	final string
	steps []string
	seen  map[string]struct{}
}

// Apply merges f and reports whether the rendered value changed.
func (a *Accumulator) Apply(f Fragment) bool {
	switch {
	case f.Terminal():
		if f.Text == "" || f.Text == a.final {
			return false
		}
		before := a.Rendered()
		a.final = f.Text
		return a.Rendered() != before

	case f.Step():
		if a.final != "" {
			return false
		}
		if a.seen == nil {
			a.seen = make(map[string]struct{})
		}
		if _, dup := a.seen[f.Text]; dup {
			return false
		}
		a.seen[f.Text] = struct{}{}
		a.steps = append(a.steps, f.Text)
		return true
	}

	return false
}

// Rendered returns the final answer when one has arrived, otherwise the step
// log joined by blank lines.
func (a *Accumulator) Rendered() string {
	if a.final != "" {
		return a.final
	}
	return strings.Join(a.steps, stepSeparator)
}

// Final returns the terminal answer, empty until one arrives.
func (a *Accumulator) Final() string {
	return a.final
}

// Steps returns a copy of the step log.
func (a *Accumulator) Steps() []string {
	return append([]string(nil), a.steps...)
}
