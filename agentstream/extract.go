package agentstream

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Kind tags a Fragment.
type Kind int

const (
	Unrecognized Kind = iota
	FinalAnswer
	RoundFinalAnswer
	ReasoningStep
	ToolStep
)

func (k Kind) String() string {
	switch k {
	case FinalAnswer:
		return "final_answer"
	case RoundFinalAnswer:
		return "round_final_answer"
	case ReasoningStep:
		return "reasoning_step"
	case ToolStep:
		return "tool_step"
	default:
		return "unrecognized"
	}
}

// Step markers prefixed onto rendered step log entries.
const (
	ThinkingMarker  = "🤔 "
	ToolMarker      = "🔧 "
	SearchingMarker = "🔍 Searching: "
	placeholder     = "…"
)

// DefaultSearchTools lists the tool ids rendered as a search notice.
var DefaultSearchTools = []string{"platform.core.search"}

// Fragment is one classified unit of streamed information. Text is already
// marker-prefixed for step kinds.
type Fragment struct {
	Kind Kind
	Text string
}

// Terminal reports whether f carries a complete answer.
func (f Fragment) Terminal() bool {
	return f.Kind == FinalAnswer || f.Kind == RoundFinalAnswer
}

// Step reports whether f is a reasoning or tool notice.
func (f Fragment) Step() bool {
	return f.Kind == ReasoningStep || f.Kind == ToolStep
}

// rule probes a parsed payload and reports whether it matched.
type rule func(e *Extractor, doc gjson.Result) (Fragment, bool)

// rules run in order and the first match wins. Terminal answers come first so
// a batch carrying both an answer and step chatter resolves to the answer.
var rules = []rule{
	stringAt("data.round.response.message", RoundFinalAnswer, ""),
	stringAt("response.message", FinalAnswer, ""),
	stringAt("data.reasoning", ReasoningStep, ThinkingMarker),
	stringAt("data.message", ToolStep, ToolMarker),
	searchToolCall,
}

func stringAt(path string, kind Kind, marker string) rule {
	return func(_ *Extractor, doc gjson.Result) (Fragment, bool) {
		v := doc.Get(path)
		if v.Type != gjson.String {
			return Fragment{}, false
		}
		text := v.String()
		if kind == ReasoningStep || kind == ToolStep {
			if strings.TrimSpace(text) == "" {
				return Fragment{}, false
			}
			text = marker + text
		}
		return Fragment{Kind: kind, Text: text}, true
	}
}

func searchToolCall(e *Extractor, doc gjson.Result) (Fragment, bool) {
	toolID := doc.Get("data.tool_id")
	if toolID.Type != gjson.String {
		return Fragment{}, false
	}
	if _, ok := e.searchTools[toolID.String()]; !ok {
		return Fragment{}, false
	}

	target := placeholder
	for _, path := range []string{"data.params.query", "data.params.index"} {
		if v := doc.Get(path); v.Exists() && strings.TrimSpace(v.String()) != "" {
			target = v.String()
			break
		}
	}
	return Fragment{Kind: ToolStep, Text: SearchingMarker + target}, true
}

// Extractor maps data line bodies to fragments.
type Extractor struct {
	searchTools map[string]struct{}
}

// NewExtractor returns an Extractor that renders calls to the given tool ids
// as search notices. With no ids it uses DefaultSearchTools.
func NewExtractor(searchToolIDs ...string) *Extractor {
	if len(searchToolIDs) == 0 {
		searchToolIDs = DefaultSearchTools
	}
	e := &Extractor{searchTools: make(map[string]struct{}, len(searchToolIDs))}
	for _, id := range searchToolIDs {
		if id = strings.TrimSpace(id); id != "" {
			e.searchTools[id] = struct{}{}
		}
	}
	return e
}

// Extract classifies one data line body. Malformed JSON and unknown shapes
// both come back as Unrecognized; neither is an error.
func (e *Extractor) Extract(data string) Fragment {
	if !gjson.Valid(data) {
		return Fragment{}
	}

	doc := gjson.Parse(data)
	for _, r := range rules {
		if f, ok := r(e, doc); ok {
			return f
		}
	}
	return Fragment{}
}
