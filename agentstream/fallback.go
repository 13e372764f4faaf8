package agentstream

import (
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// fallbackPaths are probed in order for a plain string answer in a
// non-streaming response body.
var fallbackPaths = []string{
	"message",
	"response.message",
	"response",
	"output",
	"data.output",
}

var indentOptions = &pretty.Options{Width: 80, Prefix: "", Indent: "  "}

// DecodeFallback renders a complete, non-streaming response body. A known
// string field is shown as is; any other JSON is pretty-printed with two
// space indentation; a body that isn't JSON is shown trimmed.
func DecodeFallback(body []byte) string {
	if !gjson.ValidBytes(body) {
		return strings.TrimSpace(string(body))
	}

	doc := gjson.ParseBytes(body)
	if doc.Type == gjson.String {
		return doc.String()
	}

	for _, path := range fallbackPaths {
		if v := doc.Get(path); v.Type == gjson.String {
			return v.String()
		}
	}

	return strings.TrimRight(string(pretty.PrettyOptions(body, indentOptions)), "\n")
}
