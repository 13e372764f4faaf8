package agentstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeFallback(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "message field",
			body: `{"message": "plain answer"}`,
			want: "plain answer",
		},
		{
			name: "message preferred over response",
			body: `{"response": "second", "message": "first"}`,
			want: "first",
		},
		{
			name: "nested response message",
			body: `{"conversation_id":"c1","response":{"message":"nested answer"}}`,
			want: "nested answer",
		},
		{
			name: "response string",
			body: `{"response":"from response"}`,
			want: "from response",
		},
		{
			name: "output field",
			body: `{"output":"from output"}`,
			want: "from output",
		},
		{
			name: "nested data output",
			body: `{"data":{"output":"from data"}}`,
			want: "from data",
		},
		{
			name: "json string body",
			body: `"just a string"`,
			want: "just a string",
		},
		{
			name: "unknown shape is pretty printed",
			body: `{"status":"ok"}`,
			want: "{\n  \"status\": \"ok\"\n}",
		},
		{
			name: "non-string message is pretty printed",
			body: `{"message":{"id":7}}`,
			want: "{\n  \"message\": {\n    \"id\": 7\n  }\n}",
		},
		{
			name: "not json",
			body: "  upstream said no \n",
			want: "upstream said no",
		},
		{
			name: "empty body",
			body: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeFallback([]byte(tt.body)))
		})
	}
}
