package proxy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"slidechat/agent"
	"slidechat/config"
)

type upstreamCall struct {
	path    string
	headers http.Header
	body    string
}

func newUpstream(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, chan upstreamCall) {
	t.Helper()
	calls := make(chan upstreamCall, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		calls <- upstreamCall{path: r.URL.Path, headers: r.Header.Clone(), body: string(body)}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, calls
}

func newProxy(t *testing.T, cfg *config.ProxyConfig) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewRouter(NewHandler(cfg, nil)))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Post(url+ChatPath, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func TestAgentChatRequiresInput(t *testing.T) {
	p := newProxy(t, &config.ProxyConfig{KibanaURL: "http://unused", APIKey: "k", AgentID: "slides-agent"})

	for _, body := range []string{`{}`, `{"input":""}`, `{"input":null}`, `not json`} {
		resp, got := post(t, p.URL, body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		assert.Equal(t, "Input is required", gjson.Get(got, "error").String(), body)
	}
}

func TestAgentChatRequiresEnvironment(t *testing.T) {
	p := newProxy(t, &config.ProxyConfig{AgentID: "slides-agent"})

	resp, got := post(t, p.URL, `{"input":"hi"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Elasticsearch environment variables not configured", gjson.Get(got, "error").String())
}

func TestAgentChatForwardsRequest(t *testing.T) {
	upstream, calls := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"response":{"message":"hello"}}`)
	})
	p := newProxy(t, &config.ProxyConfig{KibanaURL: upstream.URL, APIKey: "secret", AgentID: "slides-agent"})

	resp, got := post(t, p.URL, `{"input":"what is a graph?"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"response":{"message":"hello"}}`, got)

	call := <-calls
	assert.Equal(t, ConversePath, call.path)
	assert.Equal(t, "ApiKey secret", call.headers.Get("Authorization"))
	assert.Equal(t, "application/json", call.headers.Get("Content-Type"))
	assert.Equal(t, "true", call.headers.Get("kbn-xsrf"))
	assert.Equal(t, "what is a graph?", gjson.Get(call.body, "input").String())
	assert.Equal(t, "slides-agent", gjson.Get(call.body, "agent_id").String())
}

func TestAgentChatUpstreamError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"message first", http.StatusUnauthorized, `{"error":"Unauthorized","message":"[security_exception] missing authentication"}`, "[security_exception] missing authentication"},
		{"error field", http.StatusNotFound, `{"error":"Not Found"}`, "Not Found"},
		{"status fallback", http.StatusBadGateway, `<html>bad gateway</html>`, "HTTP error! status: 502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream, _ := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})
			p := newProxy(t, &config.ProxyConfig{KibanaURL: upstream.URL, APIKey: "k", AgentID: "a"})

			resp, got := post(t, p.URL, `{"input":"hi"}`)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.want, gjson.Get(got, "error").String())
		})
	}
}

func TestAgentChatUnreachableUpstream(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	upstream.Close()
	p := newProxy(t, &config.ProxyConfig{KibanaURL: upstream.URL, APIKey: "k", AgentID: "a"})

	resp, got := post(t, p.URL, `{"input":"hi"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Internal server error", gjson.Get(got, "error").String())
}

func TestAgentChatStreamsThroughToClient(t *testing.T) {
	upstream, _ := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		fmt.Fprint(w, "event: reasoning\ndata: {\"data\":{\"reasoning\":\"checking index\"}}\n\n")
		flusher.Flush()
		fmt.Fprint(w, "event: tool_call\ndata: {\"data\":{\"tool_id\":\"platform.core.search\",\"params\":{\"query\":\"graphs\"}}}\n\n")
		flusher.Flush()
		fmt.Fprint(w, "event: round_complete\ndata: {\"data\":{\"round\":{\"response\":{\"message\":\"Graphs have vertices and edges.\"}}}}\n\n")
	})
	p := newProxy(t, &config.ProxyConfig{KibanaURL: upstream.URL, APIKey: "k", AgentID: "slides-agent"})

	client, err := agent.NewClient(p.URL + ChatPath)
	require.NoError(t, err)

	var renders []string
	final, err := client.Converse(context.Background(), "graphs?", func(content string) {
		renders = append(renders, content)
	})

	require.NoError(t, err)
	assert.Equal(t, "Graphs have vertices and edges.", final)
	assert.Equal(t, []string{
		"🤔 checking index",
		"🤔 checking index\n\n🔍 Searching: graphs",
		"Graphs have vertices and edges.",
	}, renders)
}

func TestHealth(t *testing.T) {
	p := newProxy(t, &config.ProxyConfig{})

	resp, err := http.Get(p.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		json string
		want bool
	}{
		{`{"input":"x"}`, true},
		{`{"input":1}`, true},
		{`{"input":{"a":1}}`, true},
		{`{"input":true}`, true},
		{`{"input":""}`, false},
		{`{"input":0}`, false},
		{`{"input":false}`, false},
		{`{"input":null}`, false},
		{`{}`, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, truthy(gjson.Get(tt.json, "input")), tt.json)
	}
}
