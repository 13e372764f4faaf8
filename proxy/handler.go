package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/tidwall/gjson"

	"slidechat/agent"
	"slidechat/config"
)

const (
	ConversePath = "/api/agent_builder/converse/async"

	maxRequestBody = 1 << 20
	copyBufferSize = 4096
)

// Handler forwards chat turns to the Kibana Agent Builder converse API.
type Handler struct {
	cfg    *config.ProxyConfig
	client *http.Client
}

func NewHandler(cfg *config.ProxyConfig, client *http.Client) *Handler {
	if client == nil {
		client = &http.Client{}
	}
	return &Handler{cfg: cfg, client: client}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

// AgentChat handles POST /api/agent-chat with a body of {"input": ...}.
func (h *Handler) AgentChat(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		log.Printf("Agent chat: failed to read request: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	input := gjson.GetBytes(body, "input")
	if !gjson.ValidBytes(body) || !truthy(input) {
		writeError(w, http.StatusBadRequest, "Input is required")
		return
	}

	if !h.cfg.Configured() {
		writeError(w, http.StatusInternalServerError, "Elasticsearch environment variables not configured")
		return
	}

	payload, err := json.Marshal(map[string]json.RawMessage{
		"input":    json.RawMessage(input.Raw),
		"agent_id": mustMarshal(h.cfg.AgentID),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	ctx := r.Context()
	if h.cfg.UpstreamTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cfg.UpstreamTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.cfg.KibanaURL+ConversePath, bytes.NewReader(payload))
	if err != nil {
		log.Printf("Agent chat: failed to create upstream request: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	req.Header.Set("Authorization", "ApiKey "+h.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("kbn-xsrf", "true")

	resp, err := h.client.Do(req)
	if err != nil {
		log.Printf("Agent chat: upstream request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxRequestBody))
		log.Printf("Agent API error: status=%d body=%s", resp.StatusCode, truncate(errBody, 512))
		writeError(w, resp.StatusCode, upstreamMessage(resp.StatusCode, errBody))
		return
	}

	h.relay(w, resp)
}

// relay copies the upstream body to the client, flushing after every chunk
// so event streams reach the browser or TUI as they are produced.
func (h *Handler) relay(w http.ResponseWriter, resp *http.Response) {
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)

	streaming := agent.IsEventStream(contentType)
	if streaming {
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
	}
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	buf := make([]byte, copyBufferSize)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				log.Printf("Agent chat: client went away: %v", werr)
				return
			}
			if streaming && flusher != nil {
				flusher.Flush()
			}
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			// Headers are gone; all we can do is cut the stream short
			log.Printf("Agent chat: upstream read failed: %v", err)
			return
		}
	}
}

// upstreamMessage extracts message, then error, from an upstream failure.
func upstreamMessage(status int, body []byte) string {
	if gjson.ValidBytes(body) {
		for _, field := range []string{"message", "error"} {
			if v := gjson.GetBytes(body, field); v.Type == gjson.String && v.String() != "" {
				return v.String()
			}
		}
	}
	return fmt.Sprintf("HTTP error! status: %d", status)
}

// truthy mirrors the usual "is this field set" check on JSON input.
func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.String:
		return v.String() != ""
	case gjson.Number:
		return v.Num != 0
	case gjson.True, gjson.JSON:
		return true
	default:
		return false
	}
}

func mustMarshal(v interface{}) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
