package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"

	"slidechat/agentstream"
)

const (
	DefaultEndpoint = "http://localhost:3000/api/agent-chat"

	eventStreamType = "text/event-stream"
	maxErrorBody    = 64 << 10
)

// StatusError is returned when the agent service answers with a non-2xx
// status. Message comes from the failure envelope.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return e.Message
}

type Client struct {
	httpClient *http.Client
	endpoint   string
	consumer   *agentstream.Consumer
}

// NewClient returns a client for the chat endpoint. Stream options such as
// the search tool ids or a debug logger are passed through to the consumer.
func NewClient(endpoint string, opts ...agentstream.Option) (*Client, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid agent URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid agent URL %q: scheme must be http or https", endpoint)
	}

	return &Client{
		// No client timeout: answers stream for as long as the agent works.
		httpClient: &http.Client{},
		endpoint:   endpoint,
		consumer:   agentstream.NewConsumer(opts...),
	}, nil
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

type converseRequest struct {
	Input string `json:"input"`
}

// Converse sends one user turn and calls render with the full assistant
// message every time it changes. It returns the last rendered message; on a
// transport error that message is whatever was rendered before the failure.
func (c *Client) Converse(ctx context.Context, input string, render agentstream.RenderFunc) (string, error) {
	body, err := json.Marshal(converseRequest{Input: input})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", eventStreamType+", application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach agent service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", decodeFailure(resp)
	}

	if IsEventStream(resp.Header.Get("Content-Type")) {
		return c.consumer.Consume(ctx, resp.Body, render)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	content := agentstream.DecodeFallback(raw)
	if content != "" && render != nil {
		render(content)
	}
	return content, nil
}

// IsEventStream reports whether a Content-Type header names an event stream.
func IsEventStream(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == eventStreamType
}

// FailureMessage picks the user-visible text out of a failure envelope:
// error, then message, then a status-derived default.
func FailureMessage(status int, body []byte) string {
	if gjson.ValidBytes(body) {
		for _, field := range []string{"error", "message"} {
			if v := gjson.GetBytes(body, field); v.Type == gjson.String && v.String() != "" {
				return v.String()
			}
		}
	}
	return fmt.Sprintf("HTTP error! status: %d", status)
}

func decodeFailure(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		StatusCode: resp.StatusCode,
		Message:    FailureMessage(resp.StatusCode, body),
	}
}
