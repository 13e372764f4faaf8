package model

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"slidechat/agent"
)

const (
	UnauthorizedMessage = "Authentication failed. The agent service may be incorrectly configured."
	NotFoundMessage     = "Agent service not found. Please check the service configuration."
	ServerErrorMessage  = "Server error occurred. Please try again later."
	defaultErrorMessage = "Failed to send message"
)

var serverErrorPattern = regexp.MustCompile(`\b5\d\d\b|Internal Server Error`)

// FriendlyError turns a transport failure into the text shown in the error
// banner. The status code is used when known; otherwise the error text is
// matched for the usual markers.
func FriendlyError(err error) string {
	if err == nil {
		return ""
	}

	status := 0
	var se *agent.StatusError
	if errors.As(err, &se) {
		status = se.StatusCode
	}

	text := err.Error()
	switch {
	case status == http.StatusUnauthorized || strings.Contains(text, "401") || strings.Contains(text, "Unauthorized"):
		return UnauthorizedMessage
	case status == http.StatusNotFound || strings.Contains(text, "404") || strings.Contains(text, "Not Found"):
		return NotFoundMessage
	case status >= 500 && status <= 599 || serverErrorPattern.MatchString(text):
		return ServerErrorMessage
	case text == "":
		return defaultErrorMessage
	}
	return text
}
