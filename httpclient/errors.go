package httpclient

import "fmt"

// InvalidTokenMessage is the canonical string the backend places first in the
// messages list of a 401 when the bearer token has been invalidated. Only
// this exact text triggers the session-expiry flow; any other 401 is an
// ordinary failure.
const InvalidTokenMessage = "Token is invalid or expired"

// Message is one entry in the backend's structured error list.
type Message struct {
	Message string `json:"message"`
}

// APIError is a non-2xx response from the dashboard API. Detail carries the
// backend's human-readable failure reason when it sends one.
type APIError struct {
	StatusCode int       `json:"-"`
	Detail     string    `json:"detail,omitempty"`
	Messages   []Message `json:"messages,omitempty"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Detail)
	}
	if len(e.Messages) > 0 {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Messages[0].Message)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

// IsInvalidToken reports whether the response is the server's declaration
// that the current access token is dead.
func (e *APIError) IsInvalidToken() bool {
	return e.StatusCode == 401 &&
		len(e.Messages) > 0 &&
		e.Messages[0].Message == InvalidTokenMessage
}
