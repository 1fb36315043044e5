package bitbucket

import (
	"fmt"
	"net/http"
)

// maxErrorBody caps how much of a failure body is echoed in Error().
const maxErrorBody = 256

// TransportError is a completed exchange that came back with a non-2xx
// status. Body is kept verbatim; it is the failure text handed to the
// operation's fallback.
type TransportError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	body := e.Body
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	return fmt.Sprintf("bitbucket: %s %s: %d %s: %s",
		e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode), body)
}

// FailureText returns the raw response body.
func (e *TransportError) FailureText() string { return e.Body }
