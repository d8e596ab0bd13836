package llm

import (
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// ErrMissingAPIKey is returned before any network attempt when no gateway
// credential is configured. It is a server misconfiguration, never retried.
var ErrMissingAPIKey = errors.New("gateway API key not configured")

const snippetLimit = 300

// UpstreamError is a non-2xx response from the gateway. Distinguishing it
// from transport errors (which carry no status at all) lets operators tell
// network outages from model-side failures.
type UpstreamError struct {
	Status  int
	Snippet string
}

func (e *UpstreamError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("gateway returned %d", e.Status)
	}
	return fmt.Sprintf("gateway returned %d: %s", e.Status, e.Snippet)
}

// TransientStatus reports whether an HTTP status is considered likely to
// succeed on retry: 408 request-timeout, 425 too-early, 429 rate-limited,
// or any 5xx.
func TransientStatus(status int) bool {
	return status == http.StatusRequestTimeout ||
		status == http.StatusTooEarly ||
		status == http.StatusTooManyRequests ||
		status >= 500
}

// classifyError maps a go-openai client error into the taxonomy. API errors
// with an HTTP status become *UpstreamError; everything else (connection
// refused, deadline exceeded, malformed body) is left as-is and treated as a
// transport failure by the controller.
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return &UpstreamError{Status: apiErr.HTTPStatusCode, Snippet: truncate(apiErr.Message, snippetLimit)}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return &UpstreamError{Status: reqErr.HTTPStatusCode, Snippet: truncate(reqErr.Error(), snippetLimit)}
	}
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
