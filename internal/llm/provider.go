// Package llm talks to the hosted chat-completion gateway. It provides the
// provider abstraction, the error taxonomy the retry decision is built on,
// and the primary/fallback controller.
package llm

import (
	"context"
	"strings"
	"time"
)

// DefaultTimeout bounds a gateway attempt when the request carries none.
const DefaultTimeout = 60 * time.Second

// Provider is the interface the fallback controller calls through. The
// production implementation is GatewayProvider; tests inject fakes.
type Provider interface {
	// Name returns the provider identifier (e.g. "gateway").
	Name() string
	// Generate sends one completion request and returns the response.
	// The attempt is bounded by req.Timeout via context cancellation.
	Generate(ctx context.Context, req *Request) (*Response, error)
}

// Request is one gateway attempt. Built fresh per call; not mutated after.
type Request struct {
	Model       string
	Messages    []Message
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// Message is a chat message in wire order.
type Message struct {
	Role    string
	Content string
}

// Response is a successful gateway result.
type Response struct {
	Content      string
	FinishReason string
	InputTokens  int
	OutputTokens int
	Model        string
}

// NormalizeModel qualifies bare model names with the xai/ vendor prefix the
// gateway expects. Already-qualified names pass through.
func NormalizeModel(model string) string {
	if model == "" {
		return "xai/grok-4"
	}
	if strings.Contains(model, "/") {
		return model
	}
	return "xai/" + model
}
