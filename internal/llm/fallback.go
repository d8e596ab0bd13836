package llm

import (
	"context"
	"errors"
	"time"
)

// attemptState tracks where the controller is in its two-state machine.
type attemptState int

const (
	statePrimary attemptState = iota
	stateFallback
)

// FailureKind classifies a terminal failure for telemetry and operator
// diagnostics.
type FailureKind int

const (
	// FailureNone means the turn succeeded.
	FailureNone FailureKind = iota
	// FailureConfig means a missing credential; never retried.
	FailureConfig
	// FailureTransport means no response was received at all (connection
	// error, timeout, malformed body).
	FailureTransport
	// FailureUpstream means the gateway answered with a non-success status.
	FailureUpstream
)

// Outcome is the final result of a primary attempt plus at most one fallback
// attempt. ModelUsed is the model that actually produced the answer (or the
// last one tried on failure), not just the one requested first.
type Outcome struct {
	Response  *Response
	ModelUsed string
	Attempts  int
	Failure   FailureKind
	Status    int    // HTTP status of the terminal failure, 0 when none received
	Snippet   string // short upstream diagnostic, telemetry only
}

// OK reports whether the turn produced a usable response.
func (o *Outcome) OK() bool { return o.Failure == FailureNone }

// FallbackController runs the primary attempt and, on transport failure or a
// transient upstream status, exactly one fallback attempt with a distinct
// model and a shorter timeout. Attempts are strictly sequential, each with
// its own cancellation; cancelling the primary never skips the fallback.
type FallbackController struct {
	provider        Provider
	primaryModel    string
	fallbackModel   string
	primaryTimeout  time.Duration
	fallbackTimeout time.Duration
	temperature     float32
	maxTokens       int
}

// ControllerConfig holds the tunables for a FallbackController.
type ControllerConfig struct {
	PrimaryModel    string
	FallbackModel   string
	PrimaryTimeout  time.Duration
	FallbackTimeout time.Duration
	Temperature     float32
	MaxTokens       int
}

// NewFallbackController builds a controller over the given provider. Model
// names are normalized with the gateway vendor prefix.
func NewFallbackController(provider Provider, cfg ControllerConfig) *FallbackController {
	return &FallbackController{
		provider:        provider,
		primaryModel:    NormalizeModel(cfg.PrimaryModel),
		fallbackModel:   NormalizeModel(cfg.FallbackModel),
		primaryTimeout:  cfg.PrimaryTimeout,
		fallbackTimeout: cfg.FallbackTimeout,
		temperature:     cfg.Temperature,
		maxTokens:       cfg.MaxTokens,
	}
}

// Do runs the state machine for one message sequence. The returned error is
// non-nil exactly when the outcome carries a failure.
func (c *FallbackController) Do(ctx context.Context, messages []Message) (*Outcome, error) {
	outcome := &Outcome{}

	state := statePrimary
	model, timeout := c.primaryModel, c.primaryTimeout

	for {
		outcome.Attempts++
		outcome.ModelUsed = model

		resp, err := c.provider.Generate(ctx, &Request{
			Model:       model,
			Messages:    messages,
			Temperature: c.temperature,
			MaxTokens:   c.maxTokens,
			Timeout:     timeout,
		})
		if err == nil {
			outcome.Response = resp
			if resp.Model != "" {
				outcome.ModelUsed = resp.Model
			}
			outcome.Failure = FailureNone
			return outcome, nil
		}

		kind, status, snippet := classifyFailure(err)
		outcome.Failure = kind
		outcome.Status = status
		outcome.Snippet = snippet

		if state == stateFallback || !shouldRetry(kind, status) {
			return outcome, err
		}

		state = stateFallback
		model, timeout = c.fallbackModel, c.fallbackTimeout
	}
}

// shouldRetry is the transition table: PRIMARY moves to FALLBACK only on a
// transport failure or a transient upstream status. Config errors and
// non-transient statuses are terminal without a second attempt.
func shouldRetry(kind FailureKind, status int) bool {
	switch kind {
	case FailureTransport:
		return true
	case FailureUpstream:
		return TransientStatus(status)
	default:
		return false
	}
}

func classifyFailure(err error) (FailureKind, int, string) {
	if errors.Is(err, ErrMissingAPIKey) {
		return FailureConfig, 0, ""
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return FailureUpstream, ue.Status, ue.Snippet
	}
	return FailureTransport, 0, ""
}
