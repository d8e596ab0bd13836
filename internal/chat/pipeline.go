package chat

import (
	"context"
	"time"

	"github.com/DewclawArchery/teri-gateway/internal/intent"
	"github.com/DewclawArchery/teri-gateway/internal/llm"
	"github.com/DewclawArchery/teri-gateway/internal/policy"
	"github.com/DewclawArchery/teri-gateway/internal/prompt"
	"github.com/DewclawArchery/teri-gateway/internal/redact"
	"github.com/DewclawArchery/teri-gateway/internal/requestctx"
	"github.com/DewclawArchery/teri-gateway/internal/telemetry"
)

// User-facing failure copy. Kept distinct so the visitor can tell "the
// assistant answered but upstream refused" from "nothing connected at all".
const (
	msgGatewayDown = "T.E.R.I. couldn’t reach the brain right now. Tap Retry below or try again in a moment."
	msgNoConnect   = "T.E.R.I. couldn’t connect just now. Tap Retry below or try again in a moment."

	// fallbackGreeting covers the rare empty completion.
	fallbackGreeting = "I’m here—what are you looking to do today?"
)

// Generator produces one assistant turn from a message sequence.
// *llm.FallbackController is the production implementation.
type Generator interface {
	Do(ctx context.Context, messages []llm.Message) (*llm.Outcome, error)
}

// Pipeline is the full request flow for one assistant turn: redact, classify,
// build the prompt, call the gateway, evaluate policy, log telemetry.
type Pipeline struct {
	redactor   *redact.Redactor
	generator  Generator
	telemetry  *telemetry.Logger
	links      prompt.OpsLinks
	maxHistory int
}

// PipelineConfig holds the pipeline's collaborators and tunables.
type PipelineConfig struct {
	Redactor   *redact.Redactor
	Generator  Generator
	Telemetry  *telemetry.Logger
	Links      prompt.OpsLinks
	MaxHistory int
}

// NewPipeline wires a pipeline. Telemetry may be nil-equivalent (a disabled
// logger); redactor and generator are required.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	return &Pipeline{
		redactor:   cfg.Redactor,
		generator:  cfg.Generator,
		telemetry:  cfg.Telemetry,
		links:      cfg.Links,
		maxHistory: cfg.MaxHistory,
	}
}

// Result is the outcome of one turn. OK distinguishes a served reply from a
// gateway failure; on failure Reply.Message carries the visitor-facing
// apology and the server answers 502.
type Result struct {
	Reply   Response
	OK      bool
	Failure llm.FailureKind
	Intent  intent.Intent
}

// Respond runs one assistant turn end to end. It never returns an error to
// the caller: every failure path yields a Result with OK=false and a
// visitor-safe message, and all telemetry is emitted before returning.
func (p *Pipeline) Respond(ctx context.Context, req Request) Result {
	lastUserText := p.redactor.Redact(LastUserText(req.Messages))
	it := intent.Classify(lastUserText, req.PageContext.Path)
	actions := actionLinks(prompt.Actions(lastUserText, p.links))
	history := SanitizeHistory(req.Messages, p.maxHistory, p.redactor)

	page := prompt.Page{
		Path:     req.PageContext.Path,
		Title:    req.PageContext.Title,
		Headings: req.PageContext.Headings,
	}
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: RoleSystem, Content: prompt.BuildSystem(page, p.links)})
	if it.IsArrows() {
		messages = append(messages, llm.Message{Role: RoleSystem, Content: prompt.ArrowGrounding()})
	}
	for _, turn := range history {
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Content})
	}

	corrID := requestctx.CorrelationID(ctx)
	p.telemetry.Log(ctx, telemetry.Event{
		Type:          telemetry.TypeRequest,
		CorrelationID: corrID,
		Page:          req.PageContext.Path,
		Intent:        string(it),
		HasHistory:    len(history) > 1,
	})

	start := time.Now()
	outcome, err := p.generator.Do(ctx, messages)
	latencyMS := time.Since(start).Milliseconds()

	if err != nil || !outcome.OK() {
		flags := policy.Evaluate(policy.Input{Intent: it, UserText: lastUserText})
		p.telemetry.Log(ctx, telemetry.Event{
			Type:          telemetry.TypeResponse,
			CorrelationID: corrID,
			Page:          req.PageContext.Path,
			Intent:        string(it),
			OK:            telemetry.Bool(false),
			Error:         errorLabel(outcome.Failure),
			LatencyMS:     latencyMS,
			PolicyFlags:   policy.Labels(flags),
			ModelUsed:     outcome.ModelUsed,
			Status:        outcome.Status,
			Debug:         outcome.Snippet,
		})
		llm.RecordRequestMetrics(ctx, float64(latencyMS), outcome.ModelUsed, false, outcome.Attempts)
		return Result{
			Reply:   Response{Message: failureMessage(outcome.Failure)},
			Failure: outcome.Failure,
			Intent:  it,
		}
	}

	content := outcome.Response.Content
	if content == "" {
		content = fallbackGreeting
	}

	flags := policy.Evaluate(policy.Input{Intent: it, UserText: lastUserText, AssistantText: content})
	p.telemetry.Log(ctx, telemetry.Event{
		Type:          telemetry.TypeResponse,
		CorrelationID: corrID,
		Page:          req.PageContext.Path,
		Intent:        string(it),
		Actions:       actionLabels(actions),
		OK:            telemetry.Bool(true),
		LatencyMS:     latencyMS,
		ResponseLen:   len(content),
		PolicyFlags:   policy.Labels(flags),
		ModelUsed:     outcome.ModelUsed,
	})
	llm.RecordRequestMetrics(ctx, float64(latencyMS), outcome.ModelUsed, true, outcome.Attempts)

	return Result{
		Reply:  Response{Message: content, Actions: actions},
		OK:     true,
		Intent: it,
	}
}

func errorLabel(kind llm.FailureKind) string {
	switch kind {
	case llm.FailureUpstream:
		return telemetry.ErrGatewayNon200
	case llm.FailureTransport:
		return telemetry.ErrGatewayUnreachable
	default:
		return telemetry.ErrGatewayException
	}
}

func failureMessage(kind llm.FailureKind) string {
	switch kind {
	case llm.FailureUpstream, llm.FailureTransport:
		return msgGatewayDown
	default:
		return msgNoConnect
	}
}

func actionLinks(actions []prompt.Action) []ActionLink {
	if len(actions) == 0 {
		return nil
	}
	links := make([]ActionLink, len(actions))
	for i, a := range actions {
		links[i] = ActionLink{Label: a.Label, URL: a.URL}
	}
	return links
}

func actionLabels(actions []ActionLink) []string {
	if len(actions) == 0 {
		return nil
	}
	labels := make([]string, len(actions))
	for i, a := range actions {
		labels[i] = a.Label
	}
	return labels
}
