package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/trace"

	teriotel "github.com/DewclawArchery/teri-gateway/internal/otel"
)

var tracer = teriotel.Tracer("github.com/DewclawArchery/teri-gateway/internal/llm")

// GatewayProvider calls the OpenAI-compatible hosted gateway.
type GatewayProvider struct {
	client *openai.Client
	apiKey string
}

// NewGatewayProvider creates a provider against baseURL (scheme+host+/v1).
// An empty apiKey is allowed here so `teri config show` works without
// credentials; Generate fails fast before any network attempt.
func NewGatewayProvider(apiKey, baseURL string) *GatewayProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &GatewayProvider{client: openai.NewClientWithConfig(cfg), apiKey: apiKey}
}

// newGatewayProviderWithClient injects a pre-configured client. Used in
// tests with httptest servers.
func newGatewayProviderWithClient(client *openai.Client, apiKey string) *GatewayProvider {
	return &GatewayProvider{client: client, apiKey: apiKey}
}

// Name returns the provider identifier.
func (p *GatewayProvider) Name() string {
	return "gateway"
}

// Generate sends one chat completion request, bounded by req.Timeout.
// Timeout expiry surfaces as a context error, indistinguishable (to the
// caller) from any other transport failure.
func (p *GatewayProvider) Generate(ctx context.Context, req *Request) (*Response, error) {
	if p.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	ctx, span := tracer.Start(ctx, "gen_ai.generate",
		trace.WithAttributes(
			teriotel.GenAISystem.String(p.Name()),
			teriotel.GenAIRequestModel.String(req.Model),
			teriotel.GenAIRequestTemperature.Float64(float64(req.Temperature)),
			teriotel.GenAIRequestMaxTokens.Int(req.MaxTokens),
		))
	defer span.End()

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, msg := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		err = classifyError(err)
		span.RecordError(err)
		return nil, fmt.Errorf("gateway call: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("gateway call: no choices returned")
	}

	span.SetAttributes(
		teriotel.GenAIUsageInputTokens.Int(resp.Usage.PromptTokens),
		teriotel.GenAIUsageOutputTokens.Int(resp.Usage.CompletionTokens),
		teriotel.GenAIResponseFinishReason.String(string(resp.Choices[0].FinishReason)),
		teriotel.GenAIResponseModel.String(resp.Model),
	)

	return &Response{
		Content:      resp.Choices[0].Message.Content,
		FinishReason: string(resp.Choices[0].FinishReason),
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		Model:        resp.Model,
	}, nil
}
