// Package testutil provides shared fixtures for package tests: an
// OpenAI-compatible mock gateway and a scripted provider.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

// CompletionRequest is the subset of the chat completions request body the
// mock gateway records for assertions.
type CompletionRequest struct {
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

// MockGateway is an httptest server speaking the chat completions wire
// format. It records every request it receives, echoes back the requested
// model, and can be scripted to fail.
type MockGateway struct {
	Server *httptest.Server

	mu       sync.Mutex
	requests []CompletionRequest

	content string
	// failStatuses are consumed one per request; once drained the gateway
	// answers normally.
	failStatuses []int
}

// NewMockGateway starts a gateway that always answers with content.
func NewMockGateway(content string) *MockGateway {
	return newMockGateway(content, nil)
}

// NewFailingMockGateway starts a gateway that answers the first len(statuses)
// requests with those HTTP statuses, then succeeds with content.
func NewFailingMockGateway(content string, statuses ...int) *MockGateway {
	return newMockGateway(content, statuses)
}

func newMockGateway(content string, statuses []int) *MockGateway {
	if content == "" {
		content = "mock reply"
	}
	g := &MockGateway{content: content, failStatuses: statuses}
	g.Server = httptest.NewServer(http.HandlerFunc(g.handle))
	return g
}

// BaseURL is the value to hand to the gateway provider constructor.
func (g *MockGateway) BaseURL() string { return g.Server.URL + "/v1" }

// Close shuts the underlying server down.
func (g *MockGateway) Close() { g.Server.Close() }

// Requests returns a copy of every recorded request body.
func (g *MockGateway) Requests() []CompletionRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]CompletionRequest, len(g.requests))
	copy(out, g.requests)
	return out
}

// LastRequest returns the most recent request body, or nil when none.
func (g *MockGateway) LastRequest() *CompletionRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.requests) == 0 {
		return nil
	}
	req := g.requests[len(g.requests)-1]
	return &req
}

func (g *MockGateway) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/chat/completions" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	body, _ := io.ReadAll(r.Body)
	var req CompletionRequest
	_ = json.Unmarshal(body, &req)

	g.mu.Lock()
	g.requests = append(g.requests, req)
	var failWith int
	if len(g.failStatuses) > 0 {
		failWith = g.failStatuses[0]
		g.failStatuses = g.failStatuses[1:]
	}
	g.mu.Unlock()

	if failWith != 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(failWith)
		_, _ = w.Write([]byte(`{"error":{"message":"mock upstream failure"}}`))
		return
	}

	resp := map[string]any{
		"id":     "chatcmpl-mock",
		"object": "chat.completion",
		"model":  req.Model,
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": g.content,
				},
			},
		},
		"usage": map[string]int{
			"prompt_tokens":     12,
			"completion_tokens": 34,
			"total_tokens":      46,
		},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
