package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DewclawArchery/teri-gateway/internal/chat"
	"github.com/DewclawArchery/teri-gateway/internal/llm"
	"github.com/DewclawArchery/teri-gateway/internal/prompt"
	"github.com/DewclawArchery/teri-gateway/internal/redact"
	"github.com/DewclawArchery/teri-gateway/internal/telemetry"
	"github.com/DewclawArchery/teri-gateway/internal/testutil"
	"github.com/DewclawArchery/teri-gateway/internal/wordpress"
)

var testLinks = prompt.OpsLinks{
	Booking: "https://book.example.com",
	Orders:  "https://orders.example.com",
	Leagues: "https://leagues.example.com",
}

func newChatServer(t *testing.T, mock *testutil.MockGateway, opts ...Option) http.Handler {
	t.Helper()
	provider := llm.NewGatewayProvider("test-key", mock.BaseURL())
	controller := llm.NewFallbackController(provider, llm.ControllerConfig{
		PrimaryModel:    "grok-4",
		FallbackModel:   "grok-4.1-fast-non-reasoning",
		PrimaryTimeout:  5 * time.Second,
		FallbackTimeout: 3 * time.Second,
		Temperature:     0.3,
		MaxTokens:       320,
	})
	pipeline := chat.NewPipeline(chat.PipelineConfig{
		Redactor:   redact.MustNewRedactor(),
		Generator:  controller,
		Telemetry:  telemetry.NewLogger(false),
		Links:      testLinks,
		MaxHistory: 10,
	})
	return NewServer(pipeline, opts...).Routes()
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestChatEndpoint(t *testing.T) {
	mock := testutil.NewMockGateway("Lanes are open until 9pm, want a booking link?")
	defer mock.Close()
	h := newChatServer(t, mock)

	rec := postJSON(t, h, "/api/teri/chat", `{
		"messages": [{"role": "user", "content": "can I book a technohunt session?"}],
		"pageContext": {"path": "/technohunt", "title": "TechnoHunt"}
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp chat.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Lanes are open until 9pm, want a booking link?", resp.Message)
	require.Len(t, resp.Actions, 1)
	assert.Equal(t, "Booking Calendar", resp.Actions[0].Label)

	last := mock.LastRequest()
	require.NotNil(t, last)
	assert.Equal(t, "xai/grok-4", last.Model)
	require.NotEmpty(t, last.Messages)
	assert.Equal(t, "system", last.Messages[0].Role)
	assert.Contains(t, last.Messages[0].Content, "Page path: /technohunt")
}

func TestChatMethodNotAllowed(t *testing.T) {
	mock := testutil.NewMockGateway("unused")
	defer mock.Close()
	h := newChatServer(t, mock)

	req := httptest.NewRequest(http.MethodGet, "/api/teri/chat", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "POST", rec.Header().Get("Allow"))
	assert.Contains(t, rec.Body.String(), "Method Not Allowed")
}

func TestChatBadJSON(t *testing.T) {
	mock := testutil.NewMockGateway("unused")
	defer mock.Close()
	h := newChatServer(t, mock)

	rec := postJSON(t, h, "/api/teri/chat", `{"messages": [`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, mock.Requests())
}

func TestChatGatewayFailureAnswers502(t *testing.T) {
	mock := testutil.NewFailingMockGateway("unused", http.StatusServiceUnavailable, http.StatusServiceUnavailable)
	defer mock.Close()
	h := newChatServer(t, mock)

	rec := postJSON(t, h, "/api/teri/chat", `{"messages": [{"role": "user", "content": "hi"}]}`)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["message"], "Tap Retry")

	// Both attempts hit the wire, fallback with the fallback model.
	reqs := mock.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "xai/grok-4", reqs[0].Model)
	assert.Equal(t, "xai/grok-4.1-fast-non-reasoning", reqs[1].Model)
}

func TestChatRedactsBeforeTheWire(t *testing.T) {
	mock := testutil.NewMockGateway("got it")
	defer mock.Close()
	h := newChatServer(t, mock)

	rec := postJSON(t, h, "/api/teri/chat", `{
		"messages": [{"role": "user", "content": "email me at jo@example.com or call 555-867-5309"}]
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	last := mock.LastRequest()
	require.NotNil(t, last)
	wire := last.Messages[len(last.Messages)-1].Content
	assert.NotContains(t, wire, "jo@example.com")
	assert.NotContains(t, wire, "555-867-5309")
	assert.Contains(t, wire, "[email redacted]")
	assert.Contains(t, wire, "[phone redacted]")
}

func TestChatRedactedBookingScenario(t *testing.T) {
	mock := testutil.NewMockGateway("You bring your own bow — want the booking calendar?")
	defer mock.Close()
	h := newChatServer(t, mock)

	rec := postJSON(t, h, "/api/teri/chat", `{
		"messages": [{"role": "user", "content": "my email is a@b.com, can I book TechnoHunt?"}]
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp chat.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	labels := make([]string, 0, len(resp.Actions))
	for _, a := range resp.Actions {
		labels = append(labels, a.Label)
	}
	assert.Contains(t, labels, "Booking Calendar")

	last := mock.LastRequest()
	require.NotNil(t, last)
	for _, m := range last.Messages {
		assert.NotContains(t, m.Content, "a@b.com")
	}
}

func TestChatFallbackRecoversAndIsRecorded(t *testing.T) {
	// Primary attempt gets a transient 503, the fallback succeeds.
	mock := testutil.NewFailingMockGateway("Back on the fallback brain.", http.StatusServiceUnavailable)
	defer mock.Close()

	store, err := telemetry.NewStore(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	defer store.Close()

	provider := llm.NewGatewayProvider("test-key", mock.BaseURL())
	controller := llm.NewFallbackController(provider, llm.ControllerConfig{
		PrimaryModel:    "grok-4",
		FallbackModel:   "grok-4.1-fast-non-reasoning",
		PrimaryTimeout:  5 * time.Second,
		FallbackTimeout: 3 * time.Second,
		Temperature:     0.3,
		MaxTokens:       320,
	})
	tel := telemetry.NewLogger(true, telemetry.WithStore(store))
	pipeline := chat.NewPipeline(chat.PipelineConfig{
		Redactor:   redact.MustNewRedactor(),
		Generator:  controller,
		Telemetry:  tel,
		Links:      testLinks,
		MaxHistory: 10,
	})
	h := NewServer(pipeline).Routes()

	rec := postJSON(t, h, "/api/teri/chat", `{"messages": [{"role": "user", "content": "hi"}]}`)
	tel.Close()

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Back on the fallback brain.")
	require.Len(t, mock.Requests(), 2)

	events, err := store.List(context.Background(), 10)
	require.NoError(t, err)
	var found bool
	for _, e := range events {
		if e.Type == telemetry.TypeResponse {
			found = true
			assert.Equal(t, "xai/grok-4.1-fast-non-reasoning", e.ModelUsed)
		}
	}
	assert.True(t, found)
}

func TestHealth(t *testing.T) {
	mock := testutil.NewMockGateway("unused")
	defer mock.Close()
	h := newChatServer(t, mock)

	req := httptest.NewRequest(http.MethodGet, "/health?detail=true", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	components := resp["components"].(map[string]interface{})
	assert.Equal(t, "disabled", components["event_store"])
	assert.Equal(t, "disabled", components["wordpress"])
}

func TestLeaguesProxy(t *testing.T) {
	wp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[
			{"id":1,"name":"Tuesday Indoor","active":true},
			{"id":2,"name":"Retired League","active":false}
		]}`))
	}))
	defer wp.Close()

	mock := testutil.NewMockGateway("unused")
	defer mock.Close()
	h := newChatServer(t, mock, WithWordPress(wordpress.NewClient(wp.URL)))

	req := httptest.NewRequest(http.MethodGet, "/api/leagues", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var leagues []wordpress.League
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &leagues))
	require.Len(t, leagues, 1)
	assert.Equal(t, "Tuesday Indoor", leagues[0].Name)
}

func TestLeaguesProxyUpstreamError(t *testing.T) {
	wp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer wp.Close()

	mock := testutil.NewMockGateway("unused")
	defer mock.Close()
	h := newChatServer(t, mock, WithWordPress(wordpress.NewClient(wp.URL)))

	req := httptest.NewRequest(http.MethodGet, "/api/leagues", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Could not load leagues")
}

func TestLeagueSignupProxy(t *testing.T) {
	wp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"redirect_url":"https://pay.example.com/x"}`))
	}))
	defer wp.Close()

	mock := testutil.NewMockGateway("unused")
	defer mock.Close()
	h := newChatServer(t, mock, WithWordPress(wordpress.NewClient(wp.URL)))

	rec := postJSON(t, h, "/api/league-signup", `{"league_id":1,"participant":"Jo","payment_mode":"online"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "https://pay.example.com/x")
}

func TestLeagueSignupFailurePassesMessageThrough(t *testing.T) {
	wp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":false,"message":"league is full"}`))
	}))
	defer wp.Close()

	mock := testutil.NewMockGateway("unused")
	defer mock.Close()
	h := newChatServer(t, mock, WithWordPress(wordpress.NewClient(wp.URL)))

	rec := postJSON(t, h, "/api/league-signup", `{"league_id":1}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "league is full")
}

func TestAdminEventsAuth(t *testing.T) {
	mock := testutil.NewMockGateway("unused")
	defer mock.Close()

	store, err := telemetry.NewStore(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	defer store.Close()

	e := telemetry.Event{ID: "evt_test1", Source: "teri", Timestamp: time.Now().UTC().Format(time.RFC3339), Type: telemetry.TypeRequest, Intent: "store_hours"}
	payload, err := json.Marshal(e)
	require.NoError(t, err)
	require.NoError(t, store.Insert(context.Background(), e, payload))

	h := newChatServer(t, mock, WithEventStore(store), WithAdminKeys([]string{"admin-key"}))

	// No key.
	req := httptest.NewRequest(http.MethodGet, "/api/teri/events", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Wrong key.
	req = httptest.NewRequest(http.MethodGet, "/api/teri/events", nil)
	req.Header.Set("X-Teri-Key", "nope")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Bearer form of the right key.
	req = httptest.NewRequest(http.MethodGet, "/api/teri/events", nil)
	req.Header.Set("Authorization", "Bearer admin-key")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Events []telemetry.Event `json:"events"`
		Count  int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "store_hours", resp.Events[0].Intent)
}

func TestAdminEventsBadLimit(t *testing.T) {
	mock := testutil.NewMockGateway("unused")
	defer mock.Close()
	store, err := telemetry.NewStore(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	defer store.Close()

	h := newChatServer(t, mock, WithEventStore(store), WithAdminKeys([]string{"admin-key"}))

	req := httptest.NewRequest(http.MethodGet, "/api/teri/events?limit=zero", nil)
	req.Header.Set("X-Teri-Key", "admin-key")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimit(t *testing.T) {
	mock := testutil.NewMockGateway("ok")
	defer mock.Close()
	h := newChatServer(t, mock, WithRateLimiter(NewRateLimiter(100, 1)))

	body := `{"messages": [{"role": "user", "content": "hi"}]}`

	rec := postJSON(t, h, "/api/teri/chat", body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, h, "/api/teri/chat", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestRateLimitKeysIPv6VisitorsSeparately(t *testing.T) {
	mock := testutil.NewMockGateway("ok")
	defer mock.Close()
	h := newChatServer(t, mock, WithRateLimiter(NewRateLimiter(100, 1)))

	body := `{"messages": [{"role": "user", "content": "hi"}]}`
	send := func(realIP string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/teri/chat", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Real-IP", realIP)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	// Distinct IPv6 clients each get their own bucket.
	require.Equal(t, http.StatusOK, send("2001:db8::1").Code)
	require.Equal(t, http.StatusOK, send("2001:db8::2").Code)

	// Same client again is over its one-request budget.
	assert.Equal(t, http.StatusTooManyRequests, send("2001:db8::1").Code)
}

func TestCORSPreflight(t *testing.T) {
	mock := testutil.NewMockGateway("unused")
	defer mock.Close()
	h := newChatServer(t, mock)

	req := httptest.NewRequest(http.MethodOptions, "/api/teri/chat", nil)
	req.Header.Set("Origin", "https://www.dewclawarchery.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
