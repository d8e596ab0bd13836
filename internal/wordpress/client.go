// Package wordpress talks to the marketing site's WordPress REST endpoints
// for league data and signups. WordPress plugins are inconsistent about
// response envelopes, so everything goes through Normalize before decoding.
package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	leaguesPath = "/wp-json/teri/v5/leagues"
	signupPath  = "/wp-json/teri/v5/league/signup"

	defaultTimeout = 10 * time.Second
)

// APIError is a structured failure reported by the WordPress side, as opposed
// to a transport or decode failure.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("wordpress: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("wordpress: request failed (status %d)", e.Status)
}

// League is one league night as published by the site.
type League struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	DayOfWeek string  `json:"day_of_week"`
	StartTime string  `json:"start_time"`
	Price     float64 `json:"price"`
	Weeks     int     `json:"weeks"`
	Active    bool    `json:"active"`
}

// Signup is a league signup submission. Contact fields are forwarded to
// WordPress verbatim; the gateway never stores them.
type Signup struct {
	LeagueID    int    `json:"league_id"`
	Participant string `json:"participant"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Notes       string `json:"notes,omitempty"`
	PaymentMode string `json:"payment_mode"`
}

// SignupResult is the WordPress response to a signup. Failed signups carry
// their reason in either message or error depending on the plugin version.
type SignupResult struct {
	Success     bool   `json:"success"`
	RedirectURL string `json:"redirect_url,omitempty"`
	Message     string `json:"message,omitempty"`
	Err         string `json:"error,omitempty"`
}

// Client wraps the WordPress REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) { cl.httpClient = c }
}

// NewClient builds a client for the given site base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Normalize unwraps the envelope variants WordPress plugins emit:
//
//	[...]                        raw array
//	{"data": [...]}              data wrapper
//	{"success": true, "data":…}  success wrapper
//	{"success": false, …}        error envelope, returned as *APIError
//
// Anything else passes through as-is.
func Normalize(body []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("wordpress: empty response body")
	}
	if trimmed[0] == '[' {
		return trimmed, nil
	}

	var envelope struct {
		Success *bool           `json:"success"`
		Data    json.RawMessage `json:"data"`
		Message string          `json:"message"`
		Err     string          `json:"error"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("wordpress: decode response: %w", err)
	}

	if envelope.Success != nil && !*envelope.Success {
		msg := envelope.Message
		if msg == "" {
			msg = envelope.Err
		}
		return nil, &APIError{Message: msg}
	}
	if len(envelope.Data) > 0 {
		return envelope.Data, nil
	}
	return trimmed, nil
}

// Leagues fetches the published league list. Inactive leagues are included;
// callers filter.
func (c *Client) Leagues(ctx context.Context) ([]League, error) {
	body, err := c.get(ctx, leaguesPath)
	if err != nil {
		return nil, err
	}

	data, err := Normalize(body)
	if err != nil {
		return nil, err
	}

	var leagues []League
	if err := json.Unmarshal(data, &leagues); err != nil {
		return nil, fmt.Errorf("wordpress: decode leagues: %w", err)
	}
	return leagues, nil
}

// ActiveLeagues fetches only leagues currently open for signup.
func (c *Client) ActiveLeagues(ctx context.Context) ([]League, error) {
	leagues, err := c.Leagues(ctx)
	if err != nil {
		return nil, err
	}
	active := leagues[:0]
	for _, l := range leagues {
		if l.Active {
			active = append(active, l)
		}
	}
	return active, nil
}

// SubmitSignup forwards a signup to WordPress. A non-2xx status, a non-JSON
// body, or success=false all surface as *APIError so the caller can answer
// the visitor with the plugin's own message.
func (c *Client) SubmitSignup(ctx context.Context, s Signup) (*SignupResult, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("wordpress: encode signup: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+signupPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("wordpress: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wordpress: signup request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("wordpress: read signup response: %w", err)
	}

	var result SignupResult
	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		if err := json.Unmarshal(body, &result); err != nil {
			log.Debug().Err(err).Msg("wordpress: signup response not decodable")
		}
	}

	// WordPress critical-error pages come back as HTML with a 200.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !result.Success {
		msg := result.Message
		if msg == "" {
			msg = result.Err
		}
		if msg == "" {
			msg = "There was an error processing your signup. We may still have received your info—please call the range to confirm."
		}
		return nil, &APIError{Status: resp.StatusCode, Message: msg}
	}
	return &result, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("wordpress: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wordpress: request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("wordpress: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Message: snippet(body)}
	}
	return body, nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
