// Package chat holds the request-scoped data model for an assistant turn and
// the pipeline that produces a reply: redact the last user message, classify
// intent, build the prompt, sanitize history, call the gateway with fallback,
// evaluate policy flags, and emit telemetry.
package chat

// Roles accepted in conversation history. The set is closed; anything else
// is dropped by SanitizeHistory.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message in the conversation, in chronological order.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RawMessage is a history entry as received from the client. Content is
// decoded loosely so a single malformed entry (number, object, null) can be
// dropped without aborting the turn.
type RawMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// PageContext describes the page the visitor is on. All fields are optional;
// it only enriches the prompt and the intent signal.
type PageContext struct {
	Path     string   `json:"path,omitempty"`
	Title    string   `json:"title,omitempty"`
	Headings []string `json:"headings,omitempty"`
}

// Request is the inbound chat request body.
type Request struct {
	Messages    []RawMessage `json:"messages"`
	PageContext PageContext  `json:"pageContext"`
}

// ActionLink is a suggested next-step link returned alongside the reply.
type ActionLink struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Response is the client-facing reply for a successful turn.
type Response struct {
	Message string       `json:"message"`
	Actions []ActionLink `json:"actions,omitempty"`
}
