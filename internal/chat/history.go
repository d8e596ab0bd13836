package chat

import "github.com/DewclawArchery/teri-gateway/internal/redact"

// SanitizeHistory filters raw history down to well-formed user/assistant
// turns, keeps only the most recent max entries, and redacts each retained
// message. Malformed entries (wrong role, non-string content) are dropped
// silently; chronological order is preserved. Never fails.
func SanitizeHistory(raw []RawMessage, max int, r *redact.Redactor) []Turn {
	cleaned := make([]Turn, 0, len(raw))
	for _, m := range raw {
		if m.Role != RoleUser && m.Role != RoleAssistant {
			continue
		}
		content, ok := m.Content.(string)
		if !ok {
			continue
		}
		cleaned = append(cleaned, Turn{Role: m.Role, Content: r.Redact(content)})
	}
	if max > 0 && len(cleaned) > max {
		cleaned = cleaned[len(cleaned)-max:]
	}
	return cleaned
}

// LastUserText returns the content of the most recent user message, or ""
// when the history has none.
func LastUserText(raw []RawMessage) string {
	for i := len(raw) - 1; i >= 0; i-- {
		if raw[i].Role != RoleUser {
			continue
		}
		if s, ok := raw[i].Content.(string); ok {
			return s
		}
	}
	return ""
}
