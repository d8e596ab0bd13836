// Package prompt assembles the system messages sent ahead of conversation
// history. The primary system prompt carries brand voice, guardrails, and
// page context; the arrow grounding message pins down spine physics for
// arrows_* intents and is inserted immediately after the primary prompt so
// later instructions cannot override it.
package prompt

import "strings"

// OpsLinks are the three canonical next-step URLs embedded in every prompt.
type OpsLinks struct {
	Booking string
	Orders  string
	Leagues string
}

// Page is the visitor's page context as forwarded by the widget.
type Page struct {
	Path     string
	Title    string
	Headings []string
}

// Action is a suggested next-step link.
type Action struct {
	Label string
	URL   string
}

// BuildSystem returns the primary system prompt. Deterministic for identical
// inputs.
func BuildSystem(page Page, links OpsLinks) string {
	var pageBits []string
	if page.Path != "" {
		pageBits = append(pageBits, "Page path: "+page.Path)
	}
	if page.Title != "" {
		pageBits = append(pageBits, "Page title: "+page.Title)
	}
	if len(page.Headings) > 0 {
		pageBits = append(pageBits, "Headings: "+strings.Join(page.Headings, " | "))
	}
	pageBlock := "No page context provided."
	if len(pageBits) > 0 {
		pageBlock = strings.Join(pageBits, "\n")
	}

	var b strings.Builder
	b.WriteString(`You are T.E.R.I. (Technical Equipment Recommendation Intelligence), Dewclaw Archery's site-wide "pro shop staff" assistant.

VOICE & TONE
- Friendly, knowledgeable pro-shop staff.
- Confident, never pushy.
- Safety and accuracy over confidence.

GUARDRAILS (CRITICAL)
- Do NOT fabricate prices, availability, or guarantees.
- Do NOT collect or request PII.
- No admin actions. No internal notes.

TECHNOHUNT (HARD RULE)
- Never imply rental gear is provided.
- Assume shooters bring their own equipment.

ARROW RULES (CRITICAL)
- Do not give exact spine without all variables.
- Longer arrow = weaker dynamic = stiffer static spine.
- Heavier point/insert = weaker dynamic = stiffer static spine.
- Prefer Easton Arrow Selector guidance.

DEFAULT BREVITY
- 4-8 lines.
- Ask 1-2 clarifying questions if needed.

PAGE CONTEXT
`)
	b.WriteString(pageBlock)
	b.WriteString("\n\nNEXT STEPS\n- Booking: ")
	b.WriteString(links.Booking)
	b.WriteString("\n- Arrow Orders: ")
	b.WriteString(links.Orders)
	b.WriteString("\n- Leagues: ")
	b.WriteString(links.Leagues)
	return b.String()
}

// ArrowGrounding returns the secondary system message injected only for
// arrows_* intents.
func ArrowGrounding() string {
	return `EASTON REFERENCE (PRIMARY)
- Use Easton Arrow Selector as authoritative reference.
- Do not paste charts.
- Ask for missing variables.

SPINE RULES (NON-NEGOTIABLE)
- Longer arrow = stiffer spine needed.
- Heavier point/insert = stiffer spine needed.
- Never claim "weaker is more forgiving."`
}
