package prompt

import (
	"regexp"
	"strings"
)

// actionRules map keyword categories to link builders. First match wins per
// category; category order fixes the output order.
var actionRules = []struct {
	match *regexp.Regexp
	label string
	url   func(OpsLinks) string
}{
	{regexp.MustCompile(`book|booking|calendar|technohunt|session`), "Booking Calendar", func(l OpsLinks) string { return l.Booking }},
	{regexp.MustCompile(`arrow|arrows|shaft|spine|insert|point|fletch`), "Arrow Orders", func(l OpsLinks) string { return l.Orders }},
	{regexp.MustCompile(`league|event|tournament`), "Leagues", func(l OpsLinks) string { return l.Leagues }},
}

const maxActions = 3

// Actions derives suggested next-step links from the visitor's last message.
// At most three, in fixed category order.
func Actions(lastUserText string, links OpsLinks) []Action {
	text := strings.ToLower(lastUserText)
	if text == "" {
		return nil
	}

	var out []Action
	for _, rule := range actionRules {
		if !rule.match.MatchString(text) {
			continue
		}
		out = append(out, Action{Label: rule.label, URL: rule.url(links)})
		if len(out) == maxActions {
			break
		}
	}
	return out
}
