// Package policy derives advisory guardrail flags from a completed chat turn.
// Flags feed telemetry only; they never change the reply sent to the visitor.
package policy

import (
	"regexp"
	"strings"

	"github.com/DewclawArchery/teri-gateway/internal/intent"
)

// Flag is one label from the closed set below.
type Flag string

const (
	// TechnoHuntNoRentals marks turns where the no-rentals policy is
	// relevant: the visitor signals they lack equipment or asks about
	// rentals or being new.
	TechnoHuntNoRentals Flag = "technohunt_no_rentals"

	// PolicyDriftTechnoHuntRentals marks replies whose wording implies
	// equipment is provided or rentals exist. A monitoring signal, not a
	// blocking gate; the reply is still returned.
	PolicyDriftTechnoHuntRentals Flag = "policy_drift_technohunt_rentals"
)

var (
	noGearPattern   = regexp.MustCompile(`rental|rentals|borrow|provided|provide|do you have gear|no gear|dont have|don't have|need a bow|need arrows`)
	newcomerPattern = regexp.MustCompile(`beginner|first time|never shot|brand new`)
	driftPattern    = regexp.MustCompile(`no equipment needed|we provide|rental gear|rentals available|provided equipment`)
)

// Input holds everything the evaluator looks at. UserText is expected to be
// the already-redacted last user message; AssistantText the model reply.
type Input struct {
	Intent        intent.Intent
	UserText      string
	AssistantText string
}

// Evaluate runs the guardrail checks scoped to the intent's domain and
// returns zero or more flags. The two TechnoHunt checks are independent:
// one looks at what the visitor asked, the other at what the assistant said.
func Evaluate(in Input) []Flag {
	if !in.Intent.IsTechnoHunt() {
		return nil
	}

	var flags []Flag
	user := strings.ToLower(in.UserText)
	reply := strings.ToLower(in.AssistantText)

	if user != "" && (noGearPattern.MatchString(user) || newcomerPattern.MatchString(user)) {
		flags = append(flags, TechnoHuntNoRentals)
	}
	if reply != "" && driftPattern.MatchString(reply) {
		flags = append(flags, PolicyDriftTechnoHuntRentals)
	}
	return flags
}

// Labels converts flags to plain strings for telemetry payloads.
func Labels(flags []Flag) []string {
	if len(flags) == 0 {
		return nil
	}
	out := make([]string, len(flags))
	for i, f := range flags {
		out[i] = string(f)
	}
	return out
}
