// Package intent maps a visitor utterance (plus the page they are on) to one
// coarse intent label. Classification is an ordered rule table: domains are
// tried in a fixed order, and within a domain the first matching sub-rule
// wins. This is a deliberate tie-break, not an exhaustive classifier.
package intent

import "strings"

// Intent is one label from the closed set below. Derived per request, never
// stored on its own.
type Intent string

const (
	TechnoHuntBeginner     Intent = "technohunt_beginner"
	TechnoHuntBooking      Intent = "technohunt_booking"
	TechnoHuntRequirements Intent = "technohunt_requirements"
	TechnoHuntTroubleshoot Intent = "technohunt_troubleshoot"
	TechnoHuntOverview     Intent = "technohunt_overview"

	ArrowsSpine      Intent = "arrows_spine"
	ArrowsHunting    Intent = "arrows_hunting"
	ArrowsTarget     Intent = "arrows_target"
	ArrowsOrdering   Intent = "arrows_ordering"
	ArrowsComponents Intent = "arrows_components"
	ArrowsOverview   Intent = "arrows_overview"

	LeaguesSignup   Intent = "leagues_signup"
	EventsSchedule  Intent = "events_schedule"
	LeaguesOverview Intent = "leagues_overview"

	StoreHours    Intent = "store_hours"
	StorePolicies Intent = "store_policies"
	StoreLocation Intent = "store_location"

	Unknown Intent = "unknown"
)

// IsTechnoHunt reports whether the intent belongs to the TechnoHunt domain.
func (i Intent) IsTechnoHunt() bool { return strings.HasPrefix(string(i), "technohunt_") }

// IsArrows reports whether the intent belongs to the arrows domain.
func (i Intent) IsArrows() bool { return strings.HasPrefix(string(i), "arrows_") }
