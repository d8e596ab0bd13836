package intent

import (
	"regexp"
	"strings"
)

// subRule is one (predicate, label) pair inside a domain. Evaluated top to
// bottom; the first match wins.
type subRule struct {
	match *regexp.Regexp
	label Intent
}

// domainRule gates a group of sub-rules. The gate opens when either the user
// text or the current page path matches (the page path is an OR-gate, not an
// override). fallback is the domain's generic label when no sub-rule fires.
type domainRule struct {
	text     *regexp.Regexp // nil means the domain cannot be entered via text
	path     *regexp.Regexp // nil means the domain cannot be entered via path
	subRules []subRule
	fallback Intent
}

var technoHuntDomain = domainRule{
	text: regexp.MustCompile(`technohunt|simulator`),
	path: regexp.MustCompile(`technohunt`),
	subRules: []subRule{
		{regexp.MustCompile(`new|beginner|first time|first-time|never shot|brand new`), TechnoHuntBeginner},
		{regexp.MustCompile(`book|booking|calendar|schedule|slot|availability|openings|time|duration`), TechnoHuntBooking},
		{regexp.MustCompile(`need|bring|required|requirements|gear|equipment|rental|rentals|no gear`), TechnoHuntRequirements},
		{regexp.MustCompile(`error|won't|cant|can't|cannot|failed|not working|problem`), TechnoHuntTroubleshoot},
	},
	fallback: TechnoHuntOverview,
}

var arrowsDomain = domainRule{
	text: regexp.MustCompile(`arrow|arrows|shaft|shafts|spine|gpi|insert|inserts|outsert|point|points|broadhead|vane|vanes|fletch|wrap|wraps|foc|grain|grains`),
	subRules: []subRule{
		// Spine-numeric mentions outrank everything else in the domain.
		{regexp.MustCompile(`spine|300|340|350|400|500|600`), ArrowsSpine},
		{regexp.MustCompile(`hunting|broadhead|elk|deer|bear|penetration|fixed|mechanical`), ArrowsHunting},
		{regexp.MustCompile(`target|3d|indoor|outdoor|tournament|spots`), ArrowsTarget},
		{regexp.MustCompile(`order|ordering|checkout|cart|build|custom order`), ArrowsOrdering},
		{regexp.MustCompile(`insert|outsert|point|broadhead|vane|wrap|nock|collar`), ArrowsComponents},
	},
	fallback: ArrowsOverview,
}

var leaguesDomain = domainRule{
	text: regexp.MustCompile(`league|leagues|event|events|tournament|night shoot|3d league`),
	path: regexp.MustCompile(`leagues`),
	subRules: []subRule{
		{regexp.MustCompile(`sign up|signup|register|join`), LeaguesSignup},
		{regexp.MustCompile(`when|date|schedule|calendar|start|starts`), EventsSchedule},
	},
	fallback: LeaguesOverview,
}

// domains are evaluated in order; the first whose gate opens answers.
var domains = []domainRule{technoHuntDomain, arrowsDomain, leaguesDomain}

// storeRules are flat (predicate, label) pairs with no domain gate, checked
// after the gated domains.
var storeRules = []subRule{
	{regexp.MustCompile(`hours|open|close|closing|holiday`), StoreHours},
	{regexp.MustCompile(`policy|policies|return|refund|exchange|waiver|rules|safety`), StorePolicies},
	{regexp.MustCompile(`address|location|directions|where are you|phone|call`), StoreLocation},
}

// Classify maps the last user message and the current page path to an Intent.
// Matching is case-insensitive. Pure and deterministic; returns Unknown when
// nothing matches.
func Classify(lastUserText, pagePath string) Intent {
	text := strings.ToLower(lastUserText)
	path := strings.ToLower(pagePath)

	for _, d := range domains {
		textHit := d.text != nil && text != "" && d.text.MatchString(text)
		pathHit := d.path != nil && path != "" && d.path.MatchString(path)
		if !textHit && !pathHit {
			continue
		}
		for _, r := range d.subRules {
			if text != "" && r.match.MatchString(text) {
				return r.label
			}
		}
		return d.fallback
	}

	if text != "" {
		for _, r := range storeRules {
			if r.match.MatchString(text) {
				return r.label
			}
		}
	}

	return Unknown
}
