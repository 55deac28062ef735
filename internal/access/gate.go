// Package access decides where a session may navigate based on whether it
// is signed in and whether the one-time profile setup has been finished.
package access

import "strings"

// Navigation targets used in redirect outcomes.
const (
	LandingPath = "/"
	ProfilePath = "/profile"
)

// RouteKind classifies a navigation target.
type RouteKind int

const (
	RouteOpen RouteKind = iota
	RouteLanding
	RouteAuth
	RouteProfile
	RouteMain
)

func (k RouteKind) String() string {
	switch k {
	case RouteLanding:
		return "landing"
	case RouteAuth:
		return "auth"
	case RouteProfile:
		return "profile"
	case RouteMain:
		return "main"
	default:
		return "open"
	}
}

var mainPrefixes = []string{"/discover", "/groups", "/create-trip", "/chat", "/trip"}

// Classify maps a frontend path to its route kind. Query strings and
// trailing slashes are ignored.
func Classify(path string) RouteKind {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == "/" {
		return RouteLanding
	}
	path = strings.TrimRight(path, "/")

	if hasSegmentPrefix(path, "/auth") {
		return RouteAuth
	}
	if hasSegmentPrefix(path, ProfilePath) {
		return RouteProfile
	}
	for _, p := range mainPrefixes {
		if hasSegmentPrefix(path, p) {
			return RouteMain
		}
	}
	return RouteOpen
}

// hasSegmentPrefix matches "/trip" and "/trip/123" but not "/trips".
func hasSegmentPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// Decision is the gate's verdict for a navigation attempt.
type Decision string

const (
	Allow             Decision = "ALLOW"
	RedirectToLanding Decision = "REDIRECT_TO_LANDING"
	RedirectToProfile Decision = "REDIRECT_TO_PROFILE"
)

// Outcome is a decision plus where to go and whether the profile form must open in edit mode.
type Outcome struct {
	Decision  Decision `json:"decision"`
	Target    string   `json:"target,omitempty"`
	ForceEdit bool     `json:"forceEdit,omitempty"`
}

// Decide is the gate transition table. It has no side effects.
func Decide(s State, route RouteKind) Outcome {
	switch s.Status() {
	case SignedOut:
		switch route {
		case RouteProfile, RouteMain:
			return Outcome{Decision: RedirectToLanding, Target: LandingPath}
		}
	case SignedInIncomplete:
		switch route {
		case RouteMain:
			return Outcome{Decision: RedirectToProfile, Target: ProfilePath, ForceEdit: true}
		case RouteProfile:
			return Outcome{Decision: Allow, ForceEdit: true}
		}
	}
	return Outcome{Decision: Allow}
}
