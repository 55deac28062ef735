// Package suggestions produces ice-breaker messages and first activity ideas
// for a newly formed travel group from its members' profiles.
package suggestions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"
)

// How many of each suggestion kind a group receives.
const (
	IceBreakerCount = 3
	ActivityCount   = 3
)

var (
	// ErrNoMembers is returned when there is nobody to tailor suggestions to.
	ErrNoMembers = errors.New("at least one member profile is required")
	// ErrMalformedOutput is returned when the generator's text is not the expected JSON.
	ErrMalformedOutput = errors.New("malformed suggestion output")
)

// MemberProfile is the slice of a user profile the generator sees.
type MemberProfile struct {
	Interests     string `json:"interests"`
	TravelHistory string `json:"travelHistory"`
	Preferences   string `json:"preferences"`
}

type Suggestions struct {
	IceBreakerMessages  []string `json:"iceBreakerMessages"`
	ActivitySuggestions []string `json:"activitySuggestions"`
}

// Generator turns member profiles into suggestions.
type Generator interface {
	Generate(ctx context.Context, members []MemberProfile) (Suggestions, error)
}

var promptTmpl = template.Must(template.New("spark").Parse(
	`You are a trip planning assistant that helps new travel groups start planning their trip quickly and easily. Based on the group members' profiles, suggest ice-breaker messages and initial activity ideas.

Here are the group member profiles:
{{range $i, $m := .Members}}
  Member {{$i}}:
  - Interests: {{$m.Interests}}
  - Travel History: {{$m.TravelHistory}}
  - Preferences: {{$m.Preferences}}
{{end}}
Generate {{.IceBreakers}} ice-breaker messages and {{.Activities}} activity suggestions.

Output in JSON format:
{
  "iceBreakerMessages": ["message1", "message2", "message3"],
  "activitySuggestions": ["activity1", "activity2", "activity3"]
}
`))

// BuildPrompt renders the instruction sent to the language model.
func BuildPrompt(members []MemberProfile) (string, error) {
	if len(members) == 0 {
		return "", ErrNoMembers
	}
	var b strings.Builder
	err := promptTmpl.Execute(&b, struct {
		Members     []MemberProfile
		IceBreakers int
		Activities  int
	}{members, IceBreakerCount, ActivityCount})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return b.String(), nil
}

// ParseSuggestions decodes model output, tolerating a surrounding markdown code
// fence. Blank entries are dropped and each list is capped at its count; the
// output is rejected only when both lists end up empty.
func ParseSuggestions(raw string) (Suggestions, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}

	var s Suggestions
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		return Suggestions{}, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	s.IceBreakerMessages = clean(s.IceBreakerMessages, IceBreakerCount)
	s.ActivitySuggestions = clean(s.ActivitySuggestions, ActivityCount)
	if len(s.IceBreakerMessages) == 0 && len(s.ActivitySuggestions) == 0 {
		return Suggestions{}, fmt.Errorf("%w: no suggestions in output", ErrMalformedOutput)
	}
	return s, nil
}

// clean drops blank entries and caps the list at limit.
func clean(in []string, limit int) []string {
	out := make([]string, 0, limit)
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
		if len(out) == limit {
			break
		}
	}
	return out
}
