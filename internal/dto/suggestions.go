package dto

// MemberProfileRequest is one member as seen by the suggestion generator
type MemberProfileRequest struct {
	Interests     string `json:"interests" validate:"max=500"`
	TravelHistory string `json:"travelHistory" validate:"max=500"`
	Preferences   string `json:"preferences" validate:"max=500"`
}

// SuggestionsRequest optionally overrides the member profiles loaded from storage
type SuggestionsRequest struct {
	MemberProfiles []MemberProfileRequest `json:"memberProfiles" validate:"max=20,dive"`
}

// SuggestionsResponse carries the generated ice-breakers and activity ideas
type SuggestionsResponse struct {
	GroupID             string   `json:"groupId"`
	IceBreakerMessages  []string `json:"iceBreakerMessages"`
	ActivitySuggestions []string `json:"activitySuggestions"`
}
