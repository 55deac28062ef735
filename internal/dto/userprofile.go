package dto

// ProfileUpdateRequest is the body of PUT /api/profile. Saving it completes the profile step.
type ProfileUpdateRequest struct {
	Name                  string   `json:"name" validate:"required,min=2,max=100"`
	Email                 string   `json:"email" validate:"omitempty,email"`
	AvatarURL             string   `json:"avatarUrl" validate:"omitempty,url"`
	Bio                   string   `json:"bio" validate:"max=300"`
	Interests             []string `json:"interests" validate:"max=30,dive,max=60"`
	TravelHistory         []string `json:"travelHistory" validate:"max=50,dive,max=120"`
	Preferences           []string `json:"preferences" validate:"max=30,dive,max=120"`
	SmokingPolicy         string   `json:"smokingPolicy"`
	AlcoholPolicy         string   `json:"alcoholPolicy"`
	PreferredGenderMix    string   `json:"preferredGenderMix"`
	PreferredAgeGroup     string   `json:"preferredAgeGroup"`
	PreferredTravelerType string   `json:"preferredTravelerType"`
}

// ProfileResponse is returned by GET and PUT /api/profile.
// ForceEdit tells the client to open the form in edit mode.
type ProfileResponse struct {
	UserID                string   `json:"userId"`
	Name                  string   `json:"name"`
	Email                 string   `json:"email"`
	AvatarURL             string   `json:"avatarUrl,omitempty"`
	Bio                   string   `json:"bio"`
	Interests             []string `json:"interests"`
	TravelHistory         []string `json:"travelHistory"`
	Preferences           []string `json:"preferences"`
	SmokingPolicy         string   `json:"smokingPolicy"`
	AlcoholPolicy         string   `json:"alcoholPolicy"`
	PreferredGenderMix    string   `json:"preferredGenderMix"`
	PreferredAgeGroup     string   `json:"preferredAgeGroup"`
	PreferredTravelerType string   `json:"preferredTravelerType"`
	Complete              bool     `json:"complete"`
	ForceEdit             bool     `json:"forceEdit"`
	UpdatedAt             string   `json:"updatedAt"`
}

// ProfileSaveResponse acknowledges a profile save and points the client at the next page
type ProfileSaveResponse struct {
	Message  string          `json:"message"`
	Profile  ProfileResponse `json:"profile"`
	Redirect string          `json:"redirect"`
}
