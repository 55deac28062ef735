package models

import "time"

// UserProfile holds a traveler's bio, history and their own habits and preferences.
// The stance fields describe the user, not a trip: "non_smoker" rather than "not_permitted".
type UserProfile struct {
	UserID                string           `json:"userId"`
	Name                  string           `json:"name"`
	Email                 string           `json:"email"`
	AvatarURL             string           `json:"avatarUrl,omitempty"`
	Bio                   string           `json:"bio,omitempty"`
	Interests             []string         `json:"interests"`
	TravelHistory         []string         `json:"travelHistory"`
	Preferences           []string         `json:"preferences"`
	SmokingStance         SmokingStance    `json:"smokingPolicy"`
	AlcoholStance         AlcoholStance    `json:"alcoholPolicy"`
	PreferredGenderMix    GenderPreference `json:"preferredGenderMix"`
	PreferredAgeGroup     AgeGroup         `json:"preferredAgeGroup"`
	PreferredTravelerType TravelerType     `json:"preferredTravelerType"`
	Complete              bool             `json:"complete"`
	CreatedAt             time.Time        `json:"createdAt"`
	UpdatedAt             time.Time        `json:"updatedAt"`
}

// NewEmptyProfile is the profile created at sign-up, before the preference step.
func NewEmptyProfile(userID, name, email string, now time.Time) UserProfile {
	return UserProfile{
		UserID:                userID,
		Name:                  name,
		Email:                 email,
		Interests:             []string{},
		TravelHistory:         []string{},
		Preferences:           []string{},
		SmokingStance:         SmokingStanceAny,
		AlcoholStance:         AlcoholStanceAny,
		PreferredGenderMix:    GenderAny,
		PreferredAgeGroup:     AgeAny,
		PreferredTravelerType: TravelerAny,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}
