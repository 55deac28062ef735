package dto

// CreateTripRequest represents the payload to create a trip.
// destination, startDate and endDate are the only required fields.
type CreateTripRequest struct {
	Title              string   `json:"title" validate:"max=120"`
	Destination        string   `json:"destination"`
	StartLocation      string   `json:"startLocation" validate:"max=120"`
	StartDate          string   `json:"startDate"` // YYYY-MM-DD or RFC3339
	EndDate            string   `json:"endDate"`   // YYYY-MM-DD or RFC3339
	Description        string   `json:"description" validate:"max=2000"`
	ImageURLs          []string `json:"imageUrls" validate:"omitempty,max=10,dive,url"`
	Categories         []string `json:"categories" validate:"omitempty,dive,required"`
	MaxGroupSize       *int     `json:"maxGroupSize" validate:"omitempty,min=2,max=100"`
	Budget             string   `json:"budget" validate:"max=60"`
	SmokingPolicy      string   `json:"smokingPolicy"`
	AlcoholPolicy      string   `json:"alcoholPolicy"`
	GenderPreference   string   `json:"genderPreference"`
	TargetAgeGroup     string   `json:"targetAgeGroup"`
	TargetTravelerType string   `json:"targetTravelerType"`
}

// CreateTripResponse is returned with 201
type CreateTripResponse struct {
	Message string `json:"message"`
	TripID  string `json:"tripId"`
}

// TripResponse represents a trip or group in responses
type TripResponse struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Destination        string   `json:"destination"`
	StartLocation      string   `json:"startLocation,omitempty"`
	StartDate          string   `json:"startDate"`
	EndDate            string   `json:"endDate"`
	Description        string   `json:"description"`
	ImageURLs          []string `json:"imageUrls"`
	Categories         []string `json:"categories"`
	MaxGroupSize       int      `json:"maxGroupSize"`
	CurrentMemberCount int      `json:"currentMemberCount"`
	Budget             string   `json:"budget,omitempty"`
	CreatedByID        string   `json:"createdById"`
	CreatorName        string   `json:"creatorName,omitempty"`
	SmokingPolicy      string   `json:"smokingPolicy"`
	AlcoholPolicy      string   `json:"alcoholPolicy"`
	GenderPreference   string   `json:"genderPreference"`
	TargetAgeGroup     string   `json:"targetAgeGroup"`
	TargetTravelerType string   `json:"targetTravelerType"`
	PendingMemberCount int      `json:"pendingMemberCount"`
	CreatedAt          string   `json:"createdAt"`
	UpdatedAt          string   `json:"updatedAt"`
}

// TripListResponse wraps a filtered list together with the criteria that produced it
type TripListResponse struct {
	Trips    []TripResponse   `json:"trips"`
	Total    int              `json:"total"`
	Criteria CriteriaResponse `json:"criteria"`
}

// CriteriaResponse echoes the effective filter selections
type CriteriaResponse struct {
	View             string `json:"view"`
	Destination      string `json:"destination,omitempty"`
	StartLocation    string `json:"startLocation,omitempty"`
	Interests        string `json:"interests,omitempty"`
	Budget           string `json:"budget,omitempty"`
	Category         string `json:"category,omitempty"`
	Search           string `json:"search,omitempty"`
	GroupSizeMin     int    `json:"groupSizeMin"`
	GroupSizeMax     int    `json:"groupSizeMax"`
	SmokingPolicy    string `json:"smokingPolicy"`
	AlcoholPolicy    string `json:"alcoholPolicy"`
	GenderPreference string `json:"genderPreference"`
	AgeGroup         string `json:"ageGroup"`
	TravelerType     string `json:"travelerType"`
}

// CategoryListResponse lists the known category tags
type CategoryListResponse struct {
	Categories []CategoryResponse `json:"categories"`
}

type CategoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
