package models

import "time"

// Listing is a trip or travel group that can be discovered and filtered.
type Listing struct {
	ID                 string           `json:"id" bson:"_id"`
	Title              string           `json:"title" bson:"title"`
	Destination        string           `json:"destination" bson:"destination"`
	StartLocation      string           `json:"startLocation,omitempty" bson:"startLocation,omitempty"`
	StartDate          time.Time        `json:"startDate" bson:"startDate"`
	EndDate            time.Time        `json:"endDate" bson:"endDate"`
	Description        string           `json:"description" bson:"description"`
	ImageURLs          []string         `json:"imageUrls,omitempty" bson:"imageUrls,omitempty"`
	Categories         []string         `json:"categories" bson:"categories"`
	MaxGroupSize       int              `json:"maxGroupSize" bson:"maxGroupSize"`
	CurrentMemberCount int              `json:"currentMemberCount" bson:"currentMemberCount"`
	Budget             string           `json:"budget,omitempty" bson:"budget,omitempty"`
	CreatedByID        string           `json:"createdById" bson:"createdById"`
	CreatorName        string           `json:"creatorName,omitempty" bson:"creatorName,omitempty"`
	SmokingPolicy      SmokingPolicy    `json:"smokingPolicy,omitempty" bson:"smokingPolicy,omitempty"`
	AlcoholPolicy      AlcoholPolicy    `json:"alcoholPolicy,omitempty" bson:"alcoholPolicy,omitempty"`
	GenderPreference   GenderPreference `json:"genderPreference,omitempty" bson:"genderPreference,omitempty"`
	TargetAgeGroup     AgeGroup         `json:"targetAgeGroup,omitempty" bson:"targetAgeGroup,omitempty"`
	TargetTravelerType TravelerType     `json:"targetTravelerType,omitempty" bson:"targetTravelerType,omitempty"`
	PendingMemberIDs   []string         `json:"pendingMembers,omitempty" bson:"pendingMembers,omitempty"`
	CreatedAt          time.Time        `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt" bson:"updatedAt"`
}

// HasCategory reports whether the listing is tagged with category (exact match).
func (l Listing) HasCategory(category string) bool {
	for _, c := range l.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Category is one of the tags listings are matched against.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// KnownCategories is the fixed tag list offered when creating and filtering trips.
// Listings are not validated against it on write.
var KnownCategories = []Category{
	{ID: "Beach", Name: "Beach"},
	{ID: "Adventure", Name: "Adventure"},
	{ID: "Cultural", Name: "Cultural"},
	{ID: "City Break", Name: "City Break"},
	{ID: "Historical", Name: "Historical"},
	{ID: "Foodie", Name: "Foodie"},
	{ID: "Mountains", Name: "Mountains"},
	{ID: "Wellness", Name: "Wellness"},
	{ID: "Family", Name: "Family"},
	{ID: "Budget", Name: "Budget"},
	{ID: "Luxury", Name: "Luxury"},
	{ID: "Nightlife", Name: "Nightlife"},
}
