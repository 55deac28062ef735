// Package repository persists listings, join requests and user profiles.
package repository

import (
	"context"
	"errors"

	"ROAMMATE_BACK-END/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrGroupFull is returned when a join request targets a listing with no free places.
	ErrGroupFull = errors.New("group is full")
	// ErrInvalidListing is returned when a listing violates its size invariants.
	ErrInvalidListing = errors.New("invalid listing")
)

// ListingRepository is the catalog of trips and groups.
type ListingRepository interface {
	// ListListings returns every listing in a stable order.
	ListListings(ctx context.Context) ([]models.Listing, error)
	GetListing(ctx context.Context, id string) (models.Listing, error)
	// CreateListing stores l, assigning an id when l.ID is empty, and returns the id.
	CreateListing(ctx context.Context, l models.Listing) (string, error)
	// AddPendingMember records a join request. Repeating it is a no-op.
	AddPendingMember(ctx context.Context, listingID, userID string) error
}

// ProfileRepository stores one profile per user.
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (models.UserProfile, error)
	SaveProfile(ctx context.Context, p models.UserProfile) error
	// DeleteProfile removes the user's profile. A missing profile is not an error.
	DeleteProfile(ctx context.Context, userID string) error
}

// CheckCapacity enforces 2 <= maxGroupSize and 0 <= currentMemberCount <= maxGroupSize.
func CheckCapacity(l models.Listing) error {
	switch {
	case l.MaxGroupSize < 2:
		return errors.Join(ErrInvalidListing, errors.New("maxGroupSize must be at least 2"))
	case l.CurrentMemberCount < 0 || l.CurrentMemberCount > l.MaxGroupSize:
		return errors.Join(ErrInvalidListing, errors.New("currentMemberCount must be between 0 and maxGroupSize"))
	}
	return nil
}

func hasFreePlace(l models.Listing) bool {
	return l.CurrentMemberCount < l.MaxGroupSize
}
