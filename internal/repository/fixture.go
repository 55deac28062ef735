package repository

import (
	"context"
	_ "embed"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"ROAMMATE_BACK-END/internal/models"
	"ROAMMATE_BACK-END/internal/utils"
)

//go:embed fixtures/catalog.yaml
var seedCatalog []byte

// fixtureListing is the YAML shape; dates are plain strings.
type fixtureListing struct {
	ID                 string   `yaml:"id"`
	Title              string   `yaml:"title"`
	Destination        string   `yaml:"destination"`
	StartLocation      string   `yaml:"startLocation"`
	StartDate          string   `yaml:"startDate"`
	EndDate            string   `yaml:"endDate"`
	Description        string   `yaml:"description"`
	ImageURLs          []string `yaml:"imageUrls"`
	Categories         []string `yaml:"categories"`
	MaxGroupSize       int      `yaml:"maxGroupSize"`
	CurrentMemberCount int      `yaml:"currentMemberCount"`
	Budget             string   `yaml:"budget"`
	CreatedByID        string   `yaml:"createdById"`
	CreatorName        string   `yaml:"creatorName"`
	SmokingPolicy      string   `yaml:"smokingPolicy"`
	AlcoholPolicy      string   `yaml:"alcoholPolicy"`
	GenderPreference   string   `yaml:"genderPreference"`
	TargetAgeGroup     string   `yaml:"targetAgeGroup"`
	TargetTravelerType string   `yaml:"targetTravelerType"`
	CreatedAt          string   `yaml:"createdAt"`
	UpdatedAt          string   `yaml:"updatedAt"`
}

// SeedListings decodes the embedded catalog.
func SeedListings() ([]models.Listing, error) {
	return DecodeCatalog(seedCatalog)
}

// DecodeCatalog parses a YAML list of listings. Unset policies stay unset.
func DecodeCatalog(data []byte) ([]models.Listing, error) {
	var raw []fixtureListing
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	out := make([]models.Listing, 0, len(raw))
	for i, f := range raw {
		l, err := f.toListing()
		if err != nil {
			return nil, fmt.Errorf("catalog entry %d (%s): %w", i, f.ID, err)
		}
		out = append(out, l)
	}
	return out, nil
}

func (f fixtureListing) toListing() (models.Listing, error) {
	l := models.Listing{
		ID:                 f.ID,
		Title:              f.Title,
		Destination:        f.Destination,
		StartLocation:      f.StartLocation,
		Description:        f.Description,
		ImageURLs:          f.ImageURLs,
		Categories:         f.Categories,
		MaxGroupSize:       f.MaxGroupSize,
		CurrentMemberCount: f.CurrentMemberCount,
		Budget:             f.Budget,
		CreatedByID:        f.CreatedByID,
		CreatorName:        f.CreatorName,
		SmokingPolicy:      models.SmokingPolicy(f.SmokingPolicy),
		AlcoholPolicy:      models.AlcoholPolicy(f.AlcoholPolicy),
		GenderPreference:   models.GenderPreference(f.GenderPreference),
		TargetAgeGroup:     models.AgeGroup(f.TargetAgeGroup),
		TargetTravelerType: models.TravelerType(f.TargetTravelerType),
	}

	var err error
	if l.StartDate, err = utils.ParseDate(f.StartDate); err != nil {
		return l, err
	}
	if l.EndDate, err = utils.ParseDate(f.EndDate); err != nil {
		return l, err
	}
	if f.CreatedAt != "" {
		if l.CreatedAt, err = utils.ParseDate(f.CreatedAt); err != nil {
			return l, err
		}
	}
	l.UpdatedAt = l.CreatedAt
	if f.UpdatedAt != "" {
		if l.UpdatedAt, err = utils.ParseDate(f.UpdatedAt); err != nil {
			return l, err
		}
	}

	if err := validatePolicies(l); err != nil {
		return l, err
	}
	return l, CheckCapacity(l)
}

func validatePolicies(l models.Listing) error {
	checks := []struct {
		name  string
		value string
		valid bool
	}{
		{"smokingPolicy", string(l.SmokingPolicy), l.SmokingPolicy == "" || l.SmokingPolicy.Valid()},
		{"alcoholPolicy", string(l.AlcoholPolicy), l.AlcoholPolicy == "" || l.AlcoholPolicy.Valid()},
		{"genderPreference", string(l.GenderPreference), l.GenderPreference == "" || l.GenderPreference.Valid()},
		{"targetAgeGroup", string(l.TargetAgeGroup), l.TargetAgeGroup == "" || l.TargetAgeGroup.Valid()},
		{"targetTravelerType", string(l.TargetTravelerType), l.TargetTravelerType == "" || l.TargetTravelerType.Valid()},
	}
	for _, c := range checks {
		if !c.valid {
			return fmt.Errorf("%w: %s %q", models.ErrInvalidEnum, c.name, c.value)
		}
	}
	return nil
}

// MemoryListingRepository is an in-process catalog, seeded from a fixture.
type MemoryListingRepository struct {
	mu       sync.RWMutex
	listings []models.Listing
	index    map[string]int
	now      func() time.Time
}

// NewMemoryListingRepository copies seed into a new repository.
func NewMemoryListingRepository(seed []models.Listing) *MemoryListingRepository {
	r := &MemoryListingRepository{index: make(map[string]int, len(seed)), now: time.Now}
	for _, l := range seed {
		r.index[l.ID] = len(r.listings)
		r.listings = append(r.listings, cloneListing(l))
	}
	return r
}

// NewFixtureRepository returns a memory repository holding the embedded catalog.
func NewFixtureRepository() (*MemoryListingRepository, error) {
	seed, err := SeedListings()
	if err != nil {
		return nil, err
	}
	return NewMemoryListingRepository(seed), nil
}

func (r *MemoryListingRepository) ListListings(_ context.Context) ([]models.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Listing, len(r.listings))
	for i, l := range r.listings {
		out[i] = cloneListing(l)
	}
	return out, nil
}

func (r *MemoryListingRepository) GetListing(_ context.Context, id string) (models.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[id]
	if !ok {
		return models.Listing{}, ErrNotFound
	}
	return cloneListing(r.listings[i]), nil
}

func (r *MemoryListingRepository) CreateListing(_ context.Context, l models.Listing) (string, error) {
	if err := CheckCapacity(l); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if _, exists := r.index[l.ID]; exists {
		return "", fmt.Errorf("%w: listing %s already exists", ErrInvalidListing, l.ID)
	}
	now := r.now()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	if l.UpdatedAt.IsZero() {
		l.UpdatedAt = now
	}
	r.index[l.ID] = len(r.listings)
	r.listings = append(r.listings, cloneListing(l))
	return l.ID, nil
}

func (r *MemoryListingRepository) AddPendingMember(_ context.Context, listingID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[listingID]
	if !ok {
		return ErrNotFound
	}
	l := &r.listings[i]
	if slices.Contains(l.PendingMemberIDs, userID) {
		return nil
	}
	if !hasFreePlace(*l) {
		return ErrGroupFull
	}
	l.PendingMemberIDs = append(l.PendingMemberIDs, userID)
	l.UpdatedAt = r.now()
	return nil
}

func cloneListing(l models.Listing) models.Listing {
	l.ImageURLs = slices.Clone(l.ImageURLs)
	l.Categories = slices.Clone(l.Categories)
	l.PendingMemberIDs = slices.Clone(l.PendingMemberIDs)
	return l
}
