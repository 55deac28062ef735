package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"ROAMMATE_BACK-END/internal/models"
)

// MemoryProfileRepository keeps profiles in process memory.
type MemoryProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]models.UserProfile
}

func NewMemoryProfileRepository() *MemoryProfileRepository {
	return &MemoryProfileRepository{profiles: make(map[string]models.UserProfile)}
}

func (r *MemoryProfileRepository) GetProfile(_ context.Context, userID string) (models.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[userID]
	if !ok {
		return models.UserProfile{}, ErrNotFound
	}
	return cloneProfile(p), nil
}

func (r *MemoryProfileRepository) SaveProfile(_ context.Context, p models.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	if prev, ok := r.profiles[p.UserID]; ok {
		p.CreatedAt = prev.CreatedAt
	} else if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	r.profiles[p.UserID] = cloneProfile(p)
	return nil
}

func (r *MemoryProfileRepository) DeleteProfile(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.profiles, userID)
	return nil
}

func cloneProfile(p models.UserProfile) models.UserProfile {
	p.Interests = slices.Clone(p.Interests)
	p.TravelHistory = slices.Clone(p.TravelHistory)
	p.Preferences = slices.Clone(p.Preferences)
	return p
}
