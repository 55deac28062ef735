package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ROAMMATE_BACK-END/internal/models"
)

func TestSeedListings(t *testing.T) {
	seed, err := SeedListings()
	require.NoError(t, err)
	require.Len(t, seed, 7)

	assert.Equal(t, "1", seed[0].ID)
	assert.Equal(t, "Bali, Indonesia", seed[0].Destination)
	assert.Equal(t, time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC), seed[0].StartDate)

	// Paris leaves most policies unset
	assert.Empty(t, seed[2].SmokingPolicy)
	assert.True(t, seed[2].SmokingPolicy.IsAny())

	g1 := seed[3]
	assert.Equal(t, "group1", g1.ID)
	assert.Equal(t, models.SmokingOutsideOnly, g1.SmokingPolicy)
	assert.Equal(t, models.TravelerBackpackers, g1.TargetTravelerType)
	assert.Equal(t, []string{"Adventure", "Cultural", "Beach", "Budget"}, g1.Categories)

	for _, l := range seed {
		assert.NoError(t, CheckCapacity(l), l.ID)
	}
}

func TestDecodeCatalog_Rejects(t *testing.T) {
	_, err := DecodeCatalog([]byte(`- {id: x, destination: X, startDate: "2024-01-01", endDate: "2024-01-02", maxGroupSize: 4, smokingPolicy: sometimes}`))
	assert.ErrorIs(t, err, models.ErrInvalidEnum)

	_, err = DecodeCatalog([]byte(`- {id: x, destination: X, startDate: "2024-01-01", endDate: "2024-01-02", maxGroupSize: 4, currentMemberCount: 5}`))
	assert.ErrorIs(t, err, ErrInvalidListing)

	_, err = DecodeCatalog([]byte(`- {id: x, destination: X, startDate: "soon", endDate: "2024-01-02", maxGroupSize: 4}`))
	assert.Error(t, err)
}

func TestMemoryListingRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryListingRepository(nil)

	id, err := repo.CreateListing(ctx, models.Listing{Destination: "Lisbon", MaxGroupSize: 5, CurrentMemberCount: 1})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	got, err := repo.GetListing(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Lisbon", got.Destination)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = repo.CreateListing(ctx, models.Listing{ID: id, Destination: "Again", MaxGroupSize: 5})
	assert.ErrorIs(t, err, ErrInvalidListing)

	_, err = repo.CreateListing(ctx, models.Listing{Destination: "Solo", MaxGroupSize: 1})
	assert.ErrorIs(t, err, ErrInvalidListing)

	_, err = repo.GetListing(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryListingRepository_ListIsACopy(t *testing.T) {
	ctx := context.Background()
	repo, err := NewFixtureRepository()
	require.NoError(t, err)

	list, err := repo.ListListings(ctx)
	require.NoError(t, err)
	list[0].Categories[0] = "Mutated"

	again, err := repo.ListListings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Beach", again[0].Categories[0])
}

func TestMemoryListingRepository_AddPendingMember(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryListingRepository([]models.Listing{
		{ID: "open", MaxGroupSize: 4, CurrentMemberCount: 1},
		{ID: "full", MaxGroupSize: 2, CurrentMemberCount: 2},
	})

	require.NoError(t, repo.AddPendingMember(ctx, "open", "u1"))
	require.NoError(t, repo.AddPendingMember(ctx, "open", "u1"))
	require.NoError(t, repo.AddPendingMember(ctx, "open", "u2"))

	l, err := repo.GetListing(ctx, "open")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, l.PendingMemberIDs)

	assert.ErrorIs(t, repo.AddPendingMember(ctx, "full", "u1"), ErrGroupFull)
	assert.ErrorIs(t, repo.AddPendingMember(ctx, "nope", "u1"), ErrNotFound)
}

func TestMemoryProfileRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProfileRepository()

	_, err := repo.GetProfile(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)

	p := models.NewEmptyProfile("u1", "Alice", "a@example.com", time.Now())
	require.NoError(t, repo.SaveProfile(ctx, p))
	created := p.CreatedAt

	p.Bio = "Loves trains"
	p.Interests = []string{"Rail"}
	p.CreatedAt = time.Time{}
	require.NoError(t, repo.SaveProfile(ctx, p))

	got, err := repo.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Loves trains", got.Bio)
	assert.Equal(t, []string{"Rail"}, got.Interests)
	assert.True(t, got.CreatedAt.Equal(created))

	require.NoError(t, repo.DeleteProfile(ctx, "u1"))
	_, err = repo.GetProfile(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, repo.DeleteProfile(ctx, "u1"))
}
