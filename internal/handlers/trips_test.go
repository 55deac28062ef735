package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ROAMMATE_BACK-END/internal/dto"
	"ROAMMATE_BACK-END/internal/models"
	"ROAMMATE_BACK-END/internal/repository"
	"ROAMMATE_BACK-END/internal/utils"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func testCatalog() []models.Listing {
	return []models.Listing{
		{
			ID: "bali", Title: "Bali Adventure Week", Destination: "Bali, Indonesia",
			StartDate: day("2025-07-10"), EndDate: day("2025-07-17"),
			Categories: []string{"Beach", "Adventure"}, MaxGroupSize: 8, CurrentMemberCount: 5,
			CreatedByID: "creator-bali", SmokingPolicy: models.SmokingNotPermitted,
		},
		{
			ID: "tokyo", Title: "Tokyo Tech & Tradition", Destination: "Tokyo, Japan",
			StartDate: day("2025-09-05"), EndDate: day("2025-09-15"),
			Categories: []string{"City Break", "Foodie"}, MaxGroupSize: 6, CurrentMemberCount: 3,
			CreatedByID: "creator-tokyo", SmokingPolicy: models.SmokingAny,
		},
		{
			ID: "full", Title: "Full House", Destination: "Lisbon, Portugal",
			StartDate: day("2025-10-01"), EndDate: day("2025-10-05"),
			Categories: []string{"City Break"}, MaxGroupSize: 4, CurrentMemberCount: 4,
			CreatedByID: "creator-full",
		},
	}
}

func asUser(r *http.Request, userID, name string) *http.Request {
	return r.WithContext(utils.WithAuthUser(r.Context(), utils.AuthUser{
		UserID:    userID,
		Name:      name,
		Email:     userID + "@example.com",
		SessionID: "session-" + userID,
	}))
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func newTripsFixture() (*TripsHandler, *repository.MemoryListingRepository) {
	repo := repository.NewMemoryListingRepository(testCatalog())
	return NewTripsHandler(repo, nil, nil), repo
}

func TestCreateTrip(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCode  int
		wantError string
	}{
		{"missing destination", `{"startDate":"2025-01-01","endDate":"2025-01-05"}`, http.StatusBadRequest, "Missing required fields (destination, startDate, endDate)"},
		{"blank destination", `{"destination":"  ","startDate":"2025-01-01","endDate":"2025-01-05"}`, http.StatusBadRequest, "Missing required fields (destination, startDate, endDate)"},
		{"missing end date", `{"destination":"Lisbon","startDate":"2025-01-01"}`, http.StatusBadRequest, "Missing required fields (destination, startDate, endDate)"},
		{"bad date", `{"destination":"Lisbon","startDate":"01/01/2025","endDate":"2025-01-05"}`, http.StatusBadRequest, "Validation error"},
		{"end before start", `{"destination":"Lisbon","startDate":"2025-01-05","endDate":"2025-01-01"}`, http.StatusBadRequest, "Validation error"},
		{"group too small", `{"destination":"Lisbon","startDate":"2025-01-01","endDate":"2025-01-05","maxGroupSize":1}`, http.StatusBadRequest, "Validation error"},
		{"unknown policy", `{"destination":"Lisbon","startDate":"2025-01-01","endDate":"2025-01-05","smokingPolicy":"sometimes"}`, http.StatusBadRequest, "Validation error"},
		{"malformed json", `{"destination":`, http.StatusBadRequest, "Invalid request body"},
		{"created", `{"destination":"Lisbon, Portugal","startDate":"2025-01-01","endDate":"2025-01-05","categories":["City Break"],"smokingPolicy":"outside_only"}`, http.StatusCreated, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTripsFixture()
			req := asUser(httptest.NewRequest(http.MethodPost, "/api/trips", strings.NewReader(tt.body)), "u1", "Ana")
			rr := httptest.NewRecorder()
			h.CreateTrip(rr, req)

			assert.Equal(t, tt.wantCode, rr.Code, rr.Body.String())
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, decodeBody[dto.ErrorResponse](t, rr).Error)
			}
		})
	}
}

func TestCreateTripStoresDefaults(t *testing.T) {
	h, repo := newTripsFixture()
	body := `{"destination":"Lisbon, Portugal","startDate":"2025-01-01","endDate":"2025-01-05"}`
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/trips", strings.NewReader(body)), "u1", "Ana")
	rr := httptest.NewRecorder()
	h.CreateTrip(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	resp := decodeBody[dto.CreateTripResponse](t, rr)
	assert.Equal(t, "Trip created successfully", resp.Message)
	require.NotEmpty(t, resp.TripID)

	l, err := repo.GetListing(req.Context(), resp.TripID)
	require.NoError(t, err)
	assert.Equal(t, "Trip to Lisbon, Portugal", l.Title)
	assert.Equal(t, defaultMaxGroupSize, l.MaxGroupSize)
	assert.Equal(t, 1, l.CurrentMemberCount)
	assert.Equal(t, "u1", l.CreatedByID)
	assert.Equal(t, "Ana", l.CreatorName)
	assert.Equal(t, models.SmokingAny, l.SmokingPolicy)
	assert.Empty(t, l.Categories)
}

func TestCreateTripRequiresUser(t *testing.T) {
	h, _ := newTripsFixture()
	req := httptest.NewRequest(http.MethodPost, "/api/trips", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	h.CreateTrip(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestListTrips(t *testing.T) {
	h, _ := newTripsFixture()

	t.Run("no filters", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ListTrips(rr, httptest.NewRequest(http.MethodGet, "/api/trips", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		resp := decodeBody[dto.TripListResponse](t, rr)
		assert.Equal(t, 3, resp.Total)
		assert.Equal(t, "discover", resp.Criteria.View)
		assert.Equal(t, "any", resp.Criteria.SmokingPolicy)
	})

	t.Run("category and policy", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ListTrips(rr, httptest.NewRequest(http.MethodGet, "/api/trips?category=City+Break&smokingPolicy=not_permitted", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		resp := decodeBody[dto.TripListResponse](t, rr)
		// tokyo has "any" which accepts every selection; full has no policy set
		ids := make([]string, 0, len(resp.Trips))
		for _, tr := range resp.Trips {
			ids = append(ids, tr.ID)
		}
		assert.Equal(t, []string{"tokyo", "full"}, ids)
	})

	t.Run("invalid enum", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ListTrips(rr, httptest.NewRequest(http.MethodGet, "/api/trips?ageGroup=old", nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid filter", decodeBody[dto.ErrorResponse](t, rr).Error)
	})

	t.Run("groups view ignores category", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ListGroups(rr, httptest.NewRequest(http.MethodGet, "/api/groups?category=Beach", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		resp := decodeBody[dto.TripListResponse](t, rr)
		assert.Equal(t, 3, resp.Total)
		assert.Equal(t, "groups", resp.Criteria.View)
	})
}

func TestTripDetail(t *testing.T) {
	h, _ := newTripsFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/trips/bali", nil)
	req.SetPathValue("tripId", "bali")
	rr := httptest.NewRecorder()
	h.TripDetail(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	trip := decodeBody[dto.TripResponse](t, rr)
	assert.Equal(t, "Bali Adventure Week", trip.Title)
	assert.Equal(t, "2025-07-10", trip.StartDate)
	assert.Equal(t, "not_permitted", trip.SmokingPolicy)
	assert.Equal(t, "any", trip.AlcoholPolicy)

	req = httptest.NewRequest(http.MethodGet, "/api/trips/nope", nil)
	req.SetPathValue("tripId", "nope")
	rr = httptest.NewRecorder()
	h.TripDetail(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	body := decodeBody[dto.ErrorResponse](t, rr)
	assert.Equal(t, "Trip not found", body.Error)
	assert.Equal(t, "/discover", body.Redirect)
}

func TestJoinTrip(t *testing.T) {
	h, repo := newTripsFixture()
	join := func(tripID, userID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/trips/"+tripID+"/join", nil)
		req.SetPathValue("tripId", tripID)
		if userID != "" {
			req = asUser(req, userID, "Ana")
		}
		rr := httptest.NewRecorder()
		h.JoinTrip(rr, req)
		return rr
	}

	rr := join("bali", "u1")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Request to join sent successfully", decodeBody[dto.MessageResponse](t, rr).Message)

	// repeating is a no-op
	require.Equal(t, http.StatusOK, join("bali", "u1").Code)
	l, err := repo.GetListing(httptest.NewRequest(http.MethodGet, "/", nil).Context(), "bali")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, l.PendingMemberIDs)

	assert.Equal(t, http.StatusNotFound, join("nope", "u1").Code)
	assert.Equal(t, http.StatusConflict, join("full", "u1").Code)
	assert.Equal(t, http.StatusUnauthorized, join("bali", "").Code)
}

func TestCategories(t *testing.T) {
	h, _ := newTripsFixture()
	rr := httptest.NewRecorder()
	h.Categories(rr, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeBody[dto.CategoryListResponse](t, rr)
	require.Len(t, resp.Categories, len(models.KnownCategories))
	assert.Equal(t, "Beach", resp.Categories[0].ID)
}
