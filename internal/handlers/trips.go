package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"ROAMMATE_BACK-END/internal/discovery"
	"ROAMMATE_BACK-END/internal/dto"
	"ROAMMATE_BACK-END/internal/metrics"
	"ROAMMATE_BACK-END/internal/models"
	"ROAMMATE_BACK-END/internal/repository"
	"ROAMMATE_BACK-END/internal/utils"
)

const (
	defaultMaxGroupSize = 10
	discoverPath        = "/discover"
)

// TripsHandler manages trip-related endpoints
type TripsHandler struct {
	listings repository.ListingRepository
	metrics  *metrics.Metrics
	log      *zap.Logger
	now      func() time.Time
}

// NewTripsHandler creates a new TripsHandler
func NewTripsHandler(listings repository.ListingRepository, m *metrics.Metrics, log *zap.Logger) *TripsHandler {
	return &TripsHandler{listings: listings, metrics: m, log: orNop(log), now: time.Now}
}

// CreateTrip handles POST /api/trips
// @Summary Create a new trip
// @Description Create a trip listing owned by the caller. destination, startDate and endDate are required.
// @Tags trips
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateTripRequest true "Trip payload"
// @Success 201 {object} dto.CreateTripResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/trips [post]
func (h *TripsHandler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.GetAuthUserFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return
	}

	var req dto.CreateTripRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return // Error already handled by DecodeJSONRequest
	}

	req.Destination = strings.TrimSpace(req.Destination)
	if req.Destination == "" || strings.TrimSpace(req.StartDate) == "" || strings.TrimSpace(req.EndDate) == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Missing required fields (destination, startDate, endDate)", "")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", utils.ValidationMessage(err))
		return
	}

	listing, err := h.listingFromRequest(req, user)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", err.Error())
		return
	}

	id, err := h.listings.CreateListing(r.Context(), listing)
	if errors.Is(err, repository.ErrInvalidListing) {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", err.Error())
		return
	}
	if err != nil {
		h.log.Error("create trip", zap.String("user_id", user.UserID), zap.Error(err))
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}

	h.log.Info("trip created", zap.String("trip_id", id), zap.String("user_id", user.UserID))
	utils.WriteJSONResponse(w, http.StatusCreated, dto.CreateTripResponse{
		Message: "Trip created successfully",
		TripID:  id,
	})
}

func (h *TripsHandler) listingFromRequest(req dto.CreateTripRequest, user utils.AuthUser) (models.Listing, error) {
	// Parse dates (ISO 8601 format: YYYY-MM-DD or RFC3339)
	startAt, err := utils.ParseDate(req.StartDate)
	if err != nil {
		return models.Listing{}, errors.New("startDate must be ISO 8601 format (YYYY-MM-DD or RFC3339)")
	}
	endAt, err := utils.ParseDate(req.EndDate)
	if err != nil {
		return models.Listing{}, errors.New("endDate must be ISO 8601 format (YYYY-MM-DD or RFC3339)")
	}
	if endAt.Before(startAt) {
		return models.Listing{}, errors.New("endDate cannot be before startDate")
	}

	maxSize := defaultMaxGroupSize
	if req.MaxGroupSize != nil {
		maxSize = *req.MaxGroupSize
	}

	l := models.Listing{
		Title:              strings.TrimSpace(req.Title),
		Destination:        req.Destination,
		StartLocation:      strings.TrimSpace(req.StartLocation),
		StartDate:          startAt,
		EndDate:            endAt,
		Description:        strings.TrimSpace(req.Description),
		ImageURLs:          req.ImageURLs,
		Categories:         req.Categories,
		MaxGroupSize:       maxSize,
		CurrentMemberCount: 1,
		Budget:             strings.TrimSpace(req.Budget),
		CreatedByID:        user.UserID,
		CreatorName:        user.Name,
	}
	if l.Title == "" {
		l.Title = "Trip to " + l.Destination
	}
	if l.Categories == nil {
		l.Categories = []string{}
	}

	if l.SmokingPolicy, err = models.ParseEnum[models.SmokingPolicy]("smokingPolicy", req.SmokingPolicy); err != nil {
		return models.Listing{}, err
	}
	if l.AlcoholPolicy, err = models.ParseEnum[models.AlcoholPolicy]("alcoholPolicy", req.AlcoholPolicy); err != nil {
		return models.Listing{}, err
	}
	if l.GenderPreference, err = models.ParseEnum[models.GenderPreference]("genderPreference", req.GenderPreference); err != nil {
		return models.Listing{}, err
	}
	if l.TargetAgeGroup, err = models.ParseEnum[models.AgeGroup]("targetAgeGroup", req.TargetAgeGroup); err != nil {
		return models.Listing{}, err
	}
	if l.TargetTravelerType, err = models.ParseEnum[models.TravelerType]("targetTravelerType", req.TargetTravelerType); err != nil {
		return models.Listing{}, err
	}
	return l, nil
}

// ListTrips handles GET /api/trips (discover view)
// @Summary Discover trips
// @Description Filter the trip catalog. Category and search only apply here, not in the groups view.
// @Tags trips
// @Produce json
// @Security BearerAuth
// @Param destination query string false "substring of destination"
// @Param startLocation query string false "substring of start location"
// @Param category query string false "exact category tag or any"
// @Param search query string false "substring of title or destination"
// @Param groupSizeMin query int false "minimum max group size"
// @Param groupSizeMax query int false "maximum max group size"
// @Param smokingPolicy query string false "any|permitted|not_permitted|outside_only"
// @Param alcoholPolicy query string false "any|permitted|not_permitted|socially"
// @Param genderPreference query string false "any|men_only|women_only|mixed"
// @Param ageGroup query string false "any|18-25|26-35|36-45|45+"
// @Param travelerType query string false "any|singles|couples|family|friends|backpackers|adventure|luxury"
// @Success 200 {object} dto.TripListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/trips [get]
func (h *TripsHandler) ListTrips(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, discovery.ViewDiscover)
}

// ListGroups handles GET /api/groups
// @Summary Browse travel groups
// @Description Same criteria as /api/trips; category and search are ignored.
// @Tags trips
// @Produce json
// @Security BearerAuth
// @Param destination query string false "substring of destination"
// @Param startLocation query string false "substring of start location"
// @Param groupSizeMin query int false "minimum max group size"
// @Param groupSizeMax query int false "maximum max group size"
// @Param smokingPolicy query string false "smoking policy"
// @Param alcoholPolicy query string false "alcohol policy"
// @Param genderPreference query string false "gender preference"
// @Param ageGroup query string false "age group"
// @Param travelerType query string false "traveler type"
// @Success 200 {object} dto.TripListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/groups [get]
func (h *TripsHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, discovery.ViewGroups)
}

func (h *TripsHandler) list(w http.ResponseWriter, r *http.Request, view discovery.View) {
	criteria, err := discovery.ParseCriteria(r.URL.Query())
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid filter", err.Error())
		return
	}
	criteria.View = view

	catalog, err := h.listings.ListListings(r.Context())
	if err != nil {
		h.log.Error("list trips", zap.Error(err))
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal Server Error", "Could not load trips")
		return
	}

	matched := discovery.ApplyFilters(catalog, criteria)
	trips := make([]dto.TripResponse, 0, len(matched))
	for _, l := range matched {
		trips = append(trips, toTripResponse(l))
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.TripListResponse{
		Trips:    trips,
		Total:    len(trips),
		Criteria: toCriteriaResponse(criteria),
	})
}

// TripDetail handles GET /api/trips/{tripId}
// @Summary Get trip details
// @Tags trips
// @Produce json
// @Security BearerAuth
// @Param tripId path string true "Trip ID"
// @Success 200 {object} dto.TripResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/trips/{tripId} [get]
func (h *TripsHandler) TripDetail(w http.ResponseWriter, r *http.Request) {
	tripID := r.PathValue("tripId")
	l, err := h.listings.GetListing(r.Context(), tripID)
	if errors.Is(err, repository.ErrNotFound) {
		utils.WriteRedirectResponse(w, http.StatusNotFound, "Trip not found", "The trip you are looking for does not exist.", discoverPath)
		return
	}
	if err != nil {
		h.log.Error("get trip", zap.String("trip_id", tripID), zap.Error(err))
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal Server Error", "Could not load trip")
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, toTripResponse(l))
}

// JoinTrip handles POST /api/trips/{tripId}/join
// @Summary Request to join a trip
// @Description Adds the caller to the trip's pending members. Repeating the request is a no-op.
// @Tags trips
// @Produce json
// @Security BearerAuth
// @Param tripId path string true "Trip ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/trips/{tripId}/join [post]
func (h *TripsHandler) JoinTrip(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Could not determine user ID")
		return
	}
	tripID := strings.TrimSpace(r.PathValue("tripId"))
	if tripID == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Trip ID is required", "")
		return
	}

	err := h.listings.AddPendingMember(r.Context(), tripID, userID)
	switch {
	case err == nil:
		h.metrics.RecordJoin("requested")
		utils.WriteJSONResponse(w, http.StatusOK, dto.MessageResponse{Message: "Request to join sent successfully"})
	case errors.Is(err, repository.ErrNotFound):
		h.metrics.RecordJoin("not_found")
		utils.WriteErrorResponse(w, http.StatusNotFound, "Trip not found", "")
	case errors.Is(err, repository.ErrGroupFull):
		h.metrics.RecordJoin("full")
		utils.WriteErrorResponse(w, http.StatusConflict, "Trip is full", "This group has no free places")
	default:
		h.metrics.RecordJoin("error")
		h.log.Error("join trip", zap.String("trip_id", tripID), zap.String("user_id", userID), zap.Error(err))
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Error sending request to join trip", "")
	}
}

// Categories handles GET /api/categories
// @Summary List trip categories
// @Tags trips
// @Produce json
// @Success 200 {object} dto.CategoryListResponse
// @Router /api/categories [get]
func (h *TripsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	out := make([]dto.CategoryResponse, 0, len(models.KnownCategories))
	for _, c := range models.KnownCategories {
		out = append(out, dto.CategoryResponse{ID: c.ID, Name: c.Name})
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.CategoryListResponse{Categories: out})
}

func toTripResponse(l models.Listing) dto.TripResponse {
	return dto.TripResponse{
		ID:                 l.ID,
		Title:              l.Title,
		Destination:        l.Destination,
		StartLocation:      l.StartLocation,
		StartDate:          utils.FormatDate(l.StartDate),
		EndDate:            utils.FormatDate(l.EndDate),
		Description:        l.Description,
		ImageURLs:          nonNilStrings(l.ImageURLs),
		Categories:         nonNilStrings(l.Categories),
		MaxGroupSize:       l.MaxGroupSize,
		CurrentMemberCount: l.CurrentMemberCount,
		Budget:             l.Budget,
		CreatedByID:        l.CreatedByID,
		CreatorName:        l.CreatorName,
		SmokingPolicy:      enumOrAny(string(l.SmokingPolicy)),
		AlcoholPolicy:      enumOrAny(string(l.AlcoholPolicy)),
		GenderPreference:   enumOrAny(string(l.GenderPreference)),
		TargetAgeGroup:     enumOrAny(string(l.TargetAgeGroup)),
		TargetTravelerType: enumOrAny(string(l.TargetTravelerType)),
		PendingMemberCount: len(l.PendingMemberIDs),
		CreatedAt:          utils.FormatTimestamp(l.CreatedAt),
		UpdatedAt:          utils.FormatTimestamp(l.UpdatedAt),
	}
}

func toCriteriaResponse(c discovery.Criteria) dto.CriteriaResponse {
	return dto.CriteriaResponse{
		View:             c.View.String(),
		Destination:      c.Destination,
		StartLocation:    c.StartLocation,
		Interests:        c.Interests,
		Budget:           c.Budget,
		Category:         c.Category,
		Search:           c.Search,
		GroupSizeMin:     c.GroupSize.Min,
		GroupSizeMax:     c.GroupSize.Max,
		SmokingPolicy:    enumOrAny(string(c.SmokingPolicy)),
		AlcoholPolicy:    enumOrAny(string(c.AlcoholPolicy)),
		GenderPreference: enumOrAny(string(c.GenderPreference)),
		AgeGroup:         enumOrAny(string(c.AgeGroup)),
		TravelerType:     enumOrAny(string(c.TravelerType)),
	}
}

// enumOrAny reports an unset policy as the wildcard.
func enumOrAny(v string) string {
	if v == "" {
		return models.Wildcard
	}
	return v
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
