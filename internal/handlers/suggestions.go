package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"ROAMMATE_BACK-END/internal/dto"
	"ROAMMATE_BACK-END/internal/metrics"
	"ROAMMATE_BACK-END/internal/models"
	"ROAMMATE_BACK-END/internal/repository"
	"ROAMMATE_BACK-END/internal/suggestions"
	"ROAMMATE_BACK-END/internal/utils"
)

// SuggestionsHandler serves trip spark suggestions for a group.
type SuggestionsHandler struct {
	generator suggestions.Generator
	listings  repository.ListingRepository
	profiles  repository.ProfileRepository
	timeout   time.Duration
	metrics   *metrics.Metrics
	log       *zap.Logger
}

// NewSuggestionsHandler creates a SuggestionsHandler. generator may be nil when
// no model is configured; the endpoint then answers 503.
func NewSuggestionsHandler(generator suggestions.Generator, listings repository.ListingRepository, profiles repository.ProfileRepository, timeout time.Duration, m *metrics.Metrics, log *zap.Logger) *SuggestionsHandler {
	return &SuggestionsHandler{
		generator: generator,
		listings:  listings,
		profiles:  profiles,
		timeout:   timeout,
		metrics:   m,
		log:       orNop(log),
	}
}

// Generate godoc
// @Summary      Trip spark suggestions
// @Description  Three ice-breaker messages and three activity ideas for a group. Member profiles come from the body, or from the group's creator and pending members when the body is empty.
// @Tags         groups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        groupId  path  string  true  "Group (trip) ID"
// @Param        payload  body  dto.SuggestionsRequest  false  "Member profiles"
// @Success      200  {object}  dto.SuggestionsResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/groups/{groupId}/suggestions [post]
func (h *SuggestionsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if h.generator == nil {
		utils.WriteErrorResponse(w, http.StatusServiceUnavailable, "Suggestions unavailable", "No suggestion model is configured")
		return
	}
	groupID := r.PathValue("groupId")

	var req dto.SuggestionsRequest
	if r.ContentLength != 0 {
		if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
			return
		}
		if err := utils.ValidateStruct(req); err != nil {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", utils.ValidationMessage(err))
			return
		}
	}

	group, err := h.listings.GetListing(r.Context(), groupID)
	if errors.Is(err, repository.ErrNotFound) {
		utils.WriteRedirectResponse(w, http.StatusNotFound, "Group not found", "", "/groups")
		return
	}
	if err != nil {
		h.log.Error("load group", zap.String("group_id", groupID), zap.Error(err))
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal Server Error", "Could not load group")
		return
	}

	var members []suggestions.MemberProfile
	if len(req.MemberProfiles) > 0 {
		for _, m := range req.MemberProfiles {
			members = append(members, suggestions.MemberProfile{
				Interests:     m.Interests,
				TravelHistory: m.TravelHistory,
				Preferences:   m.Preferences,
			})
		}
	} else if members, err = h.groupMembers(r.Context(), group); err != nil {
		h.log.Error("load group members", zap.String("group_id", groupID), zap.Error(err))
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal Server Error", "Could not load group members")
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	out, err := h.generator.Generate(ctx, members)
	switch {
	case err == nil:
		h.metrics.RecordSuggestion("ok")
	case errors.Is(err, suggestions.ErrNoMembers):
		h.metrics.RecordSuggestion("no_members")
		utils.WriteErrorResponse(w, http.StatusBadRequest, "No member profiles", err.Error())
		return
	default:
		h.metrics.RecordSuggestion("error")
		h.log.Error("generate suggestions", zap.String("group_id", groupID), zap.Int("members", len(members)), zap.Error(err))
		utils.WriteErrorResponse(w, http.StatusBadGateway, "Suggestion generation failed", "Please try again later")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.SuggestionsResponse{
		GroupID:             groupID,
		IceBreakerMessages:  out.IceBreakerMessages,
		ActivitySuggestions: out.ActivitySuggestions,
	})
}

// groupMembers collects the creator's and pending members' profiles. Members
// without a stored profile are skipped.
func (h *SuggestionsHandler) groupMembers(ctx context.Context, l models.Listing) ([]suggestions.MemberProfile, error) {
	ids := make([]string, 0, len(l.PendingMemberIDs)+1)
	if l.CreatedByID != "" {
		ids = append(ids, l.CreatedByID)
	}
	ids = append(ids, l.PendingMemberIDs...)

	var out []suggestions.MemberProfile
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		p, err := h.profiles.GetProfile(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, memberProfileOf(p))
	}
	return out, nil
}

func memberProfileOf(p models.UserProfile) suggestions.MemberProfile {
	prefs := append([]string{}, p.Preferences...)
	for _, v := range []string{string(p.SmokingStance), string(p.AlcoholStance), string(p.PreferredTravelerType)} {
		if v != "" && v != models.Wildcard {
			prefs = append(prefs, v)
		}
	}
	return suggestions.MemberProfile{
		Interests:     strings.Join(p.Interests, ", "),
		TravelHistory: strings.Join(p.TravelHistory, ", "),
		Preferences:   strings.Join(prefs, ", "),
	}
}
