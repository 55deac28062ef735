package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"ROAMMATE_BACK-END/internal/access"
	"ROAMMATE_BACK-END/internal/dto"
	"ROAMMATE_BACK-END/internal/middleware"
	"ROAMMATE_BACK-END/internal/models"
	"ROAMMATE_BACK-END/internal/repository"
	"ROAMMATE_BACK-END/internal/utils"
)

type ProfileHandler struct {
	profiles repository.ProfileRepository
	sessions *access.Manager
	log      *zap.Logger
	now      func() time.Time
}

func NewProfileHandler(profiles repository.ProfileRepository, sessions *access.Manager, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, sessions: sessions, log: orNop(log), now: time.Now}
}

// GetMe godoc
// @Summary      Get my profile
// @Description  Returns the caller's profile. forceEdit is true until the profile step has been completed.
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.ProfileResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/profile [get]
func (h *ProfileHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.GetAuthUserFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "missing user in context")
		return
	}

	p, ok := h.cached(r, user)
	if !ok {
		var err error
		if p, err = h.load(r, user); err != nil {
			h.log.Error("load profile", zap.String("user_id", user.UserID), zap.Error(err))
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal Server Error", "Could not load profile")
			return
		}
	}

	state, _ := middleware.StateFromContext(r.Context())
	outcome := access.Decide(state, access.RouteProfile)
	utils.WriteJSONResponse(w, http.StatusOK, toProfileResponse(p, outcome.ForceEdit))
}

// Update godoc
// @Summary      Save my profile
// @Description  Saves the profile form. The first save completes the profile step and unlocks the main app.
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      dto.ProfileUpdateRequest  true  "Profile payload"
// @Success      200      {object}  dto.ProfileSaveResponse
// @Failure      400      {object}  dto.ErrorResponse
// @Failure      401      {object}  dto.ErrorResponse
// @Failure      500      {object}  dto.ErrorResponse
// @Router       /api/profile [put]
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.GetAuthUserFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "missing user in context")
		return
	}

	var req dto.ProfileUpdateRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Bio = strings.TrimSpace(req.Bio)
	if err := utils.ValidateStruct(req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", utils.ValidationMessage(err))
		return
	}

	p, err := h.load(r, user)
	if err != nil {
		h.log.Error("load profile", zap.String("user_id", user.UserID), zap.Error(err))
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal Server Error", "Could not load profile")
		return
	}
	if err := applyProfileUpdate(&p, req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", err.Error())
		return
	}
	p.Complete = true
	p.UpdatedAt = h.now()

	if err := h.profiles.SaveProfile(r.Context(), p); err != nil {
		h.log.Error("save profile", zap.String("user_id", user.UserID), zap.Error(err))
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal Server Error", "Could not save profile")
		return
	}

	blob, _ := json.Marshal(p)
	if _, err := h.sessions.CompleteProfile(r.Context(), user.SessionID, blob); err != nil {
		if errors.Is(err, access.ErrNotSignedIn) {
			utils.WriteRedirectResponse(w, http.StatusUnauthorized, "Unauthorized", "Session has been signed out", access.LandingPath)
			return
		}
		h.log.Error("complete profile", zap.String("session_id", user.SessionID), zap.Error(err))
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal Server Error", "Could not update session")
		return
	}

	h.log.Info("profile saved", zap.String("user_id", user.UserID))
	utils.WriteJSONResponse(w, http.StatusOK, dto.ProfileSaveResponse{
		Message:  "Profile saved successfully",
		Profile:  toProfileResponse(p, false),
		Redirect: discoverPath,
	})
}

// cached returns the profile saved into the session by the last Update.
func (h *ProfileHandler) cached(r *http.Request, user utils.AuthUser) (models.UserProfile, bool) {
	blob, ok, err := h.sessions.CachedProfile(r.Context(), user.SessionID)
	if err != nil {
		h.log.Warn("read cached profile", zap.String("session_id", user.SessionID), zap.Error(err))
		return models.UserProfile{}, false
	}
	if !ok {
		return models.UserProfile{}, false
	}
	var p models.UserProfile
	if err := json.Unmarshal(blob, &p); err != nil || p.UserID != user.UserID {
		return models.UserProfile{}, false
	}
	return p, true
}

func (h *ProfileHandler) load(r *http.Request, user utils.AuthUser) (models.UserProfile, error) {
	p, err := h.profiles.GetProfile(r.Context(), user.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.NewEmptyProfile(user.UserID, user.Name, user.Email, h.now()), nil
	}
	return p, err
}

func applyProfileUpdate(p *models.UserProfile, req dto.ProfileUpdateRequest) error {
	var err error
	if p.SmokingStance, err = models.ParseEnum[models.SmokingStance]("smokingPolicy", req.SmokingPolicy); err != nil {
		return err
	}
	if p.AlcoholStance, err = models.ParseEnum[models.AlcoholStance]("alcoholPolicy", req.AlcoholPolicy); err != nil {
		return err
	}
	if p.PreferredGenderMix, err = models.ParseEnum[models.GenderPreference]("preferredGenderMix", req.PreferredGenderMix); err != nil {
		return err
	}
	if p.PreferredAgeGroup, err = models.ParseEnum[models.AgeGroup]("preferredAgeGroup", req.PreferredAgeGroup); err != nil {
		return err
	}
	if p.PreferredTravelerType, err = models.ParseEnum[models.TravelerType]("preferredTravelerType", req.PreferredTravelerType); err != nil {
		return err
	}

	p.Name = req.Name
	if req.Email != "" {
		p.Email = req.Email
	}
	p.AvatarURL = req.AvatarURL
	p.Bio = req.Bio
	p.Interests = nonNilStrings(req.Interests)
	p.TravelHistory = nonNilStrings(req.TravelHistory)
	p.Preferences = nonNilStrings(req.Preferences)
	return nil
}

func toProfileResponse(p models.UserProfile, forceEdit bool) dto.ProfileResponse {
	return dto.ProfileResponse{
		UserID:                p.UserID,
		Name:                  p.Name,
		Email:                 p.Email,
		AvatarURL:             p.AvatarURL,
		Bio:                   p.Bio,
		Interests:             nonNilStrings(p.Interests),
		TravelHistory:         nonNilStrings(p.TravelHistory),
		Preferences:           nonNilStrings(p.Preferences),
		SmokingPolicy:         enumOrAny(string(p.SmokingStance)),
		AlcoholPolicy:         enumOrAny(string(p.AlcoholStance)),
		PreferredGenderMix:    enumOrAny(string(p.PreferredGenderMix)),
		PreferredAgeGroup:     enumOrAny(string(p.PreferredAgeGroup)),
		PreferredTravelerType: enumOrAny(string(p.PreferredTravelerType)),
		Complete:              p.Complete,
		ForceEdit:             forceEdit,
		UpdatedAt:             utils.FormatTimestamp(p.UpdatedAt),
	}
}
