package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"ROAMMATE_BACK-END/internal/access"
	"ROAMMATE_BACK-END/internal/dto"
	"ROAMMATE_BACK-END/internal/identity"
	"ROAMMATE_BACK-END/internal/models"
	"ROAMMATE_BACK-END/internal/repository"
	"ROAMMATE_BACK-END/internal/utils"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	ids      identity.Provider
	sessions *access.Manager
	profiles repository.ProfileRepository
	log      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(ids identity.Provider, sessions *access.Manager, profiles repository.ProfileRepository, log *zap.Logger) *AuthHandler {
	return &AuthHandler{ids: ids, sessions: sessions, profiles: profiles, log: orNop(log)}
}

// SignUp handles user registration
// @Summary Register a new user
// @Description Create an account. The new session starts with the profile step pending.
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.SignUpRequest true "User registration data"
// @Success 201 {object} dto.AuthResponse "User created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 409 {object} dto.ErrorResponse "User already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/auth/sign-up [post]
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req dto.SignUpRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := utils.ValidateStruct(req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", utils.ValidationMessage(err))
		return
	}

	cred, err := h.ids.SignUp(r.Context(), req.Email, req.Password, req.Name)
	if errors.Is(err, identity.ErrEmailTaken) {
		utils.WriteErrorResponse(w, http.StatusConflict, "User already exists", "Email already registered")
		return
	}
	if err != nil {
		h.log.Error("sign up", zap.Error(err))
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal Server Error", "Could not create account")
		return
	}

	if _, err := h.ensureProfile(r.Context(), cred); err != nil {
		h.log.Error("create empty profile", zap.String("user_id", cred.UserID), zap.Error(err))
		h.undoSignUp(r.Context(), cred)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal Server Error", "Could not create profile")
		return
	}

	state, err := h.sessions.SignUp(r.Context(), cred.SessionID, identityOf(cred))
	if err != nil {
		h.log.Error("start session", zap.String("user_id", cred.UserID), zap.Error(err))
		h.undoSignUp(r.Context(), cred)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal Server Error", "Could not start session")
		return
	}

	utils.WriteJSONResponse(w, http.StatusCreated, authResponse(cred, state))
}

// SignIn handles user login
// @Summary Login user
// @Description Authenticate with email and password. redirect points at /discover when the profile step is done, /profile otherwise.
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.SignInRequest true "Login credentials"
// @Success 200 {object} dto.AuthResponse "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/auth/sign-in [post]
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req dto.SignInRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", utils.ValidationMessage(err))
		return
	}

	cred, err := h.ids.SignIn(r.Context(), req.Email, req.Password)
	if errors.Is(err, identity.ErrInvalidCredentials) {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid credentials", "Email or password is incorrect")
		return
	}
	if err != nil {
		h.log.Error("sign in", zap.Error(err))
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal Server Error", "Could not sign in")
		return
	}

	state, err := h.startSession(r.Context(), cred)
	if err != nil {
		h.log.Error("start session", zap.String("user_id", cred.UserID), zap.Error(err))
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal Server Error", "Could not start session")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, authResponse(cred, state))
}

// SignOut ends the caller's session
// @Summary Logout user
// @Tags authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.MessageResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/auth/sign-out [post]
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.GetAuthUserFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "User not authenticated")
		return
	}
	if err := h.sessions.SignOut(r.Context(), user.SessionID); err != nil {
		h.log.Error("sign out", zap.String("session_id", user.SessionID), zap.Error(err))
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal Server Error", "Could not sign out")
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.MessageResponse{Message: "Signed out successfully"})
}

// ensureProfile returns the user's profile, storing an empty one when the user
// has none yet.
func (h *AuthHandler) ensureProfile(ctx context.Context, cred identity.Credential) (models.UserProfile, error) {
	p, err := h.profiles.GetProfile(ctx, cred.UserID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return models.UserProfile{}, err
	}
	p = models.NewEmptyProfile(cred.UserID, cred.Name, cred.Email, time.Now())
	if err := h.profiles.SaveProfile(ctx, p); err != nil {
		return models.UserProfile{}, err
	}
	return p, nil
}

// startSession signs the session in, seeding the completion flag from the
// stored profile so it survives a lost session store.
func (h *AuthHandler) startSession(ctx context.Context, cred identity.Credential) (access.State, error) {
	p, err := h.ensureProfile(ctx, cred)
	if err != nil {
		return access.State{}, err
	}
	id := identityOf(cred)
	id.ProfileComplete = p.Complete
	return h.sessions.SignIn(ctx, cred.SessionID, id)
}

// undoSignUp removes what a failed sign-up already wrote.
func (h *AuthHandler) undoSignUp(ctx context.Context, cred identity.Credential) {
	ctx = context.WithoutCancel(ctx)
	if err := h.profiles.DeleteProfile(ctx, cred.UserID); err != nil {
		h.log.Error("undo sign up: delete profile", zap.String("user_id", cred.UserID), zap.Error(err))
	}
	if err := h.ids.DeleteUser(ctx, cred.UserID); err != nil {
		h.log.Error("undo sign up: delete user", zap.String("user_id", cred.UserID), zap.Error(err))
	}
}

func identityOf(cred identity.Credential) access.Identity {
	return access.Identity{UserID: cred.UserID, Name: cred.Name, Email: cred.Email}
}

func authResponse(cred identity.Credential, state access.State) dto.AuthResponse {
	redirect := discoverPath
	if !state.ProfileComplete {
		redirect = access.ProfilePath
	}
	return dto.AuthResponse{
		User:     dto.UserResponse{ID: cred.UserID, Email: cred.Email, Name: cred.Name},
		Token:    cred.Token,
		Session:  toSessionResponse(state),
		Redirect: redirect,
	}
}
