package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleOAuth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"ROAMMATE_BACK-END/internal/config"
	"ROAMMATE_BACK-END/internal/dto"
	"ROAMMATE_BACK-END/internal/models"
	"ROAMMATE_BACK-END/internal/utils"
)

const (
	oauthStateCookie = "roammate_oauth_state"
	oauthStateTTL    = 10 * time.Minute
)

// GoogleAuthHandler handles Google OAuth authentication
type GoogleAuthHandler struct {
	oauth2Config *oauth2.Config
	auth         *AuthHandler
	frontendURL  string
	secure       bool
	// exchange and userInfo are replaced in tests
	exchange func(ctx context.Context, code string) (*oauth2.Token, error)
	userInfo func(ctx context.Context, token *oauth2.Token) (*dto.GoogleUserInfo, error)
}

// NewGoogleAuthHandler creates a new GoogleAuthHandler instance
func NewGoogleAuthHandler(cfg *config.Config, auth *AuthHandler) *GoogleAuthHandler {
	oauth2Config := &oauth2.Config{
		ClientID:     cfg.GoogleOAuth.ClientID,
		ClientSecret: cfg.GoogleOAuth.ClientSecret,
		RedirectURL:  cfg.GoogleOAuth.RedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	h := &GoogleAuthHandler{
		oauth2Config: oauth2Config,
		auth:         auth,
		frontendURL:  strings.TrimRight(cfg.App.FrontendURL, "/"),
		secure:       cfg.IsProduction(),
	}
	h.exchange = func(ctx context.Context, code string) (*oauth2.Token, error) {
		return oauth2Config.Exchange(ctx, code)
	}
	h.userInfo = h.fetchGoogleUserInfo
	return h
}

// GoogleLogin initiates Google OAuth login
// @Summary Google OAuth login
// @Description Initiate Google OAuth login flow. The state is also set as a cookie and checked on callback.
// @Tags authentication
// @Produce json
// @Success 200 {object} dto.GoogleLoginResponse "Google OAuth URL"
// @Router /api/auth/google/login [get]
func (h *GoogleAuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	// Generate state parameter for CSRF protection
	state := uuid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/api/auth/google",
		MaxAge:   int(oauthStateTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	authURL := h.oauth2Config.AuthCodeURL(state, oauth2.AccessTypeOnline)
	utils.WriteJSONResponse(w, http.StatusOK, dto.GoogleLoginResponse{AuthURL: authURL, State: state})
}

// GoogleCallback handles Google OAuth callback
// @Summary Google OAuth callback
// @Description Exchanges the code, signs the user in and redirects to the frontend with the token.
// @Tags authentication
// @Param code query string true "Authorization code from Google"
// @Param state query string true "State parameter for CSRF protection"
// @Success 302 "Redirect to the frontend callback page"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Invalid authorization code"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/auth/google/callback [get]
func (h *GoogleAuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Missing authorization code", "Authorization code is required")
		return
	}
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid state", "OAuth state does not match")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Path: "/api/auth/google", MaxAge: -1})

	token, err := h.exchange(r.Context(), code)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid authorization code", err.Error())
		return
	}

	info, err := h.userInfo(r.Context(), token)
	if err != nil {
		h.auth.log.Error("google user info", zap.Error(err))
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to get user info", "")
		return
	}
	if info.Email == "" {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Google account has no email")
		return
	}

	cred, err := h.auth.ids.SignInFederated(r.Context(), info.Email, info.Name, models.ProviderGoogle)
	if err != nil {
		h.auth.log.Error("federated sign in", zap.Error(err))
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal Server Error", "Could not sign in")
		return
	}
	state, err := h.auth.startSession(r.Context(), cred)
	if err != nil {
		h.auth.log.Error("start session", zap.String("user_id", cred.UserID), zap.Error(err))
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal Server Error", "Could not start session")
		return
	}

	resp := authResponse(cred, state)
	q := url.Values{}
	q.Set("token", resp.Token)
	q.Set("redirect", resp.Redirect)
	q.Set("provider", models.ProviderGoogle)
	http.Redirect(w, r, h.frontendURL+"/auth/callback?"+q.Encode(), http.StatusFound)
}

// fetchGoogleUserInfo fetches user information from Google
func (h *GoogleAuthHandler) fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*dto.GoogleUserInfo, error) {
	service, err := googleOAuth2.NewService(ctx, option.WithTokenSource(h.oauth2Config.TokenSource(ctx, token)))
	if err != nil {
		return nil, err
	}

	userInfo, err := service.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	verified := false
	if userInfo.VerifiedEmail != nil {
		verified = *userInfo.VerifiedEmail
	}

	return &dto.GoogleUserInfo{
		ID:       userInfo.Id,
		Email:    userInfo.Email,
		Name:     userInfo.Name,
		Picture:  userInfo.Picture,
		Verified: verified,
	}, nil
}
