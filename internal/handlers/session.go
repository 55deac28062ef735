package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"ROAMMATE_BACK-END/internal/access"
	"ROAMMATE_BACK-END/internal/dto"
	"ROAMMATE_BACK-END/internal/metrics"
	"ROAMMATE_BACK-END/internal/middleware"
	"ROAMMATE_BACK-END/internal/utils"
)

// SessionHandler exposes the session flags and the navigation gate. Both
// endpoints work without a token; an absent or invalid token reads as signed out.
type SessionHandler struct {
	tokens   middleware.TokenVerifier
	sessions *access.Manager
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func NewSessionHandler(tokens middleware.TokenVerifier, sessions *access.Manager, m *metrics.Metrics, log *zap.Logger) *SessionHandler {
	return &SessionHandler{tokens: tokens, sessions: sessions, metrics: m, log: orNop(log)}
}

// GetSession godoc
// @Summary      Current session state
// @Tags         session
// @Produce      json
// @Param        Authorization  header  string  false  "Bearer token"
// @Success      200  {object}  dto.SessionResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/session [get]
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	state, err := h.sessions.State(r.Context(), h.sessionID(r))
	if err != nil {
		h.log.Error("load session", zap.Error(err))
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal Server Error", "Could not load session")
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, toSessionResponse(state))
}

// Gate godoc
// @Summary      Evaluate a navigation
// @Description  Runs the access gate for a frontend route and returns where the client should go.
// @Tags         session
// @Produce      json
// @Param        Authorization  header  string  false  "Bearer token"
// @Param        route  query  string  true  "Frontend path, e.g. /discover"
// @Success      200  {object}  dto.GateResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/session/gate [get]
func (h *SessionHandler) Gate(w http.ResponseWriter, r *http.Request) {
	route := strings.TrimSpace(r.URL.Query().Get("route"))
	if route == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Missing route", "route query parameter is required")
		return
	}

	outcome, state, err := h.sessions.Evaluate(r.Context(), h.sessionID(r), route)
	if err != nil {
		h.log.Error("evaluate gate", zap.String("route", route), zap.Error(err))
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal Server Error", "Could not load session")
		return
	}
	kind := access.Classify(route)
	h.metrics.RecordGateDecision(kind.String(), string(outcome.Decision))

	utils.WriteJSONResponse(w, http.StatusOK, dto.GateResponse{
		Route:     route,
		RouteKind: kind.String(),
		Decision:  string(outcome.Decision),
		Redirect:  outcome.Target,
		ForceEdit: outcome.ForceEdit,
		Session:   toSessionResponse(state),
	})
}

// sessionID returns the session carried by a valid token, or "".
func (h *SessionHandler) sessionID(r *http.Request) string {
	token, ok := middleware.BearerToken(r)
	if !ok {
		return ""
	}
	claims, err := h.tokens.VerifyToken(token)
	if err != nil {
		return ""
	}
	return claims.SessionID()
}

func toSessionResponse(s access.State) dto.SessionResponse {
	return dto.SessionResponse{
		IsUserSignedIn:            s.SignedIn,
		UserProfilePreferencesSet: s.ProfileComplete,
		Status:                    string(s.Status()),
		UserID:                    s.UserID,
		UserName:                  s.UserName,
		UserEmail:                 s.UserEmail,
	}
}
