package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"ROAMMATE_BACK-END/internal/access"
	"ROAMMATE_BACK-END/internal/identity"
	"ROAMMATE_BACK-END/internal/utils"
)

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	VerifyToken(token string) (identity.Claims, error)
}

// SessionReader returns the current access state of a session.
type SessionReader interface {
	State(ctx context.Context, sessionID string) (access.State, error)
}

// GateRecorder counts gate outcomes. Implemented by metrics.Metrics.
type GateRecorder interface {
	RecordGateDecision(routeKind, decision string)
}

type stateKey struct{}

// Auth guards handlers with token verification and the access gate.
type Auth struct {
	tokens   TokenVerifier
	sessions SessionReader
	rec      GateRecorder
	log      *zap.Logger
}

func NewAuth(tokens TokenVerifier, sessions SessionReader, rec GateRecorder, log *zap.Logger) *Auth {
	if log == nil {
		log = zap.NewNop()
	}
	return &Auth{tokens: tokens, sessions: sessions, rec: rec, log: log}
}

// AuthMiddleware validates the bearer token and requires its session to be
// signed in. Browsers cannot set headers on websocket handshakes, so a
// ?token= query parameter is accepted as well.
func (a *Auth) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := BearerToken(r)
		if !ok {
			utils.WriteRedirectResponse(w, http.StatusUnauthorized, "Unauthorized", "Authorization header required", access.LandingPath)
			return
		}

		claims, err := a.tokens.VerifyToken(tokenString)
		if err != nil {
			utils.WriteRedirectResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid token", access.LandingPath)
			return
		}

		state, err := a.sessions.State(r.Context(), claims.SessionID())
		if err != nil {
			a.log.Error("load session state", zap.String("session_id", claims.SessionID()), zap.Error(err))
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal Server Error", "Could not load session")
			return
		}
		if !state.SignedIn {
			utils.WriteRedirectResponse(w, http.StatusUnauthorized, "Unauthorized", "Session has been signed out", access.LandingPath)
			return
		}

		ctx := utils.WithAuthUser(r.Context(), utils.AuthUser{
			UserID:    claims.UserID(),
			Email:     claims.Email,
			Name:      claims.Name,
			SessionID: claims.SessionID(),
		})
		ctx = context.WithValue(ctx, stateKey{}, state)

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// Gate authenticates and then applies the access gate as if the client were
// navigating to route. Incomplete profiles get 403 with a redirect to the
// profile page.
func (a *Auth) Gate(route string, next http.HandlerFunc) http.HandlerFunc {
	kind := access.Classify(route)
	return a.AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		state, _ := StateFromContext(r.Context())
		outcome := access.Decide(state, kind)
		if a.rec != nil {
			a.rec.RecordGateDecision(kind.String(), string(outcome.Decision))
		}

		switch outcome.Decision {
		case access.RedirectToLanding:
			utils.WriteRedirectResponse(w, http.StatusUnauthorized, "Unauthorized", "Sign in to continue", outcome.Target)
			return
		case access.RedirectToProfile:
			utils.WriteRedirectResponse(w, http.StatusForbidden, "Profile incomplete", "Complete your profile to continue", outcome.Target)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// StateFromContext returns the session state loaded by AuthMiddleware.
func StateFromContext(ctx context.Context) (access.State, bool) {
	s, ok := ctx.Value(stateKey{}).(access.State)
	return s, ok
}

// BearerToken extracts the token from the Authorization header or, when the
// header is absent, from the token query parameter.
func BearerToken(r *http.Request) (string, bool) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		// Extract token from "Bearer <token>"
		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return "", false
		}
		return strings.TrimSpace(token), true
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token, true
	}
	return "", false
}
