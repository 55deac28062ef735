package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"ROAMMATE_BACK-END/internal/access"
	"ROAMMATE_BACK-END/internal/dto"
	"ROAMMATE_BACK-END/internal/identity"
	"ROAMMATE_BACK-END/internal/middleware"
	"ROAMMATE_BACK-END/internal/models"
	"ROAMMATE_BACK-END/internal/repository"
)

type authFixture struct {
	ids      *identity.Service
	sessions *access.Manager
	profiles *repository.MemoryProfileRepository
	auth     *AuthHandler
	session  *SessionHandler
	profile  *ProfileHandler
	guard    *middleware.Auth
}

func newAuthFixture() authFixture {
	ids := identity.NewService(identity.NewMemoryUserStore(), identity.NewTokenIssuer("test-secret", time.Hour), bcrypt.MinCost, nil)
	sessions := access.NewManager(access.NewMemoryStore(), nil)
	profiles := repository.NewMemoryProfileRepository()
	return authFixture{
		ids:      ids,
		sessions: sessions,
		profiles: profiles,
		auth:     NewAuthHandler(ids, sessions, profiles, nil),
		session:  NewSessionHandler(ids, sessions, nil, nil),
		profile:  NewProfileHandler(profiles, sessions, nil),
		guard:    middleware.NewAuth(ids, sessions, nil, nil),
	}
}

func (f authFixture) do(h http.HandlerFunc, method, target, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func (f authFixture) signUp(t *testing.T, email string) dto.AuthResponse {
	t.Helper()
	rr := f.do(f.auth.SignUp, http.MethodPost, "/api/auth/sign-up", "",
		`{"name":"Ana Lima","email":"`+email+`","password":"secret123"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decodeBody[dto.AuthResponse](t, rr)
}

const completeProfileBody = `{"name":"Ana Lima","bio":"Slow traveler","interests":["hiking","food"],
	"travelHistory":["Peru"],"smokingPolicy":"non_smoker","alcoholPolicy":"social_drinker",
	"preferredAgeGroup":"26-35"}`

func TestSignUp(t *testing.T) {
	f := newAuthFixture()
	resp := f.signUp(t, "ana@example.com")

	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "ana@example.com", resp.User.Email)
	assert.Equal(t, "/profile", resp.Redirect)
	assert.True(t, resp.Session.IsUserSignedIn)
	assert.False(t, resp.Session.UserProfilePreferencesSet)
	assert.Equal(t, string(access.SignedInIncomplete), resp.Session.Status)

	p, err := f.profiles.GetProfile(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.False(t, p.Complete)
	assert.Equal(t, "Ana Lima", p.Name)

	t.Run("duplicate email", func(t *testing.T) {
		rr := f.do(f.auth.SignUp, http.MethodPost, "/api/auth/sign-up", "",
			`{"name":"Other","email":"ANA@example.com","password":"secret123"}`)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("validation", func(t *testing.T) {
		rr := f.do(f.auth.SignUp, http.MethodPost, "/api/auth/sign-up", "",
			`{"name":"A","email":"not-an-email","password":"123"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Validation error", decodeBody[dto.ErrorResponse](t, rr).Error)
	})
}

func TestSignIn(t *testing.T) {
	f := newAuthFixture()
	up := f.signUp(t, "ana@example.com")

	rr := f.do(f.auth.SignIn, http.MethodPost, "/api/auth/sign-in", "", `{"email":"ana@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = f.do(f.auth.SignIn, http.MethodPost, "/api/auth/sign-in", "", `{"email":"ana@example.com","password":"secret123"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	in := decodeBody[dto.AuthResponse](t, rr)
	assert.Equal(t, "/profile", in.Redirect, "profile step still pending")

	rr = f.do(f.guard.Gate("/profile", f.profile.Update), http.MethodPut, "/api/profile", up.Token, completeProfileBody)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = f.do(f.auth.SignIn, http.MethodPost, "/api/auth/sign-in", "", `{"email":"ana@example.com","password":"secret123"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	in = decodeBody[dto.AuthResponse](t, rr)
	assert.Equal(t, "/discover", in.Redirect)
	assert.Equal(t, string(access.SignedInComplete), in.Session.Status)
}

func TestSignInAfterSessionStoreLoss(t *testing.T) {
	f := newAuthFixture()
	up := f.signUp(t, "ana@example.com")
	rr := f.do(f.guard.Gate("/profile", f.profile.Update), http.MethodPut, "/api/profile", up.Token, completeProfileBody)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// same users and profiles, empty session store
	auth := NewAuthHandler(f.ids, access.NewManager(access.NewMemoryStore(), nil), f.profiles, nil)
	rr = f.do(auth.SignIn, http.MethodPost, "/api/auth/sign-in", "", `{"email":"ana@example.com","password":"secret123"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	in := decodeBody[dto.AuthResponse](t, rr)
	assert.Equal(t, string(access.SignedInComplete), in.Session.Status)
	assert.Equal(t, "/discover", in.Redirect)
}

type downStore struct{ *access.MemoryStore }

func (downStore) Save(context.Context, string, map[string]string) error {
	return errors.New("session store down")
}

func TestSignUpFailureLeavesNoAccount(t *testing.T) {
	f := newAuthFixture()
	broken := NewAuthHandler(f.ids, access.NewManager(downStore{access.NewMemoryStore()}, nil), f.profiles, nil)
	body := `{"name":"Ana Lima","email":"ana@example.com","password":"secret123"}`

	rr := f.do(broken.SignUp, http.MethodPost, "/api/auth/sign-up", "", body)
	require.Equal(t, http.StatusInternalServerError, rr.Code)

	rr = f.do(f.auth.SignIn, http.MethodPost, "/api/auth/sign-in", "", `{"email":"ana@example.com","password":"secret123"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "account was rolled back")

	up := f.signUp(t, "ana@example.com")
	p, err := f.profiles.GetProfile(context.Background(), up.User.ID)
	require.NoError(t, err)
	assert.False(t, p.Complete)
}

func TestSignOut(t *testing.T) {
	f := newAuthFixture()
	up := f.signUp(t, "ana@example.com")
	signOut := f.guard.AuthMiddleware(f.auth.SignOut)

	rr := f.do(signOut, http.MethodPost, "/api/auth/sign-out", up.Token, "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(signOut, http.MethodPost, "/api/auth/sign-out", up.Token, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "token outlives its session")

	rr = f.do(f.session.GetSession, http.MethodGet, "/api/session", up.Token, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, string(access.SignedOut), decodeBody[dto.SessionResponse](t, rr).Status)
}

func TestProfileFlow(t *testing.T) {
	f := newAuthFixture()
	up := f.signUp(t, "ana@example.com")
	getMe := f.guard.Gate("/profile", f.profile.GetMe)
	update := f.guard.Gate("/profile", f.profile.Update)

	rr := f.do(getMe, http.MethodGet, "/api/profile", up.Token, "")
	require.Equal(t, http.StatusOK, rr.Code)
	me := decodeBody[dto.ProfileResponse](t, rr)
	assert.True(t, me.ForceEdit)
	assert.False(t, me.Complete)
	assert.Equal(t, "any", me.SmokingPolicy)

	rr = f.do(update, http.MethodPut, "/api/profile", up.Token, `{"name":"Ana","smokingPolicy":"chain"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = f.do(update, http.MethodPut, "/api/profile", up.Token, `{"name":"A"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(update, http.MethodPut, "/api/profile", up.Token, completeProfileBody)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	saved := decodeBody[dto.ProfileSaveResponse](t, rr)
	assert.Equal(t, "Profile saved successfully", saved.Message)
	assert.Equal(t, "/discover", saved.Redirect)
	assert.True(t, saved.Profile.Complete)
	assert.Equal(t, "non_smoker", saved.Profile.SmokingPolicy)
	assert.Equal(t, []string{"hiking", "food"}, saved.Profile.Interests)

	rr = f.do(getMe, http.MethodGet, "/api/profile", up.Token, "")
	require.Equal(t, http.StatusOK, rr.Code)
	me = decodeBody[dto.ProfileResponse](t, rr)
	assert.False(t, me.ForceEdit)
	assert.Equal(t, "Slow traveler", me.Bio)

	claims, err := f.ids.VerifyToken(up.Token)
	require.NoError(t, err)
	blob, ok, err := f.sessions.CachedProfile(context.Background(), claims.SessionID())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, string(blob), "Slow traveler")
}

type unreachableProfiles struct{ repository.ProfileRepository }

func (unreachableProfiles) GetProfile(context.Context, string) (models.UserProfile, error) {
	return models.UserProfile{}, errors.New("database unreachable")
}

func TestGetProfileServedFromSession(t *testing.T) {
	f := newAuthFixture()
	up := f.signUp(t, "ana@example.com")
	cold := NewProfileHandler(unreachableProfiles{}, f.sessions, nil)

	rr := f.do(f.guard.Gate("/profile", cold.GetMe), http.MethodGet, "/api/profile", up.Token, "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code, "nothing cached before the first save")

	rr = f.do(f.guard.Gate("/profile", f.profile.Update), http.MethodPut, "/api/profile", up.Token, completeProfileBody)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = f.do(f.guard.Gate("/profile", cold.GetMe), http.MethodGet, "/api/profile", up.Token, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	me := decodeBody[dto.ProfileResponse](t, rr)
	assert.Equal(t, "Slow traveler", me.Bio)
	assert.True(t, me.Complete)
	assert.False(t, me.ForceEdit)
}

func TestSessionGate(t *testing.T) {
	f := newAuthFixture()

	gate := func(route, token string) dto.GateResponse {
		t.Helper()
		rr := f.do(f.session.Gate, http.MethodGet, "/api/session/gate?route="+route, token, "")
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		return decodeBody[dto.GateResponse](t, rr)
	}

	rr := f.do(f.session.Gate, http.MethodGet, "/api/session/gate", "", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	out := gate("/discover", "")
	assert.Equal(t, string(access.RedirectToLanding), out.Decision)
	assert.Equal(t, "/", out.Redirect)
	assert.Equal(t, "main", out.RouteKind)

	out = gate("/discover", "garbage")
	assert.Equal(t, string(access.RedirectToLanding), out.Decision, "invalid token reads as signed out")

	up := f.signUp(t, "ana@example.com")
	out = gate("/groups", up.Token)
	assert.Equal(t, string(access.RedirectToProfile), out.Decision)
	assert.Equal(t, "/profile", out.Redirect)

	out = gate("/profile", up.Token)
	assert.Equal(t, string(access.Allow), out.Decision)
	assert.True(t, out.ForceEdit)

	// websocket-style clients pass the token in the query
	rr = f.do(f.session.Gate, http.MethodGet, "/api/session/gate?route=/groups&token="+up.Token, "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	viaQuery := decodeBody[dto.GateResponse](t, rr)
	assert.Equal(t, string(access.RedirectToProfile), viaQuery.Decision)
	assert.True(t, viaQuery.Session.IsUserSignedIn)

	out = gate("/about", up.Token)
	assert.Equal(t, string(access.Allow), out.Decision)
	assert.Equal(t, "open", out.RouteKind)

	rr = f.do(f.guard.Gate("/profile", f.profile.Update), http.MethodPut, "/api/profile", up.Token, completeProfileBody)
	require.Equal(t, http.StatusOK, rr.Code)

	out = gate("/trip/abc", up.Token)
	assert.Equal(t, string(access.Allow), out.Decision)
	assert.False(t, out.ForceEdit)
	assert.Equal(t, string(access.SignedInComplete), out.Session.Status)
}
