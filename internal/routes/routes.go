package routes

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"ROAMMATE_BACK-END/internal/handlers"
	"ROAMMATE_BACK-END/internal/middleware"
)

// Handlers groups everything SetupRoutes mounts.
type Handlers struct {
	Auth        *handlers.AuthHandler
	Google      *handlers.GoogleAuthHandler
	Session     *handlers.SessionHandler
	Profile     *handlers.ProfileHandler
	Trips       *handlers.TripsHandler
	Suggestions *handlers.SuggestionsHandler
	Chat        *handlers.ChatHandler
	Health      *handlers.HealthHandler
	Metrics     http.Handler
}

// SetupRoutes configures all application routes
func SetupRoutes(mux *http.ServeMux, h Handlers, auth *middleware.Auth) {
	// Health check routes
	mux.HandleFunc("GET /healthz", h.Health.HealthCheck)
	mux.HandleFunc("GET /livez", h.Health.LivenessCheck)
	mux.HandleFunc("GET /readyz", h.Health.ReadinessCheck)
	if h.Metrics != nil {
		mux.Handle("GET /metrics", h.Metrics)
	}
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// Authentication routes
	mux.HandleFunc("POST /api/auth/sign-up", h.Auth.SignUp)
	mux.HandleFunc("POST /api/auth/sign-in", h.Auth.SignIn)
	mux.HandleFunc("POST /api/auth/sign-out", auth.AuthMiddleware(h.Auth.SignOut))
	if h.Google != nil {
		mux.HandleFunc("GET /api/auth/google/login", h.Google.GoogleLogin)
		mux.HandleFunc("GET /api/auth/google/callback", h.Google.GoogleCallback)
	}

	// Session and navigation gate
	mux.HandleFunc("GET /api/session", h.Session.GetSession)
	mux.HandleFunc("GET /api/session/gate", h.Session.Gate)

	// Profile is reachable while incomplete
	mux.HandleFunc("GET /api/profile", auth.Gate("/profile", h.Profile.GetMe))
	mux.HandleFunc("PUT /api/profile", auth.Gate("/profile", h.Profile.Update))

	// Main area: signed in with a complete profile
	mux.HandleFunc("GET /api/trips", auth.Gate("/discover", h.Trips.ListTrips))
	mux.HandleFunc("POST /api/trips", auth.Gate("/create-trip", h.Trips.CreateTrip))
	mux.HandleFunc("GET /api/trips/{tripId}", auth.Gate("/trip/detail", h.Trips.TripDetail))
	mux.HandleFunc("POST /api/trips/{tripId}/join", auth.Gate("/trip/detail", h.Trips.JoinTrip))
	mux.HandleFunc("GET /api/groups", auth.Gate("/groups", h.Trips.ListGroups))
	mux.HandleFunc("POST /api/groups/{groupId}/suggestions", auth.Gate("/groups", h.Suggestions.Generate))
	mux.HandleFunc("GET /api/chat/{groupId}/messages", auth.Gate("/chat", h.Chat.ListMessages))
	mux.HandleFunc("POST /api/chat/{groupId}/messages", auth.Gate("/chat", h.Chat.PostMessage))
	mux.HandleFunc("GET /api/chat/{groupId}/ws", auth.Gate("/chat", h.Chat.ServeWS))

	mux.HandleFunc("GET /api/categories", h.Trips.Categories)

	// Root route
	mux.HandleFunc("GET /{$}", rootHandler)
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("RoamMate backend is running."))
}
