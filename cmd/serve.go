package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "ROAMMATE_BACK-END/docs" // This is required for swagger
	"ROAMMATE_BACK-END/internal/access"
	"ROAMMATE_BACK-END/internal/chat"
	"ROAMMATE_BACK-END/internal/config"
	"ROAMMATE_BACK-END/internal/handlers"
	"ROAMMATE_BACK-END/internal/identity"
	"ROAMMATE_BACK-END/internal/logger"
	"ROAMMATE_BACK-END/internal/metrics"
	"ROAMMATE_BACK-END/internal/middleware"
	"ROAMMATE_BACK-END/internal/routes"
	"ROAMMATE_BACK-END/internal/suggestions"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		log.Error("open storage backends", zap.Error(err))
		return err
	}
	defer b.Close()

	m := metrics.New()
	tokens := identity.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)
	ids := identity.NewService(b.users, tokens, 0, log.Named("identity"))
	sessions := access.NewManager(b.sessions, log.Named("access"))
	hub := chat.NewHub(chat.NewHistory(cfg.Chat.HistoryLimit), m, log.Named("chat"))

	generator, err := newGenerator(ctx, cfg, log)
	if err != nil {
		return err
	}

	authHandler := handlers.NewAuthHandler(ids, sessions, b.profiles, log)
	h := routes.Handlers{
		Auth:        authHandler,
		Session:     handlers.NewSessionHandler(ids, sessions, m, log),
		Profile:     handlers.NewProfileHandler(b.profiles, sessions, log),
		Trips:       handlers.NewTripsHandler(b.listings, m, log),
		Suggestions: handlers.NewSuggestionsHandler(generator, b.listings, b.profiles, cfg.GenAI.Timeout, m, log),
		Chat:        handlers.NewChatHandler(hub, b.listings, b.profiles, log),
		Health:      handlers.NewHealthHandler(b.checks),
		Metrics:     m.Handler(),
	}
	if cfg.IsGoogleOAuthConfigured() {
		h.Google = handlers.NewGoogleAuthHandler(cfg, authHandler)
	}

	mux := http.NewServeMux()
	routes.SetupRoutes(mux, h, middleware.NewAuth(ids, sessions, m, log))

	// Setup CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           c.Handler(logger.Middleware(log)(m.Middleware(mux))),
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		watchSessions(gctx, sessions, log)
		return nil
	})
	g.Go(func() error {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", zap.Error(err))
		return err
	}
	log.Info("server stopped")
	return nil
}

// newGenerator returns nil when no API key is configured; the suggestions
// endpoint then reports itself unavailable.
func newGenerator(ctx context.Context, cfg *config.Config, log *zap.Logger) (suggestions.Generator, error) {
	if !cfg.IsGenAIConfigured() {
		return nil, nil
	}
	gen, err := suggestions.NewGenAIGenerator(ctx, cfg.GenAI.APIKey, cfg.GenAI.Model)
	if err != nil {
		return nil, err
	}
	return suggestions.NewRetrying(gen, cfg.GenAI.MaxAttempts, cfg.GenAI.RetryBackoff, log.Named("suggestions")), nil
}

// watchSessions logs every session transition until ctx is done.
func watchSessions(ctx context.Context, sessions *access.Manager, log *zap.Logger) {
	events, unsubscribe := sessions.Subscribe(64)
	defer unsubscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			log.Debug("session state changed",
				zap.String("session_id", ev.SessionID),
				zap.String("user_id", ev.State.UserID),
				zap.String("status", string(ev.State.Status())),
			)
		}
	}
}
