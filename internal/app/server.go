package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/currentspace/mychat-api/internal/api/handlers"
	appMiddleware "github.com/currentspace/mychat-api/internal/api/middlewares"
	"github.com/currentspace/mychat-api/internal/auth"
	"github.com/currentspace/mychat-api/internal/config"
	"github.com/currentspace/mychat-api/internal/core"
	"github.com/currentspace/mychat-api/internal/metrics"
	"github.com/currentspace/mychat-api/internal/store"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, verifier *auth.GoogleVerifier, history store.ConversationStore, registry *core.Registry, collector *metrics.Collector) *Server {
	cache := auth.NewIdentityCache()
	authHandler := handlers.NewAuthHandler(verifier, cfg.SessionSecret, cache)
	chatHandler := handlers.NewChatHandler(registry, history, collector)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.NotFound(handlers.NotFound)
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api", func(api chi.Router) {
		api.Use(collector.Middleware)

		// public endpoints
		api.Post("/auth/google-login", authHandler.GoogleLogin)
		api.Get("/auth/me", authHandler.Me)
		api.Post("/auth/logout", authHandler.Logout)

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.Session(cfg.SessionSecret))
			protected.With(middleware.Timeout(cfg.ProviderTimeout)).Post("/chat", chatHandler.Chat)
			// No timeout on the stream route; client disconnect cancels it.
			protected.Post("/chat/stream", chatHandler.ChatStream)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

func allowedOrigins(cfg *config.Config) []string {
	origins := []string{"http://localhost:5173", "http://localhost:8788"}
	if cfg.FrontendURL != "" {
		origins = append([]string{cfg.FrontendURL}, origins...)
	}
	return origins
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start runs the HTTP server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s", s.httpServer.Addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Println("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}
