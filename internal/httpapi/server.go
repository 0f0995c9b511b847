// Package httpapi serves the dashboard API: read endpoints over the emitted
// reports, a refresh trigger, task write-through, and push subscription
// management.
package httpapi

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/teampulse/teampulse/internal/config"
	"github.com/teampulse/teampulse/internal/orchestrator"
	"github.com/teampulse/teampulse/internal/pushsubscription"
	"github.com/teampulse/teampulse/internal/report"
	"github.com/teampulse/teampulse/pkg/cerr"
	"github.com/teampulse/teampulse/pkg/clog"
)

type Server struct {
	server   *http.Server
	env      *config.BaseEnv
	vapidEnv *config.VAPIDEnv
	orch     *orchestrator.Orchestrator
	loader   *report.Loader
	subs     pushsubscription.Repository
	cache    *dashboardCache
}

func NewServer(
	env *config.BaseEnv,
	vapidEnv *config.VAPIDEnv,
	orch *orchestrator.Orchestrator,
	loader *report.Loader,
	subs pushsubscription.Repository,
) *Server {
	return &Server{
		env:      env,
		vapidEnv: vapidEnv,
		orch:     orch,
		loader:   loader,
		subs:     subs,
		cache:    &dashboardCache{},
	}
}

// ListenAndServe starts the HTTP server. The provided context is used as the
// base context for all incoming requests via http.Server.BaseContext, so
// cancelling it on shutdown also cancels in-flight request contexts.
func (s *Server) ListenAndServe(ctx context.Context) error {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(
			clog.SlogChiMiddleware(),
			cerr.NewJSONResponseChiMiddleware(),
		)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/stats", s.handleStats)
		r.Get("/tasks", s.handleListTasks)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/tasks", s.handleCreateTask)
		r.Patch("/tasks/{id}", s.handleUpdateTask)
		r.Delete("/tasks/{id}", s.handleDeleteTask)
		r.Get("/push/vapid-public-key", s.handleVAPIDPublicKey)
		r.Get("/push/subscriptions", s.handleListSubscriptions)
		r.Post("/push/subscriptions", s.handleCreateSubscription)
		r.Delete("/push/subscriptions", s.handleDeleteSubscription)
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			cerr.SetNewJSONError(r.Context(), cerr.NotFound, "not found", nil)
		})
	})

	mux := http.NewServeMux()
	mux.Handle("/health", &HealthChecker{})
	mux.Handle("/api/", r)

	addr := net.JoinHostPort(s.env.HTTPHost, s.env.HTTPPort)
	slog.Info("starting server", "addr", addr)

	s.server = &http.Server{
		Addr: addr,
		Handler: h2c.NewHandler(cors.New(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
		}).Handler(s.apiKeyMiddleware(mux)), &http2.Server{}),
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}

	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type HealthChecker struct{}

func (hc *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// apiKeyMiddleware enforces the configured API key. An empty key disables the
// check, matching local development.
func (s *Server) apiKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.env.APIKey == "" || r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			apiKey = r.Header.Get("Authorization")
			if len(apiKey) > 7 && apiKey[:7] == "Bearer " {
				apiKey = apiKey[7:]
			}
		}
		if apiKey != s.env.APIKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
