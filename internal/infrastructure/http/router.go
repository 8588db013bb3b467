package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/crewrelief/crewrelief/internal/infrastructure/http/handlers"
	"github.com/crewrelief/crewrelief/internal/infrastructure/http/middleware"
)

type RouterConfig struct {
	AuthHandler        *handlers.AuthHandler
	HealthHandler      *handlers.HealthHandler
	ProfileHandler     *handlers.ProfileHandler
	AssignmentsHandler *handlers.AssignmentsHandler
	MatchesHandler     *handlers.MatchesHandler
	AdminHandler       *handlers.AdminHandler
	RequireJWT         func(http.Handler) http.Handler // bearer token for the signed-in API
	RequireAdmin       func(http.Handler) http.Handler // X-Crewrelief-Admin-Secret for /admin/*
	Log                zerolog.Logger
	Secure             func(http.Handler) http.Handler
	CORS               func(http.Handler) http.Handler
	IPRateLimit        func(http.Handler) http.Handler
	UserRateLimit      func(http.Handler) http.Handler // per caller, applied to /matches
	APIVersion         string
	Metrics            bool // expose /metrics
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimid.RequestID)
	r.Use(chimid.RealIP)
	r.Use(loggerMiddleware(cfg.Log))
	r.Use(chimid.Recoverer)
	if cfg.Metrics {
		r.Use(middleware.PrometheusMiddleware)
	}
	if cfg.Secure != nil {
		r.Use(cfg.Secure)
	}
	if cfg.CORS != nil {
		r.Use(cfg.CORS)
	}
	if cfg.APIVersion != "" {
		r.Use(middleware.APIVersion(cfg.APIVersion))
	}
	r.Use(chimid.AllowContentType("application/json"))
	r.Use(chimid.SetHeader("Content-Type", "application/json"))
	if cfg.IPRateLimit != nil {
		r.Use(cfg.IPRateLimit)
	}

	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler.ServeHTTP)
	} else {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
	}
	if cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", cfg.AuthHandler.Signup)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/forgot-password", cfg.AuthHandler.ForgotPassword)
		r.Post("/reset-password", cfg.AuthHandler.ResetPassword)
		r.With(cfg.RequireJWT).Post("/logout", cfg.AuthHandler.Logout)
	})

	r.Group(func(r chi.Router) {
		r.Use(cfg.RequireJWT)
		r.Get("/profile", cfg.ProfileHandler.Get)
		r.Patch("/profile", cfg.ProfileHandler.Update)
		r.Delete("/profile", cfg.ProfileHandler.Delete)
		r.Get("/profiles/{id}", cfg.ProfileHandler.View)

		r.Get("/assignments", cfg.AssignmentsHandler.List)
		r.Post("/assignments/ship", cfg.AssignmentsHandler.SaveShip)
		r.Post("/assignments/land", cfg.AssignmentsHandler.SaveLand)

		r.Route("/matches", func(r chi.Router) {
			if cfg.UserRateLimit != nil {
				r.Use(cfg.UserRateLimit)
			}
			r.Get("/", cfg.MatchesHandler.Find)
			r.Get("/latest", cfg.MatchesHandler.Latest)
		})
	})

	if cfg.AdminHandler != nil && cfg.RequireAdmin != nil {
		r.Route("/admin", func(r chi.Router) {
			r.Use(cfg.RequireAdmin)
			r.Post("/users/{id}/cleanup", cfg.AdminHandler.Cleanup)
			r.Post("/users/{id}/assignments/{kind}/dedupe", cfg.AdminHandler.Dedupe)
		})
	}

	return r
}

func loggerMiddleware(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimid.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info().
				Str("request_id", chimid.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Msg("request")
		})
	}
}
