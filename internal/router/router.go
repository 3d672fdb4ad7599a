package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/vanshjaggi/PIXs-Onboarding-Platform/app/logger"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/config"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/api/auth"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/api/signing"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/api/user"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/types"
)

// Config carries everything the router needs wired in.
type Config struct {
	Logger         *slog.Logger
	JWT            config.JWTConfig
	ServerTimeout  time.Duration
	AuthHandler    *auth.AuthHandler
	UserHandler    *user.UserHandler
	SigningHandler *signing.SigningHandler
}

// SetupRouter builds the portal's HTTP surface under /api.
func SetupRouter(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.StructuredLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(middleware.Timeout(cfg.ServerTimeout))
	r.Use(middleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	authenticate := auth.Authenticate(cfg.Logger, cfg.JWT)
	requireHR := auth.RequireRole(cfg.Logger, types.RoleHR)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", cfg.AuthHandler.Login)
		r.Post("/auth/reset-password", cfg.AuthHandler.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/auth/logout", cfg.AuthHandler.Logout)

			// Self-service routes; the handler checks self-or-hr.
			r.Patch("/users/{id}", cfg.UserHandler.UpdateUser)
			r.Patch("/users/{id}/complete-profile", cfg.UserHandler.CompleteProfile)

			r.Group(func(r chi.Router) {
				r.Use(requireHR)
				r.Get("/users", cfg.UserHandler.ListUsers)
				r.Post("/users", cfg.UserHandler.CreateUser)
				r.Delete("/users/{id}", cfg.UserHandler.DeleteUser)
			})

			r.Route("/signing-requests", func(r chi.Router) {
				r.Get("/", cfg.SigningHandler.ListRequests)
				r.Get("/{id}", cfg.SigningHandler.GetRequest)
				r.Post("/{id}/sign", cfg.SigningHandler.SignRequest)

				r.Group(func(r chi.Router) {
					r.Use(requireHR)
					r.Post("/", cfg.SigningHandler.CreateRequest)
					r.Delete("/{id}", cfg.SigningHandler.DeleteRequest)
				})
			})
		})
	})

	return r
}
