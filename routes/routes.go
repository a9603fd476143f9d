package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hustlehub/authgate/app"
	"github.com/hustlehub/authgate/auth"
	"github.com/hustlehub/authgate/handlers"
	"github.com/hustlehub/authgate/middleware"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()
	cfg := deps.Config

	// Core middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer(deps.Logger, !cfg.IsProduction()))
	if cfg.Server.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.Server.RequestTimeout))
	}

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoints
	r.Get("/health", deps.HealthHandler.HandleHealth)
	r.Get("/health/ready", deps.HealthHandler.HandleReadiness)

	accounts := deps.AccountHandler

	// Public account endpoints
	r.Post("/signup", accounts.HandleSignUp)
	r.Post("/signin", accounts.HandleSignIn)
	r.Post("/reset-password", accounts.HandleResetPassword)

	// Authenticated endpoints
	r.Group(func(r chi.Router) {
		r.Use(deps.AuthMiddleware.RequireAuth)

		r.Post("/signout", accounts.HandleSignOut)
		r.Get("/session", accounts.HandleSession)

		// any role, but a profile must exist
		r.With(deps.AuthMiddleware.RequireRole()).Get("/user", accounts.HandleUser)

		r.Route("/admin", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireRole(auth.RoleAdmin))
			r.Get("/users/{id}/role", accounts.HandleGetUserRole)
		})
	})

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.NotFound)

	return r
}
