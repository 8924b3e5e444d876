package routes

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/AnshRaj112/devcode-backend/internal/handlers"
	"github.com/AnshRaj112/devcode-backend/internal/metrics"
	"github.com/AnshRaj112/devcode-backend/internal/middleware"
)

// Options configure the router.
type Options struct {
	Handler        *handlers.Handler
	Auth           middleware.Authenticator
	Metrics        *metrics.Metrics
	Logger         *slog.Logger
	AllowedOrigins []string
	// AllowedHost enables the strict host check when set (production only).
	AllowedHost string
	Production  bool
}

// NewRouter builds the router with the full middleware stack.
func NewRouter(opts Options) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(middleware.CORS(opts.AllowedOrigins))

	// Production: SecurityHeaders → HostCheck
	if opts.Production {
		r.Use(middleware.SecurityHeaders)
		r.Use(middleware.HostCheck(opts.AllowedHost))
	}

	// Health check and metrics sit outside the auth guard
	r.Get("/health", opts.Handler.Health)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	SetupRoutes(r, opts.Handler, middleware.RequireAuth(opts.Auth, opts.Logger))
	return r
}

func SetupRoutes(r chi.Router, h *handlers.Handler, guard func(http.Handler) http.Handler) {
	// Account and session routes
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)

	// Password reset routes
	r.Post("/forgot-password", h.ForgotPassword)
	r.Post("/reset-password/{id}/{token}", h.ResetPassword)

	// Routes acting on the authenticated user
	r.Group(func(r chi.Router) {
		r.Use(guard)

		r.Get("/validateUser", h.ValidateUser)
		r.Get("/logout", h.Logout)

		r.Post("/save-project", h.SaveProject)
		r.Post("/update-user", h.UpdateUser)
		r.Post("/delete-project", h.DeleteProject)
	})
}
