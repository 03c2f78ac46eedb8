package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"gitea.com/go-chi/session"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/blogem/defect-tracker/access"
	"github.com/blogem/defect-tracker/authenticator"
	"github.com/blogem/defect-tracker/controllers"
	"github.com/blogem/defect-tracker/metrics"
	"github.com/blogem/defect-tracker/middleware"
)

// Options carries what the router needs besides the controllers
type Options struct {
	Auth    authenticator.Authenticator
	Metrics *metrics.Metrics
	Logger  *slog.Logger
	// UseHTTPS marks session cookies secure
	UseHTTPS bool
}

// SetupRouter configures all routes
func SetupRouter(ctrl *controllers.Controllers, opts Options) (*chi.Mux, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(opts.Logger, opts.Metrics))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second)) // 60 second timeout for OIDC callbacks

	// Session middleware, only used to carry OIDC state between login and callback
	sessionHandler, err := session.Sessioner(session.Options{
		Provider:       "memory",
		ProviderConfig: "",
		CookieName:     "defect_tracker_session",
		Secure:         opts.UseHTTPS,
		Gclifetime:     3600,
		Maxlifetime:    3600,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}

	gate := func(op access.Operation) func(http.Handler) http.Handler {
		return middleware.Authorize(op, opts.Metrics)
	}

	// PUBLIC ROUTES (no authentication required)
	r.Get("/health", ctrl.Health.Health)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", ctrl.Auth.Login)
		r.Group(func(r chi.Router) {
			r.Use(sessionHandler)
			r.Get("/auth/oidc/login", ctrl.Auth.SSOLogin)
			r.Get("/auth/oidc/callback", ctrl.Auth.SSOCallback)
		})

		// The seed service decides who may reset: anyone on an empty database, Admin otherwise.
		r.With(middleware.OptionalAuth(opts.Auth)).Post("/seed/demo", ctrl.Seed.Demo)

		// PROTECTED ROUTES (authentication required)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(opts.Auth))

			r.With(gate(access.ReadOwnIdentity)).Get("/auth/me", ctrl.Auth.Me)

			r.Route("/defects", func(r chi.Router) {
				r.With(gate(access.CreateDefect)).Post("/", ctrl.Defects.Create)
				r.With(gate(access.ReadDefects)).Get("/", ctrl.Defects.List)
				r.With(gate(access.ReadReference)).Get("/types", ctrl.Defects.Types)
				r.With(gate(access.ReadReference)).Get("/machines", ctrl.Defects.Machines)
				r.With(gate(access.UpdateDefect)).Put("/{id}", ctrl.Defects.Update)
			})

			r.Route("/capa", func(r chi.Router) {
				r.With(gate(access.CreateCapa)).Post("/", ctrl.Capa.Create)
				r.With(gate(access.ReadCapa)).Get("/defect/{defectId}", ctrl.Capa.GetByDefect)
				r.With(gate(access.UpdateCapa)).Put("/{id}", ctrl.Capa.Update)
			})

			r.Route("/audit", func(r chi.Router) {
				r.Use(gate(access.ReadAudit))
				r.Get("/", ctrl.Audit.ListRecent)
				r.Get("/{table}/{id}", ctrl.Audit.ListByRecord)
			})

			r.With(gate(access.ReadAnalytics)).Get("/analytics/dashboard", ctrl.Analytics.Dashboard)
		})
	})

	return r, nil
}
