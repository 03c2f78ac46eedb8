package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/blogem/defect-tracker/middleware"
	"github.com/blogem/defect-tracker/models"
	"github.com/blogem/defect-tracker/services"
	"github.com/blogem/defect-tracker/userctx"
)

// AuditController serves the audit trail
type AuditController struct {
	audit services.AuditService
}

func NewAuditController(audit services.AuditService) *AuditController {
	return &AuditController{audit: audit}
}

// ListRecent handles GET /api/audit
func (ac *AuditController) ListRecent(w http.ResponseWriter, r *http.Request) {
	entries, err := ac.audit.ListRecent(r.Context(), principal(r))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, entries)
}

// ListByRecord handles GET /api/audit/{table}/{id}
func (ac *AuditController) ListByRecord(w http.ResponseWriter, r *http.Request) {
	entries, err := ac.audit.ListByRecord(r.Context(), principal(r), chi.URLParam(r, "table"), chi.URLParam(r, "id"))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, entries)
}

// AnalyticsController serves the reporting dashboard
type AnalyticsController struct {
	analytics services.AnalyticsService
}

func NewAnalyticsController(analytics services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{analytics: analytics}
}

// Dashboard handles GET /api/analytics/dashboard
func (ac *AnalyticsController) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := ac.analytics.Dashboard(r.Context(), principal(r))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dashboard)
}

// SeedController serves the demo reset
type SeedController struct {
	seed services.SeedService
}

func NewSeedController(seed services.SeedService) *SeedController {
	return &SeedController{seed: seed}
}

// Demo handles POST /api/seed/demo
func (sc *SeedController) Demo(w http.ResponseWriter, r *http.Request) {
	var caller *models.Principal
	if p, ok := userctx.GetPrincipal(r.Context()); ok {
		caller = &p
	}

	stats, err := sc.seed.SeedDemo(r.Context(), caller)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.Logger(r.Context()).Info("demo data seeded",
		slog.Int("users", stats.Users), slog.Int("logs", stats.Logs))
	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Demo mode activated: Data seeded successfully",
		"stats":   stats,
	})
}

// HealthController reports liveness
type HealthController struct {
	now func() time.Time
}

func NewHealthController() *HealthController {
	return &HealthController{now: time.Now}
}

// Health handles GET /health
func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": hc.now().UTC(),
		"service":   "defect-tracker",
	})
}
