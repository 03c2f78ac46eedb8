package services

import (
	"time"

	"github.com/blogem/defect-tracker/access"
	"github.com/blogem/defect-tracker/errs"
	"github.com/blogem/defect-tracker/metrics"
	"github.com/blogem/defect-tracker/models"
	"github.com/blogem/defect-tracker/repositories"
)

// Services holds all service instances
type Services struct {
	Audit     AuditService
	Defects   DefectService
	Capa      CapaService
	Analytics AnalyticsService
	Auth      AuthService
	Seed      SeedService
}

// Options configures the services that need more than repositories
type Options struct {
	Metrics     *metrics.Metrics
	Tokens      TokenIssuer
	BcryptCost  int
	SeedEnabled bool
	Now         func() time.Time
}

// NewServices creates and initializes all service instances
func NewServices(repos *repositories.Repositories, opts Options) *Services {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	audit := NewAuditService(repos.Tx, repos.Audit, opts.Metrics)
	return &Services{
		Audit:     audit,
		Defects:   NewDefectService(repos.Defects, repos.Machines, repos.DefectTypes, audit, opts.Metrics, opts.Now),
		Capa:      NewCapaService(repos.Capa, repos.Defects, audit, opts.Metrics),
		Analytics: NewAnalyticsService(repos.Defects, repos.DefectTypes, opts.Now),
		Auth:      NewAuthService(repos.Users, opts.Tokens),
		Seed:      NewSeedService(repos, opts.BcryptCost, opts.SeedEnabled, opts.Now),
	}
}

// authorize rejects the principal before any storage access when its role may not perform op.
func authorize(p models.Principal, op access.Operation) error {
	if p.UserID == "" {
		return errs.Unauthenticated("authentication required")
	}
	if !access.Authorize(p.Role, op) {
		return errs.Forbidden("role " + string(p.Role) + " may not perform " + string(op))
	}
	return nil
}
