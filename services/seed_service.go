package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/blogem/defect-tracker/access"
	"github.com/blogem/defect-tracker/errs"
	"github.com/blogem/defect-tracker/models"
	"github.com/blogem/defect-tracker/repositories"
)

// DemoPassword is the password of every seeded user.
const DemoPassword = "password"

const (
	demoDefectLogs  = 50
	demoHistoryDays = 30
)

// SeedStats summarizes a demo reset
type SeedStats struct {
	Users       int `json:"users"`
	Machines    int `json:"machines"`
	DefectTypes int `json:"defectTypes"`
	Logs        int `json:"logs"`
}

// SeedService interface defines the demo data reset
type SeedService interface {
	// SeedDemo purges every table and loads demo data. A nil principal is
	// accepted only while the database has no users.
	SeedDemo(ctx context.Context, p *models.Principal) (*SeedStats, error)
}

type seedService struct {
	repos      *repositories.Repositories
	bcryptCost int
	enabled    bool
	now        func() time.Time
}

// NewSeedService creates a new seed service
func NewSeedService(repos *repositories.Repositories, bcryptCost int, enabled bool, now func() time.Time) SeedService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &seedService{
		repos:      repos,
		bcryptCost: bcryptCost,
		enabled:    enabled,
		now:        now,
	}
}

var demoUsers = []models.User{
	{Name: "Operator One", Email: "op1@factory.com", Role: models.RoleOperator},
	{Name: "Quality Jane", Email: "quality@factory.com", Role: models.RoleQuality},
	{Name: "Supervisor Sam", Email: "super@factory.com", Role: models.RoleSupervisor},
	{Name: "Engineer Ed", Email: "eng@factory.com", Role: models.RoleEngineer},
	{Name: "Admin Alice", Email: "admin@factory.com", Role: models.RoleAdmin},
}

var demoMachines = []models.Machine{
	{Name: "Line 1 - Assembly", Location: "Building A", Status: "Active"},
	{Name: "Line 2 - Painting", Location: "Building B", Status: "Active"},
	{Name: "Press 004", Location: "Building A", Status: "Maintenance"},
	{Name: "Welding Station 3", Location: "Building C", Status: "Active"},
}

var demoDefectTypes = []models.DefectType{
	{Category: "Cosmetic", Code: "SCR-01", Description: "Surface Scratch"},
	{Category: "Dimensional", Code: "DIM-05", Description: "Length Out of Spec"},
	{Category: "Assembly", Code: "MIS-02", Description: "Missing Washer"},
	{Category: "Material", Code: "MAT-09", Description: "Material Deformation"},
	{Category: "Process", Code: "WLD-03", Description: "Incomplete Weld"},
}

func (s *seedService) SeedDemo(ctx context.Context, p *models.Principal) (*SeedStats, error) {
	if err := s.allowed(ctx, p); err != nil {
		return nil, err
	}

	// Hashed once, before the write transaction opens.
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), s.bcryptCost)
	if err != nil {
		return nil, errs.Wrap(err, "failed to hash demo password")
	}

	seed := uint64(s.now().UnixNano())
	rng := rand.New(rand.NewPCG(seed, seed>>1))

	stats := &SeedStats{}
	err = s.repos.Tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.purge(ctx); err != nil {
			return err
		}

		var reporters []models.User
		for _, u := range demoUsers {
			u.PasswordHash = string(hash)
			if err := s.repos.Users.Create(ctx, &u); err != nil {
				return err
			}
			if u.Role == models.RoleOperator || u.Role == models.RoleQuality {
				reporters = append(reporters, u)
			}
			stats.Users++
		}

		machines := make([]models.Machine, len(demoMachines))
		for i, m := range demoMachines {
			if err := s.repos.Machines.Create(ctx, &m); err != nil {
				return err
			}
			machines[i] = m
			stats.Machines++
		}

		types := make([]models.DefectType, len(demoDefectTypes))
		for i, t := range demoDefectTypes {
			if err := s.repos.DefectTypes.Create(ctx, &t); err != nil {
				return err
			}
			types[i] = t
			stats.DefectTypes++
		}

		for i := range demoDefectLogs {
			d := s.demoDefect(rng, i, machines, types, reporters)
			if err := s.repos.Defects.Create(ctx, d); err != nil {
				return err
			}
			stats.Logs++
		}
		return nil
	})
	if err != nil {
		return nil, errs.Wrap(err, "failed to seed demo data")
	}
	return stats, nil
}

func (s *seedService) allowed(ctx context.Context, p *models.Principal) error {
	users, err := s.repos.Users.Count(ctx)
	if err != nil {
		return err
	}
	if users == 0 {
		return nil
	}
	if !s.enabled {
		return errs.Forbidden("demo seeding is disabled")
	}
	if p == nil {
		return errs.Unauthenticated("authentication required")
	}
	return authorize(*p, access.SeedDemo)
}

// purge deletes in foreign-key order.
func (s *seedService) purge(ctx context.Context) error {
	steps := []func(context.Context) error{
		s.repos.Capa.DeleteAll,
		s.repos.Audit.DeleteAll,
		s.repos.Defects.DeleteAll,
		s.repos.DefectTypes.DeleteAll,
		s.repos.Machines.DeleteAll,
		s.repos.Users.DeleteAll,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// demoDefect builds a historical defect, about a third of them in the last day.
func (s *seedService) demoDefect(rng *rand.Rand, i int, machines []models.Machine, types []models.DefectType, reporters []models.User) *models.DefectLog {
	window := demoHistoryDays * 24 * time.Hour
	if rng.Float64() > 0.7 {
		window = ParetoWindow - time.Minute
	}
	ts := s.now().Add(-time.Duration(rng.Int64N(int64(window))))

	status := models.StatusOpen
	switch r := rng.Float64(); {
	case r > 0.5:
		status = models.StatusClosed
	case r > 0.3:
		status = models.StatusContained
	}

	return &models.DefectLog{
		Timestamp:    ts,
		MachineID:    machines[rng.IntN(len(machines))].ID,
		DefectTypeID: types[rng.IntN(len(types))].ID,
		OperatorID:   reporters[rng.IntN(len(reporters))].ID,
		Quantity:     rng.IntN(5) + 1,
		Status:       status,
		Notes:        fmt.Sprintf("Auto-generated demo defect log #%d", i+1),
		Station:      fmt.Sprintf("Station %d", rng.IntN(10)),
	}
}
