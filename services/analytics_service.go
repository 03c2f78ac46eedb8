package services

import (
	"context"
	"time"

	"github.com/blogem/defect-tracker/access"
	"github.com/blogem/defect-tracker/models"
	"github.com/blogem/defect-tracker/repositories"
)

// ParetoWindow is how far back the recent-defect histogram looks.
const ParetoWindow = 24 * time.Hour

// AnalyticsService interface defines reporting business logic
type AnalyticsService interface {
	Dashboard(ctx context.Context, p models.Principal) (*models.Dashboard, error)
}

type analyticsService struct {
	defectRepo repositories.DefectRepository
	typeRepo   repositories.DefectTypeRepository
	now        func() time.Time
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(defectRepo repositories.DefectRepository, typeRepo repositories.DefectTypeRepository, now func() time.Time) AnalyticsService {
	return &analyticsService{defectRepo: defectRepo, typeRepo: typeRepo, now: now}
}

// Dashboard computes the summary counts and the recent Pareto histogram.
// Each figure is an independent read; they are not taken from one snapshot.
func (s *analyticsService) Dashboard(ctx context.Context, p models.Principal) (*models.Dashboard, error) {
	if err := authorize(p, access.ReadAnalytics); err != nil {
		return nil, err
	}

	total, err := s.defectRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	open, err := s.defectRepo.CountByStatus(ctx, models.StatusOpen)
	if err != nil {
		return nil, err
	}
	scrap, err := s.defectRepo.SumScrapQuantity(ctx)
	if err != nil {
		return nil, err
	}
	pareto, err := s.pareto(ctx)
	if err != nil {
		return nil, err
	}

	return &models.Dashboard{
		Summary: models.DashboardSummary{Total: total, Open: open, Scrap: scrap},
		Pareto:  pareto,
	}, nil
}

// pareto sums quantity per defect type over the window, in the order the groups are emitted.
func (s *analyticsService) pareto(ctx context.Context) ([]models.ParetoEntry, error) {
	groups, err := s.defectRepo.SumQuantityByTypeSince(ctx, s.now().Add(-ParetoWindow))
	if err != nil {
		return nil, err
	}

	types, err := s.typeRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(types))
	for _, t := range types {
		names[t.ID] = t.Description
	}

	entries := make([]models.ParetoEntry, 0, len(groups))
	for _, g := range groups {
		name, ok := names[g.DefectTypeID]
		if !ok {
			name = models.UnknownDefectTypeName
		}
		entries = append(entries, models.ParetoEntry{Name: name, Count: g.Quantity})
	}
	return entries, nil
}
