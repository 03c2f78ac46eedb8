package services

import (
	"context"
	"errors"
	"strings"

	"github.com/blogem/defect-tracker/access"
	"github.com/blogem/defect-tracker/errs"
	"github.com/blogem/defect-tracker/metrics"
	"github.com/blogem/defect-tracker/models"
	"github.com/blogem/defect-tracker/repositories"
)

// CapaService interface defines corrective-action business logic
type CapaService interface {
	Create(ctx context.Context, p models.Principal, form *models.CreateCapaForm) (*models.Capa, error)
	Update(ctx context.Context, p models.Principal, id string, form *models.UpdateCapaForm) (*models.Capa, error)
	// GetByDefect returns nil without error when the defect has no CAPA.
	GetByDefect(ctx context.Context, p models.Principal, defectLogID string) (*models.CapaDetail, error)
}

type capaService struct {
	capaRepo   repositories.CapaRepository
	defectRepo repositories.DefectRepository
	audit      AuditService
	metrics    *metrics.Metrics
}

// NewCapaService creates a new CAPA service
func NewCapaService(capaRepo repositories.CapaRepository, defectRepo repositories.DefectRepository, audit AuditService, m *metrics.Metrics) CapaService {
	return &capaService{capaRepo: capaRepo, defectRepo: defectRepo, audit: audit, metrics: m}
}

// Create opens a CAPA against an existing defect. A defect has at most one CAPA.
func (s *capaService) Create(ctx context.Context, p models.Principal, form *models.CreateCapaForm) (*models.Capa, error) {
	if err := authorize(p, access.CreateCapa); err != nil {
		return nil, err
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}
	dueDate, _ := form.ParsedDueDate()

	capa := &models.Capa{
		DefectLogID:       form.DefectLogID,
		RootCauseCategory: strings.TrimSpace(form.RootCauseCategory),
		Why1:              form.Why1,
		Why2:              form.Why2,
		Why3:              form.Why3,
		Why4:              form.Why4,
		Why5:              form.Why5,
		CorrectiveAction:  form.CorrectiveAction,
		AssigneeID:        form.AssigneeID,
		DueDate:           dueDate,
		Status:            models.CapaOpen,
	}

	err := s.audit.WithAudit(ctx, p.UserID, func(ctx context.Context) (*Change, error) {
		if _, err := s.defectRepo.GetByID(ctx, form.DefectLogID); err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				return nil, errs.Validation("defect log does not exist",
					errs.FieldError{Field: "defectLogId", Message: "defect log " + form.DefectLogID + " does not exist"})
			}
			return nil, err
		}

		if err := s.capaRepo.Create(ctx, capa); err != nil {
			if errors.Is(err, errs.ErrConflict) {
				return nil, errs.Conflict("defect log %s already has a CAPA", form.DefectLogID)
			}
			return nil, err
		}

		return &Change{
			Table:    models.TableCapa,
			RecordID: capa.ID,
			Action:   models.AuditInsert,
			New:      capa,
		}, nil
	})
	if err != nil {
		return nil, errs.Wrap(err, "failed to create capa")
	}

	s.metrics.CapaOperation("create")
	return capa, nil
}

// Update changes the supplied fields of a CAPA and audits the pre-update snapshot
func (s *capaService) Update(ctx context.Context, p models.Principal, id string, form *models.UpdateCapaForm) (*models.Capa, error) {
	if err := authorize(p, access.UpdateCapa); err != nil {
		return nil, err
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}

	var updated models.Capa
	err := s.audit.WithAudit(ctx, p.UserID, func(ctx context.Context) (*Change, error) {
		old, err := s.capaRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		updated = *old
		form.Apply(&updated)
		if err := s.capaRepo.Update(ctx, &updated); err != nil {
			return nil, err
		}

		return &Change{
			Table:    models.TableCapa,
			RecordID: id,
			Action:   models.AuditUpdate,
			Old:      old,
			New:      &updated,
		}, nil
	})
	if err != nil {
		return nil, errs.Wrapf(err, "failed to update capa %s", id)
	}

	s.metrics.CapaOperation("update")
	return &updated, nil
}

func (s *capaService) GetByDefect(ctx context.Context, p models.Principal, defectLogID string) (*models.CapaDetail, error) {
	if err := authorize(p, access.ReadCapa); err != nil {
		return nil, err
	}
	return s.capaRepo.GetByDefect(ctx, defectLogID)
}
