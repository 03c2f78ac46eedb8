package services

import (
	"context"
	"strings"
	"time"

	"github.com/blogem/defect-tracker/access"
	"github.com/blogem/defect-tracker/errs"
	"github.com/blogem/defect-tracker/metrics"
	"github.com/blogem/defect-tracker/models"
	"github.com/blogem/defect-tracker/repositories"
)

// DefectService interface defines defect lifecycle business logic
type DefectService interface {
	Create(ctx context.Context, p models.Principal, form *models.CreateDefectForm) (*models.DefectLog, error)
	List(ctx context.Context, p models.Principal, filter models.DefectFilter) ([]models.DefectLogDetail, error)
	Update(ctx context.Context, p models.Principal, id string, form *models.UpdateDefectForm) (*models.DefectLog, error)
	Machines(ctx context.Context, p models.Principal) ([]models.Machine, error)
	DefectTypes(ctx context.Context, p models.Principal) ([]models.DefectType, error)
}

// defectService implements DefectService interface
type defectService struct {
	defectRepo  repositories.DefectRepository
	machineRepo repositories.MachineRepository
	typeRepo    repositories.DefectTypeRepository
	audit       AuditService
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewDefectService creates a new defect service
func NewDefectService(
	defectRepo repositories.DefectRepository,
	machineRepo repositories.MachineRepository,
	typeRepo repositories.DefectTypeRepository,
	audit AuditService,
	m *metrics.Metrics,
	now func() time.Time,
) DefectService {
	return &defectService{
		defectRepo:  defectRepo,
		machineRepo: machineRepo,
		typeRepo:    typeRepo,
		audit:       audit,
		metrics:     m,
		now:         now,
	}
}

// Create logs a new defect. It always starts Open and is owned by the caller.
func (s *defectService) Create(ctx context.Context, p models.Principal, form *models.CreateDefectForm) (*models.DefectLog, error) {
	if err := authorize(p, access.CreateDefect); err != nil {
		return nil, err
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}

	defect := &models.DefectLog{
		Timestamp:    s.now(),
		MachineID:    form.MachineID,
		DefectTypeID: form.DefectTypeID,
		OperatorID:   p.UserID,
		Quantity:     form.Quantity,
		Status:       models.StatusOpen,
		Notes:        form.Notes,
		ImageURL:     strings.TrimSpace(form.ImageURL),
		Station:      strings.TrimSpace(form.Station),
	}

	err := s.audit.WithAudit(ctx, p.UserID, func(ctx context.Context) (*Change, error) {
		if err := s.defectRepo.Create(ctx, defect); err != nil {
			return nil, err
		}
		return &Change{
			Table:    models.TableDefectLogs,
			RecordID: defect.ID,
			Action:   models.AuditInsert,
			New:      defect,
		}, nil
	})
	if err != nil {
		return nil, errs.Wrap(err, "failed to create defect log")
	}

	s.metrics.DefectCreated()
	return defect, nil
}

// List returns defect logs matching filter, newest first
func (s *defectService) List(ctx context.Context, p models.Principal, filter models.DefectFilter) ([]models.DefectLogDetail, error) {
	if err := authorize(p, access.ReadDefects); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, errs.Validation("unknown status filter", errs.FieldError{Field: "status", Message: "must be one of Open, Under Review, Contained, Closed"})
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateTo.Before(*filter.DateFrom) {
		return nil, errs.Validation("dateTo is before dateFrom", errs.FieldError{Field: "dateTo", Message: "must not be before dateFrom"})
	}
	return s.defectRepo.List(ctx, filter)
}

// Update applies a disposition update. Omitted fields keep their values.
func (s *defectService) Update(ctx context.Context, p models.Principal, id string, form *models.UpdateDefectForm) (*models.DefectLog, error) {
	if err := authorize(p, access.UpdateDefect); err != nil {
		return nil, err
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}

	var updated models.DefectLog
	err := s.audit.WithAudit(ctx, p.UserID, func(ctx context.Context) (*Change, error) {
		old, err := s.defectRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		updated = *old
		form.Apply(&updated)
		if err := s.defectRepo.Update(ctx, &updated); err != nil {
			return nil, err
		}

		return &Change{
			Table:    models.TableDefectLogs,
			RecordID: id,
			Action:   models.AuditUpdate,
			Old:      old,
			New:      &updated,
		}, nil
	})
	if err != nil {
		return nil, errs.Wrapf(err, "failed to update defect log %s", id)
	}

	s.metrics.DefectUpdated(string(updated.Status))
	return &updated, nil
}

// Machines returns machines ordered by name
func (s *defectService) Machines(ctx context.Context, p models.Principal) ([]models.Machine, error) {
	if err := authorize(p, access.ReadReference); err != nil {
		return nil, err
	}
	return s.machineRepo.GetAll(ctx)
}

// DefectTypes returns defect types ordered by category
func (s *defectService) DefectTypes(ctx context.Context, p models.Principal) ([]models.DefectType, error) {
	if err := authorize(p, access.ReadReference); err != nil {
		return nil, err
	}
	return s.typeRepo.GetAll(ctx)
}
