package services

import (
	"context"
	"encoding/json"

	"github.com/blogem/defect-tracker/access"
	"github.com/blogem/defect-tracker/errs"
	"github.com/blogem/defect-tracker/metrics"
	"github.com/blogem/defect-tracker/models"
	"github.com/blogem/defect-tracker/repositories"
)

// RecentAuditLimit is the number of entries the audit listing returns.
const RecentAuditLimit = 100

// Change describes one audited mutation. Old is nil for inserts.
type Change struct {
	Table    string
	RecordID string
	Action   models.AuditAction
	Old      any
	New      any
}

// Mutation performs a write and reports what it changed.
type Mutation func(ctx context.Context) (*Change, error)

// AuditService interface defines audit trail business logic
type AuditService interface {
	// WithAudit runs fn and records its change in the same transaction.
	// Nothing is persisted unless both the write and the audit entry succeed.
	WithAudit(ctx context.Context, changedBy string, fn Mutation) error
	Record(ctx context.Context, changedBy string, change *Change) error
	ListRecent(ctx context.Context, p models.Principal) ([]models.AuditLogDetail, error)
	ListByRecord(ctx context.Context, p models.Principal, table, recordID string) ([]models.AuditLogDetail, error)
}

type auditService struct {
	tx        repositories.TxManager
	auditRepo repositories.AuditRepository
	metrics   *metrics.Metrics
}

// NewAuditService creates a new audit service
func NewAuditService(tx repositories.TxManager, auditRepo repositories.AuditRepository, m *metrics.Metrics) AuditService {
	return &auditService{tx: tx, auditRepo: auditRepo, metrics: m}
}

func (s *auditService) WithAudit(ctx context.Context, changedBy string, fn Mutation) error {
	var recorded *Change
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		change, err := fn(ctx)
		if err != nil {
			return err
		}
		if err := s.Record(ctx, changedBy, change); err != nil {
			return err
		}
		recorded = change
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.AuditEntry(recorded.Table, string(recorded.Action))
	return nil
}

// Record appends one audit entry. Callers outside WithAudit own the transaction.
func (s *auditService) Record(ctx context.Context, changedBy string, change *Change) error {
	if change == nil {
		return errs.Validation("audit change is required")
	}

	entry := &models.AuditLog{
		TableName: change.Table,
		RecordID:  change.RecordID,
		Action:    change.Action,
		ChangedBy: changedBy,
	}

	var err error
	if change.Old != nil {
		if entry.OldValues, err = json.Marshal(change.Old); err != nil {
			return errs.Wrap(err, "failed to encode audit old values")
		}
	}
	if entry.NewValues, err = json.Marshal(change.New); err != nil {
		return errs.Wrap(err, "failed to encode audit new values")
	}

	return s.auditRepo.Create(ctx, entry)
}

// ListRecent returns the latest audit entries, newest first
func (s *auditService) ListRecent(ctx context.Context, p models.Principal) ([]models.AuditLogDetail, error) {
	if err := authorize(p, access.ReadAudit); err != nil {
		return nil, err
	}
	return s.auditRepo.ListRecent(ctx, RecentAuditLimit)
}

// ListByRecord returns the history of one defect log or CAPA, oldest first
func (s *auditService) ListByRecord(ctx context.Context, p models.Principal, table, recordID string) ([]models.AuditLogDetail, error) {
	if err := authorize(p, access.ReadAudit); err != nil {
		return nil, err
	}
	if table != models.TableDefectLogs && table != models.TableCapa {
		return nil, errs.Validation("unknown audited table", errs.FieldError{Field: "table", Message: "must be defect_logs or capa"})
	}
	return s.auditRepo.ListByRecord(ctx, table, recordID)
}
