package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/blogem/defect-tracker/errs"
	"github.com/blogem/defect-tracker/models"
)

// CapaRepository interface defines CAPA database operations
type CapaRepository interface {
	GetByID(ctx context.Context, id string) (*models.Capa, error)
	GetByDefect(ctx context.Context, defectLogID string) (*models.CapaDetail, error)
	Create(ctx context.Context, capa *models.Capa) error
	Update(ctx context.Context, capa *models.Capa) error
	DeleteAll(ctx context.Context) error
}

type capaRepository struct {
	db *sql.DB
}

// NewCapaRepository creates a new CAPA repository
func NewCapaRepository(db *sql.DB) CapaRepository {
	return &capaRepository{db: db}
}

const capaColumns = `c.id, c.defect_log_id, c.root_cause_category,
	c.why1, c.why2, c.why3, c.why4, c.why5,
	c.corrective_action, c.assignee_id, c.due_date, c.status, c.created_at, c.updated_at`

func scanCapa(s scanner, extra ...any) (*models.Capa, error) {
	var c models.Capa
	var status string
	var whys [5]sql.NullString
	var assigneeID sql.NullString
	var dueDate sql.NullTime

	dest := append([]any{
		&c.ID, &c.DefectLogID, &c.RootCauseCategory,
		&whys[0], &whys[1], &whys[2], &whys[3], &whys[4],
		&c.CorrectiveAction, &assigneeID, &dueDate, &status, &c.CreatedAt, &c.UpdatedAt,
	}, extra...)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}

	// Convert NULL values to empty string/nil
	c.Why1, c.Why2, c.Why3, c.Why4, c.Why5 = whys[0].String, whys[1].String, whys[2].String, whys[3].String, whys[4].String
	c.AssigneeID = assigneeID.String
	if dueDate.Valid {
		c.DueDate = &dueDate.Time
	}
	c.Status = models.CapaStatus(status)
	return &c, nil
}

// GetByID retrieves a CAPA by ID
func (r *capaRepository) GetByID(ctx context.Context, id string) (*models.Capa, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+capaColumns+` FROM capa c WHERE c.id = ?`, id)
	capa, err := scanCapa(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("capa %s not found", id)
	}
	if err != nil {
		return nil, storeError(err, "failed to get capa")
	}
	return capa, nil
}

// GetByDefect retrieves the CAPA for a defect log with its assignee's name.
// It returns nil, nil when the defect has no CAPA.
func (r *capaRepository) GetByDefect(ctx context.Context, defectLogID string) (*models.CapaDetail, error) {
	var assigneeName sql.NullString
	row := conn(ctx, r.db).QueryRowContext(ctx, `
		SELECT `+capaColumns+`, u.name
		FROM capa c
		LEFT JOIN users u ON u.id = c.assignee_id
		WHERE c.defect_log_id = ?`,
		defectLogID,
	)

	capa, err := scanCapa(row, &assigneeName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError(err, "failed to get capa by defect")
	}

	detail := &models.CapaDetail{Capa: *capa}
	if assigneeName.Valid {
		detail.Assignee = &models.UserRef{Name: assigneeName.String}
	}
	return detail, nil
}

// Create inserts a new CAPA
func (r *capaRepository) Create(ctx context.Context, capa *models.Capa) error {
	if capa.ID == "" {
		capa.ID = uuid.NewString()
	}
	if capa.CreatedAt.IsZero() {
		capa.CreatedAt = time.Now()
	}
	capa.CreatedAt = utc(capa.CreatedAt)
	capa.UpdatedAt = capa.CreatedAt

	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO capa (id, defect_log_id, root_cause_category, why1, why2, why3, why4, why5,
			corrective_action, assignee_id, due_date, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		capa.ID, capa.DefectLogID, capa.RootCauseCategory,
		nullString(capa.Why1), nullString(capa.Why2), nullString(capa.Why3), nullString(capa.Why4), nullString(capa.Why5),
		capa.CorrectiveAction, nullString(capa.AssigneeID), nullTime(capa.DueDate), string(capa.Status),
		capa.CreatedAt, capa.UpdatedAt,
	)
	return storeError(err, "failed to create capa")
}

// Update writes the mutable fields of a CAPA
func (r *capaRepository) Update(ctx context.Context, capa *models.Capa) error {
	now := utc(time.Now())

	result, err := conn(ctx, r.db).ExecContext(ctx, `
		UPDATE capa
		SET status = ?, corrective_action = ?, root_cause_category = ?,
		    why1 = ?, why2 = ?, why3 = ?, why4 = ?, why5 = ?, updated_at = ?
		WHERE id = ?`,
		string(capa.Status), capa.CorrectiveAction, capa.RootCauseCategory,
		nullString(capa.Why1), nullString(capa.Why2), nullString(capa.Why3), nullString(capa.Why4), nullString(capa.Why5),
		now, capa.ID,
	)
	if err != nil {
		return storeError(err, "failed to update capa")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storeError(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return errs.NotFound("capa %s not found", capa.ID)
	}

	capa.UpdatedAt = now
	return nil
}

// DeleteAll removes every CAPA. Only used by the demo reset.
func (r *capaRepository) DeleteAll(ctx context.Context) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM capa`)
	return storeError(err, "failed to delete capa records")
}
