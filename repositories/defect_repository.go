package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/blogem/defect-tracker/errs"
	"github.com/blogem/defect-tracker/models"
)

// TypeQuantity is the summed quantity for one defect type.
type TypeQuantity struct {
	DefectTypeID string
	Quantity     int
}

// DefectRepository interface defines defect log database operations
type DefectRepository interface {
	GetByID(ctx context.Context, id string) (*models.DefectLog, error)
	List(ctx context.Context, filter models.DefectFilter) ([]models.DefectLogDetail, error)
	Create(ctx context.Context, defect *models.DefectLog) error
	Update(ctx context.Context, defect *models.DefectLog) error
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status models.DefectStatus) (int, error)
	SumScrapQuantity(ctx context.Context) (int, error)
	SumQuantityByTypeSince(ctx context.Context, since time.Time) ([]TypeQuantity, error)
	DeleteAll(ctx context.Context) error
}

type defectRepository struct {
	db *sql.DB
}

// NewDefectRepository creates a new defect log repository
func NewDefectRepository(db *sql.DB) DefectRepository {
	return &defectRepository{db: db}
}

const defectColumns = `d.id, d.timestamp, d.machine_id, d.defect_type_id, d.operator_id,
	d.quantity, d.status, d.disposition, d.notes, d.image_url, d.station, d.updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanDefect(s scanner, extra ...any) (*models.DefectLog, error) {
	var d models.DefectLog
	var status string
	var disposition, imageURL sql.NullString

	dest := append([]any{
		&d.ID, &d.Timestamp, &d.MachineID, &d.DefectTypeID, &d.OperatorID,
		&d.Quantity, &status, &disposition, &d.Notes, &imageURL, &d.Station, &d.UpdatedAt,
	}, extra...)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}

	// Convert NULL values to empty strings
	d.Status = models.DefectStatus(status)
	d.Disposition = models.Disposition(disposition.String)
	d.ImageURL = imageURL.String
	return &d, nil
}

// GetByID retrieves a defect log by ID
func (r *defectRepository) GetByID(ctx context.Context, id string) (*models.DefectLog, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+defectColumns+` FROM defect_logs d WHERE d.id = ?`, id)
	defect, err := scanDefect(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("defect log %s not found", id)
	}
	if err != nil {
		return nil, storeError(err, "failed to get defect log")
	}
	return defect, nil
}

// List retrieves defect logs matching filter, joined with machine, type and operator, newest first
func (r *defectRepository) List(ctx context.Context, filter models.DefectFilter) ([]models.DefectLogDetail, error) {
	var conditions []string
	var args []any

	if filter.Status != "" {
		conditions = append(conditions, "d.status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.MachineID != "" {
		conditions = append(conditions, "d.machine_id = ?")
		args = append(args, filter.MachineID)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, "d.timestamp >= ?")
		args = append(args, utc(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		conditions = append(conditions, "d.timestamp <= ?")
		args = append(args, utc(*filter.DateTo))
	}

	query := `
		SELECT ` + defectColumns + `,
		       m.id, m.name, m.location, m.status,
		       t.id, t.category, t.code, t.description,
		       u.name
		FROM defect_logs d
		JOIN machines m ON m.id = d.machine_id
		JOIN defect_types t ON t.id = d.defect_type_id
		JOIN users u ON u.id = d.operator_id`
	if len(conditions) > 0 {
		query += "\n\t\tWHERE " + strings.Join(conditions, " AND ")
	}
	query += "\n\t\tORDER BY d.timestamp DESC"

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeError(err, "failed to query defect logs")
	}
	defer rows.Close()

	defects := []models.DefectLogDetail{}
	for rows.Next() {
		var detail models.DefectLogDetail
		m, t := &detail.Machine, &detail.DefectType
		defect, err := scanDefect(rows,
			&m.ID, &m.Name, &m.Location, &m.Status,
			&t.ID, &t.Category, &t.Code, &t.Description,
			&detail.Operator.Name,
		)
		if err != nil {
			return nil, storeError(err, "failed to scan defect log")
		}
		detail.DefectLog = *defect
		defects = append(defects, detail)
	}

	if err := rows.Err(); err != nil {
		return nil, storeError(err, "error iterating defect logs")
	}
	return defects, nil
}

// Create inserts a new defect log
func (r *defectRepository) Create(ctx context.Context, defect *models.DefectLog) error {
	if defect.ID == "" {
		defect.ID = uuid.NewString()
	}
	if defect.Timestamp.IsZero() {
		defect.Timestamp = time.Now()
	}
	defect.Timestamp = utc(defect.Timestamp)
	defect.UpdatedAt = defect.Timestamp

	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO defect_logs (id, timestamp, machine_id, defect_type_id, operator_id,
			quantity, status, disposition, notes, image_url, station, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		defect.ID, defect.Timestamp, defect.MachineID, defect.DefectTypeID, defect.OperatorID,
		defect.Quantity, string(defect.Status), nullString(string(defect.Disposition)),
		defect.Notes, nullString(defect.ImageURL), defect.Station, defect.UpdatedAt,
	)
	return storeError(err, "failed to create defect log")
}

// Update writes the mutable fields of a defect log. Timestamp and operator are never rewritten.
func (r *defectRepository) Update(ctx context.Context, defect *models.DefectLog) error {
	now := utc(time.Now())

	result, err := conn(ctx, r.db).ExecContext(ctx, `
		UPDATE defect_logs
		SET status = ?, disposition = ?, notes = ?, quantity = ?, updated_at = ?
		WHERE id = ?`,
		string(defect.Status), nullString(string(defect.Disposition)), defect.Notes, defect.Quantity, now,
		defect.ID,
	)
	if err != nil {
		return storeError(err, "failed to update defect log")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storeError(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return errs.NotFound("defect log %s not found", defect.ID)
	}

	defect.UpdatedAt = now
	return nil
}

// Count returns the total number of defect logs
func (r *defectRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := conn(ctx, r.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM defect_logs`).Scan(&count); err != nil {
		return 0, storeError(err, "failed to count defect logs")
	}
	return count, nil
}

// CountByStatus returns the number of defect logs in the given status
func (r *defectRepository) CountByStatus(ctx context.Context, status models.DefectStatus) (int, error) {
	var count int
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM defect_logs WHERE status = ?`, string(status),
	).Scan(&count)
	if err != nil {
		return 0, storeError(err, "failed to count defect logs by status")
	}
	return count, nil
}

// SumScrapQuantity sums quantity over scrapped defects: an explicit Scrap
// disposition, or notes mentioning scrap in any letter case.
func (r *defectRepository) SumScrapQuantity(ctx context.Context) (int, error) {
	var sum int
	err := conn(ctx, r.db).QueryRowContext(ctx, `
		SELECT COALESCE(SUM(quantity), 0)
		FROM defect_logs
		WHERE disposition = ? OR LOWER(notes) LIKE '%scrap%'`,
		string(models.DispositionScrap),
	).Scan(&sum)
	if err != nil {
		return 0, storeError(err, "failed to sum scrap quantity")
	}
	return sum, nil
}

// SumQuantityByTypeSince groups defect logs at or after since by type and sums their quantity
func (r *defectRepository) SumQuantityByTypeSince(ctx context.Context, since time.Time) ([]TypeQuantity, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, `
		SELECT defect_type_id, SUM(quantity)
		FROM defect_logs
		WHERE timestamp >= ?
		GROUP BY defect_type_id`,
		utc(since),
	)
	if err != nil {
		return nil, storeError(err, "failed to group defect logs by type")
	}
	defer rows.Close()

	groups := []TypeQuantity{}
	for rows.Next() {
		var g TypeQuantity
		if err := rows.Scan(&g.DefectTypeID, &g.Quantity); err != nil {
			return nil, storeError(err, "failed to scan defect type group")
		}
		groups = append(groups, g)
	}

	if err := rows.Err(); err != nil {
		return nil, storeError(err, "error iterating defect type groups")
	}
	return groups, nil
}

// DeleteAll removes every defect log. Only used by the demo reset.
func (r *defectRepository) DeleteAll(ctx context.Context) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM defect_logs`)
	return storeError(err, "failed to delete defect logs")
}
