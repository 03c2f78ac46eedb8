package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/blogem/defect-tracker/models"
)

// AuditRepository handles audit log persistence. Entries are append-only.
type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	ListRecent(ctx context.Context, limit int) ([]models.AuditLogDetail, error)
	ListByRecord(ctx context.Context, tableName, recordID string) ([]models.AuditLogDetail, error)
	DeleteAll(ctx context.Context) error
}

type sqliteAuditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sql.DB) AuditRepository {
	return &sqliteAuditRepository{db: db}
}

// Create inserts a new audit log entry
func (r *sqliteAuditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	entry.Timestamp = utc(entry.Timestamp)

	var oldValues sql.NullString
	if len(entry.OldValues) > 0 {
		oldValues = sql.NullString{String: string(entry.OldValues), Valid: true}
	}

	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO audit_logs (id, table_name, record_id, action, changed_by, old_values, new_values, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.TableName, entry.RecordID, string(entry.Action), entry.ChangedBy,
		oldValues, string(entry.NewValues), entry.Timestamp,
	)
	return storeError(err, "failed to create audit log")
}

// ListRecent returns the newest entries first, joined with the acting user
func (r *sqliteAuditRepository) ListRecent(ctx context.Context, limit int) ([]models.AuditLogDetail, error) {
	return r.query(ctx, `
		SELECT a.id, a.table_name, a.record_id, a.action, a.changed_by, a.old_values, a.new_values, a.timestamp,
		       u.name, u.role
		FROM audit_logs a
		JOIN users u ON u.id = a.changed_by
		ORDER BY a.timestamp DESC, a.rowid DESC
		LIMIT ?`, limit)
}

// ListByRecord returns the full history of one record, oldest first
func (r *sqliteAuditRepository) ListByRecord(ctx context.Context, tableName, recordID string) ([]models.AuditLogDetail, error) {
	return r.query(ctx, `
		SELECT a.id, a.table_name, a.record_id, a.action, a.changed_by, a.old_values, a.new_values, a.timestamp,
		       u.name, u.role
		FROM audit_logs a
		JOIN users u ON u.id = a.changed_by
		WHERE a.table_name = ? AND a.record_id = ?
		ORDER BY a.timestamp ASC, a.rowid ASC`, tableName, recordID)
}

// DeleteAll removes the audit trail. Only used by the demo reset.
func (r *sqliteAuditRepository) DeleteAll(ctx context.Context) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM audit_logs`)
	return storeError(err, "failed to delete audit logs")
}

func (r *sqliteAuditRepository) query(ctx context.Context, query string, args ...any) ([]models.AuditLogDetail, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeError(err, "failed to query audit logs")
	}
	defer rows.Close()

	entries := []models.AuditLogDetail{}
	for rows.Next() {
		var e models.AuditLogDetail
		var action, role string
		var oldValues sql.NullString
		var newValues string

		err := rows.Scan(
			&e.ID, &e.TableName, &e.RecordID, &action, &e.ChangedBy, &oldValues, &newValues, &e.Timestamp,
			&e.User.Name, &role,
		)
		if err != nil {
			return nil, storeError(err, "failed to scan audit log")
		}

		e.Action = models.AuditAction(action)
		e.User.Role = models.Role(role)
		if oldValues.Valid {
			e.OldValues = []byte(oldValues.String)
		}
		e.NewValues = []byte(newValues)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, storeError(err, "error iterating audit logs")
	}
	return entries, nil
}
