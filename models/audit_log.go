package models

import (
	"encoding/json"
	"time"
)

// AuditAction is the kind of mutation an audit entry records.
type AuditAction string

const (
	AuditInsert AuditAction = "INSERT"
	AuditUpdate AuditAction = "UPDATE"
)

// Logical table names recorded in AuditLog.TableName.
const (
	TableDefectLogs = "defect_logs"
	TableCapa       = "capa"
)

// AuditLog is one append-only before/after record of a data mutation.
// OldValues is null for inserts.
type AuditLog struct {
	ID        string          `json:"id"`
	TableName string          `json:"tableName"`
	RecordID  string          `json:"recordId"`
	Action    AuditAction     `json:"action"`
	ChangedBy string          `json:"changedBy"`
	OldValues json.RawMessage `json:"oldValues"`
	NewValues json.RawMessage `json:"newValues"`
	Timestamp time.Time       `json:"timestamp"`
}

// AuditLogDetail is an audit entry joined with the acting user.
type AuditLogDetail struct {
	AuditLog
	User UserSummary `json:"user"`
}
