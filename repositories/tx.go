package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/blogem/defect-tracker/errs"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxManager runs a unit of work in a single storage transaction.
type TxManager interface {
	// WithTx commits when fn returns nil and rolls back otherwise.
	// Calls nested inside an open transaction join it.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

type sqliteTxManager struct {
	db *sql.DB
}

// NewTxManager creates a transaction manager over db
func NewTxManager(db *sql.DB) TxManager {
	return &sqliteTxManager{db: db}
}

func (m *sqliteTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Store(err, "failed to begin transaction")
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, errs.Store(rbErr, "failed to roll back transaction"))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return errs.Store(err, "failed to commit transaction")
	}
	return nil
}

// conn returns the transaction carried by ctx, or db when there is none.
func conn(ctx context.Context, db *sql.DB) DBTX {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

// storeError categorizes a driver error. Constraint violations are caller
// mistakes; everything else is a (retryable) storage failure.
func storeError(err error, msg string) error {
	if err == nil {
		return nil
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return &errs.Error{Kind: errs.KindConflict, Message: msg + ": record already exists", Err: err}
		case sqlite3.ErrConstraintForeignKey:
			return &errs.Error{Kind: errs.KindValidation, Message: msg + ": referenced record does not exist", Err: err}
		default:
			return &errs.Error{Kind: errs.KindValidation, Message: msg + ": constraint violated", Err: err}
		}
	}

	return errs.Store(err, msg)
}

// utc normalizes times before they are written so stored values sort lexically.
func utc(t time.Time) time.Time {
	return t.UTC()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
