package repositories

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/blogem/defect-tracker/models"
)

// MachineRepository interface defines machine database operations
type MachineRepository interface {
	GetAll(ctx context.Context) ([]models.Machine, error)
	Create(ctx context.Context, machine *models.Machine) error
	DeleteAll(ctx context.Context) error
}

type machineRepository struct {
	db *sql.DB
}

// NewMachineRepository creates a new machine repository
func NewMachineRepository(db *sql.DB) MachineRepository {
	return &machineRepository{db: db}
}

// GetAll retrieves all machines ordered by name
func (r *machineRepository) GetAll(ctx context.Context) ([]models.Machine, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, `
		SELECT id, name, location, status
		FROM machines
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, storeError(err, "failed to query machines")
	}
	defer rows.Close()

	machines := []models.Machine{}
	for rows.Next() {
		var m models.Machine
		if err := rows.Scan(&m.ID, &m.Name, &m.Location, &m.Status); err != nil {
			return nil, storeError(err, "failed to scan machine")
		}
		machines = append(machines, m)
	}

	if err := rows.Err(); err != nil {
		return nil, storeError(err, "error iterating machines")
	}
	return machines, nil
}

// Create inserts a new machine
func (r *machineRepository) Create(ctx context.Context, machine *models.Machine) error {
	if machine.ID == "" {
		machine.ID = uuid.NewString()
	}
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO machines (id, name, location, status) VALUES (?, ?, ?, ?)`,
		machine.ID, machine.Name, machine.Location, machine.Status,
	)
	return storeError(err, "failed to create machine")
}

// DeleteAll removes every machine. Only used by the demo reset.
func (r *machineRepository) DeleteAll(ctx context.Context) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM machines`)
	return storeError(err, "failed to delete machines")
}

// DefectTypeRepository interface defines defect type database operations
type DefectTypeRepository interface {
	GetAll(ctx context.Context) ([]models.DefectType, error)
	Create(ctx context.Context, defectType *models.DefectType) error
	DeleteAll(ctx context.Context) error
}

type defectTypeRepository struct {
	db *sql.DB
}

// NewDefectTypeRepository creates a new defect type repository
func NewDefectTypeRepository(db *sql.DB) DefectTypeRepository {
	return &defectTypeRepository{db: db}
}

// GetAll retrieves all defect types ordered by category
func (r *defectTypeRepository) GetAll(ctx context.Context) ([]models.DefectType, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, `
		SELECT id, category, code, description
		FROM defect_types
		ORDER BY category ASC, code ASC
	`)
	if err != nil {
		return nil, storeError(err, "failed to query defect types")
	}
	defer rows.Close()

	types := []models.DefectType{}
	for rows.Next() {
		var dt models.DefectType
		if err := rows.Scan(&dt.ID, &dt.Category, &dt.Code, &dt.Description); err != nil {
			return nil, storeError(err, "failed to scan defect type")
		}
		types = append(types, dt)
	}

	if err := rows.Err(); err != nil {
		return nil, storeError(err, "error iterating defect types")
	}
	return types, nil
}

// Create inserts a new defect type
func (r *defectTypeRepository) Create(ctx context.Context, defectType *models.DefectType) error {
	if defectType.ID == "" {
		defectType.ID = uuid.NewString()
	}
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO defect_types (id, category, code, description) VALUES (?, ?, ?, ?)`,
		defectType.ID, defectType.Category, defectType.Code, defectType.Description,
	)
	return storeError(err, "failed to create defect type")
}

// DeleteAll removes every defect type. Only used by the demo reset.
func (r *defectTypeRepository) DeleteAll(ctx context.Context) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM defect_types`)
	return storeError(err, "failed to delete defect types")
}
