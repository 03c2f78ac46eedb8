package repositories

import (
	"database/sql"
)

// Repositories struct holds all repository interfaces
type Repositories struct {
	Tx          TxManager
	Users       UserRepository
	Machines    MachineRepository
	DefectTypes DefectTypeRepository
	Defects     DefectRepository
	Capa        CapaRepository
	Audit       AuditRepository
}

// NewRepositories creates and initializes all repositories
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Tx:          NewTxManager(db),
		Users:       NewUserRepository(db),
		Machines:    NewMachineRepository(db),
		DefectTypes: NewDefectTypeRepository(db),
		Defects:     NewDefectRepository(db),
		Capa:        NewCapaRepository(db),
		Audit:       NewAuditRepository(db),
	}
}
