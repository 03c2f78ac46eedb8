// Package access decides which roles may invoke which operations.
//
// Authorize is pure and consulted before any storage access, so a denied
// request never has side effects.
package access

import (
	"github.com/blogem/defect-tracker/models"
)

// Operation names a gated capability.
type Operation string

const (
	CreateDefect    Operation = "defect:create"
	ReadDefects     Operation = "defect:read"
	ReadReference   Operation = "reference:read"
	UpdateDefect    Operation = "defect:update"
	CreateCapa      Operation = "capa:create"
	UpdateCapa      Operation = "capa:update"
	ReadCapa        Operation = "capa:read"
	ReadAudit       Operation = "audit:read"
	ReadAnalytics   Operation = "analytics:read"
	SeedDemo        Operation = "seed:demo"
	ReadOwnIdentity Operation = "identity:read"
)

// anyRole marks operations open to every authenticated principal.
var anyRole = []models.Role(nil)

var policy = map[Operation][]models.Role{
	CreateDefect:    anyRole,
	ReadDefects:     anyRole,
	ReadReference:   anyRole,
	ReadCapa:        anyRole,
	ReadAnalytics:   anyRole,
	ReadOwnIdentity: anyRole,
	UpdateDefect:    {models.RoleQuality, models.RoleSupervisor, models.RoleEngineer, models.RoleAdmin},
	CreateCapa:      {models.RoleEngineer, models.RoleQuality, models.RoleAdmin},
	UpdateCapa:      {models.RoleEngineer, models.RoleQuality, models.RoleAdmin},
	ReadAudit:       {models.RoleAdmin, models.RoleQuality, models.RoleSupervisor},
	SeedDemo:        {models.RoleAdmin},
}

// Authorize reports whether role may perform op. Unknown roles and unknown
// operations are always denied.
func Authorize(role models.Role, op Operation) bool {
	if !role.Valid() {
		return false
	}
	allowed, known := policy[op]
	if !known {
		return false
	}
	if allowed == nil {
		return true
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// AllowedRoles returns the roles that may perform op; nil means every role.
func AllowedRoles(op Operation) []models.Role {
	return policy[op]
}
