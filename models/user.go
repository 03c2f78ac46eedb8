package models

import (
	"time"
)

// Role is the authorization role carried by a user and its principal.
type Role string

const (
	RoleOperator   Role = "Operator"
	RoleQuality    Role = "Quality"
	RoleSupervisor Role = "Supervisor"
	RoleEngineer   Role = "Engineer"
	RoleAdmin      Role = "Admin"
)

// Roles lists every known role.
var Roles = []Role{RoleOperator, RoleQuality, RoleSupervisor, RoleEngineer, RoleAdmin}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// User is a person who logs defects or works on their disposition.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Principal is the authenticated caller of an operation.
type Principal struct {
	UserID string `json:"id"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
}

// PrincipalOf builds the principal for a stored user.
func PrincipalOf(u *User) Principal {
	return Principal{UserID: u.ID, Name: u.Name, Role: u.Role}
}

// UserRef is the display projection of a user joined onto other records.
type UserRef struct {
	Name string `json:"name"`
}

// UserSummary adds the role to UserRef, used by the audit listing.
type UserSummary struct {
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// LoginForm is the body of a password login.
type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Validate validates the login form.
func (f *LoginForm) Validate() error {
	return validateStruct(f)
}
