package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blogem/defect-tracker/models"
)

func TestAuthorizeMatrix(t *testing.T) {
	const (
		op = models.RoleOperator
		qa = models.RoleQuality
		sv = models.RoleSupervisor
		en = models.RoleEngineer
		ad = models.RoleAdmin
	)

	cases := []struct {
		op      Operation
		allowed []models.Role
	}{
		{CreateDefect, []models.Role{op, qa, sv, en, ad}},
		{ReadDefects, []models.Role{op, qa, sv, en, ad}},
		{ReadReference, []models.Role{op, qa, sv, en, ad}},
		{ReadCapa, []models.Role{op, qa, sv, en, ad}},
		{ReadAnalytics, []models.Role{op, qa, sv, en, ad}},
		{UpdateDefect, []models.Role{qa, sv, en, ad}},
		{CreateCapa, []models.Role{en, qa, ad}},
		{UpdateCapa, []models.Role{en, qa, ad}},
		{ReadAudit, []models.Role{ad, qa, sv}},
		{SeedDemo, []models.Role{ad}},
	}

	for _, tc := range cases {
		t.Run(string(tc.op), func(t *testing.T) {
			allowed := map[models.Role]bool{}
			for _, r := range tc.allowed {
				allowed[r] = true
			}
			for _, role := range models.Roles {
				assert.Equal(t, allowed[role], Authorize(role, tc.op), "role %s", role)
			}
		})
	}
}

func TestAuthorizeDeniesUnknowns(t *testing.T) {
	assert.False(t, Authorize(models.Role("Guest"), ReadDefects))
	assert.False(t, Authorize(models.Role(""), CreateDefect))
	assert.False(t, Authorize(models.RoleAdmin, Operation("defect:delete")))
}

func TestAllowedRoles(t *testing.T) {
	assert.Nil(t, AllowedRoles(CreateDefect))
	assert.ElementsMatch(t, []models.Role{models.RoleAdmin, models.RoleQuality, models.RoleSupervisor}, AllowedRoles(ReadAudit))
}
