package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogem/defect-tracker/errs"
)

func ptr[T any](v T) *T { return &v }

// Test CreateDefectForm validation
func TestCreateDefectFormValidation(t *testing.T) {
	valid := CreateDefectForm{MachineID: "m1", DefectTypeID: "t1", Quantity: 3, Station: "Station 4"}
	assert.NoError(t, valid.Validate())

	invalid := CreateDefectForm{Quantity: 0, ImageURL: "not a url"}
	err := invalid.Validate()
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	fields := map[string]bool{}
	for _, f := range errs.PublicFields(err) {
		fields[f.Field] = true
	}
	assert.True(t, fields["machineId"])
	assert.True(t, fields["defectTypeId"])
	assert.True(t, fields["quantity"])
	assert.True(t, fields["imageUrl"])
}

// Test UpdateDefectForm validation
func TestUpdateDefectFormValidation(t *testing.T) {
	assert.NoError(t, (&UpdateDefectForm{}).Validate())
	assert.NoError(t, (&UpdateDefectForm{Status: ptr(StatusUnderReview), Quantity: ptr(2)}).Validate())
	assert.NoError(t, (&UpdateDefectForm{Disposition: ptr(DispositionUseAsIs)}).Validate())

	err := (&UpdateDefectForm{Status: ptr(DefectStatus("Destroyed"))}).Validate()
	assert.ErrorContains(t, err, "status must be one of")

	err = (&UpdateDefectForm{Quantity: ptr(0)}).Validate()
	assert.ErrorContains(t, err, "quantity must be at least 1")

	err = (&UpdateDefectForm{Disposition: ptr(Disposition("Burn"))}).Validate()
	assert.ErrorContains(t, err, "disposition must be one of")
}

func TestUpdateDefectFormApply(t *testing.T) {
	base := DefectLog{Status: StatusOpen, Notes: "initial", Quantity: 3, Station: "S1"}

	// Omitted fields are left untouched.
	d := base
	(&UpdateDefectForm{Notes: ptr("re-inspected")}).Apply(&d)
	assert.Equal(t, StatusOpen, d.Status)
	assert.Equal(t, 3, d.Quantity)
	assert.Equal(t, "re-inspected", d.Notes)

	// Disposition implies a status when none is given.
	d = base
	(&UpdateDefectForm{Disposition: ptr(DispositionRework)}).Apply(&d)
	assert.Equal(t, StatusContained, d.Status)
	assert.Equal(t, DispositionRework, d.Disposition)

	d = base
	(&UpdateDefectForm{Disposition: ptr(DispositionScrap)}).Apply(&d)
	assert.Equal(t, StatusClosed, d.Status)

	// An explicit status wins over the implied one.
	d = base
	(&UpdateDefectForm{Disposition: ptr(DispositionScrap), Status: ptr(StatusUnderReview)}).Apply(&d)
	assert.Equal(t, StatusUnderReview, d.Status)
}

func TestCreateCapaFormDueDate(t *testing.T) {
	f := CreateCapaForm{DefectLogID: "d1", DueDate: "2026-11-01"}
	require.NoError(t, f.Validate())
	due, err := f.ParsedDueDate()
	require.NoError(t, err)
	require.NotNil(t, due)
	assert.Equal(t, 2026, due.Year())

	f.DueDate = "2026-11-01T10:00:00Z"
	assert.NoError(t, f.Validate())

	f.DueDate = "next tuesday"
	assert.ErrorContains(t, f.Validate(), "dueDate")

	f = CreateCapaForm{}
	assert.ErrorContains(t, f.Validate(), "defectLogId is required")
}

func TestUpdateCapaFormApply(t *testing.T) {
	c := Capa{Status: CapaOpen, Why1: "fixture worn", CorrectiveAction: "replace fixture"}
	form := UpdateCapaForm{Status: ptr(CapaClosed), Why2: ptr("no PM schedule")}
	require.NoError(t, form.Validate())
	form.Apply(&c)

	assert.Equal(t, CapaClosed, c.Status)
	assert.Equal(t, "fixture worn", c.Why1)
	assert.Equal(t, "no PM schedule", c.Why2)
	assert.Equal(t, "replace fixture", c.CorrectiveAction)

	assert.Error(t, (&UpdateCapaForm{Status: ptr(CapaStatus("Done"))}).Validate())
}

func TestRoleAndStatusValidity(t *testing.T) {
	for _, r := range Roles {
		assert.True(t, r.Valid())
	}
	assert.False(t, Role("Guest").Valid())
	assert.True(t, StatusUnderReview.Valid())
	assert.False(t, DefectStatus("open").Valid())
}

func TestLoginFormValidation(t *testing.T) {
	assert.NoError(t, (&LoginForm{Email: "op1@factory.com", Password: "password"}).Validate())
	assert.Error(t, (&LoginForm{Email: "op1", Password: ""}).Validate())
}
