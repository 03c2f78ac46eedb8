package models

import (
	"fmt"
	"time"
)

// CapaStatus is the state of a corrective and preventive action.
type CapaStatus string

const (
	CapaOpen   CapaStatus = "Open"
	CapaClosed CapaStatus = "Closed"
)

// Valid reports whether s is a known CAPA status.
func (s CapaStatus) Valid() bool {
	return s == CapaOpen || s == CapaClosed
}

// Capa is the root-cause and corrective-action record for one defect log.
type Capa struct {
	ID                string     `json:"id"`
	DefectLogID       string     `json:"defectLogId"`
	RootCauseCategory string     `json:"rootCauseCategory"`
	Why1              string     `json:"why1"`
	Why2              string     `json:"why2"`
	Why3              string     `json:"why3"`
	Why4              string     `json:"why4"`
	Why5              string     `json:"why5"`
	CorrectiveAction  string     `json:"correctiveAction"`
	AssigneeID        string     `json:"assigneeId,omitempty"`
	DueDate           *time.Time `json:"dueDate"`
	Status            CapaStatus `json:"status"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// CapaDetail is a CAPA joined with its assignee's display name.
type CapaDetail struct {
	Capa
	Assignee *UserRef `json:"assignee"`
}

// dueDateLayouts are accepted for CreateCapaForm.DueDate.
var dueDateLayouts = []string{time.RFC3339, "2006-01-02"}

// CreateCapaForm opens a CAPA against a defect. Status is not accepted; a new CAPA is always Open.
type CreateCapaForm struct {
	DefectLogID       string `json:"defectLogId" validate:"required"`
	RootCauseCategory string `json:"rootCauseCategory" validate:"max=100"`
	Why1              string `json:"why1" validate:"max=1000"`
	Why2              string `json:"why2" validate:"max=1000"`
	Why3              string `json:"why3" validate:"max=1000"`
	Why4              string `json:"why4" validate:"max=1000"`
	Why5              string `json:"why5" validate:"max=1000"`
	CorrectiveAction  string `json:"correctiveAction" validate:"max=2000"`
	AssigneeID        string `json:"assigneeId"`
	DueDate           string `json:"dueDate"`
}

// Validate validates the create form, including the due date format.
func (f *CreateCapaForm) Validate() error {
	if err := validateStruct(f); err != nil {
		return err
	}
	if _, err := f.ParsedDueDate(); err != nil {
		return fieldError("dueDate", err.Error())
	}
	return nil
}

// ParsedDueDate returns the due date, or nil when none was given.
func (f *CreateCapaForm) ParsedDueDate() (*time.Time, error) {
	if f.DueDate == "" {
		return nil, nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, f.DueDate); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("dueDate %q must be RFC3339 or YYYY-MM-DD", f.DueDate)
}

// UpdateCapaForm changes a CAPA. Nil fields are left unchanged.
type UpdateCapaForm struct {
	Status            *CapaStatus `json:"status" validate:"omitempty,capa_status"`
	CorrectiveAction  *string     `json:"correctiveAction" validate:"omitempty,max=2000"`
	RootCauseCategory *string     `json:"rootCauseCategory" validate:"omitempty,max=100"`
	Why1              *string     `json:"why1" validate:"omitempty,max=1000"`
	Why2              *string     `json:"why2" validate:"omitempty,max=1000"`
	Why3              *string     `json:"why3" validate:"omitempty,max=1000"`
	Why4              *string     `json:"why4" validate:"omitempty,max=1000"`
	Why5              *string     `json:"why5" validate:"omitempty,max=1000"`
}

// Validate validates the update form.
func (f *UpdateCapaForm) Validate() error {
	return validateStruct(f)
}

// Apply copies the supplied fields onto c.
func (f *UpdateCapaForm) Apply(c *Capa) {
	if f.Status != nil {
		c.Status = *f.Status
	}
	setIfPresent(&c.CorrectiveAction, f.CorrectiveAction)
	setIfPresent(&c.RootCauseCategory, f.RootCauseCategory)
	setIfPresent(&c.Why1, f.Why1)
	setIfPresent(&c.Why2, f.Why2)
	setIfPresent(&c.Why3, f.Why3)
	setIfPresent(&c.Why4, f.Why4)
	setIfPresent(&c.Why5, f.Why5)
}

func setIfPresent(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
