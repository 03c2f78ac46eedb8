package models

import (
	"time"
)

// DefectStatus is the lifecycle state of a defect log.
type DefectStatus string

const (
	StatusOpen        DefectStatus = "Open"
	StatusUnderReview DefectStatus = "Under Review"
	StatusContained   DefectStatus = "Contained"
	StatusClosed      DefectStatus = "Closed"
)

// DefectStatuses lists every defect status in lifecycle order.
var DefectStatuses = []DefectStatus{StatusOpen, StatusUnderReview, StatusContained, StatusClosed}

// Valid reports whether s is one of the four lifecycle states.
func (s DefectStatus) Valid() bool {
	for _, known := range DefectStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Disposition is the quality decision taken on a defect.
type Disposition string

const (
	DispositionScrap   Disposition = "Scrap"
	DispositionRework  Disposition = "Rework"
	DispositionUseAsIs Disposition = "Use As Is"
)

// Valid reports whether d is a known disposition code.
func (d Disposition) Valid() bool {
	switch d {
	case DispositionScrap, DispositionRework, DispositionUseAsIs:
		return true
	}
	return false
}

// ImpliedStatus is the status a disposition moves a defect to when none is given.
// Rework keeps the part in containment; scrapping or accepting it closes the defect.
func (d Disposition) ImpliedStatus() DefectStatus {
	if d == DispositionRework {
		return StatusContained
	}
	return StatusClosed
}

// DefectLog is a single recorded manufacturing defect.
// OperatorID and Timestamp are fixed at creation.
type DefectLog struct {
	ID           string       `json:"id"`
	Timestamp    time.Time    `json:"timestamp"`
	MachineID    string       `json:"machineId"`
	DefectTypeID string       `json:"defectTypeId"`
	OperatorID   string       `json:"operatorId"`
	Quantity     int          `json:"quantity"`
	Status       DefectStatus `json:"status"`
	Disposition  Disposition  `json:"disposition,omitempty"`
	Notes        string       `json:"notes"`
	ImageURL     string       `json:"imageUrl,omitempty"`
	Station      string       `json:"station"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// DefectLogDetail is a defect log joined with its machine, type and operator.
type DefectLogDetail struct {
	DefectLog
	Machine    Machine    `json:"machine"`
	DefectType DefectType `json:"defectType"`
	Operator   UserRef    `json:"operator"`
}

// DefectFilter narrows a defect listing. Zero values do not filter.
// DateFrom and DateTo are both inclusive.
type DefectFilter struct {
	Status    DefectStatus
	MachineID string
	DateFrom  *time.Time
	DateTo    *time.Time
}

// CreateDefectForm is the input for logging a new defect. Status is not accepted;
// every defect starts Open.
type CreateDefectForm struct {
	MachineID    string `json:"machineId" validate:"required"`
	Station      string `json:"station" validate:"max=100"`
	DefectTypeID string `json:"defectTypeId" validate:"required"`
	Quantity     int    `json:"quantity" validate:"gte=1"`
	Notes        string `json:"notes" validate:"max=2000"`
	ImageURL     string `json:"imageUrl" validate:"omitempty,url,max=2048"`
}

// Validate validates the create form.
func (f *CreateDefectForm) Validate() error {
	return validateStruct(f)
}

// UpdateDefectForm is a disposition update. Nil fields are left unchanged.
type UpdateDefectForm struct {
	Status      *DefectStatus `json:"status" validate:"omitempty,defect_status"`
	Disposition *Disposition  `json:"disposition" validate:"omitempty,disposition"`
	Notes       *string       `json:"notes" validate:"omitempty,max=2000"`
	Quantity    *int          `json:"quantity" validate:"omitempty,gte=1"`
}

// Validate validates the update form.
func (f *UpdateDefectForm) Validate() error {
	return validateStruct(f)
}

// Apply copies the supplied fields onto d. A disposition without an explicit
// status moves the defect to the disposition's implied status.
func (f *UpdateDefectForm) Apply(d *DefectLog) {
	if f.Disposition != nil {
		d.Disposition = *f.Disposition
		if f.Status == nil {
			d.Status = f.Disposition.ImpliedStatus()
		}
	}
	if f.Status != nil {
		d.Status = *f.Status
	}
	if f.Notes != nil {
		d.Notes = *f.Notes
	}
	if f.Quantity != nil {
		d.Quantity = *f.Quantity
	}
}
