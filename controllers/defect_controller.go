package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/blogem/defect-tracker/errs"
	"github.com/blogem/defect-tracker/middleware"
	"github.com/blogem/defect-tracker/models"
	"github.com/blogem/defect-tracker/services"
)

// DefectController serves the defect log endpoints
type DefectController struct {
	defects services.DefectService
}

func NewDefectController(defects services.DefectService) *DefectController {
	return &DefectController{defects: defects}
}

// Create handles POST /api/defects
func (dc *DefectController) Create(w http.ResponseWriter, r *http.Request) {
	var form models.CreateDefectForm
	if err := decodeJSON(w, r, &form); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	defect, err := dc.defects.Create(r.Context(), principal(r), &form)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, defect)
}

// List handles GET /api/defects
func (dc *DefectController) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseDefectFilter(r)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	defects, err := dc.defects.List(r.Context(), principal(r), filter)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, defects)
}

// Update handles PUT /api/defects/{id}
func (dc *DefectController) Update(w http.ResponseWriter, r *http.Request) {
	var form models.UpdateDefectForm
	if err := decodeJSON(w, r, &form); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	defect, err := dc.defects.Update(r.Context(), principal(r), chi.URLParam(r, "id"), &form)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, defect)
}

// Types handles GET /api/defects/types
func (dc *DefectController) Types(w http.ResponseWriter, r *http.Request) {
	types, err := dc.defects.DefectTypes(r.Context(), principal(r))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, types)
}

// Machines handles GET /api/defects/machines
func (dc *DefectController) Machines(w http.ResponseWriter, r *http.Request) {
	machines, err := dc.defects.Machines(r.Context(), principal(r))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, machines)
}

const dateOnly = "2006-01-02"

// parseDefectFilter reads status, machineId, dateFrom and dateTo from the query.
// A date-only dateTo covers that whole day.
func parseDefectFilter(r *http.Request) (models.DefectFilter, error) {
	q := r.URL.Query()
	filter := models.DefectFilter{
		Status:    models.DefectStatus(q.Get("status")),
		MachineID: q.Get("machineId"),
	}

	var err error
	if filter.DateFrom, err = parseQueryTime("dateFrom", q.Get("dateFrom"), false); err != nil {
		return filter, err
	}
	if filter.DateTo, err = parseQueryTime("dateTo", q.Get("dateTo"), true); err != nil {
		return filter, err
	}
	return filter, nil
}

func parseQueryTime(field, value string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateOnly, value)
	if err != nil {
		return nil, errs.Validation("invalid date", errs.FieldError{Field: field, Message: "must be RFC3339 or YYYY-MM-DD"})
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
