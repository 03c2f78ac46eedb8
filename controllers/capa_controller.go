package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/blogem/defect-tracker/middleware"
	"github.com/blogem/defect-tracker/models"
	"github.com/blogem/defect-tracker/services"
)

// CapaController serves the corrective-action endpoints
type CapaController struct {
	capa services.CapaService
}

func NewCapaController(capa services.CapaService) *CapaController {
	return &CapaController{capa: capa}
}

// Create handles POST /api/capa
func (cc *CapaController) Create(w http.ResponseWriter, r *http.Request) {
	var form models.CreateCapaForm
	if err := decodeJSON(w, r, &form); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	capa, err := cc.capa.Create(r.Context(), principal(r), &form)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, capa)
}

// GetByDefect handles GET /api/capa/defect/{defectId}. The body is null when the defect has no CAPA.
func (cc *CapaController) GetByDefect(w http.ResponseWriter, r *http.Request) {
	capa, err := cc.capa.GetByDefect(r.Context(), principal(r), chi.URLParam(r, "defectId"))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, capa)
}

// Update handles PUT /api/capa/{id}
func (cc *CapaController) Update(w http.ResponseWriter, r *http.Request) {
	var form models.UpdateCapaForm
	if err := decodeJSON(w, r, &form); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	capa, err := cc.capa.Update(r.Context(), principal(r), chi.URLParam(r, "id"), &form)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, capa)
}
