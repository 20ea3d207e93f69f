package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hugh/miwanzo/internal/api/dto"
	"github.com/hugh/miwanzo/internal/api/middleware"
	"github.com/hugh/miwanzo/internal/planner"
)

type WorkAreaHandler struct {
	service *planner.WorkAreaService
	errs    errorWriter
}

func NewWorkAreaHandler(service *planner.WorkAreaService, logger *slog.Logger, development bool) *WorkAreaHandler {
	return &WorkAreaHandler{service: service, errs: errorWriter{logger: logger, development: development}}
}

// List handles GET /api/work-areas
func (h *WorkAreaHandler) List(w http.ResponseWriter, r *http.Request) {
	workAreas, err := h.service.ListByOwner(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.errs.write(w, r, err)
		return
	}

	resp := make([]dto.WorkAreaResponse, len(workAreas))
	for i := range workAreas {
		resp[i] = dto.ToWorkAreaResponse(&workAreas[i])
	}
	writeData(w, http.StatusOK, resp)
}

// Create handles POST /api/work-areas
func (h *WorkAreaHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.WorkAreaRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	wa, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), planner.WorkAreaInput{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, dto.ToWorkAreaResponse(wa))
}

// Get handles GET /api/work-areas/{id}
func (h *WorkAreaHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	wa, err := h.service.Get(r.Context(), id, middleware.GetUserID(r.Context()))
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeData(w, http.StatusOK, dto.ToWorkAreaResponse(wa))
}

// Update handles PUT /api/work-areas/{id}
func (h *WorkAreaHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req dto.WorkAreaRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	wa, err := h.service.Update(r.Context(), id, middleware.GetUserID(r.Context()), planner.WorkAreaInput{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeData(w, http.StatusOK, dto.ToWorkAreaResponse(wa))
}

// Delete handles DELETE /api/work-areas/{id}
func (h *WorkAreaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id, middleware.GetUserID(r.Context())); err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeOK(w)
}

// Reorder handles PUT /api/work-areas/reorder
func (h *WorkAreaHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req dto.ReorderWorkAreasRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.Reorder(r.Context(), middleware.GetUserID(r.Context()), req.IDs); err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeOK(w)
}
