package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hugh/miwanzo/internal/api/dto"
	"github.com/hugh/miwanzo/internal/api/middleware"
	"github.com/hugh/miwanzo/internal/planner"
)

type SectionHandler struct {
	service *planner.SectionService
	errs    errorWriter
}

func NewSectionHandler(service *planner.SectionService, logger *slog.Logger, development bool) *SectionHandler {
	return &SectionHandler{service: service, errs: errorWriter{logger: logger, development: development}}
}

// List handles GET /api/sections?work_area_id=
func (h *SectionHandler) List(w http.ResponseWriter, r *http.Request) {
	workAreaID, ok := queryID(w, r, "work_area_id")
	if !ok {
		return
	}

	sections, err := h.service.ListByWorkArea(r.Context(), workAreaID, middleware.GetUserID(r.Context()))
	if err != nil {
		h.errs.write(w, r, err)
		return
	}

	resp := make([]dto.SectionResponse, len(sections))
	for i := range sections {
		resp[i] = dto.ToSectionResponse(&sections[i])
	}
	writeData(w, http.StatusOK, resp)
}

// Create handles POST /api/sections
func (h *SectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	section, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), planner.SectionInput{
		Name:       req.Name,
		WorkAreaID: req.WorkAreaID,
	})
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, dto.ToSectionResponse(section))
}

// Get handles GET /api/sections/{id}
func (h *SectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	section, err := h.service.Get(r.Context(), id, middleware.GetUserID(r.Context()))
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeData(w, http.StatusOK, dto.ToSectionResponse(section))
}

// Update handles PUT /api/sections/{id}
func (h *SectionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateSectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	section, err := h.service.Update(r.Context(), id, middleware.GetUserID(r.Context()), req.Name)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeData(w, http.StatusOK, dto.ToSectionResponse(section))
}

// Delete handles DELETE /api/sections/{id}
func (h *SectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// Reorder handles PUT /api/sections/reorder
func (h *SectionHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req dto.ReorderSectionsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.service.Reorder(r.Context(), middleware.GetUserID(r.Context()), req.WorkAreaID, req.IDs); err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeOK(w)
}
