package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/hugh/miwanzo/internal/api/dto"
	"github.com/hugh/miwanzo/internal/api/middleware"
	"github.com/hugh/miwanzo/internal/database/models"
	"github.com/hugh/miwanzo/internal/planner"
)

type TaskHandler struct {
	service *planner.TaskService
	errs    errorWriter
}

func NewTaskHandler(service *planner.TaskService, logger *slog.Logger, development bool) *TaskHandler {
	return &TaskHandler{service: service, errs: errorWriter{logger: logger, development: development}}
}

// List handles GET /api/tasks?section_id=
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	sectionID, ok := queryID(w, r, "section_id")
	if !ok {
		return
	}

	tasks, err := h.service.ListBySection(r.Context(), sectionID, middleware.GetUserID(r.Context()))
	if err != nil {
		h.errs.write(w, r, err)
		return
	}

	resp := make([]dto.TaskResponse, len(tasks))
	for i := range tasks {
		resp[i] = dto.ToTaskResponse(&tasks[i])
	}
	writeData(w, http.StatusOK, resp)
}

// Create handles POST /api/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	task, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), planner.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		SectionID:   req.SectionID,
		Status:      models.TaskStatus(req.Status),
		Priority:    models.TaskPriority(req.Priority),
		DueDate:     req.DueDate.Ptr(),
	})
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, dto.ToTaskResponse(task))
}

// Get handles GET /api/tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	task, err := h.service.Get(r.Context(), id, middleware.GetUserID(r.Context()))
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeData(w, http.StatusOK, dto.ToTaskResponse(task))
}

// Update handles PUT /api/tasks/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	task, err := h.service.Update(r.Context(), id, middleware.GetUserID(r.Context()), toTaskPatch(req))
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeData(w, http.StatusOK, dto.ToTaskResponse(task))
}

// Delete handles DELETE /api/tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// Reorder handles PUT /api/tasks/reorder
func (h *TaskHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req dto.ReorderTasksRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.service.Reorder(r.Context(), middleware.GetUserID(r.Context()), req.SectionID, req.IDs); err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeOK(w)
}

func toTaskPatch(req dto.UpdateTaskRequest) planner.TaskPatch {
	patch := planner.TaskPatch{
		Title:       req.Title,
		Description: planner.Optional[string]{Set: req.Description.Set, Value: req.Description.Value},
		Completed:   req.Completed,
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		patch.Status = &status
	}
	if req.Priority != nil {
		priority := models.TaskPriority(*req.Priority)
		patch.Priority = &priority
	}
	if req.DueDate.Set {
		patch.DueDate = planner.Optional[time.Time]{Set: true, Value: req.DueDate.Value.Ptr()}
	}
	return patch
}
