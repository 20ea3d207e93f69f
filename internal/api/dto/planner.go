package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/miwanzo/internal/api/validation"
	"github.com/hugh/miwanzo/internal/database/models"
)

type WorkAreaRequest struct {
	Name  string  `json:"name"`
	Color *string `json:"color,omitempty"`
}

func (r WorkAreaRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if strings.TrimSpace(r.Name) == "" {
		errors["name"] = "Name is required"
	} else if len(r.Name) > 255 {
		errors["name"] = "Name must be at most 255 characters"
	}
	if r.Color != nil && *r.Color != "" && !validation.IsValidHexColor(*r.Color) {
		errors["color"] = "Color must be a hex color like #1a2b3c"
	}

	return errors
}

type CreateSectionRequest struct {
	Name       string    `json:"name"`
	WorkAreaID uuid.UUID `json:"work_area_id"`
}

func (r CreateSectionRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if strings.TrimSpace(r.Name) == "" {
		errors["name"] = "Name is required"
	}
	if r.WorkAreaID == uuid.Nil {
		errors["work_area_id"] = "Work area ID is required"
	}

	return errors
}

type UpdateSectionRequest struct {
	Name string `json:"name"`
}

func (r UpdateSectionRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if strings.TrimSpace(r.Name) == "" {
		errors["name"] = "Name is required"
	}
	return errors
}

type CreateTaskRequest struct {
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	SectionID   uuid.UUID `json:"section_id"`
	Status      string    `json:"status,omitempty"`
	Priority    string    `json:"priority,omitempty"`
	DueDate     *Date     `json:"due_date,omitempty"`
}

func (r CreateTaskRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if strings.TrimSpace(r.Title) == "" {
		errors["title"] = "Title is required"
	}
	if r.SectionID == uuid.Nil {
		errors["section_id"] = "Section ID is required"
	}
	if r.Status != "" && !models.TaskStatus(r.Status).Valid() {
		errors["status"] = "Status must be PENDING or COMPLETED"
	}
	if r.Priority != "" && !models.TaskPriority(r.Priority).Valid() {
		errors["priority"] = "Priority must be LOW, MEDIUM or HIGH"
	}

	return errors
}

// UpdateTaskRequest is a partial update. Description and due_date accept
// null to clear them.
type UpdateTaskRequest struct {
	Title       *string          `json:"title,omitempty"`
	Description Nullable[string] `json:"description"`
	Status      *string          `json:"status,omitempty"`
	Completed   *bool            `json:"completed,omitempty"`
	Priority    *string          `json:"priority,omitempty"`
	DueDate     Nullable[Date]   `json:"due_date"`
}

func (r UpdateTaskRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		errors["title"] = "Title cannot be empty"
	}
	if r.Status != nil && !models.TaskStatus(*r.Status).Valid() {
		errors["status"] = "Status must be PENDING or COMPLETED"
	}
	if r.Priority != nil && !models.TaskPriority(*r.Priority).Valid() {
		errors["priority"] = "Priority must be LOW, MEDIUM or HIGH"
	}

	return errors
}

type ReorderWorkAreasRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

type ReorderSectionsRequest struct {
	WorkAreaID uuid.UUID   `json:"work_area_id"`
	IDs        []uuid.UUID `json:"ids"`
}

type ReorderTasksRequest struct {
	SectionID uuid.UUID   `json:"section_id"`
	IDs       []uuid.UUID `json:"ids"`
}

type WorkAreaResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	UserID     uuid.UUID `json:"user_id"`
	OrderIndex int       `json:"order_index"`
	Color      *string   `json:"color"`
	IsDefault  bool      `json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func ToWorkAreaResponse(wa *models.WorkArea) WorkAreaResponse {
	return WorkAreaResponse{
		ID:         wa.ID,
		Name:       wa.Name,
		UserID:     wa.UserID,
		OrderIndex: wa.OrderIndex,
		Color:      wa.Color,
		IsDefault:  wa.IsDefault,
		CreatedAt:  wa.CreatedAt,
		UpdatedAt:  wa.UpdatedAt,
	}
}

type SectionResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	WorkAreaID uuid.UUID `json:"work_area_id"`
	UserID     uuid.UUID `json:"user_id"`
	OrderIndex int       `json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func ToSectionResponse(s *models.Section) SectionResponse {
	return SectionResponse{
		ID:         s.ID,
		Name:       s.Name,
		WorkAreaID: s.WorkAreaID,
		UserID:     s.UserID,
		OrderIndex: s.OrderIndex,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

// TaskResponse carries a derived completed flag for older clients.
type TaskResponse struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	SectionID   uuid.UUID  `json:"section_id"`
	UserID      uuid.UUID  `json:"user_id"`
	Status      string     `json:"status"`
	Completed   bool       `json:"completed"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	CompletedAt *time.Time `json:"completed_at"`
	OrderIndex  int        `json:"order_index"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func ToTaskResponse(t *models.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		SectionID:   t.SectionID,
		UserID:      t.UserID,
		Status:      string(t.Status),
		Completed:   t.Status == models.TaskStatusCompleted,
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		CompletedAt: t.CompletedAt,
		OrderIndex:  t.OrderIndex,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
