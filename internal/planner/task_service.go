package planner

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/miwanzo/internal/database/models"
	"github.com/hugh/miwanzo/internal/repository"
	"gorm.io/gorm"
)

type TaskInput struct {
	Title       string
	Description *string
	SectionID   uuid.UUID
	Status      models.TaskStatus   // defaults to PENDING
	Priority    models.TaskPriority // defaults to MEDIUM
	DueDate     *time.Time
}

// TaskPatch holds the fields of a partial update. Completed is the legacy
// boolean form of Status; Status wins when both are present.
type TaskPatch struct {
	Title       *string
	Description Optional[string]
	Status      *models.TaskStatus
	Completed   *bool
	Priority    *models.TaskPriority
	DueDate     Optional[time.Time]
}

type TaskService struct {
	db     *gorm.DB
	tasks  *repository.TaskRepository
	guard  *Guard
	logger *slog.Logger
	now    func() time.Time
}

func (s *TaskService) Create(ctx context.Context, ownerID uuid.UUID, input TaskInput) (*models.Task, error) {
	title, err := requireName("title", input.Title)
	if err != nil {
		return nil, err
	}
	if input.SectionID == uuid.Nil {
		return nil, validationError("section_id is required")
	}

	status := input.Status
	if status == "" {
		status = models.TaskStatusPending
	}
	if !status.Valid() {
		return nil, validationError("status must be PENDING or COMPLETED")
	}

	priority := input.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}
	if !priority.Valid() {
		return nil, validationError("priority must be LOW, MEDIUM or HIGH")
	}

	section, wa, err := s.guard.Section(ctx, input.SectionID, ownerID)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       title,
		Description: normalizeDescription(input.Description),
		SectionID:   section.ID,
		UserID:      wa.UserID,
		Status:      status,
		Priority:    priority,
		DueDate:     input.DueDate,
	}
	task.SyncCompletedAt(s.now())

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, persistence("failed to create task", err)
	}

	s.logger.Info("created task", "task_id", task.ID, "section_id", section.ID)
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, id, callerID uuid.UUID) (*models.Task, error) {
	return s.guard.Task(ctx, id, callerID)
}

func (s *TaskService) ListBySection(ctx context.Context, sectionID, callerID uuid.UUID) ([]models.Task, error) {
	if _, _, err := s.guard.Section(ctx, sectionID, callerID); err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListBySection(ctx, sectionID)
	if err != nil {
		return nil, persistence("failed to list tasks", err)
	}
	return tasks, nil
}

// Update applies patch and recomputes completed_at from the resulting status.
func (s *TaskService) Update(ctx context.Context, id, callerID uuid.UUID, patch TaskPatch) (*models.Task, error) {
	task, err := s.guard.Task(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		if task.Title, err = requireName("title", *patch.Title); err != nil {
			return nil, err
		}
	}
	if patch.Description.Set {
		task.Description = normalizeDescription(patch.Description.Value)
	}

	switch {
	case patch.Status != nil:
		if !patch.Status.Valid() {
			return nil, validationError("status must be PENDING or COMPLETED")
		}
		task.Status = *patch.Status
	case patch.Completed != nil:
		task.Status = models.TaskStatusPending
		if *patch.Completed {
			task.Status = models.TaskStatusCompleted
		}
	}

	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return nil, validationError("priority must be LOW, MEDIUM or HIGH")
		}
		task.Priority = *patch.Priority
	}
	if patch.DueDate.Set {
		task.DueDate = patch.DueDate.Value
	}

	task.SyncCompletedAt(s.now())

	if err := s.tasks.Update(ctx, task); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("task")
		}
		return nil, persistence("failed to update task", err)
	}

	updated, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError("task", err)
	}
	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, id, callerID uuid.UUID) error {
	if _, err := s.guard.Task(ctx, id, callerID); err != nil {
		return err
	}

	rows, err := s.tasks.Delete(ctx, id)
	if err != nil {
		return persistence("failed to delete task", err)
	}
	if rows == 0 {
		return notFound("task")
	}

	s.logger.Info("deleted task", "task_id", id)
	return nil
}

// Reorder sets order_index for tasks of one section.
func (s *TaskService) Reorder(ctx context.Context, callerID, sectionID uuid.UUID, ids []uuid.UUID) error {
	if sectionID == uuid.Nil {
		return validationError("section_id is required")
	}
	if err := checkOrder(ids); err != nil {
		return err
	}
	if _, _, err := s.guard.Section(ctx, sectionID, callerID); err != nil {
		return err
	}
	for _, id := range ids {
		task, err := s.guard.Task(ctx, id, callerID)
		if err != nil {
			return err
		}
		if task.SectionID != sectionID {
			return validationError("task " + id.String() + " does not belong to the section")
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.tasks.WithTx(tx)
		for i, id := range ids {
			if err := repo.SetOrderIndex(ctx, id, i); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("task")
		}
		return persistence("failed to reorder tasks", err)
	}
	return nil
}

func normalizeDescription(desc *string) *string {
	if desc == nil {
		return nil
	}
	d := strings.TrimSpace(*desc)
	if d == "" {
		return nil
	}
	return &d
}
