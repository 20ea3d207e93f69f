package planner

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hugh/miwanzo/internal/database/models"
	"github.com/hugh/miwanzo/internal/repository"
)

// Guard re-fetches the parent chain of a resource and checks it against the
// caller. Ownership is decided by the work area at the top of the chain; the
// denormalized user_id copies on sections and tasks are only cross-checked.
type Guard struct {
	workAreas *repository.WorkAreaRepository
	sections  *repository.SectionRepository
	tasks     *repository.TaskRepository
	logger    *slog.Logger
}

func NewGuard(
	workAreas *repository.WorkAreaRepository,
	sections *repository.SectionRepository,
	tasks *repository.TaskRepository,
	logger *slog.Logger,
) *Guard {
	return &Guard{workAreas: workAreas, sections: sections, tasks: tasks, logger: logger}
}

// WorkArea loads the work area and requires callerID to own it.
func (g *Guard) WorkArea(ctx context.Context, id, callerID uuid.UUID) (*models.WorkArea, error) {
	wa, err := g.workAreas.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError("work area", err)
	}
	if wa.UserID != callerID {
		return nil, forbidden("work area")
	}
	return wa, nil
}

// Section loads the section and its work area, authorizing on the work area
// owner.
func (g *Guard) Section(ctx context.Context, id, callerID uuid.UUID) (*models.Section, *models.WorkArea, error) {
	section, err := g.sections.FindByID(ctx, id)
	if err != nil {
		return nil, nil, lookupError("section", err)
	}

	wa, err := g.workAreas.FindByID(ctx, section.WorkAreaID)
	if err != nil {
		// The foreign key makes this unreachable unless the chain is broken.
		return nil, nil, lookupError("section", err)
	}

	if section.UserID != wa.UserID {
		g.logger.Warn("section owner does not match work area owner",
			"section_id", section.ID,
			"section_user_id", section.UserID,
			"work_area_user_id", wa.UserID,
		)
	}

	if wa.UserID != callerID {
		return nil, nil, forbidden("section")
	}
	return section, wa, nil
}

// Task loads the task and walks task -> section -> work area.
func (g *Guard) Task(ctx context.Context, id, callerID uuid.UUID) (*models.Task, error) {
	task, err := g.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError("task", err)
	}

	section, wa, err := g.Section(ctx, task.SectionID, callerID)
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			return nil, forbidden("task")
		}
		return nil, lookupError("task", err)
	}

	if task.UserID != wa.UserID {
		g.logger.Warn("task owner does not match work area owner",
			"task_id", task.ID,
			"section_id", section.ID,
			"task_user_id", task.UserID,
			"work_area_user_id", wa.UserID,
		)
	}
	return task, nil
}

func lookupError(what string, err error) error {
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, ErrNotFound) {
		return notFound(what)
	}
	return persistence("failed to load "+what, err)
}
