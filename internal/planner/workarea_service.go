package planner

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hugh/miwanzo/internal/database/models"
	"github.com/hugh/miwanzo/internal/repository"
	"gorm.io/gorm"
)

type WorkAreaInput struct {
	Name  string
	Color *string
}

type WorkAreaService struct {
	db        *gorm.DB
	workAreas *repository.WorkAreaRepository
	sections  *repository.SectionRepository
	tasks     *repository.TaskRepository
	guard     *Guard
	logger    *slog.Logger
}

func (s *WorkAreaService) Create(ctx context.Context, ownerID uuid.UUID, input WorkAreaInput) (*models.WorkArea, error) {
	name, err := requireName("name", input.Name)
	if err != nil {
		return nil, err
	}
	color, err := normalizeColor(input.Color)
	if err != nil {
		return nil, err
	}

	wa := &models.WorkArea{
		Name:       name,
		UserID:     ownerID,
		OrderIndex: 0,
		Color:      color,
		IsDefault:  false,
	}
	if err := s.workAreas.Create(ctx, wa); err != nil {
		return nil, persistence("failed to create work area", err)
	}

	s.logger.Info("created work area", "work_area_id", wa.ID, "user_id", ownerID)
	return wa, nil
}

func (s *WorkAreaService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.WorkArea, error) {
	workAreas, err := s.workAreas.ListByUser(ctx, ownerID)
	if err != nil {
		return nil, persistence("failed to list work areas", err)
	}
	return workAreas, nil
}

func (s *WorkAreaService) Get(ctx context.Context, id, callerID uuid.UUID) (*models.WorkArea, error) {
	return s.guard.WorkArea(ctx, id, callerID)
}

func (s *WorkAreaService) Update(ctx context.Context, id, callerID uuid.UUID, input WorkAreaInput) (*models.WorkArea, error) {
	wa, err := s.guard.WorkArea(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	name, err := requireName("name", input.Name)
	if err != nil {
		return nil, err
	}
	wa.Name = name

	if input.Color != nil {
		color, err := normalizeColor(input.Color)
		if err != nil {
			return nil, err
		}
		wa.Color = color
	}

	if err := s.workAreas.Update(ctx, wa); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("work area")
		}
		return nil, persistence("failed to update work area", err)
	}

	updated, err := s.workAreas.FindByID(ctx, wa.ID)
	if err != nil {
		return nil, lookupError("work area", err)
	}
	return updated, nil
}

// Delete removes the work area with its sections and their tasks in one
// transaction. A concurrent delete that wins the race yields NotFound.
func (s *WorkAreaService) Delete(ctx context.Context, id, callerID uuid.UUID) error {
	if _, err := s.guard.WorkArea(ctx, id, callerID); err != nil {
		return err
	}

	var taskCount, sectionCount int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if taskCount, err = s.tasks.WithTx(tx).DeleteByWorkArea(ctx, id); err != nil {
			return err
		}
		if sectionCount, err = s.sections.WithTx(tx).DeleteByWorkArea(ctx, id); err != nil {
			return err
		}
		rows, err := s.workAreas.WithTx(tx).Delete(ctx, id)
		if err != nil {
			return err
		}
		if rows == 0 {
			return notFound("work area")
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return persistence("failed to delete work area", err)
	}

	s.logger.Info("deleted work area",
		"work_area_id", id,
		"sections_deleted", sectionCount,
		"tasks_deleted", taskCount,
	)
	return nil
}

// Reorder sets order_index to each id's position. All ids must belong to the
// caller; nothing is written unless every update succeeds.
func (s *WorkAreaService) Reorder(ctx context.Context, callerID uuid.UUID, ids []uuid.UUID) error {
	if err := checkOrder(ids); err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := s.guard.WorkArea(ctx, id, callerID); err != nil {
			return err
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.workAreas.WithTx(tx)
		for i, id := range ids {
			if err := repo.SetOrderIndex(ctx, id, i); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("work area")
		}
		return persistence("failed to reorder work areas", err)
	}
	return nil
}
