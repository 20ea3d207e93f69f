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

type SectionInput struct {
	Name       string
	WorkAreaID uuid.UUID
}

type SectionService struct {
	db       *gorm.DB
	sections *repository.SectionRepository
	tasks    *repository.TaskRepository
	guard    *Guard
	logger   *slog.Logger
}

// Create adds a section under a work area the caller owns. The owner copy is
// taken from the work area, never from the caller.
func (s *SectionService) Create(ctx context.Context, ownerID uuid.UUID, input SectionInput) (*models.Section, error) {
	name, err := requireName("name", input.Name)
	if err != nil {
		return nil, err
	}
	if input.WorkAreaID == uuid.Nil {
		return nil, validationError("work_area_id is required")
	}

	wa, err := s.guard.WorkArea(ctx, input.WorkAreaID, ownerID)
	if err != nil {
		return nil, err
	}

	section := &models.Section{
		Name:       name,
		WorkAreaID: wa.ID,
		UserID:     wa.UserID,
	}
	if err := s.sections.Create(ctx, section); err != nil {
		return nil, persistence("failed to create section", err)
	}

	s.logger.Info("created section", "section_id", section.ID, "work_area_id", wa.ID)
	return section, nil
}

func (s *SectionService) ListByWorkArea(ctx context.Context, workAreaID, callerID uuid.UUID) ([]models.Section, error) {
	if _, err := s.guard.WorkArea(ctx, workAreaID, callerID); err != nil {
		return nil, err
	}

	sections, err := s.sections.ListByWorkArea(ctx, workAreaID)
	if err != nil {
		return nil, persistence("failed to list sections", err)
	}
	return sections, nil
}

func (s *SectionService) Get(ctx context.Context, id, callerID uuid.UUID) (*models.Section, error) {
	section, _, err := s.guard.Section(ctx, id, callerID)
	return section, err
}

func (s *SectionService) Update(ctx context.Context, id, callerID uuid.UUID, name string) (*models.Section, error) {
	section, _, err := s.guard.Section(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	if section.Name, err = requireName("name", name); err != nil {
		return nil, err
	}

	if err := s.sections.Update(ctx, section); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("section")
		}
		return nil, persistence("failed to update section", err)
	}

	updated, err := s.sections.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError("section", err)
	}
	return updated, nil
}

// Delete removes the section and its tasks in one transaction.
func (s *SectionService) Delete(ctx context.Context, id, callerID uuid.UUID) error {
	if _, _, err := s.guard.Section(ctx, id, callerID); err != nil {
		return err
	}

	var taskCount int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if taskCount, err = s.tasks.WithTx(tx).DeleteBySection(ctx, id); err != nil {
			return err
		}
		rows, err := s.sections.WithTx(tx).Delete(ctx, id)
		if err != nil {
			return err
		}
		if rows == 0 {
			return notFound("section")
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return persistence("failed to delete section", err)
	}

	s.logger.Info("deleted section", "section_id", id, "tasks_deleted", taskCount)
	return nil
}

// Reorder sets order_index for sections of one work area.
func (s *SectionService) Reorder(ctx context.Context, callerID, workAreaID uuid.UUID, ids []uuid.UUID) error {
	if workAreaID == uuid.Nil {
		return validationError("work_area_id is required")
	}
	if err := checkOrder(ids); err != nil {
		return err
	}
	if _, err := s.guard.WorkArea(ctx, workAreaID, callerID); err != nil {
		return err
	}
	for _, id := range ids {
		section, _, err := s.guard.Section(ctx, id, callerID)
		if err != nil {
			return err
		}
		if section.WorkAreaID != workAreaID {
			return validationError("section " + id.String() + " does not belong to the work area")
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.sections.WithTx(tx)
		for i, id := range ids {
			if err := repo.SetOrderIndex(ctx, id, i); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("section")
		}
		return persistence("failed to reorder sections", err)
	}
	return nil
}
