// Package planner implements the work area, section and task operations.
// Every operation on an existing resource goes through Guard first.
package planner

import (
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/miwanzo/internal/repository"
	"gorm.io/gorm"
)

var hexColorRegex = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Optional distinguishes an absent field from an explicit null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Services bundles the planner services over one database handle.
type Services struct {
	Guard     *Guard
	WorkAreas *WorkAreaService
	Sections  *SectionService
	Tasks     *TaskService
}

func NewServices(db *gorm.DB, logger *slog.Logger) *Services {
	workAreas := repository.NewWorkAreaRepository(db)
	sections := repository.NewSectionRepository(db)
	tasks := repository.NewTaskRepository(db)
	guard := NewGuard(workAreas, sections, tasks, logger)

	return &Services{
		Guard:     guard,
		WorkAreas: &WorkAreaService{db: db, workAreas: workAreas, sections: sections, tasks: tasks, guard: guard, logger: logger},
		Sections:  &SectionService{db: db, sections: sections, tasks: tasks, guard: guard, logger: logger},
		Tasks:     &TaskService{db: db, tasks: tasks, guard: guard, logger: logger, now: time.Now},
	}
}

func requireName(field, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", validationError(field + " is required")
	}
	if len(trimmed) > 255 {
		return "", validationError(field + " must be at most 255 characters")
	}
	return trimmed, nil
}

func normalizeColor(color *string) (*string, error) {
	if color == nil {
		return nil, nil
	}
	c := strings.TrimSpace(*color)
	if c == "" {
		return nil, nil
	}
	if !hexColorRegex.MatchString(c) {
		return nil, validationError("color must be a hex color like #1a2b3c")
	}
	return &c, nil
}

// checkOrder rejects empty and duplicated id lists.
func checkOrder(ids []uuid.UUID) error {
	if len(ids) == 0 {
		return validationError("ids must not be empty")
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return validationError("ids must not repeat: " + id.String())
		}
		seen[id] = struct{}{}
	}
	return nil
}
