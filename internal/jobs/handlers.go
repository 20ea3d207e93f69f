package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/hugh/miwanzo/internal/repository"
	"github.com/hugh/miwanzo/pkg/util"
	"gorm.io/gorm"
)

type Handler struct {
	sessions *repository.SessionRepository
	logger   *slog.Logger
	now      func() time.Time
}

func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{
		sessions: repository.NewSessionRepository(db),
		logger:   logger,
		now:      time.Now,
	}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeSessionPrune, h.HandleSessionPrune)
}

func (h *Handler) HandleSessionPrune(ctx context.Context, t *asynq.Task) error {
	var payload SessionPrunePayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
		}
	}
	if payload.GraceSeconds < 0 {
		return fmt.Errorf("grace_seconds must not be negative: %w", asynq.SkipRetry)
	}

	cutoff := h.now().Add(-time.Duration(payload.GraceSeconds) * time.Second)
	removed, err := h.sessions.DeleteExpired(ctx, cutoff)
	if err != nil {
		return err
	}

	h.logger.Info("pruned expired sessions", "removed", removed, "cutoff", cutoff)
	return nil
}

// Schedule registers the periodic prune job on scheduler.
func Schedule(scheduler *asynq.Scheduler, cronExpr string) (string, error) {
	if err := util.ValidateCronExpr(cronExpr); err != nil {
		return "", err
	}

	task, err := NewSessionPruneTask(SessionPrunePayload{})
	if err != nil {
		return "", err
	}

	entryID, err := scheduler.Register(cronExpr, task)
	if err != nil {
		return "", fmt.Errorf("registering %s: %w", TypeSessionPrune, err)
	}
	return entryID, nil
}
