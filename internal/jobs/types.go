package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TypeSessionPrune = "sessions:prune"

const maintenanceQueue = "maintenance"

// SessionPrunePayload controls which sessions a prune run removes: those
// that expired at least GraceSeconds ago.
type SessionPrunePayload struct {
	GraceSeconds int `json:"grace_seconds"`
}

func NewSessionPruneTask(payload SessionPrunePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeSessionPrune, data,
		asynq.Queue(maintenanceQueue),
		asynq.MaxRetry(3),
		asynq.Timeout(time.Minute),
	), nil
}
