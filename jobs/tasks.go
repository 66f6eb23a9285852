package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPurgeInvalidatedTokens removes invalidated-token records whose tokens expired.
	TaskPurgeInvalidatedTokens = "tokens:purge"
)

// PurgeTokensPayload configures a purge run. Grace keeps records that expired
// less than Grace ago.
type PurgeTokensPayload struct {
	Grace time.Duration `json:"grace"`
}

// NewPurgeInvalidatedTokensTask builds a purge task.
func NewPurgeInvalidatedTokensTask(payload PurgeTokensPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPurgeInvalidatedTokens, body, asynq.Queue(QueueDefault), asynq.MaxRetry(3), asynq.Unique(time.Minute)), nil
}
