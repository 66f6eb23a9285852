package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/userhub/userhub/internal/jobs"
)

// ExpiredTokenPurger deletes invalidated tokens that expired before cutoff.
type ExpiredTokenPurger interface {
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// PurgeTokensJob keeps the invalidated token table from growing without bound.
type PurgeTokensJob struct {
	Store   ExpiredTokenPurger
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewPurgeTokensJob initialises the purge handler.
func NewPurgeTokensJob(store ExpiredTokenPurger, logger *slog.Logger, metrics *jobmetrics.Metrics) *PurgeTokensJob {
	return &PurgeTokensJob{
		Store:   store,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes one purge run.
func (j *PurgeTokensJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Store == nil {
		return errors.New("purge tokens: handler not configured")
	}
	var payload PurgeTokensPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	if payload.Grace < 0 {
		payload.Grace = 0
	}

	return j.Metrics.Run(TaskPurgeInvalidatedTokens, func() error {
		cutoff := j.clock().Add(-payload.Grace)
		removed, err := j.Store.DeleteExpired(ctx, cutoff)
		if err != nil {
			j.logger().Error("purge invalidated tokens failed", slog.Any("error", err))
			return err
		}
		j.Metrics.AddPurged(TaskPurgeInvalidatedTokens, removed)
		j.logger().Info("invalidated tokens purged", slog.Int64("removed", removed), slog.Time("cutoff", cutoff))
		return nil
	})
}

func (j *PurgeTokensJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
