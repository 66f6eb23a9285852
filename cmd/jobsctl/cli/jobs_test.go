package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/userhub/userhub/jobs"
)

type stubEnqueuer struct {
	tasks []*asynq.Task
}

func (s *stubEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	s.tasks = append(s.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Type: task.Type(), Queue: jobs.QueueDefault}, nil
}

func (s *stubEnqueuer) Close() error { return nil }

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) { return s.info, s.err }

func (s stubInspector) ListScheduledTasks(string, ...asynq.ListOption) ([]*asynq.TaskInfo, error) {
	return []*asynq.TaskInfo{{ID: "sched-1", Type: jobs.TaskPurgeInvalidatedTokens, NextProcessAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}}, nil
}

func (s stubInspector) Close() error { return nil }

func run(t *testing.T, c *JobsCLI, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd(c)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTriggerPurge(t *testing.T) {
	enq := &stubEnqueuer{}
	c := &JobsCLI{client: enq, inspector: stubInspector{}}

	out, err := run(t, c, "trigger", jobs.TaskPurgeInvalidatedTokens, "--grace", "30m")
	require.NoError(t, err)
	require.Contains(t, out, "enqueued tokens:purge id=task-1")
	require.Len(t, enq.tasks, 1)

	var payload jobs.PurgeTokensPayload
	require.NoError(t, json.Unmarshal(enq.tasks[0].Payload(), &payload))
	require.Equal(t, 30*time.Minute, payload.Grace)

	_, err = run(t, c, "trigger", "unknown:job")
	require.ErrorContains(t, err, "unsupported job")
}

func TestStats(t *testing.T) {
	c := &JobsCLI{client: &stubEnqueuer{}, inspector: stubInspector{info: &asynq.QueueInfo{Queue: jobs.QueueDefault, Pending: 2, Failed: 1}}}

	out, err := run(t, c, "stats", "-o", "json")
	require.NoError(t, err)
	var stats QueueStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	require.Equal(t, 2, stats.Pending)
	require.Equal(t, 1, stats.Failed)

	out, err = run(t, c, "stats")
	require.NoError(t, err)
	require.Contains(t, out, "PENDING")

	c.inspector = stubInspector{err: errors.New("redis down")}
	_, err = run(t, c, "stats")
	require.Error(t, err)

	_, err = run(t, c, "stats", "-o", "yaml")
	require.ErrorContains(t, err, "unsupported output format")
}

func TestScheduled(t *testing.T) {
	c := &JobsCLI{client: &stubEnqueuer{}, inspector: stubInspector{}}

	out, err := run(t, c, "scheduled")
	require.NoError(t, err)
	require.Contains(t, out, "sched-1")
	require.Contains(t, out, "2026-01-01 00:00:00")
}

func TestQueueOptionsReadsRedisEnvironment(t *testing.T) {
	t.Setenv("REDIS_ADDR", "queue:6379")
	t.Setenv("REDIS_PASSWORD", "hunter2")
	t.Setenv("REDIS_DB", "4")

	opts, err := queueOptions("127.0.0.1:6379", false)
	require.NoError(t, err)
	require.Equal(t, asynq.RedisClientOpt{Addr: "queue:6379", Password: "hunter2", DB: 4}, opts)

	opts, err = queueOptions("other:6380", true)
	require.NoError(t, err)
	require.Equal(t, "other:6380", opts.Addr)
	require.Equal(t, "hunter2", opts.Password)
	require.Equal(t, 4, opts.DB)
}
