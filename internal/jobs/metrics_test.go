package jobmetrics

import (
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRecordsOutcome(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	require.NoError(t, m.Run("tokens:purge", func() error { return nil }))
	boom := errors.New("boom")
	assert.ErrorIs(t, m.Run("tokens:purge", func() error { return boom }), boom)

	expected := `
# HELP userhub_job_runs_total Job executions by task type and outcome.
# TYPE userhub_job_runs_total counter
userhub_job_runs_total{job="tokens:purge",outcome="failure"} 1
userhub_job_runs_total{job="tokens:purge",outcome="success"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "userhub_job_runs_total"))
}

func TestAddPurged(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.AddPurged("tokens:purge", 5)
	m.AddPurged("tokens:purge", 0)
	m.AddPurged("tokens:purge", 2)

	assert.Equal(t, float64(7), testutil.ToFloat64(m.purged.WithLabelValues("tokens:purge")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	called := false

	require.NoError(t, m.Run("noop", func() error { called = true; return nil }))
	m.AddPurged("noop", 3)
	assert.True(t, called)
}
