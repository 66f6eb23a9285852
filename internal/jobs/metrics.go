// Package jobmetrics instruments background jobs.
package jobmetrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors shared by every job handler. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	purged   *prometheus.CounterVec
	now      func() time.Time
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// NewMetrics registers job collectors on registerer, or once on the default
// Prometheus registerer when registerer is nil.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer != nil {
		return register(registerer)
	}
	defaultOnce.Do(func() {
		defaultMetrics = register(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

func register(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "userhub_job_runs_total",
			Help: "Job executions by task type and outcome.",
		}, []string{"job", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "userhub_job_duration_seconds",
			Help:    "Job execution latency by task type.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
		purged: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "userhub_job_purged_rows_total",
			Help: "Rows removed by cleanup jobs.",
		}, []string{"job"}),
		now: time.Now,
	}
}

// Run executes fn and records its outcome and latency under job. The error
// of fn is returned unchanged.
func (m *Metrics) Run(job string, fn func() error) error {
	if m == nil {
		return fn()
	}
	started := m.now()
	err := fn()
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.runs.WithLabelValues(job, outcome).Inc()
	m.duration.WithLabelValues(job).Observe(m.now().Sub(started).Seconds())
	return err
}

// AddPurged counts rows removed by a cleanup job.
func (m *Metrics) AddPurged(job string, count int64) {
	if m == nil || count <= 0 {
		return
	}
	m.purged.WithLabelValues(job).Add(float64(count))
}
