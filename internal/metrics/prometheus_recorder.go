package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/crosspy/internal/foundation/errors"
)

const namespace = "crosspy"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once          sync.Once
	registry      *prom.Registry
	jobDuration   *prom.HistogramVec
	jobOutcomes   *prom.CounterVec
	groupDuration *prom.HistogramVec
	groupOutcomes *prom.CounterVec
	workers       prom.Gauge
}

// Cross builds take minutes to hours.
var jobBuckets = []float64{10, 30, 60, 120, 300, 600, 1200, 1800, 3600, 7200}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{registry: reg}
	pr.once.Do(func() {
		pr.jobDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Duration of individual backend jobs",
			Buckets:   jobBuckets,
		}, []string{"kind"})
		pr.jobOutcomes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "job_outcomes_total",
			Help:      "Backend job outcomes",
		}, []string{"kind", "outcome"})
		pr.groupDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "group_duration_seconds",
			Help:      "Duration of product groups",
			Buckets:   jobBuckets,
		}, []string{"kind"})
		pr.groupOutcomes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "group_outcomes_total",
			Help:      "Product group outcomes",
		}, []string{"kind", "outcome"})
		pr.workers = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "workers",
			Help:      "Size of the job worker pool",
		})
		reg.MustRegister(pr.jobDuration, pr.jobOutcomes, pr.groupDuration, pr.groupOutcomes, pr.workers)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveJobDuration(kind string, d time.Duration) {
	if p == nil || p.jobDuration == nil {
		return
	}
	p.jobDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncJobOutcome(kind string, outcome Outcome) {
	if p == nil || p.jobOutcomes == nil {
		return
	}
	p.jobOutcomes.WithLabelValues(kind, string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveGroupDuration(kind string, d time.Duration) {
	if p == nil || p.groupDuration == nil {
		return
	}
	p.groupDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncGroupOutcome(kind string, outcome Outcome) {
	if p == nil || p.groupOutcomes == nil {
		return
	}
	p.groupOutcomes.WithLabelValues(kind, string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetWorkers(n int) {
	if p == nil || p.workers == nil {
		return
	}
	p.workers.Set(float64(n))
}

// WriteTextfile writes every registered metric to path in the text
// exposition format. The file is replaced atomically.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.registry); err != nil {
		return errors.FileSystemError("failed to write metrics textfile").
			WithCause(err).WithContext("path", path).Build()
	}
	return nil
}
