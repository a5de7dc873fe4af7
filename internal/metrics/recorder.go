package metrics

import "time"

// Outcome enumerates job and run results for counters.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// Recorder defines observability hooks for dispatched jobs. Implementations
// must be safe for concurrent use by pool workers.
type Recorder interface {
	ObserveJobDuration(kind string, d time.Duration)
	IncJobOutcome(kind string, outcome Outcome)
	ObserveGroupDuration(kind string, d time.Duration)
	IncGroupOutcome(kind string, outcome Outcome)
	SetWorkers(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveJobDuration(string, time.Duration)   {}
func (NoopRecorder) IncJobOutcome(string, Outcome)              {}
func (NoopRecorder) ObserveGroupDuration(string, time.Duration) {}
func (NoopRecorder) IncGroupOutcome(string, Outcome)            {}
func (NoopRecorder) SetWorkers(int)                             {}
