package journal

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/crosspy/internal/foundation/errors"
	"git.home.luguber.info/inful/crosspy/internal/matrix"
)

// Event types.
const (
	TypeRunStarted   = "run_started"
	TypeJobStarted   = "job_started"
	TypeJobSucceeded = "job_succeeded"
	TypeJobFailed    = "job_failed"
	TypeRunFinished  = "run_finished"
)

// Run statuses derived from run_finished.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// NewRunID returns a fresh run identifier.
func NewRunID() string { return uuid.NewString() }

// RunStarted is the payload of run_started.
type RunStarted struct {
	Build   string         `json:"build"`
	Workers int            `json:"workers"`
	Groups  map[string]int `json:"groups"` // kind -> job count
}

// JobStarted is the payload of job_started.
type JobStarted struct {
	Job     string   `json:"job"`
	Kind    string   `json:"kind"`
	Host    string   `json:"host"`
	Python  string   `json:"python"`
	Targets []string `json:"targets"`
	Worker  string   `json:"worker"`
}

// JobFinished is the payload of job_succeeded and job_failed.
type JobFinished struct {
	Job        string `json:"job"`
	Kind       string `json:"kind"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
	ExitCode   *int   `json:"exit_code,omitempty"`
}

// RunFinished is the payload of run_finished.
type RunFinished struct {
	Status     string `json:"status"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

func marshalPayload(eventType string, v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, errors.JournalError("failed to marshal event payload").
			WithCause(err).WithContext("event_type", eventType).Build()
	}
	return payload, nil
}

func newJobStarted(job matrix.Job, worker string) JobStarted {
	return JobStarted{
		Job:     job.Name(),
		Kind:    string(job.Kind),
		Host:    job.Host.String(),
		Python:  job.Version.String(),
		Targets: job.Targets,
		Worker:  worker,
	}
}

func newJobFinished(job matrix.Job, d time.Duration, err error) JobFinished {
	f := JobFinished{Job: job.Name(), Kind: string(job.Kind), DurationMS: d.Milliseconds()}
	if err != nil {
		f.Error = err.Error()
		if ce, ok := errors.AsClassified(err); ok {
			if code, ok := ce.Context().Get("exit_code"); ok {
				if n, ok := code.(int); ok {
					f.ExitCode = &n
				}
			}
		}
	}
	return f
}
