package journal

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/crosspy/internal/logfields"
	"git.home.luguber.info/inful/crosspy/internal/matrix"
)

// Journal records the lifecycle of one run. Write failures are logged and
// never fail the build.
type Journal struct {
	store Store
	runID string
}

// New creates a journal for runID backed by store.
func New(store Store, runID string) *Journal {
	return &Journal{store: store, runID: runID}
}

// RunID returns the identifier all events are recorded under.
func (j *Journal) RunID() string { return j.runID }

func (j *Journal) append(ctx context.Context, eventType string, v any) {
	payload, err := marshalPayload(eventType, v)
	if err == nil {
		err = j.store.Append(context.WithoutCancel(ctx), j.runID, eventType, payload, nil)
	}
	if err != nil {
		slog.Warn("Failed to journal event", logfields.RunID(j.runID), slog.String("event_type", eventType), logfields.Error(err))
	}
}

// RunStarted records the start of a run over groups.
func (j *Journal) RunStarted(ctx context.Context, build string, groups []matrix.Group, workers int) {
	counts := make(map[string]int, len(groups))
	for _, g := range groups {
		counts[string(g.Kind)] = len(g.Jobs)
	}
	j.append(ctx, TypeRunStarted, RunStarted{Build: build, Workers: workers, Groups: counts})
}

// JobStarted records a job picked up by worker.
func (j *Journal) JobStarted(ctx context.Context, job matrix.Job, worker string) {
	j.append(ctx, TypeJobStarted, newJobStarted(job, worker))
}

// JobFinished records a job outcome.
func (j *Journal) JobFinished(ctx context.Context, job matrix.Job, d time.Duration, err error) {
	eventType := TypeJobSucceeded
	if err != nil {
		eventType = TypeJobFailed
	}
	j.append(ctx, eventType, newJobFinished(job, d, err))
}

// RunFinished records the end of the run.
func (j *Journal) RunFinished(ctx context.Context, d time.Duration, err error) {
	rf := RunFinished{Status: StatusSucceeded, DurationMS: d.Milliseconds()}
	if err != nil {
		rf.Status = StatusFailed
		rf.Error = err.Error()
	}
	j.append(ctx, TypeRunFinished, rf)
}
