package dispatch

import (
	"git.home.luguber.info/inful/crosspy/internal/matrix"
)

// PlannedJob is a job with the exact command line it would run.
type PlannedJob struct {
	Job  matrix.Job
	Args []string
}

// Plan resolves every job's command line without running anything. It fails
// on the same conditions that would abort Run before a group starts.
func (d *Dispatcher) Plan(groups []matrix.Group) ([]PlannedJob, error) {
	out := make([]PlannedJob, 0, matrix.Len(groups))
	for _, g := range groups {
		tasks, err := d.resolve(g)
		if err != nil {
			return nil, err
		}
		for _, t := range tasks {
			out = append(out, PlannedJob{Job: t.job, Args: d.backend.Args(t.job, t.params)})
		}
	}
	return out, nil
}
