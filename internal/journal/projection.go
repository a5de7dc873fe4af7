package journal

import (
	"context"
	"encoding/json"
	"slices"
	"time"
)

// RunSummary is a read model of one run rebuilt from its events.
type RunSummary struct {
	RunID      string
	Build      string
	Status     string
	StartedAt  time.Time
	FinishedAt *time.Time
	Jobs       int
	Succeeded  int
	Failed     int
	Error      string
}

// Summaries rebuilds run summaries from every journaled event, newest first.
func Summaries(ctx context.Context, store Store) ([]*RunSummary, error) {
	events, err := store.GetRange(ctx, time.Time{}, time.Now().Add(time.Hour))
	if err != nil {
		return nil, err
	}
	byRun := make(map[string]*RunSummary)
	var order []*RunSummary
	for _, e := range events {
		s, ok := byRun[e.RunID]
		if !ok {
			s = &RunSummary{RunID: e.RunID, Status: StatusRunning, StartedAt: e.Timestamp}
			byRun[e.RunID] = s
			order = append(order, s)
		}
		apply(s, e)
	}
	slices.SortStableFunc(order, func(a, b *RunSummary) int {
		return b.StartedAt.Compare(a.StartedAt)
	})
	return order, nil
}

func apply(s *RunSummary, e Event) {
	switch e.Type {
	case TypeRunStarted:
		var p RunStarted
		if err := json.Unmarshal(e.Payload, &p); err == nil {
			s.Build = p.Build
			s.Jobs = 0
			for _, n := range p.Groups {
				s.Jobs += n
			}
		}
		s.StartedAt = e.Timestamp
	case TypeJobSucceeded:
		s.Succeeded++
	case TypeJobFailed:
		s.Failed++
	case TypeRunFinished:
		var p RunFinished
		if err := json.Unmarshal(e.Payload, &p); err == nil {
			s.Status = p.Status
			s.Error = p.Error
		}
		ts := e.Timestamp
		s.FinishedAt = &ts
	}
}
