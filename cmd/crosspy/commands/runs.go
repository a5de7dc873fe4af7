package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"git.home.luguber.info/inful/crosspy/internal/foundation/errors"
	"git.home.luguber.info/inful/crosspy/internal/journal"
)

// RunsCmd implements the 'runs' command.
type RunsCmd struct {
	Journal string `name:"journal" help:"SQLite journal database (default: config journal.path)"`
	RunID   string `arg:"" optional:"" name:"run-id" help:"Show the events of one run"`
}

func (r *RunsCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	path := r.Journal
	if path == "" {
		path = cfg.Journal.Path
	}
	if path == "" {
		return errors.ValidationError("no journal configured; pass --journal").UserAction().Build()
	}
	store, err := journal.NewSQLiteStore(path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if r.RunID != "" {
		return printEvents(ctx, g.stdout(), store, r.RunID)
	}
	return printSummaries(ctx, g.stdout(), store)
}

func printSummaries(ctx context.Context, w io.Writer, store journal.Store) error {
	summaries, err := journal.Summaries(ctx, store)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		_, err := fmt.Fprintln(w, "no runs recorded")
		return err
	}
	rows := make([][]any, 0, len(summaries))
	for _, s := range summaries {
		duration := "-"
		if s.FinishedAt != nil {
			duration = s.FinishedAt.Sub(s.StartedAt).Round(time.Second).String()
		}
		rows = append(rows, []any{
			s.RunID,
			s.StartedAt.Local().Format(time.DateTime),
			s.Status,
			s.Build,
			strconv.Itoa(s.Jobs),
			strconv.Itoa(s.Succeeded),
			strconv.Itoa(s.Failed),
			duration,
		})
	}
	tbl := newTable(w)
	tbl.Header([]string{"Run", "Started", "Status", "Build", "Jobs", "Succeeded", "Failed", "Duration"})
	if err := tbl.Bulk(rows); err != nil {
		return err
	}
	return tbl.Render()
}

func printEvents(ctx context.Context, w io.Writer, store journal.Store, runID string) error {
	events, err := store.GetByRunID(ctx, runID)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return errors.ValidationError("run not found in journal").WithContext("run_id", runID).UserAction().Build()
	}
	rows := make([][]any, 0, len(events))
	for _, e := range events {
		job, detail := describeEvent(e)
		rows = append(rows, []any{e.Timestamp.Local().Format(time.DateTime), e.Type, job, detail})
	}
	tbl := newTable(w)
	tbl.Header([]string{"Time", "Event", "Job", "Detail"})
	if err := tbl.Bulk(rows); err != nil {
		return err
	}
	return tbl.Render()
}

func describeEvent(e journal.Event) (job, detail string) {
	switch e.Type {
	case journal.TypeRunStarted:
		var p journal.RunStarted
		if json.Unmarshal(e.Payload, &p) == nil {
			return "", fmt.Sprintf("build=%s workers=%d", p.Build, p.Workers)
		}
	case journal.TypeJobStarted:
		var p journal.JobStarted
		if json.Unmarshal(e.Payload, &p) == nil {
			return p.Job, p.Worker
		}
	case journal.TypeJobSucceeded, journal.TypeJobFailed:
		var p journal.JobFinished
		if json.Unmarshal(e.Payload, &p) == nil {
			detail = (time.Duration(p.DurationMS) * time.Millisecond).String()
			if p.ExitCode != nil {
				detail += fmt.Sprintf(" exit=%d", *p.ExitCode)
			}
			return p.Job, detail
		}
	case journal.TypeRunFinished:
		var p journal.RunFinished
		if json.Unmarshal(e.Payload, &p) == nil {
			if p.Error != "" {
				return "", p.Status + ": " + p.Error
			}
			return "", p.Status
		}
	}
	return "", string(e.Payload)
}
