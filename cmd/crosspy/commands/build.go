package commands

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/crosspy/internal/dispatch"
	"git.home.luguber.info/inful/crosspy/internal/journal"
	"git.home.luguber.info/inful/crosspy/internal/logfields"
	"git.home.luguber.info/inful/crosspy/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	SelectionFlags `embed:""`

	DryRun      bool   `name:"dry-run" help:"Print the plan instead of running the backend"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics to this textfile when the run ends"`
	Journal     string `name:"journal" help:"SQLite database recording run and job events"`
}

func (b *BuildCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	if b.MetricsFile != "" {
		cfg.Metrics.File = b.MetricsFile
	}
	if b.Journal != "" {
		cfg.Journal.Path = b.Journal
	}

	groups, err := b.expand(ctx, g, cfg)
	if err != nil {
		return err
	}
	if b.DryRun {
		return printPlan(g.stdout(), dispatcher(g, cfg), groups)
	}

	var opts []dispatch.Option

	var recorder *metrics.PrometheusRecorder
	if cfg.Metrics.File != "" {
		recorder = metrics.NewPrometheusRecorder(prometheus.NewRegistry())
		opts = append(opts, dispatch.WithRecorder(recorder))
	}

	if cfg.Journal.Path != "" {
		store, err := journal.NewSQLiteStore(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := store.Close(); cerr != nil {
				slog.Warn("Failed to close journal", logfields.Path(cfg.Journal.Path), logfields.Error(cerr))
			}
		}()
		j := journal.New(store, journal.NewRunID())
		slog.Info("Journaling run", logfields.RunID(j.RunID()), logfields.Path(cfg.Journal.Path))
		opts = append(opts, dispatch.WithObserver(j))
	}

	runErr := dispatcher(g, cfg, opts...).Run(ctx, groups)

	if recorder != nil {
		if err := recorder.WriteTextfile(cfg.Metrics.File); err != nil {
			if runErr != nil {
				slog.Error("Failed to write metrics", logfields.Error(err))
				return runErr
			}
			return err
		}
		slog.Debug("Metrics written", logfields.Path(cfg.Metrics.File))
	}
	return runErr
}
