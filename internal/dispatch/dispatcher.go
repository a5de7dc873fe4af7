// Package dispatch runs job groups on a bounded worker pool, one backend
// process per worker, failing fast within each group.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/crosspy/internal/backend"
	"git.home.luguber.info/inful/crosspy/internal/logfields"
	"git.home.luguber.info/inful/crosspy/internal/matrix"
	"git.home.luguber.info/inful/crosspy/internal/metrics"
)

// Backend executes one job.
type Backend interface {
	Args(job matrix.Job, params []backend.Param) []string
	Run(ctx context.Context, job matrix.Job, params []backend.Param) error
}

// Observer receives run lifecycle callbacks. It must be safe for
// concurrent use; JobStarted and JobFinished are called from workers.
type Observer interface {
	RunStarted(ctx context.Context, build string, groups []matrix.Group, workers int)
	JobStarted(ctx context.Context, job matrix.Job, worker string)
	JobFinished(ctx context.Context, job matrix.Job, d time.Duration, err error)
	RunFinished(ctx context.Context, d time.Duration, err error)
}

// NoopObserver ignores every callback.
type NoopObserver struct{}

func (NoopObserver) RunStarted(context.Context, string, []matrix.Group, int)       {}
func (NoopObserver) JobStarted(context.Context, matrix.Job, string)                {}
func (NoopObserver) JobFinished(context.Context, matrix.Job, time.Duration, error) {}
func (NoopObserver) RunFinished(context.Context, time.Duration, error)             {}

// DefaultWorkers is half the available hardware parallelism, at least one.
func DefaultWorkers() int {
	return max(1, runtime.NumCPU()/2)
}

// Dispatcher maps jobs to backend invocations.
type Dispatcher struct {
	backend  Backend
	workers  int
	releases backend.Releases
	recorder metrics.Recorder
	observer Observer
	logger   *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithWorkers sets the pool size; values below one select DefaultWorkers.
func WithWorkers(n int) Option {
	return func(d *Dispatcher) {
		if n < 1 {
			n = DefaultWorkers()
		}
		d.workers = n
	}
}

// WithReleases sets the PyPy release table.
func WithReleases(r backend.Releases) Option {
	return func(d *Dispatcher) { d.releases = r }
}

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(d *Dispatcher) {
		if r == nil {
			r = metrics.NoopRecorder{}
		}
		d.recorder = r
	}
}

// WithObserver injects a lifecycle observer such as the run journal.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) {
		if o == nil {
			o = NoopObserver{}
		}
		d.observer = o
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// New creates a dispatcher for b.
func New(b Backend, opts ...Option) *Dispatcher {
	if b == nil {
		panic("dispatch.New: backend is required")
	}
	d := &Dispatcher{
		backend:  b,
		workers:  DefaultWorkers(),
		releases: backend.DefaultReleases(),
		recorder: metrics.NoopRecorder{},
		observer: NoopObserver{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Workers returns the configured pool size.
func (d *Dispatcher) Workers() int { return d.workers }

type task struct {
	job    matrix.Job
	params []backend.Param
}

// resolve computes every job's parameters up front, so an unresolvable
// PyPy line aborts the group before any process starts.
func (d *Dispatcher) resolve(g matrix.Group) ([]task, error) {
	tasks := make([]task, 0, len(g.Jobs))
	for _, job := range g.Jobs {
		params, err := backend.Params(job, d.releases)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task{job: job, params: params})
	}
	return tasks, nil
}

// Run executes groups in order. The first failing job cancels its group,
// killing in-flight processes and skipping queued jobs, and its error ends
// the run. There is no retry.
func (d *Dispatcher) Run(ctx context.Context, groups []matrix.Group) error {
	build := ""
	if len(groups) > 0 && len(groups[0].Jobs) > 0 {
		build = groups[0].Jobs[0].Build
	}
	start := time.Now()
	d.recorder.SetWorkers(d.workers)
	d.observer.RunStarted(ctx, build, groups, d.workers)
	d.logger.Info("Starting run", logfields.Build(build), logfields.Jobs(matrix.Len(groups)), logfields.Workers(d.workers))

	var err error
	for _, g := range groups {
		if err = d.runGroup(ctx, g); err != nil {
			break
		}
	}

	elapsed := time.Since(start)
	d.observer.RunFinished(ctx, elapsed, err)
	if err != nil {
		d.logger.Error("Run failed", logfields.DurationMS(float64(elapsed.Milliseconds())), logfields.Error(err))
		return err
	}
	d.logger.Info("Run completed", logfields.DurationMS(float64(elapsed.Milliseconds())))
	return nil
}

func (d *Dispatcher) runGroup(ctx context.Context, g matrix.Group) error {
	kind := string(g.Kind)
	start := time.Now()
	tasks, err := d.resolve(g)
	if err != nil {
		d.recorder.IncGroupOutcome(kind, metrics.OutcomeFailed)
		return err
	}
	if len(tasks) == 0 {
		return nil
	}

	workers := min(d.workers, len(tasks))
	d.logger.Info("Starting group", logfields.Kind(kind), logfields.Jobs(len(tasks)), logfields.Workers(workers))

	queue := make(chan task, len(tasks))
	for _, t := range tasks {
		queue <- t
	}
	close(queue)

	eg, gctx := errgroup.WithContext(ctx)
	for i := range workers {
		worker := fmt.Sprintf("worker-%d", i)
		eg.Go(func() error {
			for t := range queue {
				if gctx.Err() != nil {
					return nil
				}
				if err := d.runJob(gctx, t, worker); err != nil {
					return err
				}
			}
			return nil
		})
	}
	err = eg.Wait()
	if err == nil {
		err = ctx.Err()
	}

	elapsed := time.Since(start)
	d.recorder.ObserveGroupDuration(kind, elapsed)
	if err != nil {
		d.recorder.IncGroupOutcome(kind, metrics.OutcomeFailed)
		return err
	}
	d.recorder.IncGroupOutcome(kind, metrics.OutcomeSuccess)
	d.logger.Info("Group completed", logfields.Kind(kind), logfields.DurationMS(float64(elapsed.Milliseconds())))
	return nil
}

func (d *Dispatcher) runJob(ctx context.Context, t task, worker string) error {
	kind := string(t.job.Kind)
	logger := d.logger.With(logfields.Job(t.job.Name()), logfields.Worker(worker))
	d.observer.JobStarted(ctx, t.job, worker)
	logger.Debug("Job started", logfields.Host(t.job.Host.String()), logfields.Python(t.job.Version.String()), logfields.Targets(t.job.Targets))

	start := time.Now()
	err := d.backend.Run(ctx, t.job, t.params)
	elapsed := time.Since(start)

	d.recorder.ObserveJobDuration(kind, elapsed)
	d.observer.JobFinished(ctx, t.job, elapsed, err)
	switch {
	case err == nil:
		d.recorder.IncJobOutcome(kind, metrics.OutcomeSuccess)
		logger.Info("Job succeeded", logfields.DurationMS(float64(elapsed.Milliseconds())))
	case ctx.Err() != nil:
		// Killed because another job in the group failed first.
		d.recorder.IncJobOutcome(kind, metrics.OutcomeCanceled)
		logger.Warn("Job canceled", logfields.Error(err))
	default:
		d.recorder.IncJobOutcome(kind, metrics.OutcomeFailed)
		logger.Error("Job failed", logfields.DurationMS(float64(elapsed.Milliseconds())), logfields.Error(err))
	}
	return err
}
