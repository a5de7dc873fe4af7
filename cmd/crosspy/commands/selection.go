package commands

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/crosspy/internal/backend"
	"git.home.luguber.info/inful/crosspy/internal/config"
	"git.home.luguber.info/inful/crosspy/internal/dispatch"
	"git.home.luguber.info/inful/crosspy/internal/interp"
	"git.home.luguber.info/inful/crosspy/internal/logfields"
	"git.home.luguber.info/inful/crosspy/internal/matrix"
	"git.home.luguber.info/inful/crosspy/internal/pyversion"
)

// SelectionFlags are the matrix selectors shared by build and plan.
type SelectionFlags struct {
	Build       string   `help:"GNU triple of the build machine (default: config, then the build interpreter's HOST_GNU_TYPE)"`
	Host        []string `help:"GNU triple of a target platform (repeatable; default: all default platforms)"`
	Python      []string `name:"python" aliases:"py" sep:"none" help:"CPython version to build, or 'default' (repeatable)"`
	PyPy        []string `name:"pypy" sep:"none" help:"PyPy version to install, or 'default' (repeatable)"`
	Package     []string `short:"p" name:"package" sep:"none" help:"Package to build, or 'default' (repeatable)"`
	BuildPython string   `name:"build-python" help:"Build interpreter used for introspection and package jobs (default: config, then python3)"`
	Backend     string   `name:"backend" help:"Build backend program (default: config, then make)"`
	BackendDir  string   `name:"backend-dir" help:"Directory the backend runs in (default: config, then .)"`
	Jobs        int      `short:"j" help:"Number of parallel jobs (0: config, then half the CPUs)"`
}

// apply copies flags that override config values into cfg.
func (s *SelectionFlags) apply(cfg *config.Config) {
	if s.BuildPython != "" {
		cfg.BuildPython = s.BuildPython
	}
	if s.Backend != "" {
		cfg.Backend.Command = s.Backend
	}
	if s.BackendDir != "" {
		cfg.Backend.Directory = s.BackendDir
	}
	if s.Jobs > 0 {
		cfg.Jobs = s.Jobs
	}
}

// expand resolves the build triple and turns the selectors into job groups.
func (s *SelectionFlags) expand(ctx context.Context, g *Global, cfg *config.Config) ([]matrix.Group, error) {
	s.apply(cfg)
	defaults, err := cfg.MatrixDefaults()
	if err != nil {
		return nil, err
	}
	build, err := resolveBuild(ctx, g, s.Build, cfg, cfg.BuildPython)
	if err != nil {
		return nil, err
	}
	current := func(ctx context.Context) (pyversion.Version, error) {
		return interp.Current(ctx, g.runner(), cfg.BuildPython)
	}
	sel := matrix.Selection{
		Python:   s.Python,
		PyPy:     s.PyPy,
		Packages: s.Package,
		Hosts:    s.Host,
		Build:    build,
	}
	groups, err := matrix.NewExpander(defaults, current).Expand(ctx, sel)
	if err != nil {
		return nil, err
	}
	for _, grp := range groups {
		slog.Debug("Expanded group", logfields.Kind(string(grp.Kind)), logfields.Jobs(len(grp.Jobs)))
	}
	return groups, nil
}

// dispatcher creates the backend and dispatcher described by cfg.
func dispatcher(g *Global, cfg *config.Config, opts ...dispatch.Option) *dispatch.Dispatcher {
	b := backend.NewMake(cfg.Backend.Command, cfg.Backend.Directory, g.stdout())
	base := []dispatch.Option{
		dispatch.WithWorkers(cfg.Jobs),
		dispatch.WithReleases(cfg.Releases()),
	}
	return dispatch.New(b, append(base, opts...)...)
}
