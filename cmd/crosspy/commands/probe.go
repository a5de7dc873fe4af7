package commands

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/crosspy/internal/foundation/errors"
	"git.home.luguber.info/inful/crosspy/internal/platform"
	"git.home.luguber.info/inful/crosspy/internal/probe"
)

// ProbeCmd implements the 'probe' command.
type ProbeCmd struct {
	Python      string `help:"Build interpreter to introspect (default: config, then python3)"`
	Host        string `required:"" help:"GNU triple of the target platform"`
	StagingRoot string `name:"staging-root" default:"." help:"Directory holding the python<ver> and pypy<ver>-v<release> staging directories"`
}

func (p *ProbeCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	host, err := platform.Parse(p.Host)
	if err != nil {
		return err
	}
	python := p.Python
	if python == "" {
		python = cfg.BuildPython
	}

	d, err := probe.Discover(ctx, g.runner(), probe.Request{Python: python, Host: host, StagingRoot: p.StagingRoot})
	if err != nil {
		return err
	}
	for _, w := range d.Warnings {
		slog.Warn(w.Message(), slog.Any("context", w.Context()))
	}

	rows := [][]any{
		{"implementation", string(d.Implementation.Family())},
		{"version", d.Version},
	}
	switch impl := d.Implementation.(type) {
	case probe.CPython:
		rows = append(rows,
			[]any{"build abiflags", impl.BuildABIFlags},
			[]any{"cross abiflags", impl.CrossABIFlags},
		)
	case probe.PyPy:
		rows = append(rows,
			[]any{"pypy release", impl.Release},
			[]any{"library tag", impl.LibVersion},
		)
	default:
		return errors.InternalError("unknown implementation variant").Build()
	}
	rows = append(rows,
		[]any{"staging dir", d.StagingDir},
		[]any{"library", d.Library},
		[]any{"include dir", d.IncludeDir},
		[]any{"extension suffix", d.ExtensionSuffix},
	)

	tbl := newTable(g.stdout())
	tbl.Header([]string{"Property", "Value"})
	if err := tbl.Bulk(rows); err != nil {
		return err
	}
	return tbl.Render()
}
