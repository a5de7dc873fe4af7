package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/crosspy/internal/dispatch"
	"git.home.luguber.info/inful/crosspy/internal/matrix"
)

// PlanCmd implements the 'plan' command.
type PlanCmd struct {
	SelectionFlags `embed:""`
}

func (p *PlanCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	groups, err := p.expand(ctx, g, cfg)
	if err != nil {
		return err
	}
	d := dispatcher(g, cfg)
	return printPlan(g.stdout(), d, groups)
}

// printPlan renders every job with the command line it would run.
func printPlan(w io.Writer, d *dispatch.Dispatcher, groups []matrix.Group) error {
	planned, err := d.Plan(groups)
	if err != nil {
		return err
	}
	tbl := newTable(w)
	tbl.Header([]string{"#", "Kind", "Host", "Python", "Targets", "Command"})
	rows := make([][]any, 0, len(planned))
	for i, pj := range planned {
		rows = append(rows, []any{
			strconv.Itoa(i + 1),
			string(pj.Job.Kind),
			pj.Job.Host.String(),
			pj.Job.Version.String(),
			strings.Join(pj.Job.Targets, " "),
			strings.Join(pj.Args, " "),
		})
	}
	if err := tbl.Bulk(rows); err != nil {
		return err
	}
	if err := tbl.Render(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%d jobs in %d groups, %d workers\n", len(planned), len(groups), d.Workers())
	return err
}
