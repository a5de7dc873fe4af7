package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/crosspy/cmd/crosspy/commands"
	"git.home.luguber.info/inful/crosspy/internal/foundation/errors"
	"git.home.luguber.info/inful/crosspy/internal/version"
)

func main() {
	// Ctrl-C cancels the run: in-flight backend processes are killed.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("crosspy"),
		kong.Description("Cross-compile CPython, PyPy and native packages for a matrix of target platforms."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	err := parser.Run(commands.NewGlobal(), cli)
	cancel()
	code := errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).Report(err)
	os.Exit(code)
}
