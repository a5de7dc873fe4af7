package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"git.home.luguber.info/inful/crosspy/internal/config"
	"git.home.luguber.info/inful/crosspy/internal/foundation/errors"
	"git.home.luguber.info/inful/crosspy/internal/interp"
	"git.home.luguber.info/inful/crosspy/internal/logfields"
)

// Global carries process-wide collaborators into every command.
type Global struct {
	// Runner executes the build interpreter for introspection.
	Runner interp.Runner
	// Stdout receives command output and streamed backend output.
	Stdout io.Writer
}

// NewGlobal returns the collaborators used by the real binary.
func NewGlobal() *Global {
	return &Global{Runner: interp.ExecRunner{}, Stdout: os.Stdout}
}

func (g *Global) stdout() io.Writer {
	if g == nil || g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

func (g *Global) runner() interp.Runner {
	if g == nil || g.Runner == nil {
		return interp.ExecRunner{}
	}
	return g.Runner
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path (optional)" default:"crosspy.yaml"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `name:"log-format" help:"Log output format (text|json); overrides the config file"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build     BuildCmd     `cmd:"" help:"Build the selected Python versions and packages for every target platform"`
	Plan      PlanCmd      `cmd:"" help:"Print the build matrix and the exact backend command lines without running them"`
	Toolchain ToolchainCmd `cmd:"" help:"Generate CMake cross-toolchain files"`
	Probe     ProbeCmd     `cmd:"" help:"Locate a staged target Python runtime the way the toolchain file does"`
	Runs      RunsCmd      `cmd:"" help:"List journaled build runs"`
	Init      InitCmd      `cmd:"" help:"Write an example configuration file"`

	cfg *config.Config
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := config.NormalizeLogLevel(os.Getenv(config.EnvLogLevel))
	c.installLogger(level, config.NormalizeLogFormat(c.LogFormat))
	return nil
}

// LoadConfig loads the configuration file once and reinstalls the logger
// with its log settings. A missing file is only an error when --config
// points somewhere other than the default.
func (c *CLI) LoadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	path := c.Config
	if path == "" {
		path = config.DefaultPath
	}
	cfg, err := config.LoadOptional(path, path != config.DefaultPath)
	if err != nil {
		return nil, err
	}
	format := cfg.Log.Format
	if c.LogFormat != "" {
		format = config.NormalizeLogFormat(c.LogFormat)
	}
	c.installLogger(cfg.Log.Level, format)
	slog.Debug("Configuration loaded", logfields.Path(path))
	c.cfg = cfg
	return cfg, nil
}

func (c *CLI) installLogger(level config.LogLevel, format config.LogFormat) {
	lvl := level.SlogLevel()
	if c.Verbose {
		lvl = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// resolveBuild picks the build triple: flag, then config, then the build
// interpreter's HOST_GNU_TYPE.
func resolveBuild(ctx context.Context, g *Global, flag string, cfg *config.Config, python string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if cfg.Build != "" {
		return cfg.Build, nil
	}
	build, err := interp.HostGNUType(ctx, g.runner(), python)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryIntrospection, "cannot determine the build triple; pass --build").
			UserAction().
			Build()
	}
	slog.Debug("Build triple from interpreter", logfields.Build(build), logfields.Python(python))
	return build, nil
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(
		w,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Borders:  tw.BorderNone,
			Settings: tw.Settings{Separators: tw.Separators{BetweenColumns: tw.On}},
		})),
	)
}
