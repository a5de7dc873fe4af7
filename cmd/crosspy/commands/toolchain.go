package commands

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/crosspy/internal/config"
	"git.home.luguber.info/inful/crosspy/internal/foundation/errors"
	"git.home.luguber.info/inful/crosspy/internal/logfields"
	"git.home.luguber.info/inful/crosspy/internal/platform"
	"git.home.luguber.info/inful/crosspy/internal/toolchain"
)

// ToolchainCmd implements the 'toolchain' command.
type ToolchainCmd struct {
	Triple string `arg:"" optional:"" help:"GNU triple of the target platform"`
	Output string `arg:"" optional:"" help:"Output file (default: stdout)"`

	Compiler  string `help:"Compiler family (gcc|clang); overrides the config file"`
	Flang     bool   `help:"Use flang for Fortran (clang only)"`
	Root      string `help:"Directory holding x-tools/ and the Python staging directories (default: the toolchain file's parent directory)"`
	Format    string `default:"cmake" enum:"cmake,yaml" help:"Output format (cmake|yaml)"`
	All       bool   `help:"Write one file per configured default platform"`
	OutputDir string `name:"output-dir" default:"." help:"Directory for --all output"`
	Watch     bool   `help:"Regenerate whenever the configuration file changes"`
}

func (t *ToolchainCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	if !t.All && t.Triple == "" {
		return errors.ValidationError("a target triple is required unless --all is given").UserAction().Build()
	}
	if t.All && t.Output != "" {
		return errors.ValidationError("--all writes to --output-dir; do not pass an output file").UserAction().Build()
	}
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	if err := t.generate(g, cfg); err != nil {
		return err
	}
	if !t.Watch {
		return nil
	}
	w, err := config.NewWatcher(root.Config, config.DefaultDebounce, func(_ context.Context, cfg *config.Config) error {
		return t.generate(g, cfg)
	})
	if err != nil {
		return err
	}
	return w.Run(ctx)
}

func (t *ToolchainCmd) options(cfg *config.Config) (toolchain.Options, error) {
	opts := cfg.ToolchainOptions()
	if t.Compiler != "" {
		family, err := toolchain.ParseCompilerFamily(t.Compiler)
		if err != nil {
			return toolchain.Options{}, err
		}
		opts.Compiler = family
	}
	if t.Flang {
		opts.Flang = true
	}
	if t.Root != "" {
		opts.Root = t.Root
	}
	return opts, nil
}

func (t *ToolchainCmd) targets(cfg *config.Config) ([]platform.Triple, error) {
	if !t.All {
		triple, err := platform.Parse(t.Triple)
		if err != nil {
			return nil, err
		}
		return []platform.Triple{triple}, nil
	}
	defaults, err := cfg.MatrixDefaults()
	if err != nil {
		return nil, err
	}
	return defaults.Platforms, nil
}

func (t *ToolchainCmd) generate(g *Global, cfg *config.Config) error {
	opts, err := t.options(cfg)
	if err != nil {
		return err
	}
	triples, err := t.targets(cfg)
	if err != nil {
		return err
	}
	format := toolchain.Format(t.Format)
	for _, triple := range triples {
		d, err := toolchain.Generate(triple, opts)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := d.Write(&buf, format); err != nil {
			return err
		}
		path := t.outputPath(triple, format)
		if path == "" {
			if _, err := g.stdout().Write(buf.Bytes()); err != nil {
				return err
			}
			continue
		}
		if err := writeFile(path, buf.Bytes()); err != nil {
			return err
		}
		slog.Info("Toolchain file written", logfields.Host(triple.String()), logfields.Path(path))
	}
	return nil
}

// outputPath returns "" for stdout.
func (t *ToolchainCmd) outputPath(triple platform.Triple, format toolchain.Format) string {
	if !t.All {
		if t.Output == "-" {
			return ""
		}
		return t.Output
	}
	ext := ".cmake"
	if format == toolchain.FormatYAML {
		ext = ".yaml"
	}
	return filepath.Join(t.OutputDir, triple.String()+".toolchain"+ext)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to create output directory").
				WithContext("path", dir).
				Build()
		}
	}
	// #nosec G306 -- toolchain files are read by CMake and the build backend
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write toolchain file").
			WithContext("path", path).
			Build()
	}
	return nil
}
