package config

import (
	"log/slog"
	"os"

	"git.home.luguber.info/inful/crosspy/internal/interp"
)

// EnvLogLevel overrides the configured log level when set.
const EnvLogLevel = "CROSSPY_LOG_LEVEL"

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config)
	Domain() string
}

// BackendDefaultApplier handles Backend configuration defaults.
type BackendDefaultApplier struct{}

func (BackendDefaultApplier) Domain() string { return "backend" }

func (BackendDefaultApplier) ApplyDefaults(cfg *Config) {
	if cfg.Backend.Command == "" {
		cfg.Backend.Command = "make"
	}
	if cfg.Backend.Directory == "" {
		cfg.Backend.Directory = "."
	}
}

// BuildDefaultApplier handles the build interpreter and pool size.
type BuildDefaultApplier struct{}

func (BuildDefaultApplier) Domain() string { return "build" }

func (BuildDefaultApplier) ApplyDefaults(cfg *Config) {
	if cfg.BuildPython == "" {
		cfg.BuildPython = interp.DefaultPython
	}
	// Negative values mean "pick for me", same as omitting the field.
	if cfg.Jobs < 0 {
		cfg.Jobs = 0
	}
}

// ToolchainDefaultApplier normalizes the compiler family.
type ToolchainDefaultApplier struct{}

func (ToolchainDefaultApplier) Domain() string { return "toolchain" }

func (ToolchainDefaultApplier) ApplyDefaults(cfg *Config) {
	if cfg.Toolchain.Compiler == "" {
		cfg.Toolchain.Compiler = "gcc"
	}
}

// LogDefaultApplier normalizes log level and format.
type LogDefaultApplier struct{}

func (LogDefaultApplier) Domain() string { return "log" }

func (LogDefaultApplier) ApplyDefaults(cfg *Config) {
	cfg.Log.Level = NormalizeLogLevel(string(cfg.Log.Level))
	cfg.Log.Format = NormalizeLogFormat(string(cfg.Log.Format))
}

var appliers = []DefaultApplier{
	BackendDefaultApplier{},
	BuildDefaultApplier{},
	ToolchainDefaultApplier{},
	LogDefaultApplier{},
}

func applyDefaults(cfg *Config) {
	for _, a := range appliers {
		a.ApplyDefaults(cfg)
		slog.Debug("Applied configuration defaults", slog.String("domain", a.Domain()))
	}
}

func applyEnvOverrides(cfg *Config) {
	if raw := os.Getenv(EnvLogLevel); raw != "" {
		cfg.Log.Level = NormalizeLogLevel(raw)
	}
}
