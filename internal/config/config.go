package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/crosspy/internal/foundation/errors"
)

// DefaultPath is the configuration file looked up when --config is not given.
const DefaultPath = "crosspy.yaml"

// Config represents the application configuration.
type Config struct {
	// Build is the build-machine GNU triple. Empty means ask the build interpreter.
	Build string `yaml:"build,omitempty"`
	// BuildPython is the interpreter used for introspection and packages jobs.
	BuildPython string `yaml:"build_python,omitempty"`
	// Jobs is the worker pool size; 0 picks the default.
	Jobs int `yaml:"jobs,omitempty"`

	Backend      BackendConfig     `yaml:"backend"`
	Defaults     DefaultsConfig    `yaml:"defaults"`
	PyPyReleases map[string]string `yaml:"pypy_releases,omitempty"`
	Toolchain    ToolchainConfig   `yaml:"toolchain"`
	Journal      JournalConfig     `yaml:"journal"`
	Metrics      MetricsConfig     `yaml:"metrics"`
	Log          LogConfig         `yaml:"log"`
}

// BackendConfig locates the make-based build backend.
type BackendConfig struct {
	Command   string `yaml:"command"`
	Directory string `yaml:"directory"`
}

// DefaultsConfig overrides the built-in default tables. Empty lists keep
// the built-in table.
type DefaultsConfig struct {
	Platforms []string `yaml:"platforms,omitempty"`
	Python    []string `yaml:"python,omitempty"`
	PyPy      []string `yaml:"pypy,omitempty"`
	Packages  []string `yaml:"packages,omitempty"`
}

// ToolchainConfig holds descriptor generation settings.
type ToolchainConfig struct {
	Compiler string `yaml:"compiler,omitempty"`
	Flang    bool   `yaml:"flang,omitempty"`
	Root     string `yaml:"root,omitempty"`
}

// JournalConfig enables the SQLite run journal when Path is set.
type JournalConfig struct {
	Path string `yaml:"path,omitempty"`
}

// MetricsConfig enables the Prometheus textfile export when File is set.
type MetricsConfig struct {
	File string `yaml:"file,omitempty"`
}

// LogConfig controls the root logger.
type LogConfig struct {
	Level  LogLevel  `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.ConfigError("configuration file not found").
			WithContext("path", configPath).
			UserAction().
			Build()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read config file").
			WithContext("path", configPath).
			Build()
	}

	// Expand environment variables in the YAML content
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").
			WithContext("path", configPath).
			UserAction().
			Build()
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOptional behaves like Load but returns the defaults when the file
// does not exist. A missing explicit path is still an error; callers decide
// which case applies through required.
func LoadOptional(configPath string, required bool) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) && !required {
		loadEnvFiles()
		cfg := Default()
		applyEnvOverrides(cfg)
		return cfg, nil
	}
	return Load(configPath)
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			UserAction().
			Build()
	}

	example := Default()
	example.Build = "x86_64-linux-gnu"
	example.Defaults.Platforms = []string{"x86_64-centos7-linux-gnu", "aarch64-rpi3-linux-gnu"}
	example.Defaults.Python = []string{"3.10.9", "3.11.1"}

	data, err := yaml.Marshal(example)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal config").Build()
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}

// envFiles are loaded in order. Variables already present in the process
// environment are never overwritten, so earlier files win over later ones.
var envFiles = []string{".env", ".env.local"}

func loadEnvFiles() {
	var found []string
	for _, path := range envFiles {
		if _, err := os.Stat(path); err == nil {
			found = append(found, path)
		}
	}
	if len(found) == 0 {
		return
	}
	_ = godotenv.Load(found...)
}
