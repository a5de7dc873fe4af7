package config

import (
	"regexp"
	"strings"

	"git.home.luguber.info/inful/crosspy/internal/foundation/errors"
	"git.home.luguber.info/inful/crosspy/internal/platform"
	"git.home.luguber.info/inful/crosspy/internal/pyversion"
	"git.home.luguber.info/inful/crosspy/internal/toolchain"
)

var pypyLinePattern = regexp.MustCompile(`^\d+\.\d+$`)

// Validate checks the configuration after defaults were applied.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateBuild,
		c.validateBackend,
		c.validateDefaults,
		c.validatePyPyReleases,
		c.validateToolchain,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateBuild() error {
	if c.Build != "" && strings.ContainsAny(c.Build, " \t") {
		return errors.ConfigError("build triple must not contain whitespace").
			WithContext("build", c.Build).
			UserAction().
			Build()
	}
	return nil
}

func (c *Config) validateBackend() error {
	if strings.TrimSpace(c.Backend.Command) == "" {
		return errors.ConfigError("backend command must not be empty").UserAction().Build()
	}
	return nil
}

func (c *Config) validateDefaults() error {
	triples, err := platform.ParseAll(c.Defaults.Platforms)
	if err != nil {
		return wrapField(err, "defaults.platforms")
	}
	for _, t := range triples {
		if err := t.Validate(); err != nil {
			return wrapField(err, "defaults.platforms")
		}
	}
	if _, err := pyversion.ParseAll(c.Defaults.Python); err != nil {
		return wrapField(err, "defaults.python")
	}
	if _, err := pyversion.ParseAll(c.Defaults.PyPy); err != nil {
		return wrapField(err, "defaults.pypy")
	}
	for _, p := range c.Defaults.Packages {
		if strings.TrimSpace(p) == "" {
			return errors.ConfigError("package names must not be empty").
				WithContext("field", "defaults.packages").
				UserAction().
				Build()
		}
	}
	return nil
}

func (c *Config) validatePyPyReleases() error {
	for line, release := range c.PyPyReleases {
		if !pypyLinePattern.MatchString(line) {
			return errors.ConfigError("pypy_releases keys must be major.minor").
				WithContext("line", line).
				UserAction().
				Build()
		}
		if strings.TrimSpace(release) == "" {
			return errors.ConfigError("pypy release must not be empty").
				WithContext("line", line).
				UserAction().
				Build()
		}
	}
	return nil
}

func (c *Config) validateToolchain() error {
	family, err := toolchain.ParseCompilerFamily(c.Toolchain.Compiler)
	if err != nil {
		return err
	}
	if c.Toolchain.Flang && family != toolchain.Clang {
		return errors.ConfigError("flang requires the clang compiler family").UserAction().Build()
	}
	return nil
}

func wrapField(err error, field string) error {
	return errors.WrapError(err, errors.CategoryConfig, "invalid configuration value").
		WithContext("field", field).
		UserAction().
		Build()
}
