package config

import (
	"git.home.luguber.info/inful/crosspy/internal/backend"
	"git.home.luguber.info/inful/crosspy/internal/matrix"
	"git.home.luguber.info/inful/crosspy/internal/platform"
	"git.home.luguber.info/inful/crosspy/internal/pyversion"
	"git.home.luguber.info/inful/crosspy/internal/toolchain"
)

// MatrixDefaults returns the built-in tables with every configured
// override applied.
func (c *Config) MatrixDefaults() (matrix.Defaults, error) {
	d := matrix.DefaultTables()
	if len(c.Defaults.Platforms) > 0 {
		triples, err := platform.ParseAll(c.Defaults.Platforms)
		if err != nil {
			return matrix.Defaults{}, wrapField(err, "defaults.platforms")
		}
		d.Platforms = triples
	}
	if len(c.Defaults.Python) > 0 {
		versions, err := pyversion.ParseAll(c.Defaults.Python)
		if err != nil {
			return matrix.Defaults{}, wrapField(err, "defaults.python")
		}
		d.Python = versions
	}
	if len(c.Defaults.PyPy) > 0 {
		versions, err := pyversion.ParseAll(c.Defaults.PyPy)
		if err != nil {
			return matrix.Defaults{}, wrapField(err, "defaults.pypy")
		}
		d.PyPy = versions
	}
	if len(c.Defaults.Packages) > 0 {
		d.Packages = append([]string(nil), c.Defaults.Packages...)
	}
	return d, nil
}

// Releases returns the PyPy release table with configured overrides.
func (c *Config) Releases() backend.Releases {
	return backend.DefaultReleases().Merge(c.PyPyReleases)
}

// ToolchainOptions returns descriptor options. Validate has already
// checked the compiler family.
func (c *Config) ToolchainOptions() toolchain.Options {
	family, _ := toolchain.ParseCompilerFamily(c.Toolchain.Compiler)
	return toolchain.Options{
		Compiler: family,
		Flang:    c.Toolchain.Flang,
		Root:     c.Toolchain.Root,
	}
}
