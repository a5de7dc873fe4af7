package toolchain

import (
	"fmt"
	"strings"
)

// Placeholders used in Layout templates.
const (
	VarVersion     = "version"      // major.minor
	VarMajor       = "major"        // language major
	VarMinor       = "minor"        // language minor
	VarABIFlags    = "abiflags"     // cross ABI flags
	VarPyPyVersion = "pypy_version" // full PyPy release, e.g. 7.3.11
	VarPyPyMajor   = "pypy_major"
	VarPyPyMinor   = "pypy_minor"
	VarLibVersion  = "lib_version" // PyPy shared library tag
	VarProcessor   = "processor"
)

// Layout is a staging directory naming convention. Paths contain {name}
// placeholders; StagingDir is relative to the staging root, the other
// paths are relative to StagingDir.
type Layout struct {
	StagingDir string `yaml:"staging_dir"`
	Library    string `yaml:"library"`
	IncludeDir string `yaml:"include_dir"`
	// Config is the python-config script queried for the extension suffix.
	Config string `yaml:"config,omitempty"`
	// ExtensionSuffix is set when the suffix follows from the layout alone.
	ExtensionSuffix string `yaml:"extension_suffix,omitempty"`
}

// CPythonLayout is the layout of a staged CPython install (prefix /usr/local).
func CPythonLayout() Layout {
	return Layout{
		StagingDir: "python{version}",
		Library:    "usr/local/lib/libpython{version}{abiflags}.so",
		IncludeDir: "usr/local/include/python{version}{abiflags}",
		Config:     "usr/local/bin/python{version}-config",
	}
}

// PyPyLayout is the layout of an extracted PyPy release.
func PyPyLayout() Layout {
	return Layout{
		StagingDir:      "pypy{version}-v{pypy_version}",
		Library:         "bin/libpypy{lib_version}-c.so",
		IncludeDir:      "include/pypy{version}",
		ExtensionSuffix: ".pypy{major}{minor}-pp{pypy_major}{pypy_minor}-{processor}-linux-gnu.so",
	}
}

// PyPyLibVersionThreshold is the first language version whose PyPy shared
// library carries major.minor instead of the major version alone.
var PyPyLibVersionThreshold = [2]int{3, 9}

// PyPyLibVersion returns the libpypy<tag>-c.so tag for a language version.
func PyPyLibVersion(major, minor int) string {
	if major < PyPyLibVersionThreshold[0] ||
		(major == PyPyLibVersionThreshold[0] && minor < PyPyLibVersionThreshold[1]) {
		return fmt.Sprintf("%d", major)
	}
	return fmt.Sprintf("%d.%d", major, minor)
}

// Expand substitutes the placeholders present in vars and leaves the rest.
func (l Layout) Expand(vars map[string]string) Layout {
	pairs := make([]string, 0, 2*len(vars))
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	r := strings.NewReplacer(pairs...)
	return Layout{
		StagingDir:      r.Replace(l.StagingDir),
		Library:         r.Replace(l.Library),
		IncludeDir:      r.Replace(l.IncludeDir),
		Config:          r.Replace(l.Config),
		ExtensionSuffix: r.Replace(l.ExtensionSuffix),
	}
}
