package toolchain

import (
	"slices"

	"git.home.luguber.info/inful/crosspy/internal/platform"
)

// Probe property names.
const (
	PropertyVersion         = "version"
	PropertyImplementation  = "implementation"
	PropertyABIFlags        = "abiflags"
	PropertyExtensionSuffix = "extension_suffix"
	PropertyPyPyVersion     = "pypy_version"
)

// Probe is one named introspection step. Script probes run the build
// interpreter with -c Script. Config probes run the staging python-config
// (Layout.Config) with Args instead.
type Probe struct {
	Property string `yaml:"property"`
	// Variable receives the probe output in the CMake procedure.
	Variable string `yaml:"variable"`
	// Implementation limits the probe to one family; empty runs it for all.
	Implementation platform.Implementation `yaml:"implementation,omitempty"`
	Script         string                  `yaml:"script,omitempty"`
	Args           []string                `yaml:"args,omitempty"`
}

// IsConfig reports whether the probe runs python-config rather than a script.
func (p Probe) IsConfig() bool { return p.Script == "" }

// AppliesTo reports whether the probe runs for impl.
func (p Probe) AppliesTo(impl platform.Implementation) bool {
	return p.Implementation == "" || p.Implementation == impl
}

// abiflags is framed in brackets: an empty flag string still yields output.
var probeTable = []Probe{
	{
		Property: PropertyVersion,
		Variable: "CROSSPY_PYTHON_VERSION",
		Script:   "import sys; print('%d.%d' % sys.version_info[:2])",
	},
	{
		Property: PropertyImplementation,
		Variable: "CROSSPY_PYTHON_IMPLEMENTATION",
		Script:   "import sys; print(sys.implementation.name)",
	},
	{
		Property: PropertyABIFlags,
		Variable: "CROSSPY_BUILD_ABIFLAGS",
		Script:   "import sys; print('[' + getattr(sys, 'abiflags', '') + ']')",
	},
	{
		Property:       PropertyExtensionSuffix,
		Variable:       "CROSSPY_PYTHON_CONFIG",
		Implementation: platform.CPython,
		Args:           []string{"--extension-suffix", "--abiflags"},
	},
	{
		Property:       PropertyPyPyVersion,
		Variable:       "CROSSPY_PYPY_VERSION",
		Implementation: platform.PyPy,
		Script:         "import sys; print('%d.%d.%d' % sys.pypy_version_info[:3])",
	},
}

// Probes returns the discovery probes in execution order.
func Probes() []Probe {
	out := slices.Clone(probeTable)
	for i := range out {
		out[i].Args = slices.Clone(out[i].Args)
	}
	return out
}

// FindProbe returns the probe for property.
func FindProbe(property string) (Probe, bool) {
	for _, p := range probeTable {
		if p.Property == property {
			return p, true
		}
	}
	return Probe{}, false
}

// UnframeABIFlags strips the brackets added by the abiflags probe.
func UnframeABIFlags(s string) (string, bool) {
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return "", false
	}
	return s[1 : len(s)-1], true
}
