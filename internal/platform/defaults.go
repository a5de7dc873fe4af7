package platform

import (
	"strings"

	"git.home.luguber.info/inful/crosspy/internal/util/sets"
)

var defaultTriples = []string{
	"x86_64-centos7-linux-gnu",
	"aarch64-rpi3-linux-gnu",
	"armv8-rpi3-linux-gnueabihf",
	"armv7-neon-linux-gnueabihf",
	"armv6-rpi-linux-gnueabihf",
}

// Defaults returns the default platform table in build order.
func Defaults() []Triple {
	out := make([]Triple, 0, len(defaultTriples))
	for _, s := range defaultTriples {
		out = append(out, MustParse(s))
	}
	return out
}

// Implementation names a Python runtime implementation family.
type Implementation string

const (
	CPython Implementation = "cpython"
	PyPy    Implementation = "pypy"
)

// ParseImplementation accepts sys.implementation.name values.
func ParseImplementation(name string) (Implementation, bool) {
	switch Implementation(strings.ToLower(strings.TrimSpace(name))) {
	case CPython:
		return CPython, true
	case PyPy:
		return PyPy, true
	}
	return "", false
}

var supportedCPUs = map[Implementation]sets.Set[string]{
	CPython: sets.New("x86_64", "aarch64", "armv8", "armv7", "armv6"),
	PyPy:    sets.New("x86_64", "aarch64"),
}

// Supports reports whether impl can be built for t's CPU.
func (t Triple) Supports(impl Implementation) bool {
	cpus, ok := supportedCPUs[impl]
	return ok && cpus.Has(t.cpu)
}

// SupportedCPUs lists the CPUs impl can be built for, sorted.
func SupportedCPUs(impl Implementation) []string {
	return sets.Sorted(supportedCPUs[impl])
}

// Filter keeps the triples that support impl, preserving order.
func Filter(triples []Triple, impl Implementation) []Triple {
	out := make([]Triple, 0, len(triples))
	for _, t := range triples {
		if t.Supports(impl) {
			out = append(out, t)
		}
	}
	return out
}
