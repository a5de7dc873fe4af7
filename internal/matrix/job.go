// Package matrix expands version, platform and package selections into
// ordered groups of independent build jobs.
package matrix

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/crosspy/internal/platform"
	"git.home.luguber.info/inful/crosspy/internal/pyversion"
)

// Kind is a product group. Each kind fails fast independently.
type Kind string

const (
	KindPython   Kind = "python"
	KindPyPy     Kind = "pypy"
	KindPackages Kind = "packages"
)

// Job is one backend invocation.
type Job struct {
	Kind    Kind
	Version pyversion.Version
	Host    platform.Triple
	Targets []string
	// Build is the build-machine GNU triple, passed through verbatim.
	Build string
}

// Name is a stable label for logs and tables.
func (j Job) Name() string {
	return fmt.Sprintf("%s/%s@%s/%s", j.Kind, strings.Join(j.Targets, ","), j.Version, j.Host)
}

// Group holds every job of one kind in expansion order.
type Group struct {
	Kind Kind
	Jobs []Job
}

// Len returns the total number of jobs across groups.
func Len(groups []Group) int {
	n := 0
	for _, g := range groups {
		n += len(g.Jobs)
	}
	return n
}
