// Package backend maps jobs onto the external make-based build backend.
package backend

import (
	"maps"
	"slices"

	"git.home.luguber.info/inful/crosspy/internal/foundation/errors"
	"git.home.luguber.info/inful/crosspy/internal/matrix"
	"git.home.luguber.info/inful/crosspy/internal/pyversion"
)

// Param is one NAME=value backend argument.
type Param struct {
	Name  string
	Value string
}

func (p Param) String() string { return p.Name + "=" + p.Value }

// Releases maps a PyPy language line (major.minor) to the PyPy release
// that provides it.
type Releases map[string]string

// DefaultReleases returns the built-in PyPy release table.
func DefaultReleases() Releases {
	return Releases{
		"3.8":  "7.3.11",
		"3.9":  "7.3.12",
		"3.10": "7.3.12",
	}
}

// Merge returns r with overrides applied.
func (r Releases) Merge(overrides map[string]string) Releases {
	out := maps.Clone(r)
	if out == nil {
		out = Releases{}
	}
	maps.Copy(out, overrides)
	return out
}

// Lines lists the known language lines, sorted.
func (r Releases) Lines() []string {
	return slices.Sorted(maps.Keys(r))
}

// Resolve returns the PyPy release for v's language line.
func (r Releases) Resolve(v pyversion.Version) (string, error) {
	rel, ok := r[v.MajorMinor()]
	if !ok || rel == "" {
		return "", errors.UnresolvableImplementationVersion(v.MajorMinor()).Build()
	}
	return rel, nil
}

// Params returns the ordered backend parameters for job.
func Params(job matrix.Job, releases Releases) ([]Param, error) {
	params := []Param{
		{"BUILD_TRIPLE", job.Build},
		{"HOST_TRIPLE", job.Host.String()},
		{"PYTHON_VERSION", job.Version.Release()},
		{"PYTHON_SUFFIX", job.Version.Suffix},
		{"BUILD_PYTHON", job.Version.Interpreter()},
	}
	if job.Kind == matrix.KindPyPy {
		rel, err := releases.Resolve(job.Version)
		if err != nil {
			return nil, err
		}
		params = append(params, Param{"PYPY_VERSION", rel})
	}
	return params, nil
}

// Strings renders params as NAME=value arguments.
func Strings(params []Param) []string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = p.String()
	}
	return out
}
