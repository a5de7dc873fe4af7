package matrix

import (
	"context"
	"strings"

	"git.home.luguber.info/inful/crosspy/internal/foundation/errors"
	"git.home.luguber.info/inful/crosspy/internal/platform"
	"git.home.luguber.info/inful/crosspy/internal/pyversion"
	"git.home.luguber.info/inful/crosspy/internal/util/sets"
)

// DefaultKeyword in a selector list stands for the whole default table.
const DefaultKeyword = "default"

// DefaultPackages are the native dependency packages built when none are selected.
var DefaultPackages = []string{
	"py-build-cmake",
	"pybind11",
	"fftw",
	"eigen",
	"eigen-master",
	"googletest",
	"casadi",
}

// Selection is what the user asked for. A nil family list means the family
// was not requested. When Python, PyPy and Packages are all nil, every
// family is built from the defaults.
type Selection struct {
	Python   []string
	PyPy     []string
	Packages []string
	// Hosts are target triples; empty means the default platforms.
	Hosts []string
	Build string
}

// IsEmpty reports whether no family was requested.
func (s Selection) IsEmpty() bool {
	return s.Python == nil && s.PyPy == nil && s.Packages == nil
}

// Defaults are the tables selectors fall back to.
type Defaults struct {
	Platforms []platform.Triple
	Python    []pyversion.Version
	PyPy      []pyversion.Version
	Packages  []string
}

// DefaultTables returns the built-in defaults.
func DefaultTables() Defaults {
	return Defaults{
		Platforms: platform.Defaults(),
		Python:    pyversion.DefaultCPython(),
		PyPy:      pyversion.DefaultPyPy(),
		Packages:  append([]string(nil), DefaultPackages...),
	}
}

// CurrentFunc reports the build interpreter's version. It is only called
// when packages are requested.
type CurrentFunc func(ctx context.Context) (pyversion.Version, error)

// Expander turns selections into job groups.
type Expander struct {
	Defaults Defaults
	Current  CurrentFunc
}

// NewExpander creates an expander over defaults.
func NewExpander(defaults Defaults, current CurrentFunc) *Expander {
	return &Expander{Defaults: defaults, Current: current}
}

// Expand validates every selected identifier before producing any job, so
// malformed or unsupported input aborts before anything runs.
func (e *Expander) Expand(ctx context.Context, sel Selection) ([]Group, error) {
	if sel.Build == "" {
		return nil, errors.ValidationError("build triple is required").Build()
	}
	if sel.IsEmpty() {
		sel.Python = []string{DefaultKeyword}
		sel.PyPy = []string{DefaultKeyword}
		sel.Packages = []string{DefaultKeyword}
	}

	hosts, err := e.platforms(sel.Hosts)
	if err != nil {
		return nil, err
	}
	pythons, err := e.versions(sel.Python, e.Defaults.Python)
	if err != nil {
		return nil, err
	}
	pypys, err := e.versions(sel.PyPy, e.Defaults.PyPy)
	if err != nil {
		return nil, err
	}
	packages, err := e.packages(sel.Packages)
	if err != nil {
		return nil, err
	}

	var groups []Group
	if len(pythons) > 0 {
		groups = append(groups, Group{Kind: KindPython, Jobs: product(KindPython, pythons, hosts, sel.Build)})
	}
	if len(pypys) > 0 {
		compatible := platform.Filter(hosts, platform.PyPy)
		if jobs := product(KindPyPy, pypys, compatible, sel.Build); len(jobs) > 0 {
			groups = append(groups, Group{Kind: KindPyPy, Jobs: jobs})
		}
	}
	if len(packages) > 0 {
		if e.Current == nil {
			return nil, errors.InternalError("no build interpreter to pin package builds").Build()
		}
		current, err := e.Current(ctx)
		if err != nil {
			return nil, err
		}
		var jobs []Job
		for _, pkg := range packages {
			for _, host := range hosts {
				jobs = append(jobs, Job{Kind: KindPackages, Version: current, Host: host, Targets: []string{pkg}, Build: sel.Build})
			}
		}
		groups = append(groups, Group{Kind: KindPackages, Jobs: jobs})
	}
	return groups, nil
}

// product builds versions × platforms with the version as the outer loop.
func product(kind Kind, versions []pyversion.Version, hosts []platform.Triple, build string) []Job {
	jobs := make([]Job, 0, len(versions)*len(hosts))
	for _, v := range versions {
		for _, h := range hosts {
			jobs = append(jobs, Job{Kind: kind, Version: v, Host: h, Targets: []string{string(kind)}, Build: build})
		}
	}
	return jobs
}

func (e *Expander) platforms(selected []string) ([]platform.Triple, error) {
	var out []platform.Triple
	if len(selected) == 0 {
		out = append(out, e.Defaults.Platforms...)
	}
	for _, s := range selected {
		if s == DefaultKeyword {
			out = append(out, e.Defaults.Platforms...)
			continue
		}
		t, err := platform.Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	out = sets.Unique(out)
	for _, t := range out {
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (e *Expander) versions(selected []string, defaults []pyversion.Version) ([]pyversion.Version, error) {
	var out []pyversion.Version
	seen := sets.New[string]()
	add := func(v pyversion.Version) {
		if !seen.Has(v.String()) {
			seen.Add(v.String())
			out = append(out, v)
		}
	}
	for _, s := range selected {
		if s == DefaultKeyword {
			for _, v := range defaults {
				add(v)
			}
			continue
		}
		v, err := pyversion.Parse(s)
		if err != nil {
			return nil, err
		}
		add(v)
	}
	return out, nil
}

func (e *Expander) packages(selected []string) ([]string, error) {
	var out []string
	for _, s := range selected {
		if s == DefaultKeyword {
			out = append(out, e.Defaults.Packages...)
			continue
		}
		if s == "" || strings.HasPrefix(s, "-") || strings.ContainsAny(s, "= \t") {
			return nil, errors.ValidationError("invalid package name").WithContext("package", s).Build()
		}
		out = append(out, s)
	}
	return sets.Unique(out), nil
}
