package pyversion

var (
	defaultCPython = []string{"3.7.16", "3.8.16", "3.9.16", "3.10.9", "3.11.1"}
	// Patch 99 selects the latest PyPy release of the line.
	defaultPyPy = []string{"3.8.99", "3.9.99"}
)

// DefaultCPython returns the CPython versions built when none are selected.
func DefaultCPython() []Version { return mustParseAll(defaultCPython) }

// DefaultPyPy returns the PyPy language versions installed when none are selected.
func DefaultPyPy() []Version { return mustParseAll(defaultPyPy) }

func mustParseAll(ss []string) []Version {
	out := make([]Version, 0, len(ss))
	for _, s := range ss {
		out = append(out, MustParse(s))
	}
	return out
}
