package matrix

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/crosspy/internal/foundation/errors"
	"git.home.luguber.info/inful/crosspy/internal/pyversion"
	"git.home.luguber.info/inful/crosspy/internal/util/sets"
)

const buildTriple = "x86_64-pc-linux-gnu"

func testExpander() *Expander {
	return NewExpander(DefaultTables(), func(context.Context) (pyversion.Version, error) {
		return pyversion.Version{Major: 3, Minor: 11, Patch: 4, Executable: "/usr/bin/python3"}, nil
	})
}

func groupOf(t *testing.T, groups []Group, kind Kind) Group {
	t.Helper()
	for _, g := range groups {
		if g.Kind == kind {
			return g
		}
	}
	t.Fatalf("no %s group", kind)
	return Group{}
}

func TestPythonMatrixCompleteness(t *testing.T) {
	groups, err := testExpander().Expand(t.Context(), Selection{Python: []string{DefaultKeyword}, Build: buildTriple})
	require.NoError(t, err)
	require.Len(t, groups, 1)

	jobs := groups[0].Jobs
	require.Len(t, jobs, 5*5)

	names := sets.New[string]()
	for _, j := range jobs {
		names.Add(j.Name())
		assert.Equal(t, []string{"python"}, j.Targets)
		assert.Equal(t, buildTriple, j.Build)
	}
	assert.Len(t, names, 25)

	// version is the outer loop
	assert.Equal(t, "3.7.16", jobs[0].Version.String())
	assert.Equal(t, "x86_64-centos7-linux-gnu", jobs[0].Host.String())
	assert.Equal(t, "3.7.16", jobs[4].Version.String())
	assert.Equal(t, "armv6-rpi-linux-gnueabihf", jobs[4].Host.String())
	assert.Equal(t, "3.8.16", jobs[5].Version.String())
}

func TestPyPyCompatibilityFilter(t *testing.T) {
	groups, err := testExpander().Expand(t.Context(), Selection{
		PyPy:  []string{"3.9.99"},
		Hosts: []string{"x86_64-centos7-linux-gnu", "armv7-neon-linux-gnueabihf"},
		Build: buildTriple,
	})
	require.NoError(t, err)
	g := groupOf(t, groups, KindPyPy)
	require.Len(t, g.Jobs, 1)
	assert.Equal(t, "x86_64", g.Jobs[0].Host.CPU())
	assert.Equal(t, []string{"pypy"}, g.Jobs[0].Targets)
}

func TestPyPyWithoutCompatibleHostsIsOmitted(t *testing.T) {
	groups, err := testExpander().Expand(t.Context(), Selection{
		PyPy:  []string{DefaultKeyword},
		Hosts: []string{"armv6-rpi-linux-gnueabihf"},
		Build: buildTriple,
	})
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestPackagesUseCurrentInterpreter(t *testing.T) {
	groups, err := testExpander().Expand(t.Context(), Selection{
		Packages: []string{"pybind11", "casadi"},
		Hosts:    []string{"aarch64-rpi3-linux-gnu", "armv7-neon-linux-gnueabihf"},
		Build:    buildTriple,
	})
	require.NoError(t, err)
	g := groupOf(t, groups, KindPackages)
	require.Len(t, g.Jobs, 4)

	assert.Equal(t, []string{"pybind11"}, g.Jobs[0].Targets)
	assert.Equal(t, "aarch64-rpi3-linux-gnu", g.Jobs[0].Host.String())
	assert.Equal(t, []string{"pybind11"}, g.Jobs[1].Targets)
	assert.Equal(t, []string{"casadi"}, g.Jobs[2].Targets)
	for _, j := range g.Jobs {
		assert.Equal(t, "3.11.4", j.Version.String())
		assert.Equal(t, "/usr/bin/python3", j.Version.Interpreter())
	}
}

func TestEmptySelectionEqualsExplicitDefaults(t *testing.T) {
	e := testExpander()
	implicit, err := e.Expand(t.Context(), Selection{Build: buildTriple})
	require.NoError(t, err)

	explicit, err := e.Expand(t.Context(), Selection{
		Python:   []string{DefaultKeyword},
		PyPy:     []string{DefaultKeyword},
		Packages: []string{DefaultKeyword},
		Hosts:    []string{DefaultKeyword},
		Build:    buildTriple,
	})
	require.NoError(t, err)
	assert.Equal(t, explicit, implicit)

	require.Len(t, implicit, 3)
	assert.Equal(t, KindPython, implicit[0].Kind)
	assert.Equal(t, KindPyPy, implicit[1].Kind)
	assert.Equal(t, KindPackages, implicit[2].Kind)
	assert.Equal(t, 25+2*2+7*5, Len(implicit))
}

func TestSelectorsAreDeduplicated(t *testing.T) {
	groups, err := testExpander().Expand(t.Context(), Selection{
		Python: []string{"3.11.1", DefaultKeyword, "3.11.1"},
		Hosts:  []string{"aarch64-rpi3-linux-gnu", "aarch64-rpi3-linux-gnu"},
		Build:  buildTriple,
	})
	require.NoError(t, err)
	jobs := groupOf(t, groups, KindPython).Jobs
	require.Len(t, jobs, 5)
	assert.Equal(t, "3.11.1", jobs[0].Version.String())
}

func TestPackagesOnlyDoesNotBuildRuntimes(t *testing.T) {
	groups, err := testExpander().Expand(t.Context(), Selection{Packages: []string{"eigen"}, Build: buildTriple})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, KindPackages, groups[0].Kind)
}

func TestExpandErrors(t *testing.T) {
	tests := []struct {
		name     string
		sel      Selection
		category errors.ErrorCategory
	}{
		{"malformed version", Selection{Python: []string{"3.11"}, Build: buildTriple}, errors.CategoryMalformedVersion},
		{"malformed host", Selection{Python: []string{"3.11.1"}, Hosts: []string{"arm-linux"}, Build: buildTriple}, errors.CategoryMalformedTriple},
		{"unsupported host", Selection{Python: []string{"3.11.1"}, Hosts: []string{"riscv64-sifive-linux-gnu"}, Build: buildTriple}, errors.CategoryUnsupportedPlatform},
		{"bad package", Selection{Packages: []string{"FOO=bar"}, Build: buildTriple}, errors.CategoryValidation},
		{"missing build", Selection{Python: []string{"3.11.1"}}, errors.CategoryValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := testExpander().Expand(t.Context(), tt.sel)
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, tt.category), err.Error())
		})
	}
}

func TestCurrentInterpreterFailure(t *testing.T) {
	boom := stderrors.New("python3: not found")
	e := NewExpander(DefaultTables(), func(context.Context) (pyversion.Version, error) {
		return pyversion.Version{}, boom
	})
	_, err := e.Expand(t.Context(), Selection{Packages: []string{"eigen"}, Build: buildTriple})
	assert.ErrorIs(t, err, boom)

	// the interpreter is not consulted unless packages are requested
	_, err = e.Expand(t.Context(), Selection{Python: []string{"3.10.9"}, Build: buildTriple})
	assert.NoError(t, err)
}

func TestJobName(t *testing.T) {
	groups, err := testExpander().Expand(t.Context(), Selection{
		Python: []string{"3.10.9"},
		Hosts:  []string{"armv8-rpi3-linux-gnueabihf"},
		Build:  buildTriple,
	})
	require.NoError(t, err)
	assert.Equal(t, "python/python@3.10.9/armv8-rpi3-linux-gnueabihf", groups[0].Jobs[0].Name())
}
