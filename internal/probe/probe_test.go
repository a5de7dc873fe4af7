package probe

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/crosspy/internal/foundation/errors"
	"git.home.luguber.info/inful/crosspy/internal/interp"
	"git.home.luguber.info/inful/crosspy/internal/platform"
	"git.home.luguber.info/inful/crosspy/internal/toolchain"
)

// fakePython answers probe scripts by property and python-config calls by path.
type fakePython struct {
	answers map[string]string
	failing map[string]bool
	config  map[string]string
}

func (f *fakePython) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	if len(args) == 2 && args[0] == "-c" {
		for _, p := range toolchain.Probes() {
			if p.Script != args[1] {
				continue
			}
			if f.failing[p.Property] {
				return nil, stderrors.New("exit status 1")
			}
			return []byte(f.answers[p.Property] + "\n"), nil
		}
		return nil, stderrors.New("unknown script")
	}
	out, ok := f.config[name]
	if !ok {
		return nil, stderrors.New("no such file: " + name)
	}
	return []byte(out), nil
}

var _ interp.Runner = (*fakePython)(nil)

func cpythonFake() *fakePython {
	return &fakePython{
		answers: map[string]string{
			toolchain.PropertyVersion:        "3.11",
			toolchain.PropertyImplementation: "cpython",
			toolchain.PropertyABIFlags:       "[]",
		},
		config: map[string]string{
			"/stage/python3.11/usr/local/bin/python3.11-config": ".cpython-311-aarch64-linux-gnu.so\n\n",
		},
	}
}

func TestDiscoverCPython(t *testing.T) {
	d, err := Discover(t.Context(), cpythonFake(), Request{
		Host:        platform.MustParse("aarch64-rpi3-linux-gnu"),
		StagingRoot: "/stage",
	})
	require.NoError(t, err)

	assert.Equal(t, "3.11", d.Version)
	assert.Equal(t, platform.CPython, d.Implementation.Family())
	assert.Equal(t, "/stage/python3.11", d.StagingDir)
	assert.Equal(t, "/stage/python3.11/usr/local/lib/libpython3.11.so", d.Library)
	assert.Equal(t, "/stage/python3.11/usr/local/include/python3.11", d.IncludeDir)
	assert.Equal(t, ".cpython-311-aarch64-linux-gnu.so", d.ExtensionSuffix)
	assert.Empty(t, d.Warnings)
}

func TestDiscoverCPythonABIMismatchWarns(t *testing.T) {
	fake := cpythonFake()
	fake.answers[toolchain.PropertyABIFlags] = "[d]"

	d, err := Discover(t.Context(), fake, Request{
		Host:        platform.MustParse("aarch64-rpi3-linux-gnu"),
		StagingRoot: "/stage",
	})
	require.NoError(t, err)
	require.Len(t, d.Warnings, 1)
	assert.Equal(t, errors.CategoryABIMismatch, d.Warnings[0].Category())
	assert.Equal(t, errors.SeverityWarning, d.Warnings[0].Severity())

	cp, ok := d.Implementation.(CPython)
	require.True(t, ok)
	assert.Equal(t, "d", cp.BuildABIFlags)
	assert.Empty(t, cp.CrossABIFlags)
}

func TestDiscoverCPythonCrossABIFlags(t *testing.T) {
	fake := cpythonFake()
	fake.answers[toolchain.PropertyVersion] = "3.7"
	fake.answers[toolchain.PropertyABIFlags] = "[m]"
	fake.config = map[string]string{
		"/stage/python3.7/usr/local/bin/python3.7-config": ".cpython-37m-arm-linux-gnueabihf.so\nm\n",
	}

	d, err := Discover(t.Context(), fake, Request{
		Host:        platform.MustParse("armv7-neon-linux-gnueabihf"),
		StagingRoot: "/stage",
	})
	require.NoError(t, err)
	assert.Equal(t, "/stage/python3.7/usr/local/lib/libpython3.7m.so", d.Library)
	assert.Equal(t, "/stage/python3.7/usr/local/include/python3.7m", d.IncludeDir)
	assert.Empty(t, d.Warnings)
}

func TestDiscoverPyPy(t *testing.T) {
	fake := &fakePython{answers: map[string]string{
		toolchain.PropertyVersion:        "3.8",
		toolchain.PropertyImplementation: "pypy",
		toolchain.PropertyABIFlags:       "[]",
		toolchain.PropertyPyPyVersion:    "7.3.11",
	}}

	d, err := Discover(t.Context(), fake, Request{
		Python:      "pypy3",
		Host:        platform.MustParse("x86_64-centos7-linux-gnu"),
		StagingRoot: "/stage",
	})
	require.NoError(t, err)

	pp, ok := d.Implementation.(PyPy)
	require.True(t, ok)
	assert.Equal(t, "7.3.11", pp.Release)
	assert.Equal(t, "3", pp.LibVersion)
	assert.Equal(t, "/stage/pypy3.8-v7.3.11", d.StagingDir)
	assert.Equal(t, "/stage/pypy3.8-v7.3.11/bin/libpypy3-c.so", d.Library)
	assert.Equal(t, "/stage/pypy3.8-v7.3.11/include/pypy3.8", d.IncludeDir)
	assert.Equal(t, ".pypy38-pp73-x86_64-linux-gnu.so", d.ExtensionSuffix)
}

func TestDiscoverFailingABIProbe(t *testing.T) {
	fake := cpythonFake()
	fake.failing = map[string]bool{toolchain.PropertyABIFlags: true}

	_, err := Discover(t.Context(), fake, Request{
		Host:        platform.MustParse("aarch64-rpi3-linux-gnu"),
		StagingRoot: "/stage",
	})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryIntrospection))
	ce, _ := errors.AsClassified(err)
	property, _ := ce.Context().GetString("property")
	assert.Equal(t, toolchain.PropertyABIFlags, property)
	assert.Contains(t, err.Error(), "abiflags")
}

func TestDiscoverEmptyOutputIsFatal(t *testing.T) {
	fake := cpythonFake()
	fake.answers[toolchain.PropertyImplementation] = ""

	_, err := Discover(t.Context(), fake, Request{
		Host:        platform.MustParse("aarch64-rpi3-linux-gnu"),
		StagingRoot: "/stage",
	})
	assert.True(t, errors.HasCategory(err, errors.CategoryIntrospection))
}

func TestDiscoverMissingPythonConfig(t *testing.T) {
	fake := cpythonFake()
	fake.config = nil

	_, err := Discover(t.Context(), fake, Request{
		Host:        platform.MustParse("aarch64-rpi3-linux-gnu"),
		StagingRoot: "/stage",
	})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryIntrospection))
	assert.True(t, strings.Contains(err.Error(), toolchain.PropertyExtensionSuffix))
}

func TestDiscoverUnknownImplementation(t *testing.T) {
	fake := cpythonFake()
	fake.answers[toolchain.PropertyImplementation] = "graalpy"

	_, err := Discover(t.Context(), fake, Request{
		Host:        platform.MustParse("aarch64-rpi3-linux-gnu"),
		StagingRoot: "/stage",
	})
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestDiscoverUnsupportedHost(t *testing.T) {
	_, err := Discover(t.Context(), cpythonFake(), Request{Host: platform.MustParse("mips-unknown-linux-gnu")})
	assert.True(t, errors.HasCategory(err, errors.CategoryUnsupportedPlatform))
}
