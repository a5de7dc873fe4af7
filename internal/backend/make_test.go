package backend

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/crosspy/internal/foundation/errors"
	"git.home.luguber.info/inful/crosspy/internal/matrix"
)

// fakeMake writes an executable shell script standing in for make.
func fakeMake(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "make")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestMakeArgs(t *testing.T) {
	m := NewMake("", "/src/cross", nil)
	j := job(matrix.KindPackages, "3.11.1", "aarch64-rpi3-linux-gnu")
	j.Targets = []string{"pybind11"}
	params, err := Params(j, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"make", "-C", "/src/cross", "pybind11",
		"BUILD_TRIPLE=x86_64-pc-linux-gnu",
		"HOST_TRIPLE=aarch64-rpi3-linux-gnu",
		"PYTHON_VERSION=3.11.1",
		"PYTHON_SUFFIX=",
		"BUILD_PYTHON=python3.11",
	}, m.Args(j, params))
}

func TestMakeRunStreamsOutput(t *testing.T) {
	var out bytes.Buffer
	m := NewMake(fakeMake(t, `echo "args: $*"; echo "to stderr" >&2`), "/src", &out)
	j := job(matrix.KindPython, "3.10.9", "armv6-rpi-linux-gnueabihf")
	params, err := Params(j, nil)
	require.NoError(t, err)

	require.NoError(t, m.Run(t.Context(), j, params))
	assert.Contains(t, out.String(), "["+j.Name()+"] args: -C /src python BUILD_TRIPLE=x86_64-pc-linux-gnu")
	assert.Contains(t, out.String(), "["+j.Name()+"] to stderr")
}

func TestMakeRunNonZeroExit(t *testing.T) {
	m := NewMake(fakeMake(t, "echo boom; exit 3"), "/src", nil)
	j := job(matrix.KindPython, "3.10.9", "armv6-rpi-linux-gnueabihf")

	err := m.Run(t.Context(), j, nil)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryExternalProcess))

	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	code, _ := ce.Context().Get("exit_code")
	assert.Equal(t, 3, code)
	name, _ := ce.Context().GetString("job")
	assert.Equal(t, j.Name(), name)
}

func TestMakeRunCanceled(t *testing.T) {
	m := NewMake(fakeMake(t, "exec sleep 30"), "/src", nil)
	ctx, cancel := context.WithTimeout(t.Context(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := m.Run(ctx, job(matrix.KindPython, "3.10.9", "armv6-rpi-linux-gnueabihf"), nil)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestMakeRunMissingProgram(t *testing.T) {
	m := NewMake(filepath.Join(t.TempDir(), "does-not-exist"), "/src", nil)
	err := m.Run(t.Context(), job(matrix.KindPython, "3.10.9", "armv6-rpi-linux-gnueabihf"), nil)
	assert.True(t, errors.HasCategory(err, errors.CategoryExternalProcess))
}
