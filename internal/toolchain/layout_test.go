package toolchain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"git.home.luguber.info/inful/crosspy/internal/platform"
)

func TestPyPyLibVersion(t *testing.T) {
	assert.Equal(t, "3", PyPyLibVersion(3, 8))
	assert.Equal(t, "3.9", PyPyLibVersion(3, 9))
	assert.Equal(t, "3.10", PyPyLibVersion(3, 10))
	assert.Equal(t, "2", PyPyLibVersion(2, 7))
}

func TestLayoutExpand(t *testing.T) {
	got := PyPyLayout().Expand(map[string]string{
		VarVersion:     "3.9",
		VarMajor:       "3",
		VarMinor:       "9",
		VarPyPyVersion: "7.3.12",
		VarPyPyMajor:   "7",
		VarPyPyMinor:   "3",
		VarLibVersion:  PyPyLibVersion(3, 9),
		VarProcessor:   "aarch64",
	})
	assert.Equal(t, "pypy3.9-v7.3.12", got.StagingDir)
	assert.Equal(t, "bin/libpypy3.9-c.so", got.Library)
	assert.Equal(t, "include/pypy3.9", got.IncludeDir)
	assert.Equal(t, ".pypy39-pp73-aarch64-linux-gnu.so", got.ExtensionSuffix)

	partial := CPythonLayout().Expand(map[string]string{VarVersion: "3.11"})
	assert.Equal(t, "usr/local/lib/libpython3.11{abiflags}.so", partial.Library)
	assert.Equal(t, "usr/local/bin/python3.11-config", partial.Config)
}

func TestProbeTable(t *testing.T) {
	probes := Probes()
	assert.Len(t, probes, 5)

	abi, ok := FindProbe(PropertyABIFlags)
	assert.True(t, ok)
	assert.True(t, abi.AppliesTo(platform.CPython))
	assert.True(t, abi.AppliesTo(platform.PyPy))

	ext, ok := FindProbe(PropertyExtensionSuffix)
	assert.True(t, ok)
	assert.True(t, ext.IsConfig())
	assert.False(t, ext.AppliesTo(platform.PyPy))

	probes[0].Script = "mutated"
	again, _ := FindProbe(PropertyVersion)
	assert.NotEqual(t, "mutated", again.Script)

	_, ok = FindProbe("nope")
	assert.False(t, ok)
}

func TestUnframeABIFlags(t *testing.T) {
	v, ok := UnframeABIFlags("[]")
	assert.True(t, ok)
	assert.Empty(t, v)

	v, ok = UnframeABIFlags("[d]")
	assert.True(t, ok)
	assert.Equal(t, "d", v)

	_, ok = UnframeABIFlags("d")
	assert.False(t, ok)
}
