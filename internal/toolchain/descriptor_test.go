package toolchain

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/crosspy/internal/foundation/errors"
	"git.home.luguber.info/inful/crosspy/internal/platform"
)

func render(t *testing.T, triple string, opts Options) string {
	t.Helper()
	d, err := Generate(platform.MustParse(triple), opts)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, d.WriteCMake(&buf))
	return buf.String()
}

func TestGenerateIdentity(t *testing.T) {
	d, err := Generate(platform.MustParse("armv7-neon-linux-gnueabihf"), Options{})
	require.NoError(t, err)

	assert.Equal(t, "armv7-neon-linux-gnueabihf", d.Triple)
	assert.Equal(t, "Linux", d.SystemName)
	assert.Equal(t, "armv7l", d.SystemProcessor)
	assert.Equal(t, "arm-linux-gnueabihf", d.LibraryArchitecture)
	assert.Equal(t, "armhf", d.PackageArchitecture)
	assert.Equal(t, "${CMAKE_CURRENT_LIST_DIR}/../x-tools/${CROSS_GNU_TRIPLE}", d.ToolchainDir)
	assert.Equal(t, "${TOOLCHAIN_DIR}/${CROSS_GNU_TRIPLE}/sysroot", d.Sysroot)

	want := "-march=armv7-a -mfpu=neon -mfloat-abi=hard"
	assert.Equal(t, Flags{C: want, CXX: want, Fortran: want}, d.Flags)
	assert.Equal(t, SearchPolicy{Program: SearchNever, Library: SearchOnly, Include: SearchOnly, Package: SearchOnly}, d.Search)
	assert.Equal(t, ".pypy{major}{minor}-pp{pypy_major}{pypy_minor}-armv7l-linux-gnu.so", d.Python.PyPy.ExtensionSuffix)
}

func TestGenerateRejectsUnsupported(t *testing.T) {
	_, err := Generate(platform.MustParse("riscv64-unknown-linux-gnu"), Options{})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryUnsupportedPlatform))

	_, err = Generate(platform.MustParse("aarch64-rpi3-linux-gnu"), Options{Compiler: "icc"})
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))

	_, err = Generate(platform.MustParse("aarch64-rpi3-linux-gnu"), Options{Flang: true})
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestCompilersGCC(t *testing.T) {
	d, err := Generate(platform.MustParse("aarch64-rpi3-linux-gnu"), Options{Compiler: GCC})
	require.NoError(t, err)
	assert.Equal(t, "${TOOLCHAIN_DIR}/bin/${CROSS_GNU_TRIPLE}-gcc", d.Compilers.C.Path)
	assert.Equal(t, "${TOOLCHAIN_DIR}/bin/${CROSS_GNU_TRIPLE}-g++", d.Compilers.CXX.Path)
	assert.Equal(t, "${TOOLCHAIN_DIR}/bin/${CROSS_GNU_TRIPLE}-gfortran", d.Compilers.Fortran.Path)
	assert.Empty(t, d.Compilers.C.Target)
	assert.Empty(t, d.Compilers.Fortran.LinkExecutable)
}

func TestCompilersClangWithoutFlang(t *testing.T) {
	d, err := Generate(platform.MustParse("aarch64-rpi3-linux-gnu"), Options{Compiler: Clang})
	require.NoError(t, err)

	assert.Equal(t, "clang", d.Compilers.C.Path)
	assert.Equal(t, "${CROSS_GNU_TRIPLE}", d.Compilers.C.Target)
	assert.Equal(t, "${TOOLCHAIN_DIR}", d.Compilers.CXX.ExternalToolchain)
	assert.Equal(t, "${TOOLCHAIN_DIR}/bin/${CROSS_GNU_TRIPLE}-gfortran", d.Compilers.Fortran.Path)
	assert.True(t, strings.HasPrefix(d.Compilers.Fortran.LinkExecutable, "clang --target=${CROSS_GNU_TRIPLE}"))

	out := render(t, "aarch64-rpi3-linux-gnu", Options{Compiler: Clang})
	assert.Contains(t, out, `set(CMAKE_C_COMPILER_TARGET "${CROSS_GNU_TRIPLE}")`)
	assert.Contains(t, out, `set(CMAKE_CXX_COMPILER_EXTERNAL_TOOLCHAIN "${TOOLCHAIN_DIR}")`)
	assert.Contains(t, out, "set(CMAKE_Fortran_LINK_EXECUTABLE")
}

func TestCompilersClangWithFlang(t *testing.T) {
	d, err := Generate(platform.MustParse("aarch64-rpi3-linux-gnu"), Options{Compiler: Clang, Flang: true})
	require.NoError(t, err)
	assert.Equal(t, "flang", d.Compilers.Fortran.Path)
	assert.Equal(t, "${CROSS_GNU_TRIPLE}", d.Compilers.Fortran.Target)
	assert.Empty(t, d.Compilers.Fortran.LinkExecutable)
}

func TestWriteCMakeContents(t *testing.T) {
	out := render(t, "armv7-neon-linux-gnueabihf", Options{})

	for _, want := range []string{
		`set(CMAKE_SYSTEM_NAME "Linux")`,
		`set(CMAKE_SYSTEM_PROCESSOR "armv7l")`,
		`set(CROSS_GNU_TRIPLE "armv7-neon-linux-gnueabihf"`,
		`set(CMAKE_LIBRARY_ARCHITECTURE arm-linux-gnueabihf)`,
		`set(TOOLCHAIN_DIR "${CMAKE_CURRENT_LIST_DIR}/../x-tools/${CROSS_GNU_TRIPLE}")`,
		`set(CMAKE_SYSROOT "${TOOLCHAIN_DIR}/${CROSS_GNU_TRIPLE}/sysroot")`,
		`set(CMAKE_C_COMPILER "${TOOLCHAIN_DIR}/bin/${CROSS_GNU_TRIPLE}-gcc"`,
		`set(CMAKE_Fortran_FLAGS_INIT "-march=armv7-a -mfpu=neon -mfloat-abi=hard")`,
		`set(CMAKE_FIND_ROOT_PATH_MODE_PROGRAM NEVER)`,
		`set(CMAKE_FIND_ROOT_PATH_MODE_PACKAGE ONLY)`,
		`set(CPACK_DEBIAN_PACKAGE_ARCHITECTURE "armhf")`,
		`find_package(Python3 REQUIRED COMPONENTS Interpreter)`,
		`set(PYTHON_STAGING_DIR "${CMAKE_CURRENT_LIST_DIR}/../python${CROSSPY_PYTHON_VERSION}")`,
		`set(PYTHON_STAGING_DIR "${CMAKE_CURRENT_LIST_DIR}/../pypy${CROSSPY_PYTHON_VERSION}-v${CROSSPY_PYPY_VERSION}")`,
		`"${PYTHON_STAGING_DIR}/usr/local/lib/libpython${CROSSPY_PYTHON_VERSION}${CROSSPY_CROSS_ABIFLAGS}.so"`,
		`"${PYTHON_STAGING_DIR}/bin/libpypy${CROSSPY_PYPY_LIB_VERSION}-c.so"`,
		`-armv7l-linux-gnu.so"`,
		`message(WARNING "Python ABI flags`,
		`message(FATAL_ERROR "Unsupported Python implementation`,
		`list(APPEND CMAKE_FIND_ROOT_PATH "${PYTHON_STAGING_DIR}")`,
	} {
		assert.Contains(t, out, want)
	}
}

func TestWriteCMakeProbesCheckFailure(t *testing.T) {
	out := render(t, "x86_64-centos7-linux-gnu", Options{})

	assert.Contains(t, out, "RESULT_VARIABLE _crosspy_result")
	assert.Contains(t, out, `if(NOT _crosspy_result EQUAL 0 OR "${_crosspy_output}" STREQUAL "")`)
	assert.Contains(t, out, `message(FATAL_ERROR "Unable to determine Python ${property}`)
	for _, p := range Probes() {
		assert.Contains(t, out, p.Variable+` "`+p.Property+`"`, p.Property)
	}
	assert.Contains(t, out, `--extension-suffix --abiflags`)
}

func TestWriteCMakeCustomRoot(t *testing.T) {
	out := render(t, "x86_64-centos7-linux-gnu", Options{Root: "/opt/cross"})
	assert.Contains(t, out, `set(TOOLCHAIN_DIR "/opt/cross/x-tools/${CROSS_GNU_TRIPLE}")`)
	assert.Contains(t, out, `"/opt/cross/python${CROSSPY_PYTHON_VERSION}"`)
}

func TestOutputIsDeterministic(t *testing.T) {
	for _, tr := range platform.Defaults() {
		a := render(t, tr.String(), Options{Compiler: Clang})
		b := render(t, tr.String(), Options{Compiler: Clang})
		assert.Equal(t, a, b, tr.String())

		d1, err := Generate(tr, Options{})
		require.NoError(t, err)
		d2, err := Generate(tr, Options{})
		require.NoError(t, err)
		y1, err := d1.YAML()
		require.NoError(t, err)
		y2, err := d2.YAML()
		require.NoError(t, err)
		assert.Equal(t, y1, y2)
	}
}

func TestYAMLFields(t *testing.T) {
	d, err := Generate(platform.MustParse("aarch64-rpi3-linux-gnu"), Options{})
	require.NoError(t, err)
	raw, err := d.YAML()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(raw, &doc))
	for _, key := range []string{"triple", "system_name", "system_processor", "sysroot", "compilers", "flags", "search", "package_architecture", "python"} {
		assert.Contains(t, doc, key)
	}
	assert.Equal(t, "arm64", doc["package_architecture"])

	var buf bytes.Buffer
	require.NoError(t, d.Write(&buf, FormatYAML))
	assert.Equal(t, raw, buf.Bytes())
}

func TestCMakeQuote(t *testing.T) {
	assert.Equal(t, `"a \"b\" c\\d"`, cmakeQuote(`a "b" c\d`))
}
