package toolchain

import (
	"fmt"
	"io"
	"strings"

	"git.home.luguber.info/inful/crosspy/internal/platform"
)

// CMake variables holding probe results and values derived from them.
var cmakeVars = map[string]string{
	VarVersion:     "${CROSSPY_PYTHON_VERSION}",
	VarMajor:       "${CROSSPY_PYTHON_VERSION_MAJOR}",
	VarMinor:       "${CROSSPY_PYTHON_VERSION_MINOR}",
	VarABIFlags:    "${CROSSPY_CROSS_ABIFLAGS}",
	VarPyPyVersion: "${CROSSPY_PYPY_VERSION}",
	VarPyPyMajor:   "${CROSSPY_PYPY_VERSION_MAJOR}",
	VarPyPyMinor:   "${CROSSPY_PYPY_VERSION_MINOR}",
	VarLibVersion:  "${CROSSPY_PYPY_LIB_VERSION}",
}

const cmakeHeader = `# Cross-compilation toolchain for %s, generated by crosspy.
# For more information, see
# https://cmake.org/cmake/help/latest/manual/cmake-toolchains.7.html and
# https://cmake.org/cmake/help/book/mastering-cmake/chapter/Cross%%20Compiling%%20With%%20CMake.html.
`

const cmakeProbeFunctions = `function(crosspy_probe_script out_var property script)
    execute_process(COMMAND "${Python3_EXECUTABLE}" -c "${script}"
                    RESULT_VARIABLE _crosspy_result
                    OUTPUT_VARIABLE _crosspy_output
                    OUTPUT_STRIP_TRAILING_WHITESPACE)
    if(NOT _crosspy_result EQUAL 0 OR "${_crosspy_output}" STREQUAL "")
        message(FATAL_ERROR "Unable to determine Python ${property} using ${Python3_EXECUTABLE}")
    endif()
    set(${out_var} "${_crosspy_output}" PARENT_SCOPE)
endfunction()

function(crosspy_probe_command out_var property)
    execute_process(COMMAND ${ARGN}
                    RESULT_VARIABLE _crosspy_result
                    OUTPUT_VARIABLE _crosspy_output
                    OUTPUT_STRIP_TRAILING_WHITESPACE)
    if(NOT _crosspy_result EQUAL 0 OR "${_crosspy_output}" STREQUAL "")
        message(FATAL_ERROR "Unable to determine Python ${property} using ${ARGN}")
    endif()
    set(${out_var} "${_crosspy_output}" PARENT_SCOPE)
endfunction()
`

type cmakeWriter struct {
	w   io.Writer
	err error
}

func (c *cmakeWriter) printf(format string, args ...any) {
	if c.err != nil {
		return
	}
	_, c.err = fmt.Fprintf(c.w, format, args...)
}

func (c *cmakeWriter) line(s string) { c.printf("%s\n", s) }

func (c *cmakeWriter) set(name, value string) {
	c.printf("set(%s %s)\n", name, cmakeQuote(value))
}

func (c *cmakeWriter) setCache(name, value, kind, doc string) {
	c.printf("set(%s %s\n    CACHE %s %s)\n", name, cmakeQuote(value), kind, cmakeQuote(doc))
}

func cmakeQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// WriteCMake serializes d as a CMake toolchain file.
func (d *Descriptor) WriteCMake(w io.Writer) error {
	c := &cmakeWriter{w: w}

	c.printf(cmakeHeader, d.Triple)

	c.line("\n# System information")
	c.set("CMAKE_SYSTEM_NAME", d.SystemName)
	c.set("CMAKE_SYSTEM_PROCESSOR", d.SystemProcessor)
	c.setCache("CROSS_GNU_TRIPLE", d.Triple, "STRING", "The GNU triple of the toolchain to use")
	c.printf("set(CMAKE_LIBRARY_ARCHITECTURE %s)\n", d.LibraryArchitecture)

	c.line("\n# Toolchain")
	c.set("TOOLCHAIN_DIR", d.ToolchainDir)
	c.set("CMAKE_SYSROOT", d.Sysroot)
	c.compiler("C", "C compiler", d.Compilers.C)
	c.compiler("CXX", "C++ compiler", d.Compilers.CXX)
	c.compiler("Fortran", "Fortran compiler", d.Compilers.Fortran)

	c.line("\n# Compiler flags")
	c.printf("set(CMAKE_C_FLAGS_INIT       %s)\n", cmakeQuote(d.Flags.C))
	c.printf("set(CMAKE_CXX_FLAGS_INIT     %s)\n", cmakeQuote(d.Flags.CXX))
	c.printf("set(CMAKE_Fortran_FLAGS_INIT %s)\n", cmakeQuote(d.Flags.Fortran))

	c.line("\n# Search path configuration")
	c.printf("set(CMAKE_FIND_ROOT_PATH_MODE_PROGRAM %s)\n", d.Search.Program)
	c.printf("set(CMAKE_FIND_ROOT_PATH_MODE_LIBRARY %s)\n", d.Search.Library)
	c.printf("set(CMAKE_FIND_ROOT_PATH_MODE_INCLUDE %s)\n", d.Search.Include)
	c.printf("set(CMAKE_FIND_ROOT_PATH_MODE_PACKAGE %s)\n", d.Search.Package)

	c.line("\n# Packaging")
	c.set("CPACK_DEBIAN_PACKAGE_ARCHITECTURE", d.PackageArchitecture)

	c.line("\n# Locating Python")
	c.discovery(d.Python)
	return c.err
}

func (c *cmakeWriter) compiler(lang, doc string, comp Compiler) {
	c.setCache("CMAKE_"+lang+"_COMPILER", comp.Path, "FILEPATH", doc)
	if comp.Target != "" {
		c.set("CMAKE_"+lang+"_COMPILER_TARGET", comp.Target)
	}
	if comp.ExternalToolchain != "" {
		c.set("CMAKE_"+lang+"_COMPILER_EXTERNAL_TOOLCHAIN", comp.ExternalToolchain)
	}
	if comp.LinkExecutable != "" {
		c.set("CMAKE_"+lang+"_LINK_EXECUTABLE", comp.LinkExecutable)
	}
}

func (c *cmakeWriter) scriptProbe(indent string, p Probe) {
	c.printf("%scrosspy_probe_script(%s %s\n%s    %s)\n",
		indent, p.Variable, cmakeQuote(p.Property), indent, cmakeQuote(p.Script))
}

func (c *cmakeWriter) discovery(d Discovery) {
	c.line("find_package(Python3 REQUIRED COMPONENTS Interpreter)")
	c.line("")
	c.printf("%s\n", cmakeProbeFunctions)

	for _, p := range d.Probes {
		if p.Implementation == "" && !p.IsConfig() {
			c.scriptProbe("", p)
		}
	}
	c.line(`string(REGEX MATCH "^([0-9]+)\\.([0-9]+)$" _ "${CROSSPY_PYTHON_VERSION}")`)
	c.line(`set(CROSSPY_PYTHON_VERSION_MAJOR "${CMAKE_MATCH_1}")`)
	c.line(`set(CROSSPY_PYTHON_VERSION_MINOR "${CMAKE_MATCH_2}")`)
	c.line(`string(REGEX REPLACE "^\\[(.*)\\]$" "\\1" CROSSPY_BUILD_ABIFLAGS "${CROSSPY_BUILD_ABIFLAGS}")`)

	root := d.StagingRoot + "/"
	pypy := d.PyPy.Expand(cmakeVars)
	cpython := d.CPython.Expand(cmakeVars)

	c.printf("if(CROSSPY_PYTHON_IMPLEMENTATION STREQUAL %s)\n", cmakeQuote(string(platform.PyPy)))
	for _, p := range d.Probes {
		if p.Implementation == platform.PyPy && !p.IsConfig() {
			c.scriptProbe("    ", p)
		}
	}
	c.line(`    string(REGEX MATCH "^([0-9]+)\\.([0-9]+)" _ "${CROSSPY_PYPY_VERSION}")`)
	c.line(`    set(CROSSPY_PYPY_VERSION_MAJOR "${CMAKE_MATCH_1}")`)
	c.line(`    set(CROSSPY_PYPY_VERSION_MINOR "${CMAKE_MATCH_2}")`)
	c.printf("    if(CROSSPY_PYTHON_VERSION VERSION_LESS \"%d.%d\")\n",
		PyPyLibVersionThreshold[0], PyPyLibVersionThreshold[1])
	c.line(`        set(CROSSPY_PYPY_LIB_VERSION "${CROSSPY_PYTHON_VERSION_MAJOR}")`)
	c.line("    else()")
	c.line(`        set(CROSSPY_PYPY_LIB_VERSION "${CROSSPY_PYTHON_VERSION}")`)
	c.line("    endif()")
	c.layoutPaths(root, pypy)
	c.printf("    set(PY_BUILD_EXT_SUFFIX %s)\n", cmakeQuote(pypy.ExtensionSuffix))

	c.printf("elseif(CROSSPY_PYTHON_IMPLEMENTATION STREQUAL %s)\n", cmakeQuote(string(platform.CPython)))
	c.printf("    set(PYTHON_STAGING_DIR %s)\n", cmakeQuote(root+cpython.StagingDir))
	for _, p := range d.Probes {
		if p.Implementation == platform.CPython && p.IsConfig() {
			c.printf("    crosspy_probe_command(%s %s\n        %s %s)\n",
				p.Variable, cmakeQuote(p.Property),
				cmakeQuote("${PYTHON_STAGING_DIR}/"+cpython.Config), strings.Join(p.Args, " "))
		}
	}
	c.line(`    string(REPLACE "\n" ";" CROSSPY_PYTHON_CONFIG "${CROSSPY_PYTHON_CONFIG}")`)
	c.line(`    list(GET CROSSPY_PYTHON_CONFIG 0 PY_BUILD_EXT_SUFFIX)`)
	c.line(`    set(CROSSPY_CROSS_ABIFLAGS "")`)
	c.line(`    list(LENGTH CROSSPY_PYTHON_CONFIG _crosspy_config_len)`)
	c.line(`    if(_crosspy_config_len GREATER 1)`)
	c.line(`        list(GET CROSSPY_PYTHON_CONFIG 1 CROSSPY_CROSS_ABIFLAGS)`)
	c.line(`    endif()`)
	c.line(`    if(NOT "${CROSSPY_BUILD_ABIFLAGS}" STREQUAL "${CROSSPY_CROSS_ABIFLAGS}")`)
	c.line(`        message(WARNING "Python ABI flags of the build interpreter (${CROSSPY_BUILD_ABIFLAGS}) ` +
		`differ from the cross Python (${CROSSPY_CROSS_ABIFLAGS})")`)
	c.line(`    endif()`)
	c.printf("    set(Python3_LIBRARY %s)\n", cmakeQuote("${PYTHON_STAGING_DIR}/"+cpython.Library))
	c.printf("    set(Python3_INCLUDE_DIR %s)\n", cmakeQuote("${PYTHON_STAGING_DIR}/"+cpython.IncludeDir))

	c.line("else()")
	c.line(`    message(FATAL_ERROR "Unsupported Python implementation: ${CROSSPY_PYTHON_IMPLEMENTATION}")`)
	c.line("endif()")
	c.line(`list(APPEND CMAKE_FIND_ROOT_PATH "${PYTHON_STAGING_DIR}")`)
}

func (c *cmakeWriter) layoutPaths(root string, l Layout) {
	c.printf("    set(PYTHON_STAGING_DIR %s)\n", cmakeQuote(root+l.StagingDir))
	c.printf("    set(Python3_LIBRARY %s)\n", cmakeQuote("${PYTHON_STAGING_DIR}/"+l.Library))
	c.printf("    set(Python3_INCLUDE_DIR %s)\n", cmakeQuote("${PYTHON_STAGING_DIR}/"+l.IncludeDir))
}
