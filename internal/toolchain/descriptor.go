package toolchain

import (
	"git.home.luguber.info/inful/crosspy/internal/foundation/errors"
	"git.home.luguber.info/inful/crosspy/internal/platform"
)

// CompilerFamily selects how compilers target the triple.
type CompilerFamily string

const (
	// GCC uses the triple-prefixed crosstool-ng compilers.
	GCC CompilerFamily = "gcc"
	// Clang uses clang/clang++ with an explicit target and toolchain hint.
	Clang CompilerFamily = "clang"
)

// ParseCompilerFamily accepts "gcc", "clang" or "" (gcc).
func ParseCompilerFamily(s string) (CompilerFamily, error) {
	switch CompilerFamily(s) {
	case "", GCC:
		return GCC, nil
	case Clang:
		return Clang, nil
	}
	return "", errors.ConfigError("unknown compiler family").WithContext("compiler", s).Build()
}

// DefaultRoot is the directory holding x-tools/ and the Python staging
// directories, relative to the generated toolchain file.
const DefaultRoot = "${CMAKE_CURRENT_LIST_DIR}/.."

// Options tune descriptor generation.
type Options struct {
	Compiler CompilerFamily
	// Flang requests flang as the Fortran compiler under Clang.
	Flang bool
	// Root replaces DefaultRoot when set.
	Root string
}

// SearchMode is a CMAKE_FIND_ROOT_PATH_MODE_* value.
type SearchMode string

const (
	SearchNever SearchMode = "NEVER"
	SearchOnly  SearchMode = "ONLY"
)

// Descriptor is the complete, serializer-independent toolchain description.
type Descriptor struct {
	Triple              string       `yaml:"triple"`
	SystemName          string       `yaml:"system_name"`
	SystemProcessor     string       `yaml:"system_processor"`
	LibraryArchitecture string       `yaml:"library_architecture"`
	ToolchainDir        string       `yaml:"toolchain_dir"`
	Sysroot             string       `yaml:"sysroot"`
	Compilers           Compilers    `yaml:"compilers"`
	Flags               Flags        `yaml:"flags"`
	Search              SearchPolicy `yaml:"search"`
	PackageArchitecture string       `yaml:"package_architecture"`
	Python              Discovery    `yaml:"python"`
}

// Flags are the *_FLAGS_INIT values per language.
type Flags struct {
	C       string `yaml:"c"`
	CXX     string `yaml:"cxx"`
	Fortran string `yaml:"fortran"`
}

// SearchPolicy restricts library lookups to the sysroot while programs
// come from the build machine.
type SearchPolicy struct {
	Program SearchMode `yaml:"program"`
	Library SearchMode `yaml:"library"`
	Include SearchMode `yaml:"include"`
	Package SearchMode `yaml:"package"`
}

// Compiler describes one language's compiler settings.
type Compiler struct {
	Path              string `yaml:"path"`
	Target            string `yaml:"target,omitempty"`
	ExternalToolchain string `yaml:"external_toolchain,omitempty"`
	// LinkExecutable overrides the link rule. Only set for Fortran when
	// clang drives linking of gfortran objects.
	LinkExecutable string `yaml:"link_executable,omitempty"`
}

type Compilers struct {
	Family  CompilerFamily `yaml:"family"`
	C       Compiler       `yaml:"c"`
	CXX     Compiler       `yaml:"cxx"`
	Fortran Compiler       `yaml:"fortran"`
}

// Discovery is the configure-time procedure that locates the target
// Python runtime in its staging directory.
type Discovery struct {
	StagingRoot string  `yaml:"staging_root"`
	Probes      []Probe `yaml:"probes"`
	CPython     Layout  `yaml:"cpython"`
	PyPy        Layout  `yaml:"pypy"`
}

// Generate builds the descriptor for t. It does not touch the filesystem.
func Generate(t platform.Triple, opts Options) (*Descriptor, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	family, err := ParseCompilerFamily(string(opts.Compiler))
	if err != nil {
		return nil, err
	}
	if opts.Flang && family != Clang {
		return nil, errors.ConfigError("flang requires the clang compiler family").Build()
	}
	root := opts.Root
	if root == "" {
		root = DefaultRoot
	}

	// Validate succeeded, so the derivations cannot fail.
	name, _ := t.SystemName()
	processor, _ := t.SystemProcessor()
	flags, _ := t.ArchFlags()
	debArch, _ := t.PackageArchitecture()
	multiarch, _ := t.MultiarchDir()

	d := &Descriptor{
		Triple:              t.String(),
		SystemName:          name,
		SystemProcessor:     processor,
		LibraryArchitecture: multiarch,
		ToolchainDir:        root + "/x-tools/${CROSS_GNU_TRIPLE}",
		Sysroot:             "${TOOLCHAIN_DIR}/${CROSS_GNU_TRIPLE}/sysroot",
		Compilers:           compilers(family, opts.Flang),
		Flags:               Flags{C: flags, CXX: flags, Fortran: flags},
		Search: SearchPolicy{
			Program: SearchNever,
			Library: SearchOnly,
			Include: SearchOnly,
			Package: SearchOnly,
		},
		PackageArchitecture: debArch,
		Python: Discovery{
			StagingRoot: root,
			Probes:      Probes(),
			CPython:     CPythonLayout(),
			PyPy:        PyPyLayout().Expand(map[string]string{VarProcessor: processor}),
		},
	}
	return d, nil
}

func compilers(family CompilerFamily, flang bool) Compilers {
	native := func(tool string) Compiler {
		return Compiler{Path: "${TOOLCHAIN_DIR}/bin/${CROSS_GNU_TRIPLE}-" + tool}
	}
	if family == GCC {
		return Compilers{Family: GCC, C: native("gcc"), CXX: native("g++"), Fortran: native("gfortran")}
	}
	targeted := func(tool string) Compiler {
		return Compiler{Path: tool, Target: "${CROSS_GNU_TRIPLE}", ExternalToolchain: "${TOOLCHAIN_DIR}"}
	}
	c := Compilers{Family: Clang, C: targeted("clang"), CXX: targeted("clang++")}
	if flang {
		c.Fortran = targeted("flang")
		return c
	}
	// clang has no Fortran front end: gfortran compiles, clang links.
	c.Fortran = native("gfortran")
	c.Fortran.LinkExecutable = "clang --target=${CROSS_GNU_TRIPLE} --gcc-toolchain=${TOOLCHAIN_DIR}" +
		" <FLAGS> <CMAKE_Fortran_LINK_FLAGS> <LINK_FLAGS> <OBJECTS> -o <TARGET> <LINK_LIBRARIES> -lgfortran"
	return c
}
