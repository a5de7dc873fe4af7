package interp

import (
	"context"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/crosspy/internal/foundation/errors"
	"git.home.luguber.info/inful/crosspy/internal/pyversion"
)

const versionInfoScript = `import sys
v = sys.version_info
print(v.major, v.minor, v.micro, v.releaselevel, v.serial)
print(sys.executable)`

const hostGNUTypeScript = `import sysconfig
print(sysconfig.get_config_var('HOST_GNU_TYPE') or '')`

// Current asks the build interpreter for its own version. The result is bound
// to the interpreter's sys.executable so jobs run the exact same binary.
func Current(ctx context.Context, r Runner, python string) (pyversion.Version, error) {
	if python == "" {
		python = DefaultPython
	}
	out, err := Eval(ctx, r, python, versionInfoScript)
	if err != nil {
		return pyversion.Version{}, errors.IntrospectionFailure("build interpreter version").
			WithCause(err).WithContext("python", python).Build()
	}
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		return pyversion.Version{}, errors.IntrospectionFailure("build interpreter version").
			WithContext("python", python).WithContext("output", out).Build()
	}
	fields := strings.Fields(lines[0])
	if len(fields) != 5 {
		return pyversion.Version{}, errors.IntrospectionFailure("build interpreter version").
			WithContext("python", python).WithContext("output", out).Build()
	}
	var nums [4]int
	for i, idx := range []int{0, 1, 2, 4} {
		n, convErr := strconv.Atoi(fields[idx])
		if convErr != nil {
			return pyversion.Version{}, errors.IntrospectionFailure("build interpreter version").
				WithCause(convErr).WithContext("python", python).Build()
		}
		nums[i] = n
	}
	exe := strings.TrimSpace(lines[1])
	if exe == "" {
		exe = python
	}
	return pyversion.FromReleaseLevel(nums[0], nums[1], nums[2], fields[3], nums[3], exe)
}

// HostGNUType returns the GNU triple the build interpreter was configured
// for. It is the default build-machine triple.
func HostGNUType(ctx context.Context, r Runner, python string) (string, error) {
	if python == "" {
		python = DefaultPython
	}
	out, err := Eval(ctx, r, python, hostGNUTypeScript)
	if err != nil {
		return "", errors.IntrospectionFailure("build triple").
			WithCause(err).WithContext("python", python).Build()
	}
	if out == "" {
		return "", errors.IntrospectionFailure("build triple").WithContext("python", python).Build()
	}
	return out, nil
}
