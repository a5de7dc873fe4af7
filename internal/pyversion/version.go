// Package pyversion parses and orders Python release identifiers.
package pyversion

import (
	"cmp"
	"fmt"
	"regexp"
	"strconv"

	"git.home.luguber.info/inful/crosspy/internal/foundation/errors"
)

// Numeric components carry no leading zeros so every accepted string is
// already canonical.
var versionPattern = regexp.MustCompile(`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)((?:a|b|rc)(?:0|[1-9]\d*))?$`)

// Version is a major.minor.patch[suffix] release, optionally bound to the
// interpreter executable that provides it.
type Version struct {
	Major  int
	Minor  int
	Patch  int
	Suffix string
	// Executable is the interpreter to run for this version. Empty means
	// python<major>.<minor> on PATH.
	Executable string
}

// Parse accepts the canonical "major.minor.patch[suffix]" form.
func Parse(s string) (Version, error) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return Version{}, errors.MalformedVersion(s).Build()
	}
	var nums [3]int
	for i := range nums {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return Version{}, errors.MalformedVersion(s).WithCause(err).Build()
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2], Suffix: m[4]}, nil
}

// MustParse is Parse for static tables; it panics on malformed input.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// ParseAll parses every string, stopping at the first malformed one.
func ParseAll(ss []string) ([]Version, error) {
	out := make([]Version, 0, len(ss))
	for _, s := range ss {
		v, err := Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// FromReleaseLevel builds a version from the fields of sys.version_info.
// Release levels other than alpha, beta, candidate and final are rejected as
// an internal error: CPython defines no others.
func FromReleaseLevel(major, minor, micro int, level string, serial int, executable string) (Version, error) {
	var suffix string
	switch level {
	case "alpha":
		suffix = fmt.Sprintf("a%d", serial)
	case "beta":
		suffix = fmt.Sprintf("b%d", serial)
	case "candidate":
		suffix = fmt.Sprintf("rc%d", serial)
	case "final":
	default:
		return Version{}, errors.InternalError("unknown Python release level").
			WithContext("releaselevel", level).Build()
	}
	return Version{Major: major, Minor: minor, Patch: micro, Suffix: suffix, Executable: executable}, nil
}

// String returns the canonical form. The executable is not part of it.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d%s", v.Major, v.Minor, v.Patch, v.Suffix)
}

// Release is major.minor.patch without the suffix.
func (v Version) Release() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// MajorMinor returns the two-component version, e.g. "3.11".
func (v Version) MajorMinor() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Interpreter is the executable name jobs for this version invoke.
func (v Version) Interpreter() string {
	if v.Executable != "" {
		return v.Executable
	}
	return "python" + v.MajorMinor()
}

// Compare orders by (major, minor, patch). Suffixes do not participate.
func (v Version) Compare(o Version) int {
	if c := cmp.Compare(v.Major, o.Major); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Minor, o.Minor); c != 0 {
		return c
	}
	return cmp.Compare(v.Patch, o.Patch)
}

func (v Version) Less(o Version) bool { return v.Compare(o) < 0 }

// MarshalText emits the canonical form.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText parses the canonical form.
func (v *Version) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
