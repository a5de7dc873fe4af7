package platform

import (
	"strings"

	"git.home.luguber.info/inful/crosspy/internal/foundation/errors"
)

// Triple identifies a target platform. The zero value is not a valid triple;
// use Parse or New.
type Triple struct {
	cpu    string
	vendor string
	os     string
	abi    string
}

// New builds a triple from its components without consulting the derivation tables.
func New(cpu, vendor, os, abi string) (Triple, error) {
	t := Triple{cpu: cpu, vendor: vendor, os: os, abi: abi}
	for _, c := range []string{cpu, vendor, os, abi} {
		if c == "" || strings.Contains(c, "-") {
			return Triple{}, errors.MalformedTriple(t.String()).Build()
		}
	}
	return t, nil
}

// Parse splits a cpu-vendor-os-abi string. It is the exact inverse of String.
func Parse(s string) (Triple, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 4 {
		return Triple{}, errors.MalformedTriple(s).Build()
	}
	return New(parts[0], parts[1], parts[2], parts[3])
}

// MustParse is Parse for static tables; it panics on malformed input.
func MustParse(s string) Triple {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseAll parses every string, stopping at the first malformed one.
func ParseAll(ss []string) ([]Triple, error) {
	out := make([]Triple, 0, len(ss))
	for _, s := range ss {
		t, err := Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (t Triple) CPU() string    { return t.cpu }
func (t Triple) Vendor() string { return t.vendor }
func (t Triple) OS() string     { return t.os }
func (t Triple) ABI() string    { return t.abi }

// String returns the canonical cpu-vendor-os-abi form.
func (t Triple) String() string {
	return t.cpu + "-" + t.vendor + "-" + t.os + "-" + t.abi
}

// IsZero reports whether t was never initialized.
func (t Triple) IsZero() bool {
	return t == Triple{}
}

// MarshalText lets triples appear as plain strings in YAML and JSON output.
func (t Triple) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses the canonical form.
func (t *Triple) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
