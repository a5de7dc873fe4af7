// Package probe locates a staged target Python runtime from Go, running the
// same introspection the generated CMake toolchain runs at configure time.
package probe

import (
	"context"
	"path"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/crosspy/internal/foundation/errors"
	"git.home.luguber.info/inful/crosspy/internal/interp"
	"git.home.luguber.info/inful/crosspy/internal/platform"
	"git.home.luguber.info/inful/crosspy/internal/toolchain"
)

// Request selects the interpreter and target to probe.
type Request struct {
	// Python is the build interpreter; defaults to python3.
	Python string
	Host   platform.Triple
	// StagingRoot holds the python<ver> and pypy<ver>-v<release> directories.
	StagingRoot string
}

// Implementation is either CPython or PyPy.
type Implementation interface {
	Family() platform.Implementation
	isImplementation()
}

// CPython carries the ABI flags of both sides of the cross build.
type CPython struct {
	BuildABIFlags string
	CrossABIFlags string
}

func (CPython) Family() platform.Implementation { return platform.CPython }
func (CPython) isImplementation()               {}

// PyPy carries the PyPy release and the shared library tag derived from it.
type PyPy struct {
	Release    string
	LibVersion string
}

func (PyPy) Family() platform.Implementation { return platform.PyPy }
func (PyPy) isImplementation()               {}

// Discovery is the located runtime.
type Discovery struct {
	Version         string
	Implementation  Implementation
	StagingDir      string
	Library         string
	IncludeDir      string
	ExtensionSuffix string
	// Warnings are non-fatal findings such as an ABI flag mismatch.
	Warnings []*errors.ClassifiedError
}

// Discover runs the probe table. Any failing probe aborts discovery with an
// introspection error naming the property.
func Discover(ctx context.Context, r interp.Runner, req Request) (*Discovery, error) {
	if req.Python == "" {
		req.Python = interp.DefaultPython
	}
	processor, err := req.Host.SystemProcessor()
	if err != nil {
		return nil, err
	}

	values := make(map[string]string)
	for _, p := range toolchain.Probes() {
		if p.Implementation != "" {
			continue
		}
		out, err := runScript(ctx, r, req.Python, p)
		if err != nil {
			return nil, err
		}
		values[p.Property] = out
	}

	major, minor, ok := splitMajorMinor(values[toolchain.PropertyVersion])
	if !ok {
		return nil, errors.IntrospectionFailure(toolchain.PropertyVersion).
			WithContext("output", values[toolchain.PropertyVersion]).Build()
	}
	buildABI, ok := toolchain.UnframeABIFlags(values[toolchain.PropertyABIFlags])
	if !ok {
		return nil, errors.IntrospectionFailure(toolchain.PropertyABIFlags).
			WithContext("output", values[toolchain.PropertyABIFlags]).Build()
	}
	vars := map[string]string{
		toolchain.VarVersion:   values[toolchain.PropertyVersion],
		toolchain.VarMajor:     major,
		toolchain.VarMinor:     minor,
		toolchain.VarProcessor: processor,
	}

	impl, ok := platform.ParseImplementation(values[toolchain.PropertyImplementation])
	if !ok {
		return nil, errors.ConfigError("unsupported Python implementation").
			WithContext("implementation", values[toolchain.PropertyImplementation]).Build()
	}
	if impl == platform.PyPy {
		return discoverPyPy(ctx, r, req, vars)
	}
	return discoverCPython(ctx, r, req, vars, buildABI)
}

func discoverCPython(ctx context.Context, r interp.Runner, req Request, vars map[string]string, buildABI string) (*Discovery, error) {
	layout := toolchain.CPythonLayout().Expand(vars)
	staging := path.Join(req.StagingRoot, layout.StagingDir)

	p, _ := toolchain.FindProbe(toolchain.PropertyExtensionSuffix)
	out, err := r.Output(ctx, path.Join(staging, layout.Config), p.Args...)
	text := strings.TrimSpace(string(out))
	if err != nil || text == "" {
		return nil, errors.IntrospectionFailure(p.Property).WithCause(err).
			WithContext("command", path.Join(staging, layout.Config)).Build()
	}
	lines := strings.Split(text, "\n")
	suffix := strings.TrimSpace(lines[0])
	var crossABI string
	if len(lines) > 1 {
		crossABI = strings.TrimSpace(lines[1])
	}

	vars[toolchain.VarABIFlags] = crossABI
	layout = layout.Expand(vars)
	d := &Discovery{
		Version:         vars[toolchain.VarVersion],
		Implementation:  CPython{BuildABIFlags: buildABI, CrossABIFlags: crossABI},
		StagingDir:      staging,
		Library:         path.Join(staging, layout.Library),
		IncludeDir:      path.Join(staging, layout.IncludeDir),
		ExtensionSuffix: suffix,
	}
	if buildABI != crossABI {
		d.Warnings = append(d.Warnings, errors.ABIMismatch(buildABI, crossABI).Build())
	}
	return d, nil
}

func discoverPyPy(ctx context.Context, r interp.Runner, req Request, vars map[string]string) (*Discovery, error) {
	p, _ := toolchain.FindProbe(toolchain.PropertyPyPyVersion)
	release, err := runScript(ctx, r, req.Python, p)
	if err != nil {
		return nil, err
	}
	pmaj, pmin, ok := splitMajorMinor(release)
	if !ok {
		return nil, errors.IntrospectionFailure(p.Property).WithContext("output", release).Build()
	}
	major, _ := strconv.Atoi(vars[toolchain.VarMajor])
	minor, _ := strconv.Atoi(vars[toolchain.VarMinor])
	libVersion := toolchain.PyPyLibVersion(major, minor)

	vars[toolchain.VarPyPyVersion] = release
	vars[toolchain.VarPyPyMajor] = pmaj
	vars[toolchain.VarPyPyMinor] = pmin
	vars[toolchain.VarLibVersion] = libVersion
	layout := toolchain.PyPyLayout().Expand(vars)
	staging := path.Join(req.StagingRoot, layout.StagingDir)

	return &Discovery{
		Version:         vars[toolchain.VarVersion],
		Implementation:  PyPy{Release: release, LibVersion: libVersion},
		StagingDir:      staging,
		Library:         path.Join(staging, layout.Library),
		IncludeDir:      path.Join(staging, layout.IncludeDir),
		ExtensionSuffix: layout.ExtensionSuffix,
	}, nil
}

func runScript(ctx context.Context, r interp.Runner, python string, p toolchain.Probe) (string, error) {
	out, err := interp.Eval(ctx, r, python, p.Script)
	if err != nil || out == "" {
		return "", errors.IntrospectionFailure(p.Property).WithCause(err).
			WithContext("python", python).Build()
	}
	return out, nil
}

// splitMajorMinor returns the first two dot-separated numeric components.
func splitMajorMinor(s string) (string, string, bool) {
	parts := strings.Split(s, ".")
	if len(parts) < 2 {
		return "", "", false
	}
	for _, p := range parts[:2] {
		if _, err := strconv.Atoi(p); err != nil {
			return "", "", false
		}
	}
	return parts[0], parts[1], true
}
