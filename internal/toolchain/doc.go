// Package toolchain generates cross-compilation toolchain descriptors.
//
// Generate assembles a typed Descriptor for one target triple: identity,
// architecture flags, sysroot search policy, compiler selection and the
// Python discovery procedure the consuming build runs at configure time.
// Serialization happens last, either as a CMake toolchain file (WriteCMake)
// or as YAML for inspection (YAML).
//
// The discovery probes in Probes are shared with package probe, which runs
// the same introspection from Go.
package toolchain
