// Package platform models cross-compilation target triples.
//
// A Triple is the four-component identifier cpu-vendor-os-abi used to name
// crosstool-ng toolchains (for example armv7-neon-linux-gnueabihf). Every
// platform-dependent string the build needs (CMake system name and processor,
// compiler architecture flags, Debian package architecture, multiarch
// library directory) is derived from the triple through one explicit table
// keyed on (cpu, os, abi). Combinations missing from the table are reported
// as unsupported instead of falling back to a default.
package platform
