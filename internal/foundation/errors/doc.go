// Package errors provides the classified error primitives used across crosspy.
//
// Every failure the tool can report belongs to an ErrorCategory. The
// categories mirror the failure taxonomy of the build orchestrator: malformed
// identifiers and unsupported platforms abort before any job runs,
// introspection and backend failures abort the consuming build or job group,
// and ABI mismatches are warnings that never fail a build.
//
// Example usage:
//
//	err := errors.NewError(errors.CategoryIntrospection, "cannot determine ABI flags").
//		WithContext("interpreter", python).
//		WithCause(runErr).
//		Build()
package errors
