package errors

import "maps"

// ErrorCategory represents the broad category of an error for classification and routing.
type ErrorCategory string

const (
	// CategoryMalformedTriple is an invalid cpu-vendor-os-abi string.
	CategoryMalformedTriple  ErrorCategory = "malformed_triple"
	CategoryMalformedVersion ErrorCategory = "malformed_version"

	// CategoryUnsupportedPlatform is a well-formed triple missing from the derivation tables.
	CategoryUnsupportedPlatform ErrorCategory = "unsupported_platform"

	// CategoryUnresolvableImplementationVersion is a PyPy line without a release table entry.
	CategoryUnresolvableImplementationVersion ErrorCategory = "unresolvable_implementation_version"

	// CategoryIntrospection is a runtime-discovery probe that failed or printed nothing.
	CategoryIntrospection ErrorCategory = "introspection"

	// CategoryExternalProcess is a build backend process that exited non-zero.
	CategoryExternalProcess ErrorCategory = "external_process"

	// CategoryABIMismatch is only ever used with SeverityWarning.
	CategoryABIMismatch ErrorCategory = "abi_mismatch"

	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryJournal    ErrorCategory = "journal"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorSeverity indicates the impact level of an error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution completely
	SeverityError   ErrorSeverity = "error"   // Fails the current operation
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// RetryStrategy indicates how an error should be handled in retry scenarios.
//
// Cross builds are never retried automatically, so only the two
// non-retrying strategies exist.
type RetryStrategy string

const (
	RetryNever      RetryStrategy = "never" // Permanent failure, don't retry
	RetryUserAction RetryStrategy = "user"  // Requires user intervention
)

// ErrorContext provides structured context for errors.
type ErrorContext map[string]any

// Set adds or updates a context value.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = make(ErrorContext)
	}
	c[key] = value
	return c
}

// Get retrieves a context value.
func (c ErrorContext) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	value, exists := c[key]
	return value, exists
}

// GetString retrieves a string context value.
func (c ErrorContext) GetString(key string) (string, bool) {
	if value, exists := c.Get(key); exists {
		if str, ok := value.(string); ok {
			return str, true
		}
	}
	return "", false
}

// Merge combines two contexts, with other taking precedence.
func (c ErrorContext) Merge(other ErrorContext) ErrorContext {
	if c == nil {
		return other
	}
	if other == nil {
		return c
	}
	result := make(ErrorContext)
	maps.Copy(result, c)
	maps.Copy(result, other)
	return result
}
