package errors

// ErrorBuilder provides a fluent API for creating ClassifiedError instances.
type ErrorBuilder struct {
	category ErrorCategory
	severity ErrorSeverity
	retry    RetryStrategy
	message  string
	cause    error
	context  ErrorContext
}

// NewError creates a new ErrorBuilder with the specified category and message.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{
		category: category,
		severity: SeverityError,
		retry:    RetryNever,
		message:  message,
		context:  make(ErrorContext),
	}
}

// WrapError creates a new ErrorBuilder that wraps an existing error.
func WrapError(err error, category ErrorCategory, message string) *ErrorBuilder {
	return NewError(category, message).WithCause(err)
}

// WithSeverity sets the error severity.
func (b *ErrorBuilder) WithSeverity(severity ErrorSeverity) *ErrorBuilder {
	b.severity = severity
	return b
}

// WithCause sets the wrapped error.
func (b *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	b.cause = err
	return b
}

// WithContext adds a context key-value pair.
func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.context = b.context.Set(key, value)
	return b
}

// Fatal sets the severity to fatal.
func (b *ErrorBuilder) Fatal() *ErrorBuilder {
	return b.WithSeverity(SeverityFatal)
}

// Warning sets the severity to warning.
func (b *ErrorBuilder) Warning() *ErrorBuilder {
	return b.WithSeverity(SeverityWarning)
}

// UserAction sets the retry strategy to require user intervention.
func (b *ErrorBuilder) UserAction() *ErrorBuilder {
	b.retry = RetryUserAction
	return b
}

// Build creates the final ClassifiedError.
func (b *ErrorBuilder) Build() *ClassifiedError {
	return &ClassifiedError{
		category: b.category,
		severity: b.severity,
		retry:    b.retry,
		message:  b.message,
		cause:    b.cause,
		context:  b.context,
	}
}

// Convenience constructors for the failure taxonomy.

// MalformedTriple reports a platform string that is not cpu-vendor-os-abi.
func MalformedTriple(input string) *ErrorBuilder {
	return NewError(CategoryMalformedTriple, "malformed platform triple").
		Fatal().UserAction().WithContext("triple", input)
}

// MalformedVersion reports a version string outside the major.minor.patch[suffix] grammar.
func MalformedVersion(input string) *ErrorBuilder {
	return NewError(CategoryMalformedVersion, "malformed Python version").
		Fatal().UserAction().WithContext("version", input)
}

// UnsupportedPlatform reports a triple whose components have no derivation table entry.
func UnsupportedPlatform(triple, attribute string) *ErrorBuilder {
	return NewError(CategoryUnsupportedPlatform, "unsupported platform").
		Fatal().WithContext("triple", triple).WithContext("attribute", attribute)
}

// UnresolvableImplementationVersion reports a PyPy line missing from the release table.
func UnresolvableImplementationVersion(pythonVersion string) *ErrorBuilder {
	return NewError(CategoryUnresolvableImplementationVersion, "no PyPy release for Python version").
		Fatal().WithContext("python", pythonVersion)
}

// IntrospectionFailure reports a discovery probe that exited non-zero or printed nothing.
func IntrospectionFailure(property string) *ErrorBuilder {
	return NewError(CategoryIntrospection, "unable to determine "+property).
		Fatal().WithContext("property", property)
}

// ExternalProcessFailure reports a backend process that exited non-zero.
func ExternalProcessFailure(job string) *ErrorBuilder {
	return NewError(CategoryExternalProcess, "build backend failed").
		Fatal().WithContext("job", job)
}

// ABIMismatch is the non-fatal warning for build/cross ABI flag disagreement.
func ABIMismatch(buildFlags, crossFlags string) *ErrorBuilder {
	return NewError(CategoryABIMismatch, "build and cross ABI flags differ").
		Warning().WithContext("build_abiflags", buildFlags).WithContext("cross_abiflags", crossFlags)
}

// ConfigError creates a configuration error.
func ConfigError(message string) *ErrorBuilder {
	return NewError(CategoryConfig, message).Fatal().UserAction()
}

// ValidationError creates a validation error.
func ValidationError(message string) *ErrorBuilder {
	return NewError(CategoryValidation, message).Fatal().UserAction()
}

// FileSystemError creates a filesystem error.
func FileSystemError(message string) *ErrorBuilder {
	return NewError(CategoryFileSystem, message)
}

// JournalError creates a run journal error.
func JournalError(message string) *ErrorBuilder {
	return NewError(CategoryJournal, message)
}

// InternalError creates an internal error.
func InternalError(message string) *ErrorBuilder {
	return NewError(CategoryInternal, message).Fatal()
}
