package exitcodes

const (
	// ================================
	// Platform-universal exit codes
	// ================================

	// ExitCodeSuccess indicates no errors or failures had occurred.
	ExitCodeSuccess = 0

	// ExitCodeGeneralError indicates some type of general error occurred.
	ExitCodeGeneralError = 1

	// ================================
	// Application-specific exit codes
	// ================================
	// Note: Despite not being standardized, exit codes 2-5 are often used for common use cases, so we avoid them.

	// ExitCodeBuildError indicates that the compiler artifacts could not be read or symbolicated. Note that an error
	// with error code ExitCodeGeneralError and ExitCodeBuildError are mutually exclusive errors
	ExitCodeBuildError = 6

	// ExitCodeDiagnostics indicates the symbols were built but warning diagnostics were produced in strict mode.
	ExitCodeDiagnostics = 7

	// ExitCodeHandledError indicates that there was an error that was logged already and does not need to be handled
	// by main.
	ExitCodeHandledError = 8
)
