package logging

// These constants identify the services that log through sub-loggers, so log output can be filtered by service.
const (
	// COMPILATION_SERVICE is the constant used to identify the compilation package
	COMPILATION_SERVICE = "compilation"
	// SYMBOLS_SERVICE is the constant used to identify the symbols package
	SYMBOLS_SERVICE = "symbols"
	// CLI_SERVICE is the constant used to identify the cmd package
	CLI_SERVICE = "cli"
)

// LogFormat describes what format to log in
type LogFormat string

const (
	// STRUCTURED describes that logging should be done in structured JSON format
	STRUCTURED LogFormat = "structured"
	// UNSTRUCTURED describes that logging should be done in an unstructured format
	UNSTRUCTURED LogFormat = "unstructured"
)
