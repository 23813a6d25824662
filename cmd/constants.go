package cmd

// DefaultProjectConfigFilename describes the default config filename for a given project folder.
const DefaultProjectConfigFilename = "soltrace.json"

// DefaultLogFilePrefix describes the name prefix of structured log files written to the configured log directory.
const DefaultLogFilePrefix = "soltrace"
