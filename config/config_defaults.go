package config

import "github.com/rs/zerolog"

// GetDefaultProjectConfig obtains a default configuration for a project. Artifact paths point at the conventional
// standard-JSON file names next to the configuration file.
func GetDefaultProjectConfig() *ProjectConfig {
	return &ProjectConfig{
		Artifacts: ArtifactsConfig{
			InputPath:  "input.json",
			OutputPath: "output.json",
		},
		Symbols: SymbolsConfig{
			Strict:            false,
			IncludeDeployment: false,
			Contracts:         []string{},
			SignatureDatabase: "",
		},
		Logging: LoggingConfig{
			Level:                zerolog.InfoLevel,
			EnableConsoleLogging: true,
			LogDirectory:         "",
		},
	}
}
