package config

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ProjectConfig describes the configuration options used by soltrace to symbolicate a project's compiled contracts.
type ProjectConfig struct {
	// Artifacts describes where the compiler artifacts to symbolicate are read from.
	Artifacts ArtifactsConfig `json:"artifacts"`

	// Symbols describes the configuration used when building and reporting the symbol model.
	Symbols SymbolsConfig `json:"symbols"`

	// Logging describes the configuration used for logging
	Logging LoggingConfig `json:"logging"`
}

// ArtifactsConfig describes the solc standard-JSON files a symbol model is built from.
type ArtifactsConfig struct {
	// InputPath is the path to the standard-JSON input given to the compiler. Source text is read from it.
	InputPath string `json:"inputPath"`

	// OutputPath is the path to the standard-JSON output the compiler produced.
	OutputPath string `json:"outputPath"`
}

// SymbolsConfig describes the configuration options used when building and reporting symbols.
type SymbolsConfig struct {
	// Strict describes whether any warning diagnostic should fail the command.
	Strict bool `json:"strict"`

	// IncludeDeployment describes whether deployment bytecode is reported alongside runtime bytecode.
	IncludeDeployment bool `json:"includeDeployment"`

	// Contracts restricts reporting to the listed contracts, given either by name or as `source:Name`. An empty list
	// reports every contract.
	Contracts []string `json:"contracts"`

	// SignatureDatabase is the path of the database that function and custom error signatures are recorded to, so
	// selectors can later be looked up. If the string is empty, no signatures are recorded.
	SignatureDatabase string `json:"signatureDatabase"`
}

// IncludesContract indicates whether a contract with the given name and fully qualified `source:Name` is selected
// for reporting.
func (s SymbolsConfig) IncludesContract(name string, fullyQualifiedName string) bool {
	if len(s.Contracts) == 0 {
		return true
	}
	for _, contract := range s.Contracts {
		if contract == name || contract == fullyQualifiedName {
			return true
		}
	}
	return false
}

// LoggingConfig describes the configuration options used for logging
type LoggingConfig struct {
	// Level describes whether logs of certain severity levels (eg info, warning, etc.) will be emitted or discarded.
	// Increasing level values represent more severe logs
	Level zerolog.Level `json:"level"`

	// EnableConsoleLogging describes whether console logging is enabled
	EnableConsoleLogging bool `json:"enableConsoleLogging"`

	// LogDirectory describes the directory where structured log _files_ will be outputted. If the string is empty, then
	// no log files are kept
	LogDirectory string `json:"logDirectory"`
}

// ReadProjectConfigFromFile reads a JSON-serialized ProjectConfig from a provided file path. Fields missing from the
// file keep their default value.
// Returns the ProjectConfig if it succeeds, or an error if one occurs.
func ReadProjectConfigFromFile(path string) (*ProjectConfig, error) {
	// Read our project configuration file data
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// Parse the project configuration on top of the defaults
	projectConfig := GetDefaultProjectConfig()
	err = json.Unmarshal(b, projectConfig)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return projectConfig, nil
}

// WriteToFile writes the ProjectConfig to a provided file path in a JSON-serialized format.
// Returns an error if one occurs.
func (p *ProjectConfig) WriteToFile(path string) error {
	// Serialize the configuration
	b, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return errors.WithStack(err)
	}

	// Save it to the provided output path and return the result
	err = os.WriteFile(path, b, 0644)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// Validate validates that the ProjectConfig meets certain requirements.
// Returns an error if one occurs.
func (p *ProjectConfig) Validate() error {
	// Both artifact files are needed to build a model
	if p.Artifacts.InputPath == "" {
		return errors.Errorf("compiler input path must be provided")
	}
	if p.Artifacts.OutputPath == "" {
		return errors.Errorf("compiler output path must be provided")
	}

	// Contract filters must name something
	for _, contract := range p.Symbols.Contracts {
		if strings.TrimSpace(contract) == "" {
			return errors.Errorf("contract filters cannot be empty")
		}
	}

	// Verify the log level is one zerolog knows about
	if p.Logging.Level < zerolog.TraceLevel || p.Logging.Level > zerolog.Disabled {
		return errors.Errorf("invalid log level %d", p.Logging.Level)
	}
	return nil
}
