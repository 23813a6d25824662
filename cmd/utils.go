package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/crytic/soltrace/cmd/exitcodes"
	"github.com/crytic/soltrace/compilation"
	"github.com/crytic/soltrace/config"
	"github.com/crytic/soltrace/logging"
	"github.com/crytic/soltrace/logging/colors"
	"github.com/crytic/soltrace/symbols"
	"github.com/crytic/soltrace/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// cmdValidFlagArgs will return the flags of a command that have not been used yet, for dynamic completion
func cmdValidFlagArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	// Gather a list of flags that are available to be used in the current command but have not been used yet
	var unusedFlags []string
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed {
			// Include the "--" prefix so the completion shell knows none of the arguments are positional.
			unusedFlags = append(unusedFlags, "--"+flag.Name)
		}
	})
	return unusedFlags, cobra.ShellCompDirectiveNoFileComp
}

// cmdValidateNoArgs makes sure that there are no positional arguments provided to a command
func cmdValidateNoArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		err = fmt.Errorf("%s does not accept any positional arguments, only flags and their associated values", cmd.Name())
		cmdLogger.Error("Failed to validate args to the "+cmd.Name()+" command", err)
		return err
	}
	return nil
}

// addProjectFlags adds the flags shared by every command that builds symbols
func addProjectFlags(cmd *cobra.Command) {
	defaultConfig := config.GetDefaultProjectConfig()

	// Prevent alphabetical sorting of usage message
	cmd.Flags().SortFlags = false

	// Config file
	cmd.Flags().String("config", "", "path to config file")

	// Artifacts
	cmd.Flags().String("input", "",
		fmt.Sprintf("path to the compiler standard-JSON input (unless a config file is provided, default is %q)", defaultConfig.Artifacts.InputPath))
	cmd.Flags().String("output", "",
		fmt.Sprintf("path to the compiler standard-JSON output (unless a config file is provided, default is %q)", defaultConfig.Artifacts.OutputPath))

	// Strict mode
	cmd.Flags().Bool("strict", false,
		fmt.Sprintf("fail when warning diagnostics are produced (unless a config file is provided, default is %t)", defaultConfig.Symbols.Strict))
}

// updateProjectConfigWithProjectFlags will update the given projectConfig with any shared CLI arguments that were
// provided to a command
func updateProjectConfigWithProjectFlags(cmd *cobra.Command, projectConfig *config.ProjectConfig) error {
	var err error

	// Update the compiler input path
	if cmd.Flags().Changed("input") {
		projectConfig.Artifacts.InputPath, err = cmd.Flags().GetString("input")
		if err != nil {
			return err
		}
	}

	// Update the compiler output path
	if cmd.Flags().Changed("output") {
		projectConfig.Artifacts.OutputPath, err = cmd.Flags().GetString("output")
		if err != nil {
			return err
		}
	}

	// Update strict mode
	if cmd.Flags().Changed("strict") {
		projectConfig.Symbols.Strict, err = cmd.Flags().GetBool("strict")
		if err != nil {
			return err
		}
	}
	return nil
}

// loadProjectConfig resolves the project configuration of a command and navigates through the following possibilities:
// #1: We will search for either a custom config file (via --config) or the default (soltrace.json).
// If we find it, read it. If we can't read it, throw an error.
// #2: If a custom file was provided (--config was used), and we can't find the file, throw an error.
// #3: If soltrace.json can't be found, use the default project configuration.
// Artifact paths from the configuration file are resolved relative to the directory that holds it.
func loadProjectConfig(cmd *cobra.Command) (*config.ProjectConfig, error) {
	// Check to see if --config flag was used and store the value of --config flag
	configFlagUsed := cmd.Flags().Changed("config")
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// If --config was not used, look for `soltrace.json` in the current work directory
	if !configFlagUsed {
		workingDirectory, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		configPath = filepath.Join(workingDirectory, DefaultProjectConfigFilename)
	}

	// Check to see if the file exists at configPath
	_, existenceError := os.Stat(configPath)

	var projectConfig *config.ProjectConfig
	switch {
	case existenceError == nil:
		// Possibility #1: File was found
		cmdLogger.Info("Reading the configuration file at: ", colors.Bold, configPath, colors.Reset)
		projectConfig, err = config.ReadProjectConfigFromFile(configPath)
		if err != nil {
			return nil, err
		}
		resolveArtifactPaths(projectConfig, filepath.Dir(configPath))
	case configFlagUsed:
		// Possibility #2: If the --config flag was used, and we couldn't find the file, we'll throw an error
		return nil, errors.WithStack(existenceError)
	default:
		// Possibility #3: --config flag was not used and soltrace.json was not found, so use the default project config
		cmdLogger.Debug("Unable to find the config file at ", configPath, ", will use the default project configuration")
		projectConfig = config.GetDefaultProjectConfig()
	}

	// Update the project configuration given whatever flags were set using the CLI
	err = updateProjectConfigWithProjectFlags(cmd, projectConfig)
	if err != nil {
		return nil, err
	}

	err = projectConfig.Validate()
	if err != nil {
		return nil, err
	}
	return projectConfig, nil
}

// resolveArtifactPaths makes the relative paths of a configuration file relative to the file's directory.
func resolveArtifactPaths(projectConfig *config.ProjectConfig, configDirectory string) {
	paths := []*string{&projectConfig.Artifacts.InputPath, &projectConfig.Artifacts.OutputPath, &projectConfig.Symbols.SignatureDatabase}
	for _, path := range paths {
		if *path != "" && !filepath.IsAbs(*path) {
			*path = filepath.Join(configDirectory, *path)
		}
	}
}

// setupLogging replaces the GlobalLogger with one configured by the project's logging configuration. If a log
// directory is configured, structured logs are also written to a new file within it.
// Returns a function which closes the log file, or an error if the file could not be created.
func setupLogging(loggingConfig config.LoggingConfig) (func(), error) {
	logging.GlobalLogger = logging.NewLogger(loggingConfig.Level, loggingConfig.EnableConsoleLogging)
	if loggingConfig.LogDirectory == "" {
		return func() {}, nil
	}

	fileName := fmt.Sprintf("%s-%s.log", DefaultLogFilePrefix, time.Now().Format("20060102-150405"))
	file, err := utils.CreateFile(loggingConfig.LogDirectory, fileName)
	if err != nil {
		return nil, err
	}
	logging.GlobalLogger.AddWriter(file, logging.STRUCTURED)
	return func() {
		logging.GlobalLogger.RemoveWriter(file)
		_ = file.Close()
	}, nil
}

// buildSymbols reads the configured compiler artifacts and builds their symbol model. Warning diagnostics are left to
// checkStrictDiagnostics.
// Returns the build result, or an error carrying the exit code the CLI should terminate with.
func buildSymbols(projectConfig *config.ProjectConfig) (*symbols.BuildResult, error) {
	compiled, err := compilation.ReadStandardJSONArtifacts(projectConfig.Artifacts.InputPath, projectConfig.Artifacts.OutputPath)
	if err != nil {
		return nil, exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeBuildError)
	}

	result, err := symbols.Build(compiled, logging.GlobalLogger)
	if err != nil {
		return nil, exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeBuildError)
	}
	return result, nil
}

// checkStrictDiagnostics returns an ExitCodeDiagnostics error if strict mode is enabled and warnings were produced.
func checkStrictDiagnostics(projectConfig *config.ProjectConfig, result *symbols.BuildResult) error {
	warnings := result.Diagnostics.Warnings()
	if !projectConfig.Symbols.Strict || len(warnings) == 0 {
		return nil
	}
	return exitcodes.NewErrorWithExitCode(
		errors.Errorf("%d warning diagnostic(s) were produced in strict mode", len(warnings)),
		exitcodes.ExitCodeDiagnostics,
	)
}

// writeLogBuffer writes the plain text of a LogBuffer to the given writer.
func writeLogBuffer(out io.Writer, buffer *logging.LogBuffer) error {
	_, err := io.WriteString(out, buffer.String())
	return errors.WithStack(err)
}
