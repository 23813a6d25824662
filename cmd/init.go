package cmd

import (
	"os"
	"path/filepath"

	"github.com/crytic/soltrace/cmd/exitcodes"
	"github.com/crytic/soltrace/config"
	"github.com/crytic/soltrace/logging/colors"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// initCmd represents the command provider for init
var initCmd = &cobra.Command{
	Use:               "init",
	Short:             "Initializes a project configuration",
	Long:              `Writes a default project configuration, pointing at the compiler artifacts to symbolicate`,
	Args:              cmdValidateNoArgs,
	ValidArgsFunction: cmdValidFlagArgs,
	RunE:              cmdRunInit,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add flags to init command
	addInitFlags()

	// Add the init command and its associated flags to the root command
	rootCmd.AddCommand(initCmd)
}

// cmdRunInit executes the init CLI command and updates the project configuration with any flags
func cmdRunInit(cmd *cobra.Command, args []string) error {
	outputPath, err := initOutputPath(cmd)
	if err == nil {
		err = writeInitConfig(cmd, outputPath)
	}
	if err != nil {
		cmdLogger.Error("Failed to run the init command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	// Print a success message
	if absoluteOutputPath, err := filepath.Abs(outputPath); err == nil {
		outputPath = absoluteOutputPath
	}
	cmdLogger.Info("Project configuration successfully output to: ", colors.Bold, outputPath, colors.Reset)
	return nil
}

// initOutputPath returns the --out path, or soltrace.json in the working directory if the flag was not used.
func initOutputPath(cmd *cobra.Command) (string, error) {
	if cmd.Flags().Changed("out") {
		return cmd.Flags().GetString("out")
	}
	workingDirectory, err := os.Getwd()
	if err != nil {
		return "", errors.WithStack(err)
	}
	return filepath.Join(workingDirectory, DefaultProjectConfigFilename), nil
}

// writeInitConfig writes the default project configuration, updated with the init flags, to outputPath. An existing
// file is only replaced when --force is set.
func writeInitConfig(cmd *cobra.Command, outputPath string) error {
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}
	if _, err = os.Stat(outputPath); err == nil && !force {
		return errors.Errorf("%s already exists, use --force to overwrite it", outputPath)
	}

	projectConfig := config.GetDefaultProjectConfig()
	err = updateProjectConfigWithInitFlags(cmd, projectConfig)
	if err != nil {
		return err
	}
	return projectConfig.WriteToFile(outputPath)
}
