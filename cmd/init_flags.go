package cmd

import (
	"github.com/crytic/soltrace/config"
	"github.com/spf13/cobra"
)

// addInitFlags adds the various flags for the init command
func addInitFlags() {
	// Output path for configuration
	initCmd.Flags().String("out", "", "output path for the new project configuration file")

	// Artifact paths
	initCmd.Flags().String("input", "", "path to the compiler standard-JSON input")
	initCmd.Flags().String("output", "", "path to the compiler standard-JSON output")

	// Overwrite an existing configuration
	initCmd.Flags().Bool("force", false, "overwrite an existing configuration file")
}

// updateProjectConfigWithInitFlags will update the given projectConfig with any CLI arguments that were provided to the init command
func updateProjectConfigWithInitFlags(cmd *cobra.Command, projectConfig *config.ProjectConfig) error {
	var err error

	if cmd.Flags().Changed("input") {
		projectConfig.Artifacts.InputPath, err = cmd.Flags().GetString("input")
		if err != nil {
			return err
		}
	}

	if cmd.Flags().Changed("output") {
		projectConfig.Artifacts.OutputPath, err = cmd.Flags().GetString("output")
		if err != nil {
			return err
		}
	}
	return projectConfig.Validate()
}
