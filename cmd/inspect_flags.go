package cmd

import (
	"fmt"

	"github.com/crytic/soltrace/config"
	"github.com/spf13/cobra"
)

// addInspectFlags adds the various flags for the inspect command
func addInspectFlags() {
	defaultConfig := config.GetDefaultProjectConfig()

	addProjectFlags(inspectCmd)

	// Contract filter
	inspectCmd.Flags().StringSlice("contracts", []string{},
		"contracts to report, by name or as source:Name (unless a config file is provided, default is every contract)")

	// Deployment bytecode
	inspectCmd.Flags().Bool("deployment", false,
		fmt.Sprintf("also summarize deployment bytecode (unless a config file is provided, default is %t)", defaultConfig.Symbols.IncludeDeployment))

	// Signature database
	inspectCmd.Flags().String("signature-db", "", "path of the database to record function and custom error signatures to")
}

// updateProjectConfigWithInspectFlags will update the given projectConfig with any CLI arguments that were provided to
// the inspect command
func updateProjectConfigWithInspectFlags(cmd *cobra.Command, projectConfig *config.ProjectConfig) error {
	var err error

	// Update the contract filter
	if cmd.Flags().Changed("contracts") {
		projectConfig.Symbols.Contracts, err = cmd.Flags().GetStringSlice("contracts")
		if err != nil {
			return err
		}
	}

	// Update deployment bytecode reporting
	if cmd.Flags().Changed("deployment") {
		projectConfig.Symbols.IncludeDeployment, err = cmd.Flags().GetBool("deployment")
		if err != nil {
			return err
		}
	}

	// Update the signature database path
	if cmd.Flags().Changed("signature-db") {
		projectConfig.Symbols.SignatureDatabase, err = cmd.Flags().GetString("signature-db")
		if err != nil {
			return err
		}
	}
	return nil
}
