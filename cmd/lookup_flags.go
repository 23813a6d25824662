package cmd

import (
	"github.com/crytic/soltrace/config"
	"github.com/spf13/cobra"
)

// addLookupFlags adds the various flags for the lookup command
func addLookupFlags() {
	// Prevent alphabetical sorting of usage message
	lookupCmd.Flags().SortFlags = false

	// Config file
	lookupCmd.Flags().String("config", "", "path to config file")

	// Signature database
	lookupCmd.Flags().String("signature-db", "", "path of the signature database to look selectors up in")
}

// updateProjectConfigWithLookupFlags will update the given projectConfig with any CLI arguments that were provided to
// the lookup command
func updateProjectConfigWithLookupFlags(cmd *cobra.Command, projectConfig *config.ProjectConfig) error {
	var err error

	// Update the signature database path
	if cmd.Flags().Changed("signature-db") {
		projectConfig.Symbols.SignatureDatabase, err = cmd.Flags().GetString("signature-db")
		if err != nil {
			return err
		}
	}
	return nil
}
