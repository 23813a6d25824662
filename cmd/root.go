package cmd

import (
	"github.com/crytic/soltrace/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// cmdLogger is the logger used by the CLI before (and alongside) the project's configured GlobalLogger.
var cmdLogger = logging.NewLogger(zerolog.InfoLevel, true).NewSubLogger("service", logging.CLI_SERVICE)

// rootCmd represents the root CLI command object which all other commands stem from.
var rootCmd = &cobra.Command{
	Use:   "soltrace",
	Short: "A Solidity bytecode symbolication tool",
	Long:  "soltrace maps compiled Solidity bytecode back to the contracts, functions and source ranges it came from",
}

// Execute provides an exportable function to invoke the CLI.
// Returns an error if one was encountered.
func Execute() error {
	return rootCmd.Execute()
}
