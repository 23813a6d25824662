package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// addDisasmFlags adds the various flags for the disasm command
func addDisasmFlags() {
	addProjectFlags(disasmCmd)

	// Contract to disassemble
	disasmCmd.Flags().String("contract", "", "contract to disassemble, as source:Name")

	// Deployment bytecode
	disasmCmd.Flags().Bool("deployment", false, "disassemble the deployment bytecode instead of the runtime bytecode")
}

// getDisasmFlags returns the contract and bytecode kind the disasm command was asked for.
// Returns an error if no contract was provided.
func getDisasmFlags(cmd *cobra.Command) (string, bool, error) {
	contractName, err := cmd.Flags().GetString("contract")
	if err != nil {
		return "", false, err
	}
	if contractName == "" {
		return "", false, errors.New("the --contract flag is required")
	}

	deployment, err := cmd.Flags().GetBool("deployment")
	if err != nil {
		return "", false, err
	}
	return contractName, deployment, nil
}
