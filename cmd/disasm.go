package cmd

import (
	"fmt"

	"github.com/crytic/soltrace/cmd/exitcodes"
	"github.com/crytic/soltrace/logging"
	"github.com/crytic/soltrace/logging/colors"
	"github.com/crytic/soltrace/symbols"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// disasmCmd represents the command provider for disasm
var disasmCmd = &cobra.Command{
	Use:               "disasm",
	Short:             "Disassembles a contract's bytecode with source locations",
	Long:              `Disassembles a contract's runtime or deployment bytecode, annotating each instruction with its jump classification and source location`,
	Args:              cmdValidateNoArgs,
	ValidArgsFunction: cmdValidFlagArgs,
	RunE:              cmdRunDisasm,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add all the flags allowed for the disasm command
	addDisasmFlags()

	// Add the disasm command and its associated flags to the root command
	rootCmd.AddCommand(disasmCmd)
}

// cmdRunDisasm executes the CLI disasm command
func cmdRunDisasm(cmd *cobra.Command, args []string) error {
	projectConfig, err := loadProjectConfig(cmd)
	if err != nil {
		cmdLogger.Error("Failed to run the disasm command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	contractName, deployment, err := getDisasmFlags(cmd)
	if err != nil {
		cmdLogger.Error("Failed to run the disasm command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	closeLog, err := setupLogging(projectConfig.Logging)
	if err != nil {
		cmdLogger.Error("Failed to run the disasm command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}
	defer closeLog()

	result, err := buildSymbols(projectConfig)
	if err != nil {
		return err
	}

	bytecode, err := selectBytecode(result, contractName, deployment)
	if err != nil {
		return err
	}

	buffer := logging.NewLogBuffer()
	reportDisassembly(buffer, bytecode)
	if err = writeLogBuffer(cmd.OutOrStdout(), buffer); err != nil {
		return err
	}
	return checkStrictDiagnostics(projectConfig, result)
}

// selectBytecode looks up the deployment or runtime bytecode of a contract given as `source:Name`.
// Returns an error if the contract is unknown or produced no such bytecode.
func selectBytecode(result *symbols.BuildResult, contractName string, deployment bool) (*symbols.Bytecode, error) {
	contract := result.Model.ContractByName(contractName)
	if contract == nil {
		return nil, errors.Errorf("unknown contract %s", contractName)
	}

	bytecodes := result.BytecodesFor(contract)
	bytecode := bytecodes.Runtime
	if deployment {
		bytecode = bytecodes.Deployment
	}
	if bytecode == nil {
		return nil, errors.Errorf("contract %s has no bytecode to disassemble", contractName)
	}
	return bytecode, nil
}

// reportDisassembly appends one line per instruction of the bytecode to the buffer: program counter, opcode, push
// data, jump classification and the `source:line` the instruction maps to, with the function containing it.
func reportDisassembly(buffer *logging.LogBuffer, bytecode *symbols.Bytecode) {
	libraries := make(map[int]string, len(bytecode.LibraryLinks))
	for _, link := range bytecode.LibraryLinks {
		libraries[link.Offset] = link.Library
	}
	immutables := make(map[int]string, len(bytecode.ImmutableReferences))
	for _, immutableReference := range bytecode.ImmutableReferences {
		immutables[immutableReference.Offset] = immutableReference.VariableID
	}

	buffer.Append(colors.Bold, fmt.Sprintf("%s bytecode of %s", bytecode.Kind(), bytecode.Contract.FullyQualifiedName()), colors.Reset, "\n")
	for _, instruction := range bytecode.Instructions {
		buffer.Append(fmt.Sprintf("%6d  %-8s", instruction.PC, instruction.OpCode))
		if len(instruction.PushData) > 0 {
			buffer.Append(colors.Cyan, fmt.Sprintf(" 0x%x", instruction.PushData), colors.Reset)
		}
		if instruction.JumpType != symbols.JumpTypeNone {
			buffer.Append(colors.Magenta, " ", instruction.JumpType, colors.Reset)
		}

		if instruction.IsPush() {
			if library, ok := libraries[instruction.PC+1]; ok {
				buffer.Append(colors.Yellow, " library ", library, colors.Reset)
			}
			if variableID, ok := immutables[instruction.PC+1]; ok {
				buffer.Append(colors.Yellow, " immutable "+variableID, colors.Reset)
			}
		}

		if location := instruction.Location; location != nil {
			buffer.Append(colors.DarkGray, fmt.Sprintf(" %s:%d", location.File.SourceName, location.StartLine()))
			if function := location.File.ContainingFunction(location); function != nil {
				buffer.Append(" in ", function.String())
			}
			buffer.Append(colors.Reset)
		}
		buffer.Append("\n")
	}

	if trailing := bytecode.TrailingData(); len(trailing) > 0 {
		buffer.Append(colors.DarkGray, fmt.Sprintf("trailing data: 0x%x", trailing), colors.Reset, "\n")
	}
}
