package cmd

import (
	"fmt"
	"strings"

	"github.com/crytic/soltrace/cmd/exitcodes"
	"github.com/crytic/soltrace/config"
	"github.com/crytic/soltrace/logging"
	"github.com/crytic/soltrace/logging/colors"
	"github.com/crytic/soltrace/signatures"
	"github.com/crytic/soltrace/symbols"
	"github.com/spf13/cobra"
)

// inspectCmd represents the command provider for inspect
var inspectCmd = &cobra.Command{
	Use:               "inspect",
	Short:             "Prints the symbol model built from compiler artifacts",
	Long:              `Prints the source files, contracts, functions, custom errors and bytecode summaries built from compiler artifacts`,
	Args:              cmdValidateNoArgs,
	ValidArgsFunction: cmdValidFlagArgs,
	RunE:              cmdRunInspect,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add all the flags allowed for the inspect command
	addInspectFlags()

	// Add the inspect command and its associated flags to the root command
	rootCmd.AddCommand(inspectCmd)
}

// cmdRunInspect executes the CLI inspect command
func cmdRunInspect(cmd *cobra.Command, args []string) error {
	projectConfig, err := loadProjectConfig(cmd)
	if err != nil {
		cmdLogger.Error("Failed to run the inspect command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	err = updateProjectConfigWithInspectFlags(cmd, projectConfig)
	if err != nil {
		cmdLogger.Error("Failed to run the inspect command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	closeLog, err := setupLogging(projectConfig.Logging)
	if err != nil {
		cmdLogger.Error("Failed to run the inspect command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}
	defer closeLog()

	result, err := buildSymbols(projectConfig)
	if err != nil {
		return err
	}

	if projectConfig.Symbols.SignatureDatabase != "" {
		err = recordSignatures(projectConfig.Symbols.SignatureDatabase, result.Model)
		if err != nil {
			cmdLogger.Error("Failed to record signatures", err)
			return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
		}
	}

	buffer := logging.NewLogBuffer()
	reportInspection(buffer, result, projectConfig.Symbols)
	if err = writeLogBuffer(cmd.OutOrStdout(), buffer); err != nil {
		return err
	}
	return checkStrictDiagnostics(projectConfig, result)
}

// recordSignatures records the signatures of a model in the signature database at the given path.
func recordSignatures(path string, model *symbols.Model) error {
	database, err := signatures.Open(path)
	if err != nil {
		return err
	}
	defer database.Close()

	added, err := database.RecordModel(model)
	if err != nil {
		return err
	}
	cmdLogger.Info("Recorded ", added, " new signature(s) to ", colors.Bold, path, colors.Reset)
	return nil
}

// reportInspection appends a human-readable report of a build result to the buffer. Only contracts selected by the
// symbols configuration are reported.
func reportInspection(buffer *logging.LogBuffer, result *symbols.BuildResult, symbolsConfig config.SymbolsConfig) {
	model := result.Model

	buffer.Append(colors.Bold, "Source files", colors.Reset, "\n")
	for _, file := range model.SortedFiles() {
		buffer.Append(fmt.Sprintf("  [%d] %s\n", file.ID, file.SourceName))
	}

	buffer.Append(colors.Bold, "Contracts", colors.Reset, "\n")
	for _, contract := range model.Contracts {
		if !symbolsConfig.IncludesContract(contract.Name, contract.FullyQualifiedName()) {
			continue
		}
		reportContract(buffer, result, contract, symbolsConfig.IncludeDeployment)
	}

	if len(result.Diagnostics) > 0 {
		buffer.Append(colors.Bold, "Diagnostics", colors.Reset, "\n")
		for _, diagnostic := range result.Diagnostics {
			colorFunc := colors.DarkGray
			if diagnostic.Severity == symbols.DiagnosticSeverityWarning {
				colorFunc = colors.Yellow
			}
			buffer.Append("  ", colorFunc, diagnostic.String(), colors.Reset, "\n")
		}
	}
}

// reportContract appends the report of a single contract to the buffer.
func reportContract(buffer *logging.LogBuffer, result *symbols.BuildResult, contract *symbols.Contract, includeDeployment bool) {
	buffer.Append("  ", colors.Bold, contract.FullyQualifiedName(), colors.Reset, fmt.Sprintf(" (%s)\n", strings.ToLower(string(contract.Kind))))

	if len(contract.Ancestors) > 0 {
		ancestorNames := make([]string, len(contract.Ancestors))
		for i, ancestor := range contract.Ancestors {
			ancestorNames[i] = ancestor.Name
		}
		buffer.Append(fmt.Sprintf("    ancestors: %s\n", strings.Join(ancestorNames, ", ")))
	}

	buffer.Append("    functions:\n")
	for _, function := range contract.LocalFunctions {
		buffer.Append("      ", formatFunction(function), "\n")
	}
	for _, function := range contract.Functions() {
		if function.Contract != contract {
			buffer.Append("      ", formatFunction(function), colors.DarkGray, " inherited from ", function.Contract.Name, colors.Reset, "\n")
		}
	}

	if len(contract.CustomErrors) > 0 {
		buffer.Append("    custom errors:\n")
		for _, customError := range contract.CustomErrors {
			buffer.Append(fmt.Sprintf("      %s %s\n", customError.Selector, customError.Signature()))
		}
	}

	bytecodes := result.BytecodesFor(contract)
	if includeDeployment && bytecodes.Deployment != nil {
		reportBytecodeSummary(buffer, bytecodes.Deployment)
	}
	if bytecodes.Runtime != nil {
		reportBytecodeSummary(buffer, bytecodes.Runtime)
	}
}

// formatFunction returns a single-line description of a function: its selector if it has one, its signature or
// name, and how the selector was obtained.
func formatFunction(function *symbols.ContractFunction) string {
	selector := strings.Repeat(" ", 10)
	if function.Selector != nil {
		selector = function.Selector.String()
	}

	name := function.Signature()
	if name == "" {
		name = function.Name
	}
	if function.Kind != symbols.ContractFunctionKindFunction {
		name = fmt.Sprintf("%s %s", strings.ToLower(strings.ReplaceAll(string(function.Kind), "_", " ")), name)
	}

	description := fmt.Sprintf("%s %s [%s", selector, strings.TrimSpace(name), strings.ToLower(string(function.Visibility)))
	if function.Payable {
		description += ", payable"
	}
	if function.Selector != nil {
		description += ", " + function.SelectorSource.String()
	}
	return description + "]"
}

// reportBytecodeSummary appends the instruction count, library positions, immutable ranges and compiler version of a
// bytecode to the buffer.
func reportBytecodeSummary(buffer *logging.LogBuffer, bytecode *symbols.Bytecode) {
	buffer.Append(fmt.Sprintf("    %s bytecode: %d bytes, %d instructions", bytecode.Kind(), len(bytecode.Code), len(bytecode.Instructions)))
	if trailing := len(bytecode.TrailingData()); trailing > 0 {
		buffer.Append(fmt.Sprintf(", %d trailing bytes", trailing))
	}
	buffer.Append("\n")

	if version, err := bytecode.CompilerVersion(); err == nil {
		buffer.Append(fmt.Sprintf("      compiler: %s\n", version))
	}

	for _, link := range bytecode.LibraryLinks {
		buffer.Append(fmt.Sprintf("      library %s at %d\n", link.Library, link.Offset))
	}

	for _, immutableReference := range bytecode.ImmutableReferences {
		buffer.Append(fmt.Sprintf("      immutable %s at [%d, %d)\n", immutableReference.VariableID, immutableReference.Offset, immutableReference.End()))
	}
}
