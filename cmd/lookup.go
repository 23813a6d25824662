package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/crytic/soltrace/cmd/exitcodes"
	"github.com/crytic/soltrace/compilation/abiutils"
	"github.com/crytic/soltrace/logging"
	"github.com/crytic/soltrace/logging/colors"
	"github.com/crytic/soltrace/signatures"
	"github.com/crytic/soltrace/symbols"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// lookupCmd represents the command provider for lookup
var lookupCmd = &cobra.Command{
	Use:               "lookup <selector|calldata|revert data>...",
	Short:             "Names selectors using the recorded signature database",
	Long:              `Names function and custom error selectors, or the selector prefix of calldata and revert data, using the signatures recorded by inspect`,
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: cmdValidFlagArgs,
	RunE:              cmdRunLookup,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add all the flags allowed for the lookup command
	addLookupFlags()

	// Add the lookup command and its associated flags to the root command
	rootCmd.AddCommand(lookupCmd)
}

// cmdRunLookup executes the CLI lookup command
func cmdRunLookup(cmd *cobra.Command, args []string) error {
	projectConfig, err := loadProjectConfig(cmd)
	if err == nil {
		err = updateProjectConfigWithLookupFlags(cmd, projectConfig)
	}
	if err == nil && projectConfig.Symbols.SignatureDatabase == "" {
		err = errors.New("no signature database was configured")
	}
	if err != nil {
		cmdLogger.Error("Failed to run the lookup command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	database, err := signatures.Open(projectConfig.Symbols.SignatureDatabase)
	if err != nil {
		cmdLogger.Error("Failed to run the lookup command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}
	defer database.Close()

	buffer := logging.NewLogBuffer()
	for _, arg := range args {
		if err = reportLookup(buffer, database, arg); err != nil {
			return err
		}
	}
	return writeLogBuffer(cmd.OutOrStdout(), buffer)
}

// reportLookup appends the signatures known for the selector prefix of a hex string to the buffer. Builtin revert
// payloads are decoded in full.
// Returns an error if the argument is not hex or is shorter than a selector, or if the database cannot be read.
func reportLookup(buffer *logging.LogBuffer, database *signatures.Database, arg string) error {
	data, err := hex.DecodeString(strings.TrimPrefix(arg, "0x"))
	if err != nil {
		return errors.Wrapf(err, "malformed hex %q", arg)
	}
	if len(data) < abiutils.SelectorLength {
		return errors.Errorf("%q is shorter than a selector", arg)
	}
	selector := symbols.Selector(data[:abiutils.SelectorLength])

	// Builtin revert payloads are never recorded, so decode them directly
	if reason := abiutils.GetSolidityRevertErrorString(data); reason != nil {
		buffer.Append(colors.Bold, selector.String(), colors.Reset, fmt.Sprintf(" Error(string): %q\n", *reason))
		return nil
	}
	if panicCode := abiutils.GetSolidityPanicCode(data); panicCode != nil {
		buffer.Append(colors.Bold, selector.String(), colors.Reset, " ", abiutils.GetPanicReason(panicCode.Uint64()), "\n")
		return nil
	}

	entries, err := database.Lookup(selector)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		buffer.Append(colors.Bold, selector.String(), colors.Reset, colors.Yellow, " unknown", colors.Reset, "\n")
		return nil
	}
	for _, entry := range entries {
		buffer.Append(colors.Bold, selector.String(), colors.Reset,
			fmt.Sprintf(" %s %s", entry.Kind, entry.Signature),
			colors.DarkGray, fmt.Sprintf(" (%s)", strings.Join(entry.Contracts, ", ")), colors.Reset, "\n")
	}
	return nil
}
