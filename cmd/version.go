package cmd

import (
	"fmt"

	"github.com/crytic/soltrace/version"
	"github.com/spf13/cobra"
)

// versionCmd represents the version command that displays build information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and build information",
	Long: `Print detailed version and build information for soltrace.

This includes the semantic version, git commit hash, build timestamp,
and Go version used to compile the binary.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		short, err := cmd.Flags().GetBool("short")
		if err != nil {
			return err
		}

		info := version.GetInfo()
		if short {
			_, err = fmt.Fprintln(cmd.OutOrStdout(), info.Short())
		} else {
			_, err = fmt.Fprint(cmd.OutOrStdout(), info.String())
		}
		return err
	},
}

func init() {
	versionCmd.Flags().Bool("short", false, "print only the version number")
	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = version.GetInfo().Short()
}
