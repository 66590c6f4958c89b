package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Displays the version and commit hash of hhdt.`,
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func runVersion(cmd *cobra.Command, args []string) error {
	if flagJSON {
		output := map[string]any{
			"version": Version,
			"commit":  Commit,
			"go":      runtime.Version(),
		}
		return outputJSON(output)
	}

	fmt.Printf("hhdt version %s\n", GetVersion())
	return nil
}
