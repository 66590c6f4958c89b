package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Fuabioo/hhdt/internal/source"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the error families",
	Long:  `Lists the error sources a package may carry. The configured default is marked.`,
	Args:  cobra.NoArgs,
	RunE:  runSources,
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if flagJSON {
		return outputJSON(map[string]any{
			"sources": source.Sources(),
			"default": cfg.DefaultSource,
		})
	}

	for _, s := range source.Sources() {
		if s == cfg.DefaultSource && !flagQuiet {
			fmt.Printf("%s (default)\n", s)
			continue
		}
		fmt.Println(s)
	}
	return nil
}
