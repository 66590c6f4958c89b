package cli

import (
	"github.com/spf13/cobra"

	"github.com/Fuabioo/hhdt/internal/mcp"
)

var mcpFlagMetricsAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server on stdio",
	Long: `Starts the Model Context Protocol (MCP) server on stdio.

This command is used by MCP clients (Claude Desktop, etc.) to encode and
decode packages. It should not be run directly by users.

With --metrics-addr, prometheus metrics are served on /metrics.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpFlagMetricsAddr, "metrics-addr", "", "Serve prometheus metrics on this address (e.g. :9090)")
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if mcpFlagMetricsAddr != "" {
		cfg.Metrics.Addr = mcpFlagMetricsAddr
	}

	return mcp.Serve(cmd.Context(), cfg, mcp.WithLogger(newLogger(cfg, "mcp")))
}
