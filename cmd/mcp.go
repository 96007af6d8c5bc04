package cmd

import (
	"github.com/spf13/cobra"

	"github.com/deatools/deascope/internal/mcp"
)

// mcpCmd starts the MCP server on stdio.
var mcpCmd = &cobra.Command{
	Use:     "mcp",
	Short:   "Start the Model Context Protocol server",
	Long:    `Serve the robustness analyses as MCP tools over stdio, for use by MCP-capable clients.`,
	PreRunE: sharedSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg.driverOptions())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
