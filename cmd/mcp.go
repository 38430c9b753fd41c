package cmd

import (
	"github.com/huangsam/healthmerge/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:     "mcp",
	Short:   "Start the healthmerge MCP server",
	Long:    `Launch an MCP server on stdio that lets AI agents merge health exports and inspect timestamps via standard tools.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, historyManager)
	},
}
