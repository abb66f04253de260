package cmd

import (
	"github.com/huangsam/repotrend/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Repotrend MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents read rankings, snapshots
and histories from the data directory. The tools never call GitHub.`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
