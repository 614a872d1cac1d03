package cmd

import (
	"github.com/devpulse/devpulse/internal/mcpserver"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the DevPulse MCP server",
	Long:  `Launch an MCP server that allows AI agents to query delivery metrics and trigger ingestion via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Suppress the normal header logs when running in MCP mode
		// to avoid polluting stdio which is used for the protocol.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		fetcher, err := newFetcher()
		if err != nil {
			return err
		}
		return mcpserver.StartMCPServer(rootCtx, cfg, metricStore, fetcher)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
