package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/rook/internal/mcp"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run rook as an MCP server",
		Long: `Run rook as an MCP (Model Context Protocol) server.

Exposes the tool registry to LLM agents over JSON-RPC 2.0 on
stdin/stdout. Pass --graph to pin every call to one graph; otherwise
agents select per call (or rook auto-selects the only configured one).

For Claude Desktop, add to the client config (or run ` + "`rook mcp install`" + `):
  {
    "mcpServers": {
      "rook": {
        "command": "rook",
        "args": ["serve"]
      }
    }
  }`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return handleErr(err)
			}
			// stdout belongs to the protocol from here on.
			server := mcp.NewServer(store, graphFlag, apiOptions())
			if err := server.Run(); err != nil {
				return fmt.Errorf("MCP server error: %w", err)
			}
			return nil
		},
	}
}
