package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/gogat/internal/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for definition lookup",
	Long: `Start the Model Context Protocol (MCP) server that lets coding
assistants locate and read Go definitions.

The server:
- Indexes projects into the configured sqlite database
- Returns every matching definition, never prompting for a choice
- Communicates via stdio (standard MCP transport)

Logs go to stderr; stdout is reserved for the protocol.

Example:
  gogat mcp`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	a := current
	server, err := mcp.NewServer(a.cfg.Index.Database, a.logger.Named("mcp"))
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	return server.Serve(cmd.Context())
}
