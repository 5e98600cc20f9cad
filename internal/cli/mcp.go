package cli

import (
	"fmt"

	"github.com/codelens-hq/pulse/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server on stdio",
	Long: `Run the Model Context Protocol server, exposing developer states, the
timeline, digests, collisions, and team metrics as MCP tools over stdio.

Intended to be launched by an MCP client (an AI coding assistant), not
interactively.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}
		server := mcp.NewServer(Engine, appVersion)
		if err := server.Run(cmd.Context()); err != nil {
			return fmt.Errorf("running mcp server: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
