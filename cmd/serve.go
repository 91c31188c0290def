package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	mcpserver "github.com/lockerstudio/itemshop-scrap/mcp"
	"github.com/lockerstudio/itemshop-scrap/internal/snapshot"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start MCP stdio server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	store := snapshot.New(cfg.SnapshotPath)
	if err := store.Load(); err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "Starting item-shop MCP server on stdio...")
	return mcpserver.Serve(store)
}
