// Package mcp exposes the item-shop snapshot to MCP clients.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/lockerstudio/itemshop-scrap/internal/snapshot"
)

// Serve starts the MCP stdio server with all tools registered.
func Serve(store *snapshot.Store) error {
	s := server.NewMCPServer(
		"itemshop-scrap",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	registerTools(s, store)

	return server.ServeStdio(s)
}
