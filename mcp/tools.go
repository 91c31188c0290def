package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/lockerstudio/itemshop-scrap/internal/snapshot"
)

func registerTools(s *server.MCPServer, store *snapshot.Store) {
	shopTool := mcp.NewTool("get_item_shop",
		mcp.WithDescription("Get the full current item-shop snapshot"),
	)
	s.AddTool(shopTool, handleGetItemShop(store))

	searchTool := mcp.NewTool("search_products",
		mcp.WithDescription("Search shop products by name or type"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search text (matched against product name and type)"),
		),
	)
	s.AddTool(searchTool, handleSearchProducts(store))

	listTool := mcp.NewTool("list_categories",
		mcp.WithDescription("List shop categories with product counts"),
	)
	s.AddTool(listTool, handleListCategories(store))

	categoryTool := mcp.NewTool("get_category",
		mcp.WithDescription("Get one category's products by name"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Category name (case-insensitive)"),
		),
	)
	s.AddTool(categoryTool, handleGetCategory(store))

	statsTool := mcp.NewTool("shop_stats",
		mcp.WithDescription("Aggregate statistics over the current snapshot"),
	)
	s.AddTool(statsTool, handleShopStats(store))
}

func handleGetItemShop(store *snapshot.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		catalog, ok := store.Catalog()
		if !ok {
			return mcp.NewToolResultError("shop data not available yet"), nil
		}
		return jsonResult(catalog)
	}
}

func handleSearchProducts(store *snapshot.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := request.GetString("query", "")
		if query == "" {
			return mcp.NewToolResultError("query is required"), nil
		}
		results := store.Search(query)
		if len(results) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("no products found for %q", query)), nil
		}
		return jsonResult(results)
	}
}

func handleListCategories(store *snapshot.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		categories := store.Categories()
		if len(categories) == 0 {
			return mcp.NewToolResultError("shop data not available yet"), nil
		}
		return jsonResult(categories)
	}
}

func handleGetCategory(store *snapshot.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := request.GetString("name", "")
		if name == "" {
			return mcp.NewToolResultError("name is required"), nil
		}
		category, ok := store.Category(name)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("category %q not found", name)), nil
		}
		return jsonResult(category)
	}
}

func handleShopStats(store *snapshot.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats, ok := store.Stats()
		if !ok {
			return mcp.NewToolResultError("shop data not available yet"), nil
		}
		return jsonResult(stats)
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
