package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lockerstudio/itemshop-scrap/internal/snapshot"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Read the current snapshot",
	Long:  "Read the current snapshot file: list categories, show one category, or search products.",
	RunE:  runShow,
}

func init() {
	showCmd.Flags().String("category", "", "Show one category by name")
	showCmd.Flags().String("search", "", "Search products by name or type")
	showCmd.Flags().String("format", "table", "Output format: json, table")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	category, _ := cmd.Flags().GetString("category")
	search, _ := cmd.Flags().GetString("search")
	format, _ := cmd.Flags().GetString("format")

	store := snapshot.New(cfg.SnapshotPath)
	if err := store.Load(); err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	catalog, ok := store.Catalog()
	if !ok {
		return fmt.Errorf("no snapshot at %s, run scrape first", cfg.SnapshotPath)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	switch {
	case search != "":
		results := store.Search(search)
		if format == "json" {
			return enc.Encode(results)
		}
		if len(results) == 0 {
			fmt.Fprintf(os.Stdout, "No products match %q\n", search)
			return nil
		}
		for i, r := range results {
			fmt.Fprintf(os.Stdout, " %d. %s (%s) — %s, %s\n", i+1, r.Name, r.Type, formatVbucks(r.Price), r.Category)
		}
		return nil

	case category != "":
		cat, found := store.Category(category)
		if !found {
			return fmt.Errorf("category %q not found", category)
		}
		if format == "json" {
			return enc.Encode(cat)
		}
		printCatalogTable(catalogOf(cat))
		return nil

	default:
		if format == "json" {
			return enc.Encode(catalog)
		}
		fmt.Fprintf(os.Stdout, "Snapshot from %s: %d products in %d categories\n",
			catalog.ScrapedAt.Format("2006-01-02 15:04"), catalog.TotalProducts, catalog.TotalCategories)
		for _, summary := range store.Categories() {
			fmt.Fprintf(os.Stdout, "  %-30s %d\n", truncate(summary.Name, 30), summary.ProductCount)
		}
		return nil
	}
}
