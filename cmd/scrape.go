package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lockerstudio/itemshop-scrap/internal/itemshop"
	"github.com/lockerstudio/itemshop-scrap/internal/pipeline"
	"github.com/lockerstudio/itemshop-scrap/internal/platform"
	"github.com/lockerstudio/itemshop-scrap/internal/snapshot"
	"github.com/lockerstudio/itemshop-scrap/internal/ui"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape the item shop and write a snapshot",
	RunE:  runScrape,
}

func init() {
	scrapeCmd.Flags().String("format", "summary", "Output format: json, table, summary")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	scraper, err := buildScraper()
	if err != nil {
		return err
	}
	store := snapshot.New(cfg.SnapshotPath)

	spin := ui.NewSpinner()
	spin.Start("Scraping item shop...")
	ctx := platform.WithProgress(context.Background(), spin.Update)
	catalog, err := scraper.Scrape(ctx)
	spin.Stop()
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}

	report := pipeline.Validate(catalog)
	exported := snapshot.Export(catalog)
	if err := store.Put(exported); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Snapshot written to %s\n", cfg.SnapshotPath)

	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(exported)
	case "table":
		printCatalogTable(exported)
		return nil
	default:
		printScrapeSummary(exported, report)
		return nil
	}
}

// refreshSnapshot is the shared re-scrape path used by the scheduler
// and the manual update endpoint. A failed scrape leaves the previous
// snapshot untouched.
func refreshSnapshot(ctx context.Context, scraper *itemshop.Scraper, store *snapshot.Store) error {
	catalog, err := scraper.Scrape(ctx)
	if err != nil {
		return err
	}
	return store.Put(snapshot.Export(catalog))
}
