package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/lockerstudio/itemshop-scrap/internal/models"
	"github.com/lockerstudio/itemshop-scrap/internal/pipeline"
)

// printCatalogTable prints the catalog in a human-friendly layout,
// one block per category.
func printCatalogTable(catalog models.ExportCatalog) {
	for i, cat := range catalog.Categories {
		if i > 0 {
			fmt.Fprintln(os.Stdout)
		}
		fmt.Fprintf(os.Stdout, "%s (%d products)\n", cat.Name, len(cat.Products))
		for j, p := range cat.Products {
			name := p.Name
			if p.IsNew {
				name = "[NEW] " + name
			}
			fmt.Fprintf(os.Stdout, " %d. %s\n", j+1, name)

			priceLine := "    Price: " + formatVbucks(p.Price)
			if p.OriginalPrice > p.Price {
				priceLine += fmt.Sprintf("  (was %s)", formatVbucks(p.OriginalPrice))
			}
			if p.Discount != "" {
				priceLine += "  [" + p.Discount + "]"
			}
			fmt.Fprintln(os.Stdout, priceLine)

			if p.Type != "" {
				fmt.Fprintf(os.Stdout, "    Type: %s\n", p.Type)
			}
			if p.OfferID != "" {
				fmt.Fprintf(os.Stdout, "    Offer: %s (%s)\n", p.OfferID, p.Match)
			}
			fmt.Fprintf(os.Stdout, "    %s\n", p.URL)
		}
	}
}

// printScrapeSummary prints category counts plus the integrity report.
func printScrapeSummary(catalog models.ExportCatalog, report pipeline.Report) {
	fmt.Fprintf(os.Stdout, "Scraped %d products in %d categories (%s)\n",
		catalog.TotalProducts, catalog.TotalCategories, catalog.ScrapedAt.Format("2006-01-02 15:04"))
	for _, cat := range catalog.Categories {
		fmt.Fprintf(os.Stdout, "  %-30s %d\n", truncate(cat.Name, 30), len(cat.Products))
	}
	fmt.Fprintf(os.Stdout, "Matching: %d matched, %d unmatched, %d unique offers\n",
		report.Matched, report.Unmatched, report.UniqueOffers)
	if len(report.DuplicateOffers) > 0 {
		fmt.Fprintln(os.Stdout, "Duplicate offer ids:")
		for _, dup := range report.DuplicateOffers {
			fmt.Fprintf(os.Stdout, "  %s\n", dup)
		}
	}
}

// catalogOf wraps a single category so the table printer can render it.
func catalogOf(cat models.ExportCategory) models.ExportCatalog {
	return models.ExportCatalog{
		Categories:      []models.ExportCategory{cat},
		TotalProducts:   len(cat.Products),
		TotalCategories: 1,
	}
}

// formatVbucks formats a price as "1.234 VBucks".
func formatVbucks(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) > 3 {
		var parts []string
		for len(s) > 3 {
			parts = append([]string{s[len(s)-3:]}, parts...)
			s = s[:len(s)-3]
		}
		parts = append([]string{s}, parts...)
		s = strings.Join(parts, ".")
	}
	return s + " VBucks"
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
