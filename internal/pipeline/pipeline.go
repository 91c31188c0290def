// Package pipeline turns a rendered item-shop page and its embedded
// client-state blob into a categorized product catalog. It is a pure,
// single-threaded transformation: acquisition (browser driving,
// retries) and persistence live in their callers.
package pipeline

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/lockerstudio/itemshop-scrap/internal/models"
)

// Options configures a pipeline run.
type Options struct {
	// BaseURL is the storefront origin used to absolutize relative
	// detail URLs.
	BaseURL string
	// RootContainerID is the page-level container id excluded from
	// section-based grouping.
	RootContainerID string
	// Now stamps the catalog; overridable in tests.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.BaseURL == "" {
		o.BaseURL = "https://www.fortnite.com"
	}
	if o.RootContainerID == "" {
		o.RootContainerID = "item-shop"
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Build runs the full pipeline: locate state entries, extract and
// reconcile HTML products, assemble categories. It never fails — a
// malformed page or a nil state blob degrades to an empty or
// partially-reconciled catalog, and the caller decides whether the
// aggregate counts warrant a retry.
func Build(html string, state any, opts Options) models.Catalog {
	opts = opts.withDefaults()

	entries := LocateEntries(state)
	catalog := models.Catalog{
		OfferID:      FirstOfferID(state),
		ScrapedAt:    opts.Now(),
		TotalEntries: len(entries),
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return catalog
	}

	catalog.Categories = Assemble(doc, entries, opts.BaseURL, opts.RootContainerID)
	catalog.TotalCategories = len(catalog.Categories)
	for _, cat := range catalog.Categories {
		catalog.TotalProducts += len(cat.Products)
	}
	return catalog
}
