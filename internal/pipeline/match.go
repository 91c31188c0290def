package pipeline

import "github.com/lockerstudio/itemshop-scrap/internal/models"

// Reconcile attaches the catalog entry matching p by name and exact
// price. Price equality is mandatory in both passes: display names
// collide across locales, so an unmatched real product is preferred
// over a wrong offer id.
func Reconcile(p *models.Product, entries []models.CatalogEntry) {
	entry, ok := findEntry(p.Name, p.Price, entries)
	if !ok {
		p.Match = models.Unmatched
		p.EnglishTitle = p.Name
		p.AssetType = "unknown"
		return
	}

	p.Match = models.Matched
	p.OfferID = entry.OfferID
	p.EnglishTitle = entry.EnglishTitle
	if p.EnglishTitle == "" {
		p.EnglishTitle = p.Name
	}
	p.URLName = entry.URLName
	p.AssetType = entry.AssetType
	if p.AssetType == "" {
		p.AssetType = "unknown"
	}
	p.Color1 = entry.Color1
	p.Color2 = entry.Color2
	p.Color3 = entry.Color3
}

// findEntry tries an exact title match first, then a normalized one.
// First match wins in both passes, so entry order decides ties.
func findEntry(name string, price int, entries []models.CatalogEntry) (models.CatalogEntry, bool) {
	for _, e := range entries {
		if (e.Title == name || e.EnglishTitle == name) && e.Price == price {
			return e, true
		}
	}

	norm := normalizeName(name)
	for _, e := range entries {
		if e.Price != price {
			continue
		}
		if normalizeName(e.Title) == norm || normalizeName(e.EnglishTitle) == norm {
			return e, true
		}
	}
	return models.CatalogEntry{}, false
}
