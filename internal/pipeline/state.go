package pipeline

import (
	"encoding/json"
	"sort"

	"github.com/lockerstudio/itemshop-scrap/internal/models"
)

// maxStateDepth bounds the traversal of the embedded state blob. The
// blob comes from a JSON decode, which cannot contain cycles, so the
// cap only guards against pathologically deep documents.
const maxStateDepth = 10

// LocateEntries walks an arbitrary decoded-JSON value depth-first and
// collects every object carrying both an offer id and a title. A node
// may be recorded and still contain further nested entries, so descent
// never stops at a hit. Returned in traversal order; duplicates are
// resolved later during assembly.
func LocateEntries(state any) []models.CatalogEntry {
	var entries []models.CatalogEntry
	locateEntries(state, 0, &entries)
	return entries
}

func locateEntries(node any, depth int, out *[]models.CatalogEntry) {
	if depth > maxStateDepth {
		return
	}
	switch v := node.(type) {
	case map[string]any:
		if entry, ok := entryFrom(v); ok {
			*out = append(*out, entry)
		}
		for _, key := range sortedKeys(v) {
			locateEntries(v[key], depth+1, out)
		}
	case []any:
		for _, item := range v {
			locateEntries(item, depth+1, out)
		}
	}
}

// FirstOfferID returns the first offer id found anywhere in the state
// blob, or "". The storefront exposes a catalog-level offer id near
// the root, ahead of any per-product entries.
func FirstOfferID(state any) string {
	return firstOfferID(state, 0)
}

func firstOfferID(node any, depth int) string {
	if depth > maxStateDepth {
		return ""
	}
	switch v := node.(type) {
	case map[string]any:
		if id, ok := stringField(v, "offerId"); ok {
			return id
		}
		for _, key := range sortedKeys(v) {
			if id := firstOfferID(v[key], depth+1); id != "" {
				return id
			}
		}
	case []any:
		for _, item := range v {
			if id := firstOfferID(item, depth+1); id != "" {
				return id
			}
		}
	}
	return ""
}

func entryFrom(obj map[string]any) (models.CatalogEntry, bool) {
	offerID, ok := stringField(obj, "offerId")
	if !ok {
		return models.CatalogEntry{}, false
	}
	title, ok := stringField(obj, "title")
	if !ok {
		return models.CatalogEntry{}, false
	}

	entry := models.CatalogEntry{OfferID: offerID, Title: title}
	entry.EnglishTitle, _ = stringField(obj, "englishTitle")
	entry.URLName, _ = stringField(obj, "urlName")
	entry.AssetType, _ = stringField(obj, "assetType")
	entry.Color1, _ = stringField(obj, "color1")
	entry.Color2, _ = stringField(obj, "color2")
	entry.Color3, _ = stringField(obj, "color3")

	// Price lives in a nested pricing object on newer pages, flat on
	// older ones.
	if pricing, ok := obj["pricing"].(map[string]any); ok {
		if final, ok := intField(pricing, "finalPrice"); ok {
			entry.Price = final
		}
		entry.OriginalPrice, _ = intField(pricing, "originalPrice")
		entry.Discount, _ = stringField(pricing, "discount")
	}
	if entry.Price == 0 {
		entry.Price, _ = intField(obj, "price")
	}
	return entry, true
}

// sortedKeys makes traversal order deterministic: the source object
// order is lost in Go's map representation and re-running the same
// input must yield the same entry list.
func sortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func stringField(obj map[string]any, key string) (string, bool) {
	s, ok := obj[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func intField(obj map[string]any, key string) (int, bool) {
	switch v := obj[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}
