package pipeline

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/lockerstudio/itemshop-scrap/internal/models"
)

// DOM markers used by the storefront's catalog grid.
const (
	itemSelector          = `[data-testid="grid-catalog-item"]`
	titleSelector         = `[data-testid="item-title"]`
	typeSelector          = `[data-testid="item-type"]`
	priceSelector         = `[data-testid="current-vbuck-price"]`
	originalPriceSelector = `[data-testid="original-price"]`
	// Discount and "new" badges share two known style classes.
	badgeSelector = ".bg-white, .bg-yellow-100"
)

// Accepted literal forms of the "new item" badge text.
var newMarkers = []string{"¡Nuevo!", "Nuevo"}

// extractProduct reads one catalog-item node into a Product. Rejection
// is silent: a missing name, non-positive price or degenerate detail
// URL drops the item and extraction moves on.
func extractProduct(item *goquery.Selection, baseURL string) (models.Product, bool) {
	name := strings.TrimSpace(item.Find(titleSelector).Text())
	if utf8.RuneCountInString(name) < 2 {
		return models.Product{}, false
	}

	itemType := strings.TrimSpace(item.Find(typeSelector).Text())

	price := firstInt(strings.TrimSpace(item.Find(priceSelector).Text()))
	if price <= 0 {
		return models.Product{}, false
	}

	originalPrice := 0
	if orig := item.Find(originalPriceSelector); orig.Length() > 0 {
		originalPrice = firstInt(strings.TrimSpace(orig.Text()))
	}

	var discount string
	if badge := item.Find(badgeSelector).First(); badge.Length() > 0 {
		discount = strings.TrimSpace(badge.Text())
	}
	isNew := false
	for _, marker := range newMarkers {
		if strings.Contains(discount, marker) {
			isNew = true
			break
		}
	}
	if isNew {
		// The badge announced a new item, not a discount.
		discount = ""
	}

	href, _ := item.Find("a").First().Attr("href")
	url := href
	if !strings.HasPrefix(url, "http") {
		url = baseURL + url
	}
	if url == "" || url == baseURL {
		return models.Product{}, false
	}

	return models.Product{
		Name:          name,
		Type:          itemType,
		Price:         price,
		OriginalPrice: originalPrice,
		Discount:      discount,
		IsNew:         isNew,
		Images:        extractImages(item),
		URL:           url,
	}, true
}
