package snapshot

import (
	"fmt"

	"github.com/lockerstudio/itemshop-scrap/internal/models"
)

// Export flattens a raw catalog into the stable snapshot contract:
// image records become plain URLs, products without a positive price
// are dropped, and a discount label is synthesized from the price
// delta when the page showed a strikethrough but no badge.
func Export(catalog models.Catalog) models.ExportCatalog {
	out := models.ExportCatalog{ScrapedAt: catalog.ScrapedAt}

	for _, cat := range catalog.Categories {
		products := make([]models.ExportProduct, 0, len(cat.Products))
		for _, p := range cat.Products {
			if p.Price <= 0 {
				continue
			}
			products = append(products, exportProduct(p))
		}
		if len(products) == 0 {
			continue
		}
		out.Categories = append(out.Categories, models.ExportCategory{
			Name:     cat.Name,
			Products: products,
		})
		out.TotalProducts += len(products)
	}

	out.TotalCategories = len(out.Categories)
	return out
}

func exportProduct(p models.Product) models.ExportProduct {
	discount := p.Discount
	if discount == "" && p.OriginalPrice > p.Price {
		discount = fmt.Sprintf("%d VBucks de descuento", p.OriginalPrice-p.Price)
	}

	images := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, img.URL)
	}

	offerID := p.OfferID
	if p.Match == models.Unmatched {
		offerID = ""
	}

	return models.ExportProduct{
		Name:          p.Name,
		EnglishTitle:  p.EnglishTitle,
		URLName:       p.URLName,
		OfferID:       offerID,
		Match:         p.Match.String(),
		AssetType:     p.AssetType,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Discount:      discount,
		IsNew:         p.IsNew,
		Images:        images,
		URL:           p.URL,
		Type:          p.Type,
		Color1:        p.Color1,
		Color2:        p.Color2,
		Color3:        p.Color3,
	}
}
