package models

import "time"

// MatchState describes the outcome of reconciling a scraped product
// against the embedded-state catalog entries.
type MatchState int

const (
	// Unmatched means no catalog entry matched by name+price.
	Unmatched MatchState = iota
	// Matched means exactly one entry was attached to the product.
	Matched
	// Duplicate means the matched offer id was already claimed by an
	// earlier product in the same catalog.
	Duplicate
)

func (m MatchState) String() string {
	switch m {
	case Matched:
		return "matched"
	case Duplicate:
		return "duplicate"
	default:
		return "unmatched"
	}
}

func (m MatchState) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// CatalogEntry is a record located inside the storefront's embedded
// client-state blob. It carries the offer id the rendered HTML lacks.
type CatalogEntry struct {
	OfferID       string `json:"offerId"`
	Title         string `json:"title"`
	EnglishTitle  string `json:"englishTitle,omitempty"`
	URLName       string `json:"urlName,omitempty"`
	AssetType     string `json:"assetType,omitempty"`
	Price         int    `json:"price"`
	OriginalPrice int    `json:"originalPrice,omitempty"`
	Discount      string `json:"discount,omitempty"`
	Color1        string `json:"color1,omitempty"`
	Color2        string `json:"color2,omitempty"`
	Color3        string `json:"color3,omitempty"`
}

// Image is one entry of a product's responsive image set.
type Image struct {
	URL        string `json:"url"`
	Resolution string `json:"resolution"`
	Width      int    `json:"width"`
}

// Product is a catalog item extracted from rendered HTML, enriched
// with catalog-entry fields after reconciliation.
type Product struct {
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	Price         int     `json:"vbucks"`
	OriginalPrice int     `json:"originalPrice,omitempty"`
	Discount      string  `json:"discount,omitempty"`
	IsNew         bool    `json:"isNew"`
	Images        []Image `json:"images"`
	URL           string  `json:"url"`
	Expiration    string  `json:"expiration,omitempty"`

	// Filled in by reconciliation.
	Match        MatchState `json:"match"`
	OfferID      string     `json:"offerId,omitempty"`
	EnglishTitle string     `json:"englishTitle"`
	URLName      string     `json:"urlName,omitempty"`
	AssetType    string     `json:"assetType"`
	Color1       string     `json:"color1,omitempty"`
	Color2       string     `json:"color2,omitempty"`
	Color3       string     `json:"color3,omitempty"`
}

// Category is a named, ordered group of products.
type Category struct {
	Name     string    `json:"name"`
	Products []Product `json:"products"`
}

// Catalog is the full result of one scrape run.
type Catalog struct {
	Categories      []Category `json:"categories"`
	OfferID         string     `json:"offerId,omitempty"`
	ScrapedAt       time.Time  `json:"scrapingDate"`
	TotalProducts   int        `json:"totalProducts"`
	TotalCategories int        `json:"totalCategories"`
	TotalEntries    int        `json:"totalOfferIds"`
}

// ExportProduct is the stable persisted product shape served by the
// API; images are flattened to plain URLs.
type ExportProduct struct {
	Name          string   `json:"name"`
	EnglishTitle  string   `json:"englishTitle"`
	URLName       string   `json:"urlName"`
	OfferID       string   `json:"offerId,omitempty"`
	Match         string   `json:"match"`
	AssetType     string   `json:"assetType"`
	Price         int      `json:"price"`
	OriginalPrice int      `json:"originalPrice,omitempty"`
	Discount      string   `json:"discount,omitempty"`
	IsNew         bool     `json:"isNew"`
	Images        []string `json:"images"`
	URL           string   `json:"url"`
	Type          string   `json:"type"`
	Color1        string   `json:"color1,omitempty"`
	Color2        string   `json:"color2,omitempty"`
	Color3        string   `json:"color3,omitempty"`
}

// ExportCategory groups export products under a category name.
type ExportCategory struct {
	Name     string          `json:"name"`
	Products []ExportProduct `json:"products"`
}

// ExportCatalog is the persisted snapshot contract consumed by the
// serving layer.
type ExportCatalog struct {
	Categories      []ExportCategory `json:"categories"`
	TotalProducts   int              `json:"totalProducts"`
	TotalCategories int              `json:"totalCategories"`
	ScrapedAt       time.Time        `json:"scrapingDate"`
}
