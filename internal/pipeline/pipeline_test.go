package pipeline

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/lockerstudio/itemshop-scrap/internal/models"
	"github.com/stretchr/testify/require"
)

const shopPageHTML = `<body>
	<div id="item-shop">
		<section id="featured-1">
			<h2>Featured</h2>
			<div data-testid="grid-catalog-item">
				<a href="/item-shop/cool-skin"></a>
				<span data-testid="item-title">Cool Skin</span>
				<span data-testid="item-type">Outfit</span>
				<span data-testid="current-vbuck-price">1500 V-Bucks</span>
				<img srcset="cool-256.png 256w, cool-512.png 512w">
			</div>
		</section>
	</div>
</body>`

const shopStateJSON = `{
	"shop": {
		"offerId": "CATALOG-1",
		"rows": [
			{"offerId": "X1", "title": "Cool Skin", "englishTitle": "Cool Skin", "urlName": "cool-skin", "assetType": "outfit", "pricing": {"finalPrice": 1500}}
		]
	}
}`

func buildCatalog(t *testing.T, stateRaw string, now time.Time) models.Catalog {
	t.Helper()
	var state any
	if stateRaw != "" {
		require.NoError(t, json.Unmarshal([]byte(stateRaw), &state))
	}
	return Build(shopPageHTML, state, Options{
		BaseURL: testBaseURL,
		Now:     func() time.Time { return now },
	})
}

func TestBuildMatchesStateEntries(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	catalog := buildCatalog(t, shopStateJSON, now)

	require.Equal(t, "CATALOG-1", catalog.OfferID)
	require.Equal(t, 1, catalog.TotalCategories)
	require.Equal(t, 1, catalog.TotalProducts)
	require.Equal(t, 1, catalog.TotalEntries)
	require.Equal(t, now, catalog.ScrapedAt)

	require.Len(t, catalog.Categories, 1)
	require.Equal(t, "Featured", catalog.Categories[0].Name)

	p := catalog.Categories[0].Products[0]
	require.Equal(t, models.Matched, p.Match)
	require.Equal(t, "X1", p.OfferID)
	require.Equal(t, "outfit", p.AssetType)
	require.Equal(t, testBaseURL+"/item-shop/cool-skin", p.URL)
	require.Equal(t, "cool-512.png", p.Images[0].URL)
}

func TestBuildPriceMismatchLeavesUnmatched(t *testing.T) {
	state := `{"rows": [{"offerId": "X1", "title": "Cool Skin", "price": 1200}]}`
	catalog := buildCatalog(t, state, time.Now())

	require.Equal(t, 1, catalog.TotalProducts)
	p := catalog.Categories[0].Products[0]
	require.Equal(t, models.Unmatched, p.Match)
	require.Empty(t, p.OfferID)
}

func TestBuildNilState(t *testing.T) {
	catalog := buildCatalog(t, "", time.Now())

	require.Zero(t, catalog.TotalEntries)
	require.Empty(t, catalog.OfferID)
	require.Equal(t, 1, catalog.TotalProducts)
	require.Equal(t, models.Unmatched, catalog.Categories[0].Products[0].Match)
}

func TestBuildIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first, err := json.Marshal(buildCatalog(t, shopStateJSON, now))
	require.NoError(t, err)
	second, err := json.Marshal(buildCatalog(t, shopStateJSON, now))
	require.NoError(t, err)
	require.Equal(t, string(first), string(second))

	// With differing timestamps everything except ScrapedAt still agrees.
	later := buildCatalog(t, shopStateJSON, now.Add(time.Hour))
	diff := cmp.Diff(
		buildCatalog(t, shopStateJSON, now), later,
		cmpopts.IgnoreFields(models.Catalog{}, "ScrapedAt"),
	)
	require.Empty(t, diff)
}

func TestBuildUnparseableInputs(t *testing.T) {
	catalog := Build("", nil, Options{Now: time.Now})
	require.Zero(t, catalog.TotalProducts)
	require.Empty(t, catalog.Categories)

	catalog = Build("<<<not html>>>", map[string]any{"x": 1}, Options{Now: time.Now})
	require.Zero(t, catalog.TotalProducts)
}
