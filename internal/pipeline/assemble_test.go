package pipeline

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/lockerstudio/itemshop-scrap/internal/models"
	"github.com/stretchr/testify/require"
)

func document(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func testItem(name, href, price string) string {
	return `<div data-testid="grid-catalog-item">
		<a href="` + href + `"></a>
		<span data-testid="item-title">` + name + `</span>
		<span data-testid="item-type">Outfit</span>
		<span data-testid="current-vbuck-price">` + price + `</span>
	</div>`
}

func assemble(t *testing.T, html string, entries []models.CatalogEntry) []models.Category {
	t.Helper()
	return Assemble(document(t, html), entries, testBaseURL, "item-shop")
}

func TestAssembleSections(t *testing.T) {
	cats := assemble(t, `<body>
		<div id="item-shop">
			<section id="featured-1">
				<h2>Featured</h2>
				`+testItem("Cool Skin", "/a", "1500")+`
				`+testItem("Rare Pickaxe", "/b", "800")+`
			</section>
			<section id="daily-1">
				<h2 class="font-heading-now-bold italic uppercase">Daily   Deals</h2>
				`+testItem("Funky Glider", "/c", "500")+`
			</section>
		</div>
	</body>`, nil)

	require.Len(t, cats, 2)
	// Sorted by descending product count.
	require.Equal(t, "Featured", cats[0].Name)
	require.Len(t, cats[0].Products, 2)
	// Heading whitespace is collapsed.
	require.Equal(t, "Daily Deals", cats[1].Name)
}

func TestAssembleSectionNameFallsBackToID(t *testing.T) {
	cats := assemble(t, `<body>
		<section id="mystery-row">`+testItem("Cool Skin", "/a", "1500")+`</section>
	</body>`, nil)

	require.Len(t, cats, 1)
	require.Equal(t, "mystery-row", cats[0].Name)
}

func TestAssembleSectionNameFromParentHeading(t *testing.T) {
	cats := assemble(t, `<body>
		<div>
			<h2>Parent Heading</h2>
			<section id="row-2">`+testItem("Cool Skin", "/a", "1500")+`</section>
		</div>
	</body>`, nil)

	require.Len(t, cats, 1)
	require.Equal(t, "Parent Heading", cats[0].Name)
}

func TestAssembleRootContainerExcluded(t *testing.T) {
	// The page-level container id must not become a category of its own;
	// its inner sections do.
	cats := assemble(t, `<body>
		<div id="item-shop">
			<section id="row-1"><h2>Row One</h2>`+testItem("Cool Skin", "/a", "1500")+`</section>
		</div>
	</body>`, nil)

	require.Len(t, cats, 1)
	require.Equal(t, "Row One", cats[0].Name)
}

func TestAssembleCrossSectionDedup(t *testing.T) {
	// The same (name, URL) product rendered in two sections counts once.
	cats := assemble(t, `<body>
		<section id="row-1"><h2>One</h2>`+testItem("Cool Skin", "/a", "1500")+`</section>
		<section id="row-2"><h2>Two</h2>
			`+testItem("Cool Skin", "/a", "1500")+`
			`+testItem("Other Skin", "/b", "800")+`
		</section>
	</body>`, nil)

	total := 0
	for _, c := range cats {
		total += len(c.Products)
	}
	require.Equal(t, 2, total)
	require.Len(t, cats, 2)
}

func TestAssembleSameHeadingMerges(t *testing.T) {
	cats := assemble(t, `<body>
		<section id="row-1"><h2>Bundles</h2>`+testItem("Cool Skin", "/a", "1500")+`</section>
		<section id="row-2"><h2>Bundles</h2>`+testItem("Other Skin", "/b", "800")+`</section>
	</body>`, nil)

	require.Len(t, cats, 1)
	require.Equal(t, "Bundles", cats[0].Name)
	require.Len(t, cats[0].Products, 2)
}

func TestAssembleContainerTier(t *testing.T) {
	cats := assemble(t, `<body>
		<div class="shop-container">
			<h2>Weekly Picks</h2>
			`+testItem("Cool Skin", "/a", "1500")+`
		</div>
	</body>`, nil)

	require.Len(t, cats, 1)
	require.Equal(t, "Weekly Picks", cats[0].Name)
}

func TestAssembleContainerNameFromCommonType(t *testing.T) {
	html := `<body>
		<div class="shop-content">
			<div data-testid="grid-catalog-item">
				<a href="/a"></a>
				<span data-testid="item-title">Skin One</span>
				<span data-testid="item-type">Outfit</span>
				<span data-testid="current-vbuck-price">1500</span>
			</div>
			<div data-testid="grid-catalog-item">
				<a href="/b"></a>
				<span data-testid="item-title">Axe One</span>
				<span data-testid="item-type">Pickaxe</span>
				<span data-testid="current-vbuck-price">800</span>
			</div>
			<div data-testid="grid-catalog-item">
				<a href="/c"></a>
				<span data-testid="item-title">Skin Two</span>
				<span data-testid="item-type">Outfit</span>
				<span data-testid="current-vbuck-price">1200</span>
			</div>
		</div>
	</body>`

	cats := assemble(t, html, nil)
	require.Len(t, cats, 1)
	require.Equal(t, "Outfit", cats[0].Name)
	require.Len(t, cats[0].Products, 3)
}

func TestAssembleCatchAllGroupsByType(t *testing.T) {
	html := `<body>
		<div data-testid="grid-catalog-item">
			<a href="/a"></a>
			<span data-testid="item-title">Skin One</span>
			<span data-testid="item-type">Outfit</span>
			<span data-testid="current-vbuck-price">1500</span>
		</div>
		<div data-testid="grid-catalog-item">
			<a href="/b"></a>
			<span data-testid="item-title">No Type Item</span>
			<span data-testid="current-vbuck-price">800</span>
		</div>
	</body>`

	cats := assemble(t, html, nil)
	require.Len(t, cats, 2)
	names := []string{cats[0].Name, cats[1].Name}
	require.ElementsMatch(t, []string{"Outfit", "General"}, names)
}

func TestAssembleDuplicateOfferRewritten(t *testing.T) {
	entries := []models.CatalogEntry{
		{OfferID: "X1", Title: "Cool Skin", Price: 1500},
	}
	cats := assemble(t, `<body>
		<section id="row-1"><h2>Row</h2>
			`+testItem("Cool Skin", "/a", "1500")+`
			`+testItem("Cool Skin", "/b", "1500")+`
		</section>
	</body>`, entries)

	require.Len(t, cats, 1)
	require.Len(t, cats[0].Products, 2)
	first, second := cats[0].Products[0], cats[0].Products[1]
	require.Equal(t, models.Matched, first.Match)
	require.Equal(t, "X1", first.OfferID)
	require.Equal(t, models.Duplicate, second.Match)
	require.Equal(t, "X1", second.OfferID)
}

func TestAssembleEmptyPage(t *testing.T) {
	require.Empty(t, assemble(t, `<body><p>maintenance</p></body>`, nil))
}
