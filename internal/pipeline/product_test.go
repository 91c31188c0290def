package pipeline

import (
	"testing"

	"github.com/lockerstudio/itemshop-scrap/internal/models"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "https://shop.example.com"

func itemHTML(body string) string {
	return `<div data-testid="grid-catalog-item">` + body + `</div>`
}

func extractOne(t *testing.T, html string) (models.Product, bool) {
	t.Helper()
	item := selection(t, html, itemSelector)
	require.Equal(t, 1, item.Length())
	return extractProduct(item, testBaseURL)
}

func TestExtractProduct(t *testing.T) {
	p, ok := extractOne(t, itemHTML(`
		<a href="/item-shop/cool-skin"></a>
		<span data-testid="item-title">Cool Skin</span>
		<span data-testid="item-type">Outfit</span>
		<span data-testid="current-vbuck-price">1500 V-Bucks</span>
		<img srcset="small.png 256w, big.png 512w">
	`))
	require.True(t, ok)
	require.Equal(t, "Cool Skin", p.Name)
	require.Equal(t, "Outfit", p.Type)
	require.Equal(t, 1500, p.Price)
	require.Zero(t, p.OriginalPrice)
	require.Equal(t, testBaseURL+"/item-shop/cool-skin", p.URL)
	require.Len(t, p.Images, 2)
	require.Equal(t, "big.png", p.Images[0].URL)
	require.Equal(t, models.Unmatched, p.Match)
}

func TestExtractProductAbsoluteURL(t *testing.T) {
	p, ok := extractOne(t, itemHTML(`
		<a href="https://other.example.com/x"></a>
		<span data-testid="item-title">Cool Skin</span>
		<span data-testid="current-vbuck-price">1500</span>
	`))
	require.True(t, ok)
	require.Equal(t, "https://other.example.com/x", p.URL)
}

func TestExtractProductOriginalPrice(t *testing.T) {
	p, ok := extractOne(t, itemHTML(`
		<a href="/x"></a>
		<span data-testid="item-title">Cool Skin</span>
		<span data-testid="current-vbuck-price">1200</span>
		<s data-testid="original-price">2000</s>
	`))
	require.True(t, ok)
	require.Equal(t, 2000, p.OriginalPrice)
}

func TestExtractProductNewBadge(t *testing.T) {
	for _, marker := range []string{"¡Nuevo!", "Nuevo"} {
		p, ok := extractOne(t, itemHTML(`
			<a href="/x"></a>
			<span data-testid="item-title">Cool Skin</span>
			<span data-testid="current-vbuck-price">1500</span>
			<span class="bg-yellow-100">`+marker+`</span>
		`))
		require.True(t, ok)
		require.True(t, p.IsNew, "marker %q", marker)
		require.Empty(t, p.Discount, "a new badge is not a discount")
	}
}

func TestExtractProductDiscountBadge(t *testing.T) {
	p, ok := extractOne(t, itemHTML(`
		<a href="/x"></a>
		<span data-testid="item-title">Cool Skin</span>
		<span data-testid="current-vbuck-price">1200</span>
		<span class="bg-white">-25%</span>
	`))
	require.True(t, ok)
	require.False(t, p.IsNew)
	require.Equal(t, "-25%", p.Discount)
}

func TestExtractProductRejections(t *testing.T) {
	cases := map[string]string{
		"short name": itemHTML(`
			<a href="/x"></a>
			<span data-testid="item-title">C</span>
			<span data-testid="current-vbuck-price">1500</span>
		`),
		"missing name": itemHTML(`
			<a href="/x"></a>
			<span data-testid="current-vbuck-price">1500</span>
		`),
		"zero price": itemHTML(`
			<a href="/x"></a>
			<span data-testid="item-title">Cool Skin</span>
			<span data-testid="current-vbuck-price">0</span>
		`),
		"missing price": itemHTML(`
			<a href="/x"></a>
			<span data-testid="item-title">Cool Skin</span>
		`),
		"bare base url": itemHTML(`
			<span data-testid="item-title">Cool Skin</span>
			<span data-testid="current-vbuck-price">1500</span>
		`),
	}
	for name, html := range cases {
		_, ok := extractOne(t, html)
		require.False(t, ok, "case %q must be rejected", name)
	}
}
