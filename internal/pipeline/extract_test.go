package pipeline

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/lockerstudio/itemshop-scrap/internal/models"
	"github.com/stretchr/testify/require"
)

func TestFirstInt(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"1500 V-Bucks", 1500},
		{"V-Bucks 800", 800},
		{"512w", 512},
		{"12a34", 12},
		{"no digits", 0},
		{"", 0},
	}
	for _, c := range cases {
		require.Equal(t, c.want, firstInt(c.in), "firstInt(%q)", c.in)
	}
}

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "coolskin", normalizeName("Cool Skin"))
	require.Equal(t, "foobar", normalizeName("  FoO\tBar "))
	require.Equal(t, "", normalizeName(" \n "))
}

func selection(t *testing.T, html, selector string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc.Find(selector)
}

func TestExtractImagesSrcset(t *testing.T) {
	item := selection(t, `<div class="item"><img srcset="a.png 256w, b.png 512w"></div>`, "div.item")

	images := extractImages(item)
	require.Equal(t, []models.Image{
		{URL: "b.png", Resolution: "512w", Width: 512},
		{URL: "a.png", Resolution: "256w", Width: 256},
	}, images)
}

func TestExtractImagesDedupesAndOrders(t *testing.T) {
	item := selection(t, `<div class="item">
		<img srcset="a.png 256w, b.png 512w">
		<img srcset="a.png 1024w">
		<img src="plain.png">
	</div>`, "div.item")

	images := extractImages(item)

	urls := make(map[string]int)
	for _, img := range images {
		urls[img.URL]++
	}
	for url, n := range urls {
		require.Equal(t, 1, n, "url %q repeated", url)
	}

	for i := 1; i < len(images); i++ {
		require.LessOrEqual(t, images[i].Width, images[i-1].Width, "widths must be non-increasing")
	}
	// First occurrence of a.png (256w) wins over the later 1024w one.
	require.Equal(t, []models.Image{
		{URL: "b.png", Resolution: "512w", Width: 512},
		{URL: "a.png", Resolution: "256w", Width: 256},
		{URL: "plain.png", Resolution: "original", Width: 0},
	}, images)
}

func TestExtractImagesMalformedEntries(t *testing.T) {
	// A lone URL without a descriptor and a comma-artifact URL are both
	// dropped; empty split entries are ignored.
	item := selection(t, `<div class="item">
		<img srcset="lonely.png">
		<img src=",artifact.png">
		<img srcset=", ok.png 128w,">
	</div>`, "div.item")

	images := extractImages(item)
	require.Equal(t, []models.Image{
		{URL: "ok.png", Resolution: "128w", Width: 128},
	}, images)
}

func TestExtractImagesEmpty(t *testing.T) {
	item := selection(t, `<div class="item"><p>no images here</p></div>`, "div.item")
	require.Empty(t, extractImages(item))
}
