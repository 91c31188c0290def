package pipeline

import (
	"sort"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/lockerstudio/itemshop-scrap/internal/models"
)

// firstInt returns the first contiguous run of digits in s as a
// non-negative integer, or 0 when s contains none. Price labels carry
// no sign, decimals or locale separators worth handling.
func firstInt(s string) int {
	n := 0
	found := false
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n = n*10 + int(r-'0')
			found = true
			continue
		}
		if found {
			break
		}
	}
	if !found {
		return 0
	}
	return n
}

// normalizeName lowercases s and strips all whitespace. Used only for
// the fuzzy-match fallback during reconciliation.
func normalizeName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// extractImages collects the responsive image set of one catalog item.
// srcset entries are "URL width-descriptor" pairs; a URL starting with
// a comma is a malformed-split artifact and is dropped. The returned
// list has distinct URLs (first occurrence wins) sorted by descending
// width, unknown widths last.
func extractImages(item *goquery.Selection) []models.Image {
	var images []models.Image

	item.Find("img").Each(func(_ int, img *goquery.Selection) {
		srcset, hasSrcset := img.Attr("srcset")
		src, _ := img.Attr("src")

		if hasSrcset && srcset != "" {
			for _, entry := range strings.Split(srcset, ",") {
				parts := strings.Fields(strings.TrimSpace(entry))
				if len(parts) < 2 {
					continue
				}
				url, resolution := parts[0], parts[1]
				if url == "" || strings.HasPrefix(url, ",") {
					continue
				}
				images = append(images, models.Image{
					URL:        url,
					Resolution: resolution,
					Width:      firstInt(resolution),
				})
			}
			return
		}

		if src != "" && !strings.HasPrefix(src, ",") {
			images = append(images, models.Image{URL: src, Resolution: "original", Width: 0})
		}
	})

	seen := make(map[string]struct{}, len(images))
	unique := images[:0]
	for _, img := range images {
		if _, ok := seen[img.URL]; ok {
			continue
		}
		seen[img.URL] = struct{}{}
		unique = append(unique, img)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].Width > unique[j].Width
	})
	return unique
}
