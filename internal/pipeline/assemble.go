package pipeline

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/lockerstudio/itemshop-scrap/internal/models"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Heading selectors tried in decreasing specificity when naming a
// section-based category.
var sectionHeadings = []string{
	"h2.font-heading-now-bold.italic.uppercase",
	"h2.font-heading-now-bold",
	`h2[class*="font-heading-now-bold"]`,
	`h2[class*="font-heading"]`,
	"h2",
	"h1",
	"h3",
}

const containerSelector = `div[class*="container"], div[class*="wrapper"], div[class*="content"]`

// assembler carries the per-run state of category assembly. The seen
// set spans tiers and sections: a product matching multiple DOM nodes
// is still counted once.
type assembler struct {
	doc     *goquery.Document
	entries []models.CatalogEntry
	baseURL string
	rootID  string
	seen    map[string]struct{}
}

// Assemble groups the page's products into named categories using a
// three-tier fallback: explicit sections with ids, then generic
// wrapper containers, then a single pass over the whole page grouped
// by product type. Each tier runs only when the previous one produced
// nothing.
func Assemble(doc *goquery.Document, entries []models.CatalogEntry, baseURL, rootID string) []models.Category {
	a := &assembler{
		doc:     doc,
		entries: entries,
		baseURL: baseURL,
		rootID:  rootID,
		seen:    make(map[string]struct{}),
	}

	cats := newCategorySet()
	a.bySections(cats)
	if cats.empty() {
		a.byContainers(cats)
	}
	if cats.empty() {
		a.catchAll(cats)
	}
	return cleanup(cats.ordered())
}

func (a *assembler) bySections(cats *categorySet) {
	a.doc.Find("section[id], div[id]").Each(func(_ int, section *goquery.Selection) {
		id, _ := section.Attr("id")
		if id == "" || id == a.rootID {
			return
		}
		products := a.extract(section)
		if len(products) == 0 {
			return
		}
		name := sectionTitle(section)
		if name == "" {
			name = id
		}
		cats.add(name, products)
	})
}

func (a *assembler) byContainers(cats *categorySet) {
	a.doc.Find(containerSelector).Each(func(_ int, container *goquery.Selection) {
		products := a.extract(container)
		if len(products) == 0 {
			return
		}
		cats.add(containerTitle(container, products), products)
	})
}

func (a *assembler) catchAll(cats *categorySet) {
	products := a.extract(a.doc.Selection)
	if len(products) == 0 {
		return
	}
	// Group by type, preserving first-seen order of both groups and
	// members.
	order := []string{}
	grouped := make(map[string][]models.Product)
	for _, p := range products {
		t := p.Type
		if t == "" {
			t = "General"
		}
		if _, ok := grouped[t]; !ok {
			order = append(order, t)
		}
		grouped[t] = append(grouped[t], p)
	}
	for _, t := range order {
		cats.add(t, grouped[t])
	}
}

// extract pulls every catalog item under root, reconciles it against
// the state entries and filters out products already claimed by an
// earlier node.
func (a *assembler) extract(root *goquery.Selection) []models.Product {
	var products []models.Product
	root.Find(itemSelector).Each(func(_ int, item *goquery.Selection) {
		p, ok := extractProduct(item, a.baseURL)
		if !ok {
			return
		}
		key := productKey(p)
		if _, dup := a.seen[key]; dup {
			return
		}
		a.seen[key] = struct{}{}
		Reconcile(&p, a.entries)
		products = append(products, p)
	})
	return products
}

// sectionTitle searches the section's own headings by decreasing
// specificity, then the parent's, and gives up with "".
func sectionTitle(section *goquery.Selection) string {
	for _, scope := range []*goquery.Selection{section, section.Parent()} {
		for _, sel := range sectionHeadings {
			if title := strings.TrimSpace(scope.Find(sel).First().Text()); title != "" {
				return whitespaceRe.ReplaceAllString(title, " ")
			}
		}
	}
	return ""
}

// containerTitle names a tier-2 category: first heading inside the
// container, else the most common product type, else "General".
func containerTitle(container *goquery.Selection, products []models.Product) string {
	if title := strings.TrimSpace(container.Find("h1, h2, h3").First().Text()); title != "" {
		return title
	}

	counts := make(map[string]int)
	var best string
	for _, p := range products {
		if p.Type == "" {
			continue
		}
		counts[p.Type]++
		if best == "" || counts[p.Type] > counts[best] {
			best = p.Type
		}
	}
	if best != "" {
		return best
	}
	return "General"
}

func productKey(p models.Product) string {
	return p.Name + "\x00" + p.URL
}

// categorySet accumulates categories in insertion order; Go maps alone
// would randomize the final catalog between identical runs.
type categorySet struct {
	index map[string]int
	cats  []models.Category
}

func newCategorySet() *categorySet {
	return &categorySet{index: make(map[string]int)}
}

// add appends products to the named category, creating it on first
// use. Products already present in the category by (name, URL) are
// skipped.
func (c *categorySet) add(name string, products []models.Product) {
	i, ok := c.index[name]
	if !ok {
		c.index[name] = len(c.cats)
		c.cats = append(c.cats, models.Category{Name: name, Products: products})
		return
	}
	existing := make(map[string]struct{}, len(c.cats[i].Products))
	for _, p := range c.cats[i].Products {
		existing[productKey(p)] = struct{}{}
	}
	for _, p := range products {
		if _, dup := existing[productKey(p)]; dup {
			continue
		}
		c.cats[i].Products = append(c.cats[i].Products, p)
	}
}

func (c *categorySet) empty() bool { return len(c.cats) == 0 }

func (c *categorySet) ordered() []models.Category { return c.cats }

// cleanup applies the post-assembly invariants: per-category product
// dedup, offer-id collision rewrite (first occurrence keeps the id,
// later ones are downgraded to Duplicate), removal of empty or
// name-colliding categories, and a stable sort by descending product
// count.
func cleanup(cats []models.Category) []models.Category {
	usedOffers := make(map[string]struct{})
	usedNames := make(map[string]struct{})
	out := make([]models.Category, 0, len(cats))

	for _, cat := range cats {
		inCategory := make(map[string]struct{}, len(cat.Products))
		products := make([]models.Product, 0, len(cat.Products))
		for _, p := range cat.Products {
			key := productKey(p)
			if _, dup := inCategory[key]; dup {
				continue
			}
			inCategory[key] = struct{}{}

			if p.Match == models.Matched {
				if _, taken := usedOffers[p.OfferID]; taken {
					p.Match = models.Duplicate
				} else {
					usedOffers[p.OfferID] = struct{}{}
				}
			}
			products = append(products, p)
		}

		if len(products) == 0 || cat.Name == "" {
			continue
		}
		if _, dup := usedNames[cat.Name]; dup {
			continue
		}
		usedNames[cat.Name] = struct{}{}
		out = append(out, models.Category{Name: cat.Name, Products: products})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].Products) > len(out[j].Products)
	})
	return out
}
