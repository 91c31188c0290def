package pipeline

import (
	"fmt"

	"github.com/lockerstudio/itemshop-scrap/internal/models"
)

// Report summarizes catalog integrity after assembly. It reports and
// never repairs: a duplicate surviving here means the assembler's
// collision rewrite failed and is worth surfacing.
type Report struct {
	TotalProducts   int
	Matched         int
	Unmatched       int
	UniqueOffers    int
	DuplicateOffers []string
}

// Validate walks the assembled catalog once, counting products with
// and without a reconciled offer id and flagging any id that appears
// more than once. By construction of assembly this list is empty.
func Validate(catalog models.Catalog) Report {
	var report Report
	offers := make(map[string]struct{})

	for _, cat := range catalog.Categories {
		for _, p := range cat.Products {
			report.TotalProducts++
			if p.Match != models.Matched {
				report.Unmatched++
				continue
			}
			report.Matched++
			if _, dup := offers[p.OfferID]; dup {
				report.DuplicateOffers = append(report.DuplicateOffers,
					fmt.Sprintf("%s (%d) - %s", p.Name, p.Price, p.OfferID))
				continue
			}
			offers[p.OfferID] = struct{}{}
		}
	}

	report.UniqueOffers = len(offers)
	return report
}
