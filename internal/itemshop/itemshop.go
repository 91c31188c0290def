// Package itemshop acquires the storefront's item-shop page and turns
// it into a catalog. Acquisition strategies are tried in order (static
// HTTP first, headless browser as fallback), each with a bounded
// number of attempts.
package itemshop

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/lockerstudio/itemshop-scrap/internal/models"
	"github.com/lockerstudio/itemshop-scrap/internal/pipeline"
	"github.com/lockerstudio/itemshop-scrap/internal/platform"
	"github.com/lockerstudio/itemshop-scrap/internal/stealth"
)

// Scraper drives the strategy chain against one shop URL.
type Scraper struct {
	strategies  []platform.Strategy
	pageURL     string
	attempts    int
	delay       *stealth.HumanDelay
	rateLimiter *rate.Limiter
	buildOpts   pipeline.Options
}

// Config collects everything a Scraper needs.
type Config struct {
	PageURL    string
	Strategies []platform.Strategy
	// Attempts is the per-strategy attempt budget; values < 1 mean one
	// attempt.
	Attempts    int
	Delay       *stealth.HumanDelay
	RateLimiter *rate.Limiter
	BuildOpts   pipeline.Options
}

func NewScraper(cfg Config) *Scraper {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	return &Scraper{
		strategies:  cfg.Strategies,
		pageURL:     cfg.PageURL,
		attempts:    cfg.Attempts,
		delay:       cfg.Delay,
		rateLimiter: cfg.RateLimiter,
		buildOpts:   cfg.BuildOpts,
	}
}

// Fetch runs the strategy chain until one returns a capture.
func (s *Scraper) Fetch(ctx context.Context) (*platform.Capture, error) {
	var lastErr error
	for _, strat := range s.strategies {
		for attempt := 1; attempt <= s.attempts; attempt++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if s.rateLimiter != nil {
				if err := s.rateLimiter.Wait(ctx); err != nil {
					return nil, err
				}
			}
			platform.ReportProgress(ctx, fmt.Sprintf("Fetching shop page via %s (attempt %d/%d)...", strat.Name(), attempt, s.attempts))

			capture, err := strat.Fetch(ctx, s.pageURL)
			if err == nil && capture != nil && capture.HTML != "" {
				platform.ReportProgress(ctx, fmt.Sprintf("Captured shop page via %s", strat.Name()))
				return capture, nil
			}
			if err != nil {
				lastErr = fmt.Errorf("%s: %w", strat.Name(), err)
				platform.ReportProgress(ctx, fmt.Sprintf("Strategy %s failed: %v", strat.Name(), err))
			}

			if s.delay != nil && attempt < s.attempts {
				if err := s.delay.Wait(ctx); err != nil {
					return nil, err
				}
			}
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("all strategies exhausted: %w", lastErr)
	}
	return nil, fmt.Errorf("all strategies exhausted for %s", s.pageURL)
}

// Scrape fetches the page and builds the full catalog.
func (s *Scraper) Scrape(ctx context.Context) (models.Catalog, error) {
	capture, err := s.Fetch(ctx)
	if err != nil {
		return models.Catalog{}, err
	}

	platform.ReportProgress(ctx, "Building catalog from captured page...")
	catalog := pipeline.Build(capture.HTML, capture.State, s.buildOpts)
	platform.ReportProgress(ctx, fmt.Sprintf("Catalog built: %d products in %d categories", catalog.TotalProducts, catalog.TotalCategories))
	return catalog, nil
}
