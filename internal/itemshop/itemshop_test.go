package itemshop

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lockerstudio/itemshop-scrap/internal/platform"
)

type stubStrategy struct {
	name     string
	failures int
	capture  *platform.Capture
	calls    int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Fetch(ctx context.Context, pageURL string) (*platform.Capture, error) {
	s.calls++
	if s.calls <= s.failures {
		return nil, fmt.Errorf("attempt %d failed", s.calls)
	}
	if s.capture == nil {
		return nil, fmt.Errorf("no capture configured")
	}
	return s.capture, nil
}

func TestScraperRetriesThenSucceeds(t *testing.T) {
	strat := &stubStrategy{
		name:     "flaky",
		failures: 2,
		capture:  &platform.Capture{HTML: "<html></html>", Strategy: "flaky"},
	}
	s := NewScraper(Config{
		PageURL:    "https://shop.example.com/item-shop",
		Strategies: []platform.Strategy{strat},
		Attempts:   3,
	})

	capture, err := s.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, strat.calls)
	require.Equal(t, "flaky", capture.Strategy)
}

func TestScraperFallsBackToNextStrategy(t *testing.T) {
	fast := &stubStrategy{name: "static", failures: 2}
	slow := &stubStrategy{
		name:    "headless",
		capture: &platform.Capture{HTML: "<html></html>", Strategy: "headless"},
	}
	s := NewScraper(Config{
		PageURL:    "https://shop.example.com/item-shop",
		Strategies: []platform.Strategy{fast, slow},
		Attempts:   2,
	})

	capture, err := s.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, fast.calls)
	require.Equal(t, 1, slow.calls)
	require.Equal(t, "headless", capture.Strategy)
}

func TestScraperAllExhausted(t *testing.T) {
	strat := &stubStrategy{name: "static", failures: 10}
	s := NewScraper(Config{
		PageURL:    "https://shop.example.com/item-shop",
		Strategies: []platform.Strategy{strat},
		Attempts:   2,
	})

	_, err := s.Fetch(context.Background())
	require.Error(t, err)
	require.ErrorContains(t, err, "all strategies exhausted")
	require.Equal(t, 2, strat.calls)
}

func TestScraperContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewScraper(Config{
		PageURL:    "https://shop.example.com/item-shop",
		Strategies: []platform.Strategy{&stubStrategy{name: "static"}},
	})
	_, err := s.Fetch(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestScrapeBuildsCatalog(t *testing.T) {
	html := `<html><body><section id="daily"><h2>Daily</h2>
<div data-testid="grid-catalog-item">
  <h3 data-testid="item-title">Raven</h3>
  <span data-testid="item-type">Outfit</span>
  <span data-testid="current-vbuck-price">2000</span>
  <a href="/item-shop/raven"></a>
</div></section></body></html>`
	strat := &stubStrategy{
		name:    "static",
		capture: &platform.Capture{HTML: html, Strategy: "static"},
	}
	s := NewScraper(Config{
		PageURL:    "https://shop.example.com/item-shop",
		Strategies: []platform.Strategy{strat},
	})

	catalog, err := s.Scrape(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, catalog.TotalProducts)
	require.Equal(t, 1, catalog.TotalCategories)
	require.Equal(t, "Daily", catalog.Categories[0].Name)
}
