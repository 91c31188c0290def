// Package snapshot keeps the last scraped catalog: an in-memory copy
// for the serving layer plus a JSON file that survives restarts.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/lockerstudio/itemshop-scrap/internal/models"
)

// Store guards the current snapshot against concurrent API reads and
// scheduled refreshes.
type Store struct {
	path string

	mu       sync.RWMutex
	catalog  *models.ExportCatalog
	loadedAt time.Time
}

// New creates a store persisting to path. Call Load to pick up a
// snapshot left by a previous run.
func New(path string) *Store {
	return &Store{path: path}
}

// Load reads the snapshot file into memory. A missing file is not an
// error: the store simply stays empty until the first scrape.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	var catalog models.ExportCatalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	s.mu.Lock()
	s.catalog = &catalog
	s.loadedAt = time.Now()
	s.mu.Unlock()
	return nil
}

// Put replaces the in-memory snapshot and persists it. The file write
// goes through a temp file and rename so readers of the path never see
// a half-written snapshot.
func (s *Store) Put(catalog models.ExportCatalog) error {
	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("snapshot dir: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}

	s.mu.Lock()
	s.catalog = &catalog
	s.loadedAt = time.Now()
	s.mu.Unlock()
	return nil
}

// Catalog returns the current snapshot, or false when none is loaded.
func (s *Store) Catalog() (models.ExportCatalog, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.catalog == nil {
		return models.ExportCatalog{}, false
	}
	return *s.catalog, true
}

// LastUpdate reports when the snapshot was last loaded or replaced.
func (s *Store) LastUpdate() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.catalog == nil {
		return time.Time{}, false
	}
	return s.loadedAt, true
}

// CategorySummary is the categories-listing view.
type CategorySummary struct {
	Name         string `json:"name"`
	ProductCount int    `json:"productCount"`
}

// Categories lists category names with their product counts.
func (s *Store) Categories() []CategorySummary {
	catalog, ok := s.Catalog()
	if !ok {
		return nil
	}
	out := make([]CategorySummary, 0, len(catalog.Categories))
	for _, cat := range catalog.Categories {
		out = append(out, CategorySummary{Name: cat.Name, ProductCount: len(cat.Products)})
	}
	return out
}

// Category finds a category by name, case-insensitively.
func (s *Store) Category(name string) (models.ExportCategory, bool) {
	catalog, ok := s.Catalog()
	if !ok {
		return models.ExportCategory{}, false
	}
	for _, cat := range catalog.Categories {
		if strings.EqualFold(cat.Name, name) {
			return cat, true
		}
	}
	return models.ExportCategory{}, false
}

// SearchResult is a product hit annotated with its category.
type SearchResult struct {
	models.ExportProduct
	Category string `json:"category"`
}

// Search returns every product whose name or type contains the query,
// case-insensitively.
func (s *Store) Search(query string) []SearchResult {
	catalog, ok := s.Catalog()
	if !ok || query == "" {
		return nil
	}
	q := strings.ToLower(query)

	var results []SearchResult
	for _, cat := range catalog.Categories {
		for _, p := range cat.Products {
			if strings.Contains(strings.ToLower(p.Name), q) ||
				strings.Contains(strings.ToLower(p.Type), q) {
				results = append(results, SearchResult{ExportProduct: p, Category: cat.Name})
			}
		}
	}
	return results
}

// CategoryStats breaks a category down by badge counts.
type CategoryStats struct {
	Name            string `json:"name"`
	ProductCount    int    `json:"productCount"`
	NewCount        int    `json:"newCount"`
	DiscountedCount int    `json:"discountedCount"`
}

// Stats aggregates the snapshot.
type Stats struct {
	TotalCategories int             `json:"totalCategories"`
	TotalProducts   int             `json:"totalProducts"`
	TotalNew        int             `json:"totalNew"`
	TotalDiscounted int             `json:"totalDiscounted"`
	Categories      []CategoryStats `json:"categories"`
}

// Stats computes aggregate counts over the current snapshot.
func (s *Store) Stats() (Stats, bool) {
	catalog, ok := s.Catalog()
	if !ok {
		return Stats{}, false
	}

	stats := Stats{TotalCategories: len(catalog.Categories)}
	for _, cat := range catalog.Categories {
		cs := CategoryStats{Name: cat.Name, ProductCount: len(cat.Products)}
		for _, p := range cat.Products {
			if p.IsNew {
				cs.NewCount++
			}
			if p.Discount != "" {
				cs.DiscountedCount++
			}
		}
		stats.TotalProducts += cs.ProductCount
		stats.TotalNew += cs.NewCount
		stats.TotalDiscounted += cs.DiscountedCount
		stats.Categories = append(stats.Categories, cs)
	}
	return stats, true
}
