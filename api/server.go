// Package api serves the current shop snapshot as a JSON API.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/lockerstudio/itemshop-scrap/internal/snapshot"
)

// Refresher runs a full re-scrape and replaces the snapshot. Failures
// must leave the previous snapshot in place.
type Refresher func(ctx context.Context) error

// Server exposes the snapshot store over HTTP.
type Server struct {
	store   *snapshot.Store
	refresh Refresher
	apiKey  string
	started time.Time

	general *ipLimiter
	update  *ipLimiter
}

func NewServer(store *snapshot.Store, refresh Refresher, apiKey string) *Server {
	return &Server{
		store:   store,
		refresh: refresh,
		apiKey:  apiKey,
		started: time.Now(),
		general: newIPLimiter(100, 15*time.Minute),
		update:  newIPLimiter(5, time.Hour),
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/shop", s.handleShop)
	mux.HandleFunc("GET /api/shop/clean", s.handleClean)
	mux.HandleFunc("GET /api/shop/categories", s.handleCategories)
	mux.HandleFunc("GET /api/shop/categories/{name}", s.handleCategory)
	mux.HandleFunc("GET /api/shop/search", s.handleSearch)
	mux.HandleFunc("GET /api/shop/stats", s.handleStats)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api", s.handleIndex)
	mux.HandleFunc("/", s.handleNotFound)

	var updateHandler http.Handler = http.HandlerFunc(s.handleUpdate)
	if s.apiKey != "" {
		updateHandler = s.bearerAuth(updateHandler)
	}
	mux.Handle("POST /api/shop/update", s.update.middleware(updateHandler))

	return s.general.middleware(mux)
}

func (s *Server) handleShop(w http.ResponseWriter, r *http.Request) {
	catalog, ok := s.store.Catalog()
	if !ok {
		writeUnavailable(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"data":       catalog,
		"lastUpdate": s.lastUpdate(),
	})
}

// handleClean returns the snapshot document with no wrapper.
func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	catalog, ok := s.store.Catalog()
	if !ok {
		writeUnavailable(w)
		return
	}
	writeJSON(w, http.StatusOK, catalog)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.store.Catalog(); !ok {
		writeUnavailable(w)
		return
	}
	categories := s.store.Categories()
	if categories == nil {
		categories = []snapshot.CategorySummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"data":       categories,
		"lastUpdate": s.lastUpdate(),
	})
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.store.Catalog(); !ok {
		writeUnavailable(w)
		return
	}
	name := r.PathValue("name")
	category, ok := s.store.Category(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error": "category not found: " + name,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"data":       category,
		"lastUpdate": s.lastUpdate(),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.store.Catalog(); !ok {
		writeUnavailable(w)
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": "search query required, use ?q=",
		})
		return
	}
	results := s.store.Search(query)
	if results == nil {
		results = []snapshot.SearchResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"data":       results,
		"query":      query,
		"count":      len(results),
		"lastUpdate": s.lastUpdate(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, ok := s.store.Stats()
	if !ok {
		writeUnavailable(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"data":       stats,
		"lastUpdate": s.lastUpdate(),
	})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if s.refresh == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]any{
			"error": "manual updates not enabled",
		})
		return
	}
	log.Printf("manual shop update requested by %s", clientIP(r))
	if err := s.refresh(r.Context()); err != nil {
		log.Printf("manual update failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error": "update failed, previous snapshot kept",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"message":    "shop data updated",
		"lastUpdate": s.lastUpdate(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, available := s.store.Catalog()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "OK",
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
		"uptime":        time.Since(s.started).String(),
		"lastUpdate":    s.lastUpdate(),
		"dataAvailable": available,
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        "Item Shop API",
		"version":     "1.0.0",
		"description": "serves the current item-shop snapshot",
		"endpoints": map[string]string{
			"GET /api/shop":                   "full snapshot with wrapper",
			"GET /api/shop/clean":             "snapshot document only",
			"GET /api/shop/categories":        "category list with counts",
			"GET /api/shop/categories/{name}": "one category's products",
			"GET /api/shop/search?q=query":    "search products by name or type",
			"GET /api/shop/stats":             "aggregate statistics",
			"POST /api/shop/update":           "trigger a re-scrape",
			"GET /api/health":                 "server status",
		},
		"rateLimits": map[string]string{
			"general": "100 requests per 15 minutes",
			"update":  "5 updates per hour",
		},
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]any{
		"error": "endpoint not found, see /api",
	})
}

func (s *Server) bearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(auth, "Bearer ")
		if !found || subtle.ConstantTimeCompare([]byte(token), []byte(s.apiKey)) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"error": "invalid or missing token",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) lastUpdate() string {
	if t, ok := s.store.LastUpdate(); ok {
		return t.UTC().Format(time.RFC3339)
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeUnavailable(w http.ResponseWriter) {
	writeJSON(w, http.StatusServiceUnavailable, map[string]any{
		"error": "shop data not available yet",
	})
}
