package mcp

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/server"

	"github.com/lockerstudio/itemshop-scrap/internal/snapshot"
)

// HTTPHandler returns the streamable-HTTP MCP endpoint, wrapped with
// Bearer auth when apiKey is non-empty. Mount it under /mcp next to
// the REST routes.
func HTTPHandler(store *snapshot.Store, apiKey string) http.Handler {
	s := server.NewMCPServer(
		"itemshop-scrap",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	registerTools(s, store)

	var handler http.Handler = server.NewStreamableHTTPServer(s, server.WithStateLess(true))
	if apiKey != "" {
		handler = bearerAuth(apiKey, handler)
	}
	return handler
}

func bearerAuth(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="mcp"`)
			http.Error(w, `{"error":"missing Authorization header"}`, http.StatusUnauthorized)
			return
		}
		token, found := strings.CutPrefix(auth, "Bearer ")
		if !found || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="mcp", error="invalid_token"`)
			http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
