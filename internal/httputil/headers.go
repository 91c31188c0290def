package httputil

import "net/http"

// BrowserHeaders returns common browser-like headers for storefront
// page requests.
func BrowserHeaders() http.Header {
	h := http.Header{}
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	h.Set("Accept-Language", "es-ES,es;q=0.9,en;q=0.8")
	h.Set("Accept-Encoding", "gzip, deflate, br")
	h.Set("Connection", "keep-alive")
	h.Set("Upgrade-Insecure-Requests", "1")
	h.Set("Sec-Fetch-Dest", "document")
	h.Set("Sec-Fetch-Mode", "navigate")
	h.Set("Sec-Fetch-Site", "none")
	h.Set("Sec-Fetch-User", "?1")
	return h
}

// StorefrontHeaders returns headers for requests against the shop's
// own origin (asset manifests, localized fragments).
func StorefrontHeaders(origin string) http.Header {
	h := http.Header{}
	h.Set("Accept", "*/*")
	h.Set("Accept-Language", "es-ES,es;q=0.9,en;q=0.8")
	h.Set("Origin", origin)
	h.Set("Referer", origin+"/")
	return h
}
