package itemshop

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"github.com/lockerstudio/itemshop-scrap/internal/httputil"
	"github.com/lockerstudio/itemshop-scrap/internal/platform"
)

// stateMarker is the assignment the storefront embeds its hydration
// blob behind.
const stateMarker = "window.__remixContext"

// StaticPageStrategy fetches the raw page over HTTP and pulls the
// client-state blob out of the inline hydration script. Cheap but only
// works while the storefront server-renders the catalog grid.
type StaticPageStrategy struct {
	client *http.Client
}

func NewStaticPageStrategy(client *http.Client) *StaticPageStrategy {
	return &StaticPageStrategy{client: client}
}

func (s *StaticPageStrategy) Name() string { return "static" }

func (s *StaticPageStrategy) Fetch(ctx context.Context, pageURL string) (*platform.Capture, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range httputil.BrowserHeaders() {
		httpReq.Header[k] = v
	}

	resp, err := httputil.DoWithRetry(s.client, httpReq, 2)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := httputil.ReadBody(resp)
	if err != nil {
		return nil, err
	}

	content := string(body)
	if !strings.Contains(content, `data-testid="grid-catalog-item"`) {
		return nil, fmt.Errorf("catalog grid not present in static page")
	}

	// State is optional: a grid without hydration data still produces
	// an all-unmatched catalog downstream.
	state, _ := ExtractState(content)

	return &platform.Capture{
		HTML:     content,
		State:    state,
		Strategy: s.Name(),
	}, nil
}

// ExtractState locates the inline script carrying the hydration blob
// and decodes the JSON object assigned to it.
func ExtractState(htmlContent string) (any, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	var script string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if script != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "script" {
			if n.FirstChild != nil && strings.Contains(n.FirstChild.Data, stateMarker) {
				script = n.FirstChild.Data
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if script == "" {
		return nil, fmt.Errorf("no %s script found", stateMarker)
	}
	return decodeStateAssignment(script)
}

// decodeStateAssignment decodes the first JSON value after the
// marker's "=". json.Decoder stops at the end of the value, so the
// trailing ";" and any following statements are ignored.
func decodeStateAssignment(script string) (any, error) {
	_, after, found := strings.Cut(script, stateMarker)
	if !found {
		return nil, fmt.Errorf("marker not in script")
	}
	_, after, found = strings.Cut(after, "=")
	if !found {
		return nil, fmt.Errorf("no assignment after marker")
	}

	dec := json.NewDecoder(strings.NewReader(after))
	var state any
	if err := dec.Decode(&state); err != nil {
		return nil, fmt.Errorf("decode state blob: %w", err)
	}
	return state, nil
}
