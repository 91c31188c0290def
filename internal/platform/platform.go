package platform

import "context"

// Capture is one fetched rendering of the shop page: the rendered HTML
// and the decoded client-state blob (nil when the page carried none).
type Capture struct {
	HTML     string
	State    any
	Strategy string
}

// Strategy fetches the shop page one way (static HTTP, headless
// browser). Strategies are tried in order until one yields a usable
// capture.
type Strategy interface {
	Name() string
	Fetch(ctx context.Context, pageURL string) (*Capture, error)
}
