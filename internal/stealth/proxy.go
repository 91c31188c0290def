package stealth

import (
	"bufio"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
)

// ProxyProvider abstracts a proxy backend.
type ProxyProvider interface {
	Transport() http.RoundTripper
	Name() string
	// URL exposes the proxy address for collaborators that route
	// traffic themselves (the headless browser takes a --proxy-server
	// flag instead of an http.RoundTripper).
	URL() *url.URL
}

// ProxyRotator cycles through multiple proxy providers.
type ProxyRotator struct {
	providers []ProxyProvider
	mu        sync.Mutex
	idx       int
}

// NewProxyRotator creates a rotator from a list of providers.
// Returns nil if no providers are given.
func NewProxyRotator(providers []ProxyProvider) *ProxyRotator {
	if len(providers) == 0 {
		return nil
	}
	return &ProxyRotator{providers: providers}
}

// Next returns the next proxy provider in round-robin order.
func (p *ProxyRotator) Next() ProxyProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	provider := p.providers[p.idx%len(p.providers)]
	p.idx++
	return provider
}

// SessionProxy is one authenticated residential-proxy session in the
// provider's "ip:port:user:password" list format. Session id and
// lifetime are baked into the password by the provider.
type SessionProxy struct {
	Host     string
	Port     string
	Username string
	Password string

	transport http.RoundTripper
	once      sync.Once
}

// ParseProxyLine parses a single "ip:port:user:password" line. The
// password may itself contain colons, so only the first three
// separators split.
func ParseProxyLine(line string) (*SessionProxy, error) {
	parts := strings.SplitN(strings.TrimSpace(line), ":", 4)
	if len(parts) != 4 {
		return nil, fmt.Errorf("proxy line %q: want ip:port:user:password", line)
	}
	for i, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("proxy line %q: field %d is empty", line, i+1)
		}
	}
	return &SessionProxy{Host: parts[0], Port: parts[1], Username: parts[2], Password: parts[3]}, nil
}

// LoadProxyFile reads a proxy list file, one session per line. Blank
// lines and #-comments are skipped.
func LoadProxyFile(path string) ([]ProxyProvider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open proxy file: %w", err)
	}
	defer f.Close()

	var providers []ProxyProvider
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		proxy, err := ParseProxyLine(line)
		if err != nil {
			return nil, err
		}
		providers = append(providers, proxy)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read proxy file: %w", err)
	}
	return providers, nil
}

// SessionID extracts the human-readable session tag from the password,
// or "" when the password carries none.
func (s *SessionProxy) SessionID() string {
	_, after, found := strings.Cut(s.Password, "_session-")
	if !found {
		return ""
	}
	id, _, _ := strings.Cut(after, "_")
	return id
}

func (s *SessionProxy) Name() string {
	if id := s.SessionID(); id != "" {
		return "session-" + id
	}
	return s.Host + ":" + s.Port
}

func (s *SessionProxy) URL() *url.URL {
	return &url.URL{
		Scheme: "http",
		User:   url.UserPassword(s.Username, s.Password),
		Host:   s.Host + ":" + s.Port,
	}
}

func (s *SessionProxy) Transport() http.RoundTripper {
	s.once.Do(func() {
		s.transport = &http.Transport{
			Proxy:             http.ProxyURL(s.URL()),
			DisableKeepAlives: true, // one connection per request
		}
	})
	return s.transport
}

// DirectProvider routes traffic directly (no proxy).
type DirectProvider struct {
	transport http.RoundTripper
}

func (d *DirectProvider) Transport() http.RoundTripper { return d.transport }
func (d *DirectProvider) Name() string                 { return "direct" }
func (d *DirectProvider) URL() *url.URL                { return nil }
