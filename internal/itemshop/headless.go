package itemshop

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/lockerstudio/itemshop-scrap/internal/platform"
	"github.com/lockerstudio/itemshop-scrap/internal/stealth"
)

const catalogItemSelector = `[data-testid="grid-catalog-item"]`

// concealAutomation runs before any page script and hides the usual
// headless tells the storefront's bot checks look at.
const concealAutomation = `() => {
	Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
	window.chrome = { runtime: {} };
	Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3, 4, 5] });
	Object.defineProperty(navigator, 'languages', { get: () => ['es-ES', 'es', 'en'] });
}`

// Cookie is a named cookie injected before navigation. The storefront
// skips its security interstitial when a previous clearance cookie is
// replayed.
type Cookie struct {
	Name   string
	Value  string
	Domain string
}

// HeadlessBrowserStrategy renders the page with a real browser so the
// client-side catalog grid and hydration blob both exist.
type HeadlessBrowserStrategy struct {
	fingerprints *stealth.FingerprintPool
	proxy        *url.URL
	cookies      []Cookie
	launcherURL  string // optional remote launcher URL
}

func NewHeadlessBrowserStrategy(fingerprints *stealth.FingerprintPool, proxy *url.URL, cookies []Cookie) *HeadlessBrowserStrategy {
	return &HeadlessBrowserStrategy{
		fingerprints: fingerprints,
		proxy:        proxy,
		cookies:      cookies,
	}
}

func (h *HeadlessBrowserStrategy) Name() string { return "headless" }

func (h *HeadlessBrowserStrategy) Fetch(ctx context.Context, pageURL string) (*platform.Capture, error) {
	page, cleanup, err := h.openPage(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	// The grid is client-rendered; give it a bounded wait and carry on
	// with whatever rendered if it never shows.
	if _, err := page.Timeout(15 * time.Second).Element(catalogItemSelector); err != nil {
		platform.ReportProgress(ctx, "Catalog grid selector not found, continuing with rendered page...")
	}

	state, err := h.evalState(page)
	if err != nil {
		platform.ReportProgress(ctx, "Client state blob not found in rendered page")
		state = nil
	}

	htmlContent, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("get page HTML: %w", err)
	}

	return &platform.Capture{
		HTML:     htmlContent,
		State:    state,
		Strategy: h.Name(),
	}, nil
}

func (h *HeadlessBrowserStrategy) openPage(ctx context.Context, pageURL string) (*rod.Page, func(), error) {
	var l *launcher.Launcher
	if h.launcherURL != "" {
		l = launcher.MustNewManaged(h.launcherURL)
	} else {
		l = launcher.New().Headless(true).Logger(io.Discard).
			Set("disable-blink-features", "AutomationControlled").
			Set("disable-features", "TranslateUI").
			Set("no-first-run")
	}
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}
	if h.proxy != nil {
		l = l.Proxy(h.proxy.Host)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().Context(ctx).ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, nil, fmt.Errorf("connect browser: %w", err)
	}

	if h.proxy != nil && h.proxy.User != nil {
		pass, _ := h.proxy.User.Password()
		go browser.MustHandleAuth(h.proxy.User.Username(), pass)()
	}

	if len(h.cookies) > 0 {
		params := make([]*proto.NetworkCookieParam, 0, len(h.cookies))
		for _, c := range h.cookies {
			params = append(params, &proto.NetworkCookieParam{
				Name:   c.Name,
				Value:  c.Value,
				Domain: c.Domain,
			})
		}
		if err := browser.SetCookies(params); err != nil {
			browser.Close()
			return nil, nil, fmt.Errorf("set cookies: %w", err)
		}
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		browser.Close()
		return nil, nil, fmt.Errorf("open page: %w", err)
	}

	if h.fingerprints != nil {
		fp := h.fingerprints.Next()
		err = page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent:      fp.UserAgent,
			AcceptLanguage: fp.Headers.Get("Accept-Language"),
		})
		if err != nil {
			browser.Close()
			return nil, nil, fmt.Errorf("set user agent: %w", err)
		}
	}

	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  1920,
		Height: 1080,
	})
	if err != nil {
		browser.Close()
		return nil, nil, fmt.Errorf("set viewport: %w", err)
	}

	if _, err := page.EvalOnNewDocument(concealAutomation); err != nil {
		browser.Close()
		return nil, nil, fmt.Errorf("install concealment script: %w", err)
	}

	if err := page.Navigate(pageURL); err != nil {
		browser.Close()
		return nil, nil, fmt.Errorf("navigate: %w", err)
	}
	if err := page.Timeout(60 * time.Second).WaitDOMStable(2*time.Second, 0.1); err != nil {
		platform.ReportProgress(ctx, "Page never settled, continuing...")
	}

	cleanup := func() {
		page.Close()
		browser.Close()
		l.Cleanup()
	}

	return page, cleanup, nil
}

func (h *HeadlessBrowserStrategy) evalState(page *rod.Page) (any, error) {
	result, err := page.Eval(`() => JSON.stringify(window.__remixContext || null)`)
	if err != nil {
		return nil, fmt.Errorf("eval state: %w", err)
	}
	raw := result.Value.Str()
	if raw == "" || raw == "null" {
		return nil, fmt.Errorf("no state blob in page")
	}

	var state any
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("decode state blob: %w", err)
	}
	return state, nil
}
