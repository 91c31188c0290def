package cmd

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/lockerstudio/itemshop-scrap/config"
	"github.com/lockerstudio/itemshop-scrap/internal/httputil"
	"github.com/lockerstudio/itemshop-scrap/internal/itemshop"
	"github.com/lockerstudio/itemshop-scrap/internal/pipeline"
	"github.com/lockerstudio/itemshop-scrap/internal/platform"
	"github.com/lockerstudio/itemshop-scrap/internal/stealth"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "itemshop",
	Short: "Item Shop Scrap - storefront scraping CLI & API/MCP server",
	Long:  "A Go-based CLI tool and server that scrapes the item-shop page, reconciles products against the embedded state blob, and serves the categorized catalog.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("shop-url", "", "Item-shop page URL (default from config)")
	rootCmd.PersistentFlags().String("snapshot", "", "Snapshot file path")
	rootCmd.PersistentFlags().String("delay-profile", "", "Delay profile: cautious, normal, aggressive")
	rootCmd.PersistentFlags().Bool("respect-robots", true, "Respect robots.txt rules")
	rootCmd.PersistentFlags().String("proxy-mode", "", "Proxy mode: file, direct")
	rootCmd.PersistentFlags().String("proxy-file", "", "Path to proxy list file (ip:port:user:pass per line)")
	rootCmd.PersistentFlags().String("locale", "", "Accept-Language value for all requests")
}

func initConfig() {
	cfg = config.DefaultConfig()
	cfg.LoadFromEnv()

	// Override from flags
	if v, _ := rootCmd.PersistentFlags().GetString("shop-url"); v != "" {
		cfg.ShopURL = v
	}
	if v, _ := rootCmd.PersistentFlags().GetString("snapshot"); v != "" {
		cfg.SnapshotPath = v
	}
	if v, _ := rootCmd.PersistentFlags().GetString("delay-profile"); v != "" {
		cfg.DelayProfile = v
	}
	if v, _ := rootCmd.PersistentFlags().GetBool("respect-robots"); !v {
		cfg.RespectRobots = false
	}
	if v, _ := rootCmd.PersistentFlags().GetString("proxy-mode"); v != "" {
		cfg.ProxyMode = v
	}
	if v, _ := rootCmd.PersistentFlags().GetString("proxy-file"); v != "" {
		cfg.ProxyFile = v
	}
	if v, _ := rootCmd.PersistentFlags().GetString("locale"); v != "" {
		cfg.Locale = v
	}
}

// buildScraper wires the stealth stack and strategy chain from config.
func buildScraper() (*itemshop.Scraper, error) {
	fpPool := stealth.NewFingerprintPool(cfg.Locale)
	delay := stealth.NewHumanDelay(stealth.DelayProfile(cfg.DelayProfile))
	limiter := rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst)

	proxyRotator, err := buildProxyRotator()
	if err != nil {
		return nil, err
	}

	robotsClient := &http.Client{}
	robots := stealth.NewRobotsChecker(robotsClient, cfg.RespectRobots)

	transport := &stealth.StealthTransport{
		Base: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
		},
		Robots:      robots,
		Fingerprint: fpPool,
		Proxy:       proxyRotator,
		Delay:       delay,
	}
	client := httputil.NewHTTPClient(transport)

	// The headless browser routes its own traffic, so it takes the
	// raw proxy address rather than the transport.
	var headlessProxy *url.URL
	if proxyRotator != nil {
		headlessProxy = proxyRotator.Next().URL()
	}

	base, rootID, err := shopPageTarget(cfg.ShopURL)
	if err != nil {
		return nil, err
	}
	cookies := parseCookies(cfg.Cookies, base)

	return itemshop.NewScraper(itemshop.Config{
		PageURL: cfg.ShopURL,
		Strategies: []platform.Strategy{
			itemshop.NewStaticPageStrategy(client),
			itemshop.NewHeadlessBrowserStrategy(fpPool, headlessProxy, cookies),
		},
		Attempts:    cfg.Attempts,
		Delay:       delay,
		RateLimiter: limiter,
		BuildOpts: pipeline.Options{
			BaseURL:         base,
			RootContainerID: rootID,
		},
	}), nil
}

func buildProxyRotator() (*stealth.ProxyRotator, error) {
	if cfg.ProxyMode != "file" || cfg.ProxyFile == "" {
		return nil, nil
	}
	providers, err := stealth.LoadProxyFile(cfg.ProxyFile)
	if err != nil {
		return nil, fmt.Errorf("load proxies: %w", err)
	}
	return stealth.NewProxyRotator(providers), nil
}

// parseCookies turns a "name=value; name2=value2" string into cookies
// scoped to the shop's registrable domain.
func parseCookies(raw, base string) []itemshop.Cookie {
	if raw == "" {
		return nil
	}
	domain := ""
	if u, err := url.Parse(base); err == nil {
		domain = "." + strings.TrimPrefix(u.Hostname(), "www.")
	}
	var cookies []itemshop.Cookie
	for _, pair := range strings.Split(raw, ";") {
		name, value, found := strings.Cut(strings.TrimSpace(pair), "=")
		if !found || name == "" {
			continue
		}
		cookies = append(cookies, itemshop.Cookie{Name: name, Value: value, Domain: domain})
	}
	return cookies
}

// shopPageTarget derives the link base URL and the root container id
// from the shop page URL.
func shopPageTarget(shopURL string) (base, rootID string, err error) {
	u, err := url.Parse(shopURL)
	if err != nil {
		return "", "", fmt.Errorf("parse shop URL: %w", err)
	}
	rootID = cfg.RootContainerID
	return u.Scheme + "://" + u.Host, rootID, nil
}
