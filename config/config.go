package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Scraping target
	ShopURL         string
	RootContainerID string
	Locale          string // Accept-Language value sent on every request
	Attempts        int    // per-strategy attempt budget

	// Stealth
	RespectRobots bool
	DelayProfile  string // "cautious", "normal", "aggressive"
	ProxyMode     string // "file", "direct"
	ProxyFile     string // proxy list file for file mode, ip:port:user:pass per line
	Cookies       string // "name=value; name2=value2" replayed before navigation

	// Rate limiting
	RatePerSecond float64
	RateBurst     int

	// Snapshot
	SnapshotPath string

	// HTTP server + scheduler
	HTTPPort string
	APIKey   string
	Schedule string // cron expression for the automatic re-scrape
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ShopURL:         "https://www.fortnite.com/item-shop?lang=es-ES",
		RootContainerID: "item-shop",
		Locale:          "es-ES,es;q=0.9,en;q=0.8",
		Attempts:        3,
		RespectRobots:   true,
		DelayProfile:    "normal",
		ProxyMode:       "direct",
		RatePerSecond:   0.5,
		RateBurst:       2,
		SnapshotPath:    "shop_snapshot.json",
		HTTPPort:        "8080",
		Schedule:        "0 0 * * *",
	}
}

// LoadFromEnv loads .env file (if present) then overrides config from environment variables.
func (c *Config) LoadFromEnv() {
	// Auto-load .env file; silently ignored if missing
	_ = godotenv.Load()

	if v := os.Getenv("SHOP_URL"); v != "" {
		c.ShopURL = v
	}
	if v := os.Getenv("SHOP_ROOT_CONTAINER"); v != "" {
		c.RootContainerID = v
	}
	if v := os.Getenv("SHOP_LOCALE"); v != "" {
		c.Locale = v
	}
	if v := os.Getenv("SHOP_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Attempts = n
		}
	}
	if v := os.Getenv("SHOP_DELAY_PROFILE"); v != "" {
		c.DelayProfile = v
	}
	if v := os.Getenv("SHOP_PROXY_MODE"); v != "" {
		c.ProxyMode = v
	}
	if v := os.Getenv("SHOP_PROXIES"); v != "" {
		c.ProxyFile = v
	}
	if v := os.Getenv("SHOP_COOKIES"); v != "" {
		c.Cookies = v
	}
	if v := os.Getenv("SHOP_RATE_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RatePerSecond = f
		}
	}
	if v := os.Getenv("SHOP_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateBurst = n
		}
	}
	if v := os.Getenv("SHOP_SNAPSHOT"); v != "" {
		c.SnapshotPath = v
	}
	if v := os.Getenv("SHOP_RESPECT_ROBOTS"); v == "false" {
		c.RespectRobots = false
	}
	if v := os.Getenv("SHOP_SCHEDULE"); v != "" {
		c.Schedule = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.HTTPPort = v
	}
	if v := os.Getenv("SHOP_API_KEY"); v != "" {
		c.APIKey = v
	}
}
