package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/90.0.4430.212 Safari/537.36"

// CurrencyRate maps a domain fragment to a conversion rate into the display currency
type CurrencyRate struct {
	Domain string
	Rate   decimal.Decimal
}

// TrackerConfig holds the price resolution and scheduling settings.
// It is loaded once at start-up and never mutated afterwards.
type TrackerConfig struct {
	CurrencyRates     []CurrencyRate
	FreshnessWindow   time.Duration
	CategoryResultCap int

	UserAgent      string
	AcceptLanguage string
	FetchTimeout   time.Duration

	BrowserEnabled    bool
	BrowserHeadless   bool
	BrowserBin        string
	RenderWaitTimeout time.Duration
	RenderSettleDelay time.Duration

	CategoryCacheSize int
	CategoryCacheTTL  time.Duration

	SweepSchedule string
	LockTTL       time.Duration
}

// DefaultCurrencyRates returns the built-in ordered conversion table
func DefaultCurrencyRates() []CurrencyRate {
	return []CurrencyRate{
		{Domain: "amazon.com", Rate: decimal.NewFromInt(83)},
		{Domain: "amazon.in", Rate: decimal.NewFromInt(1)},
		{Domain: "flipkart.com", Rate: decimal.NewFromInt(1)},
		{Domain: "bestbuy.com", Rate: decimal.NewFromInt(83)},
	}
}

// DefaultTrackerConfig returns the tracker configuration with defaults only
func DefaultTrackerConfig() *TrackerConfig {
	return &TrackerConfig{
		CurrencyRates:     DefaultCurrencyRates(),
		FreshnessWindow:   6 * time.Hour,
		CategoryResultCap: 10,
		UserAgent:         defaultUserAgent,
		AcceptLanguage:    "en-US,en;q=0.9",
		FetchTimeout:      10 * time.Second,
		BrowserEnabled:    true,
		BrowserHeadless:   true,
		RenderWaitTimeout: 15 * time.Second,
		RenderSettleDelay: 2 * time.Second,
		CategoryCacheSize: 128,
		CategoryCacheTTL:  15 * time.Minute,
		SweepSchedule:     "@every 30m",
		LockTTL:           2 * time.Minute,
	}
}

// LoadTrackerConfig loads tracker configuration from environment variables
func LoadTrackerConfig() *TrackerConfig {
	cfg := DefaultTrackerConfig()

	if raw := os.Getenv("CURRENCY_RATES"); raw != "" {
		rates, err := ParseCurrencyRates(raw)
		if err != nil {
			log.Printf("Ignoring CURRENCY_RATES: %v", err)
		} else {
			cfg.CurrencyRates = rates
		}
	}

	cfg.FreshnessWindow = getEnvDuration("FRESHNESS_WINDOW", cfg.FreshnessWindow)
	cfg.CategoryResultCap = getEnvInt("CATEGORY_RESULT_CAP", cfg.CategoryResultCap)
	cfg.UserAgent = getEnv("SCRAPER_USER_AGENT", cfg.UserAgent)
	cfg.AcceptLanguage = getEnv("SCRAPER_ACCEPT_LANGUAGE", cfg.AcceptLanguage)
	cfg.FetchTimeout = getEnvDuration("FETCH_TIMEOUT", cfg.FetchTimeout)
	cfg.BrowserEnabled = getEnvBool("BROWSER_ENABLED", cfg.BrowserEnabled)
	cfg.BrowserHeadless = getEnvBool("BROWSER_HEADLESS", cfg.BrowserHeadless)
	cfg.BrowserBin = getEnv("BROWSER_BIN", detectBrowserBin())
	cfg.RenderWaitTimeout = getEnvDuration("RENDER_WAIT_TIMEOUT", cfg.RenderWaitTimeout)
	cfg.RenderSettleDelay = getEnvDuration("RENDER_SETTLE_DELAY", cfg.RenderSettleDelay)
	cfg.CategoryCacheSize = getEnvInt("CATEGORY_CACHE_SIZE", cfg.CategoryCacheSize)
	cfg.CategoryCacheTTL = getEnvDuration("CATEGORY_CACHE_TTL", cfg.CategoryCacheTTL)
	cfg.SweepSchedule = getEnv("SWEEP_SCHEDULE", cfg.SweepSchedule)
	cfg.LockTTL = getEnvDuration("LOCK_TTL", cfg.LockTTL)

	if cfg.CategoryResultCap <= 0 {
		cfg.CategoryResultCap = 10
	}
	return cfg
}

// ParseCurrencyRates parses "domain=rate,domain=rate" keeping the given order
func ParseCurrencyRates(raw string) ([]CurrencyRate, error) {
	var rates []CurrencyRate
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		domain, value, ok := strings.Cut(pair, "=")
		domain = strings.ToLower(strings.TrimSpace(domain))
		if !ok || domain == "" {
			return nil, fmt.Errorf("invalid currency rate entry %q", pair)
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("invalid rate for %s: %w", domain, err)
		}
		if !rate.IsPositive() {
			return nil, fmt.Errorf("rate for %s must be positive", domain)
		}
		rates = append(rates, CurrencyRate{Domain: domain, Rate: rate})
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("no currency rates found")
	}
	return rates, nil
}

// detectBrowserBin prefers the system Chromium inside containers
func detectBrowserBin() string {
	for _, path := range []string{"/usr/bin/chromium-browser", "/usr/bin/chromium"} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
