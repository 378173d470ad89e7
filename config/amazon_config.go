package config

import (
	"net/url"
	"strings"
)

// AmazonConfig holds the Amazon category search settings
type AmazonConfig struct {
	BaseURL         string
	SearchPath      string
	ResultSelector  string
	ResultContainer string
}

// LoadAmazonConfig loads Amazon search configuration from environment variables
func LoadAmazonConfig() *AmazonConfig {
	return &AmazonConfig{
		BaseURL:         strings.TrimSuffix(getEnv("AMAZON_BASE_URL", "https://www.amazon.com"), "/"),
		SearchPath:      getEnv("AMAZON_SEARCH_PATH", "/s"),
		ResultSelector:  getEnv("AMAZON_RESULT_SELECTOR", "div.s-main-slot div.s-result-item"),
		ResultContainer: getEnv("AMAZON_RESULT_CONTAINER", "div.s-main-slot"),
	}
}

// SearchURL builds the search URL for a category keyword
func (c *AmazonConfig) SearchURL(category string) string {
	q := url.Values{}
	q.Set("k", strings.TrimSpace(category))
	return c.BaseURL + c.SearchPath + "?" + q.Encode()
}

// AbsoluteURL prefixes a relative result link with the base URL
func (c *AmazonConfig) AbsoluteURL(href string) string {
	if href == "" || strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return c.BaseURL + href
}
