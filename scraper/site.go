package scraper

import (
	"net/url"
	"strings"
)

// Site identifies a recognised retailer
type Site string

const (
	SiteAmazon   Site = "amazon"
	SiteFlipkart Site = "flipkart"
	SiteBestBuy  Site = "bestbuy"
	SiteGeneric  Site = "generic"
)

// siteTokens is checked in order, first match wins
var siteTokens = []struct {
	token string
	site  Site
}{
	{"amazon", SiteAmazon},
	{"flipkart", SiteFlipkart},
	{"bestbuy", SiteBestBuy},
}

// ClassifySite maps a product URL to the retailer whose rules should parse it.
// It never fails: anything unrecognised or unparseable is SiteGeneric.
func ClassifySite(rawURL string) Site {
	host := Hostname(rawURL)
	if host == "" {
		return SiteGeneric
	}
	for _, st := range siteTokens {
		if strings.Contains(host, st.token) {
			return st.site
		}
	}
	return SiteGeneric
}

// Hostname returns the lower-cased host of rawURL. Scheme-less input such as
// "amazon.com/dp/X" is parsed as if it started with "//".
func Hostname(rawURL string) string {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") && !strings.HasPrefix(raw, "//") {
		raw = "//" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
