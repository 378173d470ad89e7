package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifySite(t *testing.T) {
	tests := []struct {
		url  string
		want Site
	}{
		{"https://www.amazon.com/dp/B08N5WRWNW", SiteAmazon},
		{"https://www.AMAZON.in/gp/product/B01", SiteAmazon},
		{"https://smile.amazon.co.uk/dp/B01", SiteAmazon},
		{"https://www.flipkart.com/apple-iphone/p/itm123", SiteFlipkart},
		{"https://www.bestbuy.com/site/sony/6505727.p", SiteBestBuy},
		{"amazon.com/dp/B01", SiteAmazon},
		{"https://shop.example.com/item/1", SiteGeneric},
		{"https://example.com/amazon-deals", SiteGeneric},
		{"", SiteGeneric},
		{"http://[::1", SiteGeneric},
		{"not a url at all", SiteGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifySite(tt.url))
		})
	}
}

func TestHostname(t *testing.T) {
	assert.Equal(t, "www.amazon.com", Hostname("https://www.Amazon.com:443/dp/1"))
	assert.Equal(t, "flipkart.com", Hostname("flipkart.com/p/1"))
	assert.Equal(t, "", Hostname("   "))
}
