package services

import (
	"strings"

	"pricetrack/config"
	"pricetrack/scraper"

	"github.com/shopspring/decimal"
)

// CurrencyNormalizer converts scraped prices into the display currency using
// an ordered domain table. The first matching domain wins.
type CurrencyNormalizer struct {
	rates []config.CurrencyRate
}

// NewCurrencyNormalizer creates a normalizer over rates, keeping their order
func NewCurrencyNormalizer(rates []config.CurrencyRate) *CurrencyNormalizer {
	return &CurrencyNormalizer{rates: append([]config.CurrencyRate(nil), rates...)}
}

// Normalize multiplies price by the rate of the first domain contained in the
// host of productURL. Unmatched URLs are returned unchanged.
func (n *CurrencyNormalizer) Normalize(price decimal.Decimal, productURL string) decimal.Decimal {
	host := scraper.Hostname(productURL)
	if host == "" {
		return price
	}
	for _, rate := range n.rates {
		if strings.Contains(host, strings.ToLower(rate.Domain)) {
			return price.Mul(rate.Rate)
		}
	}
	return price
}
