package scraper

import (
	"log"
	"net/url"
	"strings"

	"pricetrack/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

// ProductInfo is the (name, price, image) triple resolved for a product page.
// Name is models.UnknownProductName when no real name was found and Price is
// invalid when no usable price was found.
type ProductInfo struct {
	Name     string              `json:"name"`
	Price    decimal.NullDecimal `json:"price"`
	ImageURL string              `json:"image_url,omitempty"`
}

// HasPrice reports whether a usable price was extracted
func (i ProductInfo) HasPrice() bool {
	return i.Price.Valid
}

// HasName reports whether a real product name was extracted
func (i ProductInfo) HasName() bool {
	return i.Name != "" && i.Name != models.UnknownProductName
}

func placeholderInfo() ProductInfo {
	return ProductInfo{Name: models.UnknownProductName}
}

// Extractor applies site profiles to raw HTML
type Extractor struct {
	profiles map[Site]SiteProfile
}

// NewExtractor creates an extractor for the given profiles
func NewExtractor(profiles map[Site]SiteProfile) *Extractor {
	if profiles == nil {
		profiles = DefaultProfiles()
	}
	return &Extractor{profiles: profiles}
}

// Extract pulls name, price and image out of html using the rules for site.
// It never fails; anything missing degrades to the placeholder name or an
// absent price/image.
func (e *Extractor) Extract(html string, site Site, pageURL string) (info ProductInfo) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from %s extraction failure: %v", site, r)
			info = placeholderInfo()
		}
	}()

	profile, ok := e.profiles[site]
	if !ok {
		return placeholderInfo()
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Printf("Failed to parse %s page: %v", site, err)
		return placeholderInfo()
	}

	info = placeholderInfo()
	if name := firstField(doc.Selection, profile.Name); name != "" {
		info.Name = name
	}
	info.Price = firstPrice(doc.Selection, profile.Price)
	if img := firstField(doc.Selection, profile.Image); img != "" {
		info.ImageURL = resolveReference(pageURL, img)
	}
	return info
}

// firstField returns the first non-empty value produced by rules
func firstField(s *goquery.Selection, rules []FieldRule) string {
	for _, rule := range rules {
		el := s.Find(rule.Selector).First()
		if el.Length() == 0 {
			continue
		}
		var value string
		if rule.Attr != "" {
			value, _ = el.Attr(rule.Attr)
		} else {
			value = el.Text()
		}
		if value = collapseSpace(value); value != "" {
			return value
		}
	}
	return ""
}

// firstPrice returns the first parseable positive price produced by rules
func firstPrice(s *goquery.Selection, rules []PriceRule) decimal.NullDecimal {
	for _, rule := range rules {
		whole := strings.TrimSpace(s.Find(rule.Selector).First().Text())
		if whole == "" {
			continue
		}
		text := whole
		if rule.FractionSelector != "" {
			fraction := strings.TrimSpace(s.Find(rule.FractionSelector).First().Text())
			text = strings.TrimRight(whole, ".")
			if fraction != "" {
				text += "." + fraction
			}
		}
		if price := CleanPrice(text); price.Valid && price.Decimal.IsPositive() {
			return price
		}
	}
	return decimal.NullDecimal{}
}

// CleanPrice keeps only digits and dots from s and parses the result.
// Anything unparseable yields an invalid NullDecimal, never an error.
func CleanPrice(s string) decimal.NullDecimal {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := strings.TrimRight(b.String(), ".")
	if cleaned == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// resolveReference makes ref absolute against base when base is an absolute URL
func resolveReference(base, ref string) string {
	if base == "" || ref == "" {
		return ref
	}
	baseURL, err := url.Parse(base)
	if err != nil || !baseURL.IsAbs() {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}
