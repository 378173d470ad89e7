package scraper

import (
	"log"
	"strings"

	"pricetrack/config"
	"pricetrack/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

// CategoryProduct is one entry of a category listing
type CategoryProduct struct {
	Name     string              `json:"name"`
	Price    decimal.NullDecimal `json:"price"`
	ImageURL string              `json:"image"`
	URL      string              `json:"url"`
}

var (
	searchNameRules = []FieldRule{
		{Selector: "h2 a span"},
		{Selector: "h2 span"},
	}
	searchLinkRules = []FieldRule{
		{Selector: "h2 a", Attr: "href"},
		{Selector: "a.a-link-normal[href*='/dp/']", Attr: "href"},
	}
	searchPriceRules = []PriceRule{
		{Selector: "span.a-price-whole", FractionSelector: "span.a-price-fraction"},
		{Selector: ".a-price .a-offscreen"},
	}
	searchImageRules = []FieldRule{
		{Selector: "img.s-image", Attr: "src"},
	}
)

// SearchParser reads product cards out of an Amazon search results page
type SearchParser struct {
	amazon *config.AmazonConfig
}

// NewSearchParser creates a parser for the configured search layout
func NewSearchParser(amazon *config.AmazonConfig) *SearchParser {
	return &SearchParser{amazon: amazon}
}

// Parse returns at most limit products. Result slots carrying neither a name
// nor a link are skipped.
func (p *SearchParser) Parse(html string, limit int) []CategoryProduct {
	if limit <= 0 {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Printf("Failed to parse search results: %v", err)
		return nil
	}

	var products []CategoryProduct
	doc.Find(p.amazon.ResultSelector).EachWithBreak(func(_ int, item *goquery.Selection) bool {
		name := firstField(item, searchNameRules)
		link := firstField(item, searchLinkRules)
		if name == "" && link == "" {
			return true
		}
		if name == "" {
			name = models.UnknownProductName
		}

		products = append(products, CategoryProduct{
			Name:     name,
			Price:    firstPrice(item, searchPriceRules),
			ImageURL: firstField(item, searchImageRules),
			URL:      p.amazon.AbsoluteURL(link),
		})
		return len(products) < limit
	})
	return products
}
