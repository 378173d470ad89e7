package scraper

import (
	"fmt"
	"net/url"
	"strings"

	"pricetrack/config"

	"github.com/shopspring/decimal"
)

type demoItem struct {
	name  string
	price string
}

var curatedCatalog = map[string][]demoItem{
	"laptop": {
		{"Apple MacBook Air 13-inch (M2, 8GB RAM, 256GB SSD)", "999.00"},
		{"Dell XPS 13 Plus (Intel Core i7, 16GB RAM, 512GB SSD)", "1299.99"},
		{"Lenovo IdeaPad Slim 3 15.6\" FHD Laptop", "449.99"},
		{"ASUS ROG Strix G16 Gaming Laptop (RTX 4060)", "1399.00"},
		{"HP Pavilion 14 Laptop (Ryzen 5, 8GB RAM)", "579.99"},
	},
	"smartphone": {
		{"Apple iPhone 15 (128 GB) - Black", "799.00"},
		{"Samsung Galaxy S24 (256 GB) - Onyx Black", "859.99"},
		{"Google Pixel 8 (128 GB) - Obsidian", "699.00"},
		{"OnePlus 12 (256 GB) - Flowy Emerald", "799.99"},
		{"Motorola moto g power 5G (2024)", "299.99"},
	},
	"headphones": {
		{"Sony WH-1000XM5 Wireless Noise Canceling Headphones", "399.99"},
		{"Apple AirPods Pro (2nd Generation)", "249.00"},
		{"Bose QuietComfort Ultra Headphones", "429.00"},
		{"JBL Tune 510BT Wireless On-Ear Headphones", "49.95"},
		{"Sennheiser Momentum 4 Wireless", "379.95"},
	},
	"electronics": {
		{"Amazon Echo Dot (5th Gen) Smart Speaker", "49.99"},
		{"Kindle Paperwhite (16 GB)", "149.99"},
		{"Samsung 55\" Class Crystal UHD 4K Smart TV", "449.99"},
		{"Anker PowerCore 10000 Portable Charger", "21.99"},
		{"Logitech MX Master 3S Wireless Mouse", "99.99"},
	},
	"books": {
		{"Atomic Habits by James Clear", "13.79"},
		{"The Pragmatic Programmer, 20th Anniversary Edition", "39.99"},
		{"Project Hail Mary by Andy Weir", "15.99"},
		{"Designing Data-Intensive Applications", "44.99"},
		{"The Go Programming Language", "32.49"},
	},
	"home & kitchen": {
		{"Instant Pot Duo 7-in-1 Electric Pressure Cooker", "89.99"},
		{"Ninja AF101 Air Fryer (4 Quart)", "99.99"},
		{"Keurig K-Mini Single Serve Coffee Maker", "79.99"},
		{"Lodge 10.25\" Cast Iron Skillet", "19.90"},
		{"OXO Good Grips 3-Piece Mixing Bowl Set", "34.99"},
	},
	"clothing": {
		{"Levi's Men's 505 Regular Fit Jeans", "39.99"},
		{"Hanes Men's ComfortSoft T-Shirt (6-Pack)", "24.00"},
		{"Columbia Women's Benton Springs Fleece Jacket", "45.00"},
		{"Champion Powerblend Fleece Hoodie", "35.00"},
		{"Amazon Essentials Women's Crewneck Sweater", "28.90"},
	},
	"beauty": {
		{"CeraVe Moisturizing Cream (19 oz)", "18.99"},
		{"Neutrogena Hydro Boost Water Gel", "19.97"},
		{"The Ordinary Niacinamide 10% + Zinc 1%", "6.00"},
		{"Maybelline Lash Sensational Mascara", "8.98"},
		{"La Roche-Posay Anthelios SPF 60 Sunscreen", "36.99"},
	},
}

var categoryAliases = map[string]string{
	"laptops":          "laptop",
	"notebook":         "laptop",
	"smartphones":      "smartphone",
	"phone":            "smartphone",
	"phones":           "smartphone",
	"mobile":           "smartphone",
	"mobiles":          "smartphone",
	"headphone":        "headphones",
	"earbuds":          "headphones",
	"book":             "books",
	"home":             "home & kitchen",
	"kitchen":          "home & kitchen",
	"home-kitchen":     "home & kitchen",
	"home and kitchen": "home & kitchen",
	"clothes":          "clothing",
	"apparel":          "clothing",
	"fashion":          "clothing",
	"makeup":           "beauty",
	"skincare":         "beauty",
}

// SyntheticCatalog produces demo listings when no live source yields results.
// It never fails and never returns an empty list.
type SyntheticCatalog struct {
	amazon *config.AmazonConfig
}

// NewSyntheticCatalog creates a catalog whose links point at the search page
func NewSyntheticCatalog(amazon *config.AmazonConfig) *SyntheticCatalog {
	return &SyntheticCatalog{amazon: amazon}
}

// Products returns at most limit demo products for category
func (s *SyntheticCatalog) Products(category string, limit int) []CategoryProduct {
	if limit <= 0 {
		limit = 1
	}

	key := normalizeCategory(category)
	if items, ok := curatedCatalog[key]; ok {
		out := make([]CategoryProduct, 0, min(limit, len(items)))
		for _, item := range items {
			if len(out) == limit {
				break
			}
			out = append(out, s.product(item.name, decimal.RequireFromString(item.price)))
		}
		return out
	}

	label := strings.TrimSpace(category)
	if label == "" {
		label = "Featured"
	}
	out := make([]CategoryProduct, 0, limit)
	for i := 1; i <= limit; i++ {
		price := decimal.RequireFromString("19.99").Add(decimal.NewFromInt(int64(10 * (i - 1))))
		out = append(out, s.product(fmt.Sprintf("%s Product %d", label, i), price))
	}
	return out
}

func (s *SyntheticCatalog) product(name string, price decimal.Decimal) CategoryProduct {
	return CategoryProduct{
		Name:     name,
		Price:    decimal.NewNullDecimal(price),
		ImageURL: "https://via.placeholder.com/300x300.png?text=" + url.QueryEscape(name),
		URL:      s.amazon.SearchURL(name),
	}
}

// normalizeCategory lower-cases, collapses whitespace and applies aliases
func normalizeCategory(category string) string {
	key := strings.ToLower(collapseSpace(category))
	if alias, ok := categoryAliases[key]; ok {
		return alias
	}
	return key
}
