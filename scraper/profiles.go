package scraper

// FieldRule selects text or an attribute from the first element matching Selector
type FieldRule struct {
	Selector string
	Attr     string // empty means element text
}

// PriceRule selects a price. When FractionSelector is set the price is
// composed as "<whole>.<fraction>" from two elements.
type PriceRule struct {
	Selector         string
	FractionSelector string
}

// SiteProfile is the ordered set of extraction rules for one retailer
type SiteProfile struct {
	Name  []FieldRule
	Price []PriceRule
	Image []FieldRule
}

// DefaultProfiles returns the selector sets for every recognised retailer
func DefaultProfiles() map[Site]SiteProfile {
	return map[Site]SiteProfile{
		SiteAmazon: {
			Name: []FieldRule{
				{Selector: "#productTitle"},
				{Selector: "#title"},
			},
			Price: []PriceRule{
				{Selector: ".a-price .a-offscreen"},
				{Selector: "span.a-price-whole", FractionSelector: "span.a-price-fraction"},
				{Selector: "#priceblock_ourprice"},
				{Selector: "#priceblock_dealprice"},
				{Selector: ".a-price-whole"},
			},
			Image: []FieldRule{
				{Selector: "#landingImage", Attr: "src"},
				{Selector: "#imgBlkFront", Attr: "src"},
			},
		},
		SiteFlipkart: {
			Name: []FieldRule{
				{Selector: ".B_NuCI"},
				{Selector: "span.VU-ZEz"},
			},
			Price: []PriceRule{
				{Selector: "._30jeq3._16Jk6d"},
				{Selector: "div.Nx9bqj.CxhGGd"},
			},
			Image: []FieldRule{
				{Selector: "._396cs4", Attr: "src"},
				{Selector: "img.DByuf4", Attr: "src"},
			},
		},
		SiteBestBuy: {
			Name: []FieldRule{
				{Selector: ".heading-5"},
				{Selector: ".sku-title h1"},
			},
			Price: []PriceRule{
				{Selector: ".priceView-customer-price span"},
				{Selector: ".priceView-binding-price"},
			},
			Image: []FieldRule{
				{Selector: ".primary-image", Attr: "src"},
				{Selector: ".picture-wrapper img", Attr: "src"},
			},
		},
	}
}
