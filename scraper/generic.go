package scraper

import (
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// boilerplateSelector matches page chrome that is never product content
const boilerplateSelector = "script, style, noscript, template, iframe, svg, nav, header, footer, aside, form"

// GenericExtractor recovers a best-guess title and image from pages of
// unrecognised retailers. It never reports a price.
type GenericExtractor struct{}

// NewGenericExtractor creates a generic content extractor
func NewGenericExtractor() *GenericExtractor {
	return &GenericExtractor{}
}

// Extract returns the placeholder triple when no main content survives
// boilerplate stripping.
func (g *GenericExtractor) Extract(html, pageURL string) (info ProductInfo) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from generic extraction failure for %s: %v", pageURL, r)
			info = placeholderInfo()
		}
	}()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Printf("Failed to parse page %s: %v", pageURL, err)
		return placeholderInfo()
	}

	title := firstNonEmpty(
		metaContent(doc, `meta[property="og:title"]`),
		metaContent(doc, `meta[name="twitter:title"]`),
		collapseSpace(doc.Find("title").First().Text()),
	)
	image := firstNonEmpty(
		metaContent(doc, `meta[property="og:image"]`),
		metaContent(doc, `meta[name="twitter:image"]`),
		attrOf(doc.Find(`link[rel="image_src"]`).First(), "href"),
	)

	body := doc.Find("body")
	body.Find(boilerplateSelector).Remove()
	if collapseSpace(body.Text()) == "" {
		return placeholderInfo()
	}

	if title == "" {
		title = collapseSpace(body.Find("h1").First().Text())
	}
	if image == "" {
		image = attrOf(body.Find("img[src]").First(), "src")
	}

	info = placeholderInfo()
	if title != "" {
		info.Name = title
	}
	if image != "" {
		info.ImageURL = resolveReference(pageURL, image)
	}
	return info
}

func metaContent(doc *goquery.Document, selector string) string {
	return attrOf(doc.Find(selector).First(), "content")
}

func attrOf(s *goquery.Selection, attr string) string {
	value, _ := s.Attr(attr)
	return strings.TrimSpace(value)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
