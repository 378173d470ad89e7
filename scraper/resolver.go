package scraper

import (
	"context"
	"fmt"
	"log"

	"pricetrack/config"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Category listing tiers
const (
	TierStatic    = "static"
	TierRendered  = "rendered"
	TierSynthetic = "synthetic"
)

// Resolver turns product URLs and category keywords into product data.
//
// Single products are resolved without any fallback: if the page cannot be
// fetched the error is returned as-is. Category listings walk the tiers
// static, rendered, synthetic and never fail.
type Resolver struct {
	fetcher   PageFetcher
	renderer  Renderer
	extractor *Extractor
	generic   *GenericExtractor
	search    *SearchParser
	catalog   *SyntheticCatalog
	bots      *BotDetector
	amazon    *config.AmazonConfig
	cache     *expirable.LRU[string, []CategoryProduct]
	resultCap int
	metrics   *Metrics
}

// NewResolver wires a resolver. renderer may be nil to skip the rendered tier.
func NewResolver(cfg *config.TrackerConfig, amazon *config.AmazonConfig, fetcher PageFetcher, renderer Renderer, metrics *Metrics) *Resolver {
	r := &Resolver{
		fetcher:   fetcher,
		renderer:  renderer,
		extractor: NewExtractor(DefaultProfiles()),
		generic:   NewGenericExtractor(),
		search:    NewSearchParser(amazon),
		catalog:   NewSyntheticCatalog(amazon),
		bots:      NewBotDetector(),
		amazon:    amazon,
		resultCap: cfg.CategoryResultCap,
		metrics:   metrics,
	}
	if r.resultCap <= 0 {
		r.resultCap = 10
	}
	if cfg.CategoryCacheSize > 0 && cfg.CategoryCacheTTL > 0 {
		r.cache = expirable.NewLRU[string, []CategoryProduct](cfg.CategoryCacheSize, nil, cfg.CategoryCacheTTL)
	}
	return r
}

// Resolve fetches rawURL and extracts its name, price and image. A missing
// price is not an error; a fetch failure is.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (ProductInfo, error) {
	site := ClassifySite(rawURL)

	html, err := r.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return ProductInfo{}, fmt.Errorf("failed to fetch product page: %w", err)
	}

	var info ProductInfo
	if site == SiteGeneric {
		info = r.generic.Extract(html, rawURL)
	} else {
		info = r.extractor.Extract(html, site, rawURL)
	}

	if !info.HasPrice() {
		r.metrics.IncMiss(site)
		if isWall, reason := r.bots.DetectBotWall(html); isWall {
			log.Printf("🤖 Bot wall served for %s: %s", rawURL, reason)
		} else if site != SiteGeneric {
			log.Printf("No price found on %s page %s", site, rawURL)
		}
	}
	return info, nil
}

// ResolveCategory returns up to the configured cap of products for category.
// Each tier runs only when the previous one produced nothing; the result is
// never empty.
func (r *Resolver) ResolveCategory(ctx context.Context, category string) []CategoryProduct {
	key := normalizeCategory(category)
	if r.cache != nil {
		if cached, ok := r.cache.Get(key); ok {
			return append([]CategoryProduct(nil), cached...)
		}
	}

	searchURL := r.amazon.SearchURL(category)

	products := r.staticListing(ctx, searchURL)
	if len(products) > 0 {
		return r.served(key, TierStatic, products)
	}
	log.Printf("Static search for %q found no products, trying rendered fetch", category)

	if r.renderer != nil {
		products = r.renderedListing(ctx, searchURL)
		if len(products) > 0 {
			return r.served(key, TierRendered, products)
		}
		log.Printf("Rendered search for %q found no products, using demo catalog", category)
	} else {
		log.Printf("Browser rendering disabled, using demo catalog for %q", category)
	}

	r.metrics.IncTier(TierSynthetic)
	return r.catalog.Products(category, r.resultCap)
}

func (r *Resolver) served(key, tier string, products []CategoryProduct) []CategoryProduct {
	r.metrics.IncTier(tier)
	log.Printf("Category %q served %d products from %s tier", key, len(products), tier)
	if r.cache != nil {
		r.cache.Add(key, append([]CategoryProduct(nil), products...))
	}
	return products
}

func (r *Resolver) staticListing(ctx context.Context, searchURL string) []CategoryProduct {
	html, err := r.fetcher.Fetch(ctx, searchURL)
	if err != nil {
		log.Printf("Static search fetch failed: %v", err)
		return nil
	}
	return r.parseListing(html, searchURL)
}

func (r *Resolver) renderedListing(ctx context.Context, searchURL string) (products []CategoryProduct) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("Recovered from browser failure on %s: %v", searchURL, rec)
			products = nil
		}
	}()

	html, err := r.renderer.Render(ctx, searchURL, r.amazon.ResultContainer)
	if err != nil {
		log.Printf("Rendered search fetch failed: %v", err)
		return nil
	}
	return r.parseListing(html, searchURL)
}

// parseListing treats a robot-check page as an empty listing
func (r *Resolver) parseListing(html, searchURL string) []CategoryProduct {
	if isWall, reason := r.bots.DetectBotWall(html); isWall {
		log.Printf("🤖 Bot wall served for %s: %s", searchURL, reason)
		return nil
	}
	return r.search.Parse(html, r.resultCap)
}
