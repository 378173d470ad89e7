package scraper

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"pricetrack/config"

	"github.com/gocolly/colly/v2"
)

// PageFetcher retrieves the raw HTML of a page
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// StaticFetcher performs plain HTTP GETs with a browser-like identity.
type StaticFetcher struct {
	base           *colly.Collector
	acceptLanguage string
	metrics        *Metrics
}

// NewStaticFetcher builds a fetcher from the tracker configuration
func NewStaticFetcher(cfg *config.TrackerConfig, metrics *Metrics) *StaticFetcher {
	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
	)
	collector.SetRequestTimeout(cfg.FetchTimeout)

	return &StaticFetcher{
		base:           collector,
		acceptLanguage: cfg.AcceptLanguage,
		metrics:        metrics,
	}
}

// WithTransport replaces the HTTP transport used for every fetch
func (f *StaticFetcher) WithTransport(transport http.RoundTripper) {
	f.base.WithTransport(transport)
}

// Fetch returns the body of rawURL. Transport failures and non-2xx
// responses are reported as *FetchError.
func (f *StaticFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	target := normalizeURL(rawURL)
	if err := ctx.Err(); err != nil {
		return "", newFetchError(target, 0, err)
	}

	f.metrics.IncFetch("static")
	start := time.Now()

	var (
		body   string
		status int
	)
	c := f.base.Clone()
	c.OnRequest(func(r *colly.Request) {
		if f.acceptLanguage != "" {
			r.Headers.Set("Accept-Language", f.acceptLanguage)
		}
	})
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = string(r.Body)
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
	})

	err := c.Visit(target)
	f.metrics.ObserveFetch(time.Since(start))

	if err != nil {
		fe := newFetchError(target, status, err)
		f.metrics.IncFetchError(fe.Kind)
		log.Printf("Static fetch failed for %s: %v", target, fe)
		return "", fe
	}
	if status < 200 || status >= 300 {
		fe := newFetchError(target, status, nil)
		f.metrics.IncFetchError(fe.Kind)
		log.Printf("Static fetch for %s returned status %d", target, status)
		return "", fe
	}
	return body, nil
}

// normalizeURL adds an https scheme to scheme-less input
func normalizeURL(rawURL string) string {
	raw := strings.TrimSpace(rawURL)
	if strings.HasPrefix(raw, "//") {
		return "https:" + raw
	}
	if !strings.Contains(raw, "://") {
		return "https://" + raw
	}
	return raw
}
