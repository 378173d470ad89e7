package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for price resolution and sweeps.
type Metrics struct {
	Registry        *prometheus.Registry
	FetchesTotal    *prometheus.CounterVec
	FetchDuration   prometheus.Histogram
	FetchErrors     *prometheus.CounterVec
	ExtractionsMiss *prometheus.CounterVec
	CategoryTiers   *prometheus.CounterVec
	SweepOutcomes   *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	fetches := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricetrack_fetches_total",
			Help: "Total page fetches by strategy.",
		},
		[]string{"strategy"},
	)
	fetchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pricetrack_fetch_duration_seconds",
			Help:    "Latency of static page fetches.",
			Buckets: prometheus.DefBuckets,
		},
	)
	fetchErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricetrack_fetch_errors_total",
			Help: "Total fetch failures by kind.",
		},
		[]string{"kind"},
	)
	misses := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricetrack_extraction_misses_total",
			Help: "Pages fetched without a usable price, by site.",
		},
		[]string{"site"},
	)
	tiers := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricetrack_category_tier_total",
			Help: "Category listings served, by the tier that produced them.",
		},
		[]string{"tier"},
	)
	sweeps := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricetrack_sweep_products_total",
			Help: "Products visited by staleness sweeps, by outcome.",
		},
		[]string{"outcome"},
	)

	registry.MustRegister(fetches, fetchDuration, fetchErrors, misses, tiers, sweeps)

	return &Metrics{
		Registry:        registry,
		FetchesTotal:    fetches,
		FetchDuration:   fetchDuration,
		FetchErrors:     fetchErrors,
		ExtractionsMiss: misses,
		CategoryTiers:   tiers,
		SweepOutcomes:   sweeps,
	}
}

// IncFetch increments the fetch counter for a strategy.
func (m *Metrics) IncFetch(strategy string) {
	if m == nil {
		return
	}
	m.FetchesTotal.WithLabelValues(strategy).Inc()
}

// ObserveFetch records a static fetch duration.
func (m *Metrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

// IncFetchError increments the fetch error counter for a kind label.
func (m *Metrics) IncFetchError(kind string) {
	if m == nil {
		return
	}
	m.FetchErrors.WithLabelValues(kind).Inc()
}

// IncMiss increments the extraction miss counter for a site.
func (m *Metrics) IncMiss(site Site) {
	if m == nil {
		return
	}
	m.ExtractionsMiss.WithLabelValues(string(site)).Inc()
}

// IncTier increments the category tier counter.
func (m *Metrics) IncTier(tier string) {
	if m == nil {
		return
	}
	m.CategoryTiers.WithLabelValues(tier).Inc()
}

// AddSweepOutcome adds n products to a sweep outcome counter.
func (m *Metrics) AddSweepOutcome(outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SweepOutcomes.WithLabelValues(outcome).Add(float64(n))
}
