package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"pricetrack/models"
	"pricetrack/scraper"
)

// ProductSource lists the products a sweep visits
type ProductSource interface {
	ListActive(ctx context.Context) ([]models.TrackedProduct, error)
}

// ProductUpdater refreshes one product
type ProductUpdater interface {
	Update(ctx context.Context, product *models.TrackedProduct) (bool, error)
}

// SweepResult counts what happened to each product in one sweep.
// Checked = Updated + Unavailable + Errored; Total = Checked + Skipped.
type SweepResult struct {
	Total       int `json:"total"`
	Checked     int `json:"checked"`
	Updated     int `json:"updated"`
	Unavailable int `json:"unavailable"`
	Errored     int `json:"errored"`
	Skipped     int `json:"skipped"`
}

func (r SweepResult) String() string {
	return fmt.Sprintf("total=%d checked=%d updated=%d unavailable=%d errored=%d skipped=%d",
		r.Total, r.Checked, r.Updated, r.Unavailable, r.Errored, r.Skipped)
}

// Sweeper refreshes every active product whose last check is older than the
// freshness window. Products are visited one at a time.
type Sweeper struct {
	products ProductSource
	updater  ProductUpdater
	window   time.Duration
	metrics  *scraper.Metrics
	now      func() time.Time
}

func NewSweeper(products ProductSource, updater ProductUpdater, window time.Duration, metrics *scraper.Metrics) *Sweeper {
	return &Sweeper{
		products: products,
		updater:  updater,
		window:   window,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Sweep runs one pass. It fails only if the product list cannot be read or
// ctx is cancelled; a failing product is counted and the sweep moves on.
func (s *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	products, err := s.products.ListActive(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list tracked products: %w", err)
	}
	result.Total = len(products)
	log.Printf("Starting price sweep over %d products", len(products))

	for i := range products {
		if err := ctx.Err(); err != nil {
			s.record(result)
			return result, err
		}

		p := &products[i]
		if !p.NeedsUpdate(s.now(), s.window) {
			result.Skipped++
			continue
		}

		result.Checked++
		updated, err := s.updateOne(ctx, p)
		switch {
		case err != nil:
			result.Errored++
			log.Printf("❌ Error updating product %d (%s): %v", p.ID, p.URL, err)
		case updated:
			result.Updated++
		default:
			result.Unavailable++
		}
	}

	s.record(result)
	log.Printf("✅ Price sweep finished: %s", result)
	return result, nil
}

// updateOne turns a panic in one product's update into an error
func (s *Sweeper) updateOne(ctx context.Context, p *models.TrackedProduct) (updated bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			updated = false
			err = fmt.Errorf("panic while updating product: %v", r)
		}
	}()
	return s.updater.Update(ctx, p)
}

func (s *Sweeper) record(r SweepResult) {
	s.metrics.AddSweepOutcome("updated", r.Updated)
	s.metrics.AddSweepOutcome("unavailable", r.Unavailable)
	s.metrics.AddSweepOutcome("errored", r.Errored)
	s.metrics.AddSweepOutcome("skipped", r.Skipped)
}
