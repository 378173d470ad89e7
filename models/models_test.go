package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func price(v string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(v))
}

func TestTargetReached(t *testing.T) {
	p := TrackedProduct{TargetPrice: decimal.NewFromInt(500)}
	assert.False(t, p.TargetReached(), "no current price")

	p.CurrentPrice = price("501")
	assert.False(t, p.TargetReached())

	p.CurrentPrice = price("500")
	assert.True(t, p.TargetReached(), "equal to target counts")

	p.CurrentPrice = price("480")
	assert.True(t, p.TargetReached())
}

func TestNeedsUpdate(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	window := 6 * time.Hour

	p := TrackedProduct{}
	assert.True(t, p.NeedsUpdate(now, window), "never checked")

	recent := now.Add(-time.Hour)
	p.LastChecked = &recent
	assert.False(t, p.NeedsUpdate(now, window))

	exact := now.Add(-window)
	p.LastChecked = &exact
	assert.False(t, p.NeedsUpdate(now, window), "window boundary is still fresh")

	old := now.Add(-7 * time.Hour)
	p.LastChecked = &old
	assert.True(t, p.NeedsUpdate(now, window))
}

func TestPriceDifference(t *testing.T) {
	p := TrackedProduct{}
	assert.True(t, p.PriceDifference().IsZero())
	assert.True(t, p.PriceDifferencePercentage().IsZero())

	p.OriginalPrice = price("1000")
	p.CurrentPrice = price("750")
	assert.Equal(t, "250", p.PriceDifference().String())
	assert.Equal(t, "25", p.PriceDifferencePercentage().String())

	p.OriginalPrice = price("0")
	assert.True(t, p.PriceDifferencePercentage().IsZero())
}

func TestHasName(t *testing.T) {
	assert.False(t, (&TrackedProduct{}).HasName())
	assert.False(t, (&TrackedProduct{Name: UnknownProductName}).HasName())
	assert.True(t, (&TrackedProduct{Name: "Kindle"}).HasName())
}
