package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnknownProductName is the display name used until a real name has been resolved
const UnknownProductName = "Unknown Product"

// TrackedProduct represents one user's subscription to a product URL
type TrackedProduct struct {
	ID               int                 `json:"id" db:"id"`
	UserID           int                 `json:"user_id" db:"user_id"`
	CategoryID       *int                `json:"category_id,omitempty" db:"category_id"`
	URL              string              `json:"url" db:"url"`
	Name             string              `json:"name" db:"name"`
	TargetPrice      decimal.Decimal     `json:"target_price" db:"target_price"`
	CurrentPrice     decimal.NullDecimal `json:"current_price" db:"current_price"`
	OriginalPrice    decimal.NullDecimal `json:"original_price" db:"original_price"`
	ImageURL         string              `json:"image_url,omitempty" db:"image_url"`
	LastChecked      *time.Time          `json:"last_checked" db:"last_checked"`
	CreatedAt        time.Time           `json:"date_added" db:"created_at"`
	IsActive         bool                `json:"is_active" db:"is_active"`
	NotificationSent bool                `json:"notification_sent" db:"notification_sent"`
}

// HasPrice returns true if the product has a current price
func (p *TrackedProduct) HasPrice() bool {
	return p.CurrentPrice.Valid
}

// HasName returns true once a real product name is known
func (p *TrackedProduct) HasName() bool {
	return p.Name != "" && p.Name != UnknownProductName
}

// TargetReached returns true if the current price is at or below the target
func (p *TrackedProduct) TargetReached() bool {
	if !p.CurrentPrice.Valid {
		return false
	}
	return p.CurrentPrice.Decimal.LessThanOrEqual(p.TargetPrice)
}

// NeedsUpdate returns true if the product was never checked or the last
// check is older than window
func (p *TrackedProduct) NeedsUpdate(now time.Time, window time.Duration) bool {
	if p.LastChecked == nil {
		return true
	}
	return now.Sub(*p.LastChecked) > window
}

// PriceDifference returns original minus current price, or zero when either is unknown
func (p *TrackedProduct) PriceDifference() decimal.Decimal {
	if !p.OriginalPrice.Valid || !p.CurrentPrice.Valid {
		return decimal.Zero
	}
	return p.OriginalPrice.Decimal.Sub(p.CurrentPrice.Decimal)
}

// PriceDifferencePercentage returns the drop from the original price in percent
func (p *TrackedProduct) PriceDifferencePercentage() decimal.Decimal {
	if !p.OriginalPrice.Valid || !p.CurrentPrice.Valid || p.OriginalPrice.Decimal.IsZero() {
		return decimal.Zero
	}
	return p.PriceDifference().Div(p.OriginalPrice.Decimal).Mul(decimal.NewFromInt(100))
}

// PriceSample represents a price point in time
type PriceSample struct {
	ID        int             `json:"id" db:"id"`
	ProductID int             `json:"product_id" db:"product_id"`
	Price     decimal.Decimal `json:"price" db:"price"`
	CheckedAt time.Time       `json:"checked_at" db:"checked_at"`
}

// User is the owner of tracked products
type User struct {
	ID       int    `json:"id" db:"id"`
	Username string `json:"username" db:"username"`
	Email    string `json:"email" db:"email"`
}

// ProductCategory is a user-defined grouping of tracked products
type ProductCategory struct {
	ID          int       `json:"id" db:"id"`
	UserID      int       `json:"user_id" db:"user_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// TrackProductRequest represents the request to start tracking a URL
type TrackProductRequest struct {
	URL         string          `json:"url"`
	TargetPrice decimal.Decimal `json:"target_price"`
	CategoryID  *int            `json:"category_id,omitempty"`
}

// CreateCategoryRequest represents the request to create a product category
type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ProductDetails bundles a product with its price history
type ProductDetails struct {
	Product                   *TrackedProduct `json:"product"`
	History                   []PriceSample   `json:"price_history"`
	TargetReached             bool            `json:"target_reached"`
	PriceDifference           decimal.Decimal `json:"price_difference"`
	PriceDifferencePercentage decimal.Decimal `json:"price_difference_percentage"`
}

// CategoryGroup is one dashboard section
type CategoryGroup struct {
	Category *ProductCategory `json:"category"`
	Products []TrackedProduct `json:"products"`
}

// Dashboard lists a user's active products grouped by category
type Dashboard struct {
	Categories    []CategoryGroup  `json:"categories"`
	Uncategorized []TrackedProduct `json:"uncategorized"`
}
