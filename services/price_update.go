package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"pricetrack/locker"
	"pricetrack/models"
	"pricetrack/scraper"

	"github.com/shopspring/decimal"
)

// ProductResolver resolves a product URL to its current details
type ProductResolver interface {
	Resolve(ctx context.Context, url string) (scraper.ProductInfo, error)
}

// PriceScale is the number of decimal places prices are stored with
const PriceScale = 2

// ProductStore persists tracked products and their price history.
// ApplyPriceCheck writes the product (including its notification flag) and
// the optional sample atomically.
type ProductStore interface {
	GetProduct(ctx context.Context, id int) (*models.TrackedProduct, error)
	ApplyPriceCheck(ctx context.Context, product *models.TrackedProduct, sample *models.PriceSample) error
}

// UserDirectory looks up the owner of a product
type UserDirectory interface {
	GetUser(ctx context.Context, id int) (*models.User, error)
}

// PriceUpdateService refreshes one tracked product: resolve, normalise,
// record history on change and send the one-time target alert.
type PriceUpdateService struct {
	store      ProductStore
	users      UserDirectory
	resolver   ProductResolver
	normalizer *CurrencyNormalizer
	notifier   Notifier
	locks      locker.Locker
	now        func() time.Time
}

// NewPriceUpdateService wires the update service
func NewPriceUpdateService(store ProductStore, users UserDirectory, resolver ProductResolver, normalizer *CurrencyNormalizer, notifier Notifier, locks locker.Locker) *PriceUpdateService {
	if locks == nil {
		locks = locker.NewKeyedMutex()
	}
	return &PriceUpdateService{
		store:      store,
		users:      users,
		resolver:   resolver,
		normalizer: normalizer,
		notifier:   notifier,
		locks:      locks,
		now:        time.Now,
	}
}

// Update refreshes product and reports whether its stored state changed.
// A fetch failure is returned as an error; a page without a usable price
// is (false, nil) and leaves the product untouched.
func (s *PriceUpdateService) Update(ctx context.Context, product *models.TrackedProduct) (bool, error) {
	unlock, err := s.locks.Lock(ctx, "product:"+strconv.Itoa(product.ID))
	if err != nil {
		return false, fmt.Errorf("failed to lock product %d: %w", product.ID, err)
	}
	defer unlock()

	current, err := s.store.GetProduct(ctx, product.ID)
	if err != nil {
		return false, fmt.Errorf("failed to reload product %d: %w", product.ID, err)
	}

	info, err := s.resolver.Resolve(ctx, current.URL)
	if err != nil {
		return false, err
	}
	if !info.HasPrice() {
		log.Printf("Could not retrieve price for %s", current.URL)
		return false, nil
	}

	// Compare at the stored precision so an unchanged price never looks new.
	price := s.normalizer.Normalize(info.Price.Decimal, current.URL).Round(PriceScale)
	now := s.now()

	var sample *models.PriceSample
	if !current.CurrentPrice.Valid || !current.CurrentPrice.Decimal.Equal(price) {
		sample = &models.PriceSample{ProductID: current.ID, Price: price, CheckedAt: now}
	}

	if !current.OriginalPrice.Valid {
		current.OriginalPrice = decimal.NewNullDecimal(price)
	}
	if !current.HasName() && (info.HasName() || current.Name == "") {
		current.Name = info.Name
	}
	if current.ImageURL == "" && info.ImageURL != "" {
		current.ImageURL = info.ImageURL
	}
	previous := current.CurrentPrice
	current.CurrentPrice = decimal.NewNullDecimal(price)
	current.LastChecked = &now

	alert := !current.NotificationSent && current.TargetReached()
	if alert {
		current.NotificationSent = true
	}

	if err := s.store.ApplyPriceCheck(ctx, current, sample); err != nil {
		return false, fmt.Errorf("failed to save price check for product %d: %w", current.ID, err)
	}
	*product = *current
	logPriceChange(current, previous, price)

	if alert {
		s.sendAlert(ctx, current)
	}
	return true, nil
}

// sendAlert delivers the target-reached alert. Failures are logged only.
func (s *PriceUpdateService) sendAlert(ctx context.Context, p *models.TrackedProduct) {
	log.Printf("🚨 Target reached for %s: %s <= %s", p.Name, p.CurrentPrice.Decimal.StringFixed(2), p.TargetPrice.StringFixed(2))

	if s.notifier == nil || s.users == nil {
		log.Printf("No notifier configured, skipping alert for product %d", p.ID)
		return
	}
	user, err := s.users.GetUser(ctx, p.UserID)
	if err != nil {
		log.Printf("Failed to load owner of product %d: %v", p.ID, err)
		return
	}
	if user.Email == "" {
		log.Printf("No email found for user %s", user.Username)
		return
	}

	alert, err := BuildPriceAlert(p)
	if err != nil {
		log.Printf("Failed to build alert for product %d: %v", p.ID, err)
		return
	}
	if err := s.notifier.Send(ctx, user.Email, alert.Subject, alert.HTMLBody, alert.TextBody); err != nil {
		log.Printf("Failed to send price alert to %s: %v", user.Email, err)
	}
}

func logPriceChange(p *models.TrackedProduct, previous decimal.NullDecimal, price decimal.Decimal) {
	switch {
	case !previous.Valid:
		log.Printf("First price for %s: %s", p.Name, price.StringFixed(2))
	case price.LessThan(previous.Decimal):
		log.Printf("📉 Price DROPPED for %s: %s → %s", p.Name, previous.Decimal.StringFixed(2), price.StringFixed(2))
	case price.GreaterThan(previous.Decimal):
		log.Printf("📈 Price INCREASED for %s: %s → %s", p.Name, previous.Decimal.StringFixed(2), price.StringFixed(2))
	default:
		log.Printf("Price unchanged for %s: %s", p.Name, price.StringFixed(2))
	}
}
