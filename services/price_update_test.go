package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"pricetrack/config"
	"pricetrack/models"
	"pricetrack/scraper"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu       sync.Mutex
	products map[int]models.TrackedProduct
	samples  []models.PriceSample
	saves    int
	saveErr  error
}

func newMemoryStore(products ...models.TrackedProduct) *memoryStore {
	s := &memoryStore{products: make(map[int]models.TrackedProduct)}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *memoryStore) GetProduct(_ context.Context, id int) (*models.TrackedProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &p, nil
}

func (s *memoryStore) ApplyPriceCheck(_ context.Context, p *models.TrackedProduct, sample *models.PriceSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	if sample != nil {
		s.samples = append(s.samples, *sample)
	}
	s.products[p.ID] = *p
	return nil
}

func (s *memoryStore) product(id int) models.TrackedProduct {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id]
}

// numericStore rounds prices on write the way a NUMERIC(10,2) column does
type numericStore struct {
	*memoryStore
}

func (s numericStore) ApplyPriceCheck(ctx context.Context, p *models.TrackedProduct, sample *models.PriceSample) error {
	stored := *p
	stored.CurrentPrice = roundNull(stored.CurrentPrice)
	stored.OriginalPrice = roundNull(stored.OriginalPrice)
	if sample != nil {
		rounded := *sample
		rounded.Price = rounded.Price.Round(2)
		sample = &rounded
	}
	return s.memoryStore.ApplyPriceCheck(ctx, &stored, sample)
}

func roundNull(d decimal.NullDecimal) decimal.NullDecimal {
	if !d.Valid {
		return d
	}
	return decimal.NewNullDecimal(d.Decimal.Round(2))
}

type memoryUsers map[int]*models.User

func (u memoryUsers) GetUser(_ context.Context, id int) (*models.User, error) {
	if user, ok := u[id]; ok {
		return user, nil
	}
	return nil, errors.New("no such user")
}

type scriptedResolver struct {
	mu    sync.Mutex
	infos []scraper.ProductInfo
	err   error
	calls int
}

func (r *scriptedResolver) Resolve(_ context.Context, _ string) (scraper.ProductInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return scraper.ProductInfo{}, r.err
	}
	info := r.infos[0]
	if len(r.infos) > 1 {
		r.infos = r.infos[1:]
	}
	return info, nil
}

type sentMessage struct {
	to, subject, html, text string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (n *recordingNotifier) Send(_ context.Context, to, subject, htmlBody, textBody string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{to, subject, htmlBody, textBody})
	return n.err
}

func priced(name, price, image string) scraper.ProductInfo {
	info := scraper.ProductInfo{Name: name, ImageURL: image}
	if price != "" {
		info.Price = decimal.NewNullDecimal(decimal.RequireFromString(price))
	}
	return info
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

type fixture struct {
	store    *memoryStore
	resolver *scriptedResolver
	notifier *recordingNotifier
	svc      *PriceUpdateService
}

func newFixture(product models.TrackedProduct, infos ...scraper.ProductInfo) *fixture {
	f := &fixture{
		store:    newMemoryStore(product),
		resolver: &scriptedResolver{infos: infos},
		notifier: &recordingNotifier{},
	}
	users := memoryUsers{1: {ID: 1, Username: "alice", Email: "alice@example.com"}, 2: {ID: 2, Username: "nomail"}}
	f.svc = NewPriceUpdateService(f.store, users, f.resolver,
		NewCurrencyNormalizer(config.DefaultCurrencyRates()), f.notifier, nil)
	f.svc.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }
	return f
}

func trackedIndia(target string) models.TrackedProduct {
	return models.TrackedProduct{
		ID:          10,
		UserID:      1,
		URL:         "https://www.amazon.in/dp/B0TEST",
		TargetPrice: dec(target),
		IsActive:    true,
	}
}

func TestUpdateFirstObservation(t *testing.T) {
	f := newFixture(trackedIndia("500"), priced("Echo Dot", "480", "https://img/echo.jpg"))
	p := trackedIndia("500")

	changed, err := f.svc.Update(context.Background(), &p)
	require.NoError(t, err)
	assert.True(t, changed)

	stored := f.store.product(10)
	assert.Equal(t, "Echo Dot", stored.Name)
	assert.Equal(t, "https://img/echo.jpg", stored.ImageURL)
	assert.True(t, stored.OriginalPrice.Decimal.Equal(dec("480")))
	assert.True(t, stored.CurrentPrice.Decimal.Equal(dec("480")))
	require.NotNil(t, stored.LastChecked)
	assert.True(t, stored.NotificationSent)

	require.Len(t, f.store.samples, 1)
	assert.True(t, f.store.samples[0].Price.Equal(dec("480")))

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "alice@example.com", f.notifier.sent[0].to)
	assert.Equal(t, "Price Drop Alert for Echo Dot", f.notifier.sent[0].subject)

	assert.True(t, p.NotificationSent, "caller's copy reflects the stored state")
}

func TestUpdateAppliesCurrencyRate(t *testing.T) {
	product := trackedIndia("1")
	product.URL = "https://www.amazon.com/dp/B0TEST"
	f := newFixture(product, priced("Mouse", "100", ""))

	_, err := f.svc.Update(context.Background(), &product)
	require.NoError(t, err)

	assert.True(t, f.store.product(10).CurrentPrice.Decimal.Equal(dec("8300")))
}

func TestUpdateSampleOnlyOnChange(t *testing.T) {
	f := newFixture(trackedIndia("100"),
		priced("Lamp", "300", ""),
		priced("Lamp", "300", ""),
		priced("Lamp", "280", ""),
	)
	p := trackedIndia("100")

	for i := 0; i < 3; i++ {
		changed, err := f.svc.Update(context.Background(), &p)
		require.NoError(t, err)
		assert.True(t, changed)
	}

	require.Len(t, f.store.samples, 2)
	assert.True(t, f.store.samples[0].Price.Equal(dec("300")))
	assert.True(t, f.store.samples[1].Price.Equal(dec("280")))
	assert.Equal(t, 3, f.store.saves)
}

func TestUpdateOriginalPriceIsLatched(t *testing.T) {
	f := newFixture(trackedIndia("10"), priced("Lamp", "300", ""), priced("Lamp", "250", ""))
	p := trackedIndia("10")

	_, err := f.svc.Update(context.Background(), &p)
	require.NoError(t, err)
	_, err = f.svc.Update(context.Background(), &p)
	require.NoError(t, err)

	stored := f.store.product(10)
	assert.True(t, stored.OriginalPrice.Decimal.Equal(dec("300")))
	assert.True(t, stored.CurrentPrice.Decimal.Equal(dec("250")))
}

func TestUpdateNotifiesOnce(t *testing.T) {
	f := newFixture(trackedIndia("500"),
		priced("Kettle", "520", ""),
		priced("Kettle", "480", ""),
		priced("Kettle", "450", ""),
		priced("Kettle", "700", ""),
		priced("Kettle", "400", ""),
	)
	p := trackedIndia("500")

	for i := 0; i < 5; i++ {
		_, err := f.svc.Update(context.Background(), &p)
		require.NoError(t, err)
	}

	assert.Len(t, f.notifier.sent, 1)
	assert.True(t, f.store.product(10).NotificationSent)
}

func TestUpdateNotificationFailureStillSetsFlag(t *testing.T) {
	f := newFixture(trackedIndia("500"), priced("Kettle", "480", ""))
	f.notifier.err = errors.New("smtp down")
	p := trackedIndia("500")

	changed, err := f.svc.Update(context.Background(), &p)

	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, f.store.product(10).NotificationSent)
}

func TestUpdateMissingEmailSkipsSend(t *testing.T) {
	product := trackedIndia("500")
	product.UserID = 2
	f := newFixture(product, priced("Kettle", "480", ""))

	_, err := f.svc.Update(context.Background(), &product)

	require.NoError(t, err)
	assert.Empty(t, f.notifier.sent)
	assert.True(t, f.store.product(10).NotificationSent)
}

func TestUpdateAbsentPriceIsNoOp(t *testing.T) {
	f := newFixture(trackedIndia("500"), priced(models.UnknownProductName, "", ""))
	p := trackedIndia("500")

	changed, err := f.svc.Update(context.Background(), &p)

	require.NoError(t, err)
	assert.False(t, changed)
	assert.Zero(t, f.store.saves)
	assert.Empty(t, f.store.samples)
	assert.Nil(t, f.store.product(10).LastChecked)
}

func TestUpdateFetchErrorIsReturned(t *testing.T) {
	f := newFixture(trackedIndia("500"))
	f.resolver.err = &scraper.FetchError{URL: "x", StatusCode: http.StatusServiceUnavailable, Kind: scraper.KindHTTPStatus, Err: errors.New("503")}
	p := trackedIndia("500")

	changed, err := f.svc.Update(context.Background(), &p)

	require.Error(t, err)
	assert.True(t, scraper.IsFetchError(err))
	assert.False(t, changed)
	assert.Zero(t, f.store.saves)
}

func TestUpdateKeepsExistingNameAndImage(t *testing.T) {
	product := trackedIndia("1")
	product.Name = "My Kettle"
	product.ImageURL = "https://img/mine.jpg"
	f := newFixture(product, priced("Electric Kettle 1.7L", "900", "https://img/other.jpg"))

	_, err := f.svc.Update(context.Background(), &product)
	require.NoError(t, err)

	stored := f.store.product(10)
	assert.Equal(t, "My Kettle", stored.Name)
	assert.Equal(t, "https://img/mine.jpg", stored.ImageURL)
}

func TestUpdateReplacesPlaceholderName(t *testing.T) {
	product := trackedIndia("1")
	product.Name = models.UnknownProductName
	f := newFixture(product, priced(models.UnknownProductName, "900", ""), priced("Real Name", "900", ""))

	_, err := f.svc.Update(context.Background(), &product)
	require.NoError(t, err)
	assert.Equal(t, models.UnknownProductName, f.store.product(10).Name)

	_, err = f.svc.Update(context.Background(), &product)
	require.NoError(t, err)
	assert.Equal(t, "Real Name", f.store.product(10).Name)
}

func TestUpdateConcurrentCallsAreSerialised(t *testing.T) {
	f := newFixture(trackedIndia("500"), priced("Kettle", "480", ""))
	var wg sync.WaitGroup

	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := trackedIndia("500")
			_, err := f.svc.Update(context.Background(), &p)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, f.store.samples, 1)
	assert.Len(t, f.notifier.sent, 1)
}

func TestUpdateFractionalRateMatchesStoredPrecision(t *testing.T) {
	product := trackedIndia("1")
	product.URL = "https://www.amazon.com/dp/B0MOUSE"
	store := numericStore{newMemoryStore(product)}
	resolver := &scriptedResolver{infos: []scraper.ProductInfo{priced("Mouse", "19.99", "")}}
	rates := []config.CurrencyRate{{Domain: "amazon.com", Rate: dec("83.5")}}
	svc := NewPriceUpdateService(store, memoryUsers{}, resolver, NewCurrencyNormalizer(rates), nil, nil)

	for i := 0; i < 3; i++ {
		changed, err := svc.Update(context.Background(), &product)
		require.NoError(t, err)
		assert.True(t, changed)
	}

	require.Len(t, store.samples, 1)
	assert.Equal(t, "1669.17", store.samples[0].Price.String())
	stored := store.product(10)
	assert.Equal(t, "1669.17", stored.CurrentPrice.Decimal.String())
	assert.Equal(t, "1669.17", stored.OriginalPrice.Decimal.String())
}

func TestUpdateRoundsSubUnitPrices(t *testing.T) {
	f := newFixture(trackedIndia("1"), priced("Bulb", "0.1299", ""))
	p := trackedIndia("1")

	for i := 0; i < 2; i++ {
		_, err := f.svc.Update(context.Background(), &p)
		require.NoError(t, err)
	}

	require.Len(t, f.store.samples, 1)
	assert.Equal(t, "0.13", f.store.samples[0].Price.String())
}

func TestUpdateLatchesNotificationWithPriceCheck(t *testing.T) {
	f := newFixture(trackedIndia("500"), priced("Kettle", "480", ""))
	p := trackedIndia("500")

	_, err := f.svc.Update(context.Background(), &p)
	require.NoError(t, err)

	assert.Equal(t, 1, f.store.saves, "flag is written by the same save as the price")
	assert.True(t, f.store.product(10).NotificationSent)
	assert.True(t, p.NotificationSent)
	assert.Len(t, f.notifier.sent, 1)
}

func TestUpdateSaveFailureSendsNoAlert(t *testing.T) {
	f := newFixture(trackedIndia("500"), priced("Kettle", "480", ""))
	f.store.saveErr = errors.New("connection reset")
	p := trackedIndia("500")

	changed, err := f.svc.Update(context.Background(), &p)

	require.Error(t, err)
	assert.False(t, changed)
	assert.Empty(t, f.notifier.sent)
	assert.False(t, f.store.product(10).NotificationSent)
	assert.False(t, p.NotificationSent)
	assert.False(t, p.CurrentPrice.Valid, "caller's copy is untouched on failure")
}
