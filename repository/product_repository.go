package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pricetrack/models"
)

var (
	// ErrNotFound is returned when a row does not exist or is not visible to the caller
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint rejects an insert
	ErrDuplicate = errors.New("already exists")
)

const productColumns = `id, user_id, category_id, url, name, target_price, current_price, original_price,
	image_url, last_checked, date_added, is_active, notification_sent`

type rowScanner interface {
	Scan(dest ...any) error
}

// ProductRepository persists tracked products and their price history
type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func scanProduct(row rowScanner) (*models.TrackedProduct, error) {
	var (
		p           models.TrackedProduct
		categoryID  sql.NullInt64
		name, image sql.NullString
		lastChecked sql.NullTime
	)
	err := row.Scan(
		&p.ID, &p.UserID, &categoryID, &p.URL, &name,
		&p.TargetPrice, &p.CurrentPrice, &p.OriginalPrice,
		&image, &lastChecked, &p.CreatedAt, &p.IsActive, &p.NotificationSent,
	)
	if err != nil {
		return nil, err
	}
	if categoryID.Valid {
		id := int(categoryID.Int64)
		p.CategoryID = &id
	}
	p.Name = name.String
	p.ImageURL = image.String
	if lastChecked.Valid {
		t := lastChecked.Time
		p.LastChecked = &t
	}
	return &p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

// Create inserts a new tracked product and fills in its generated fields
func (r *ProductRepository) Create(ctx context.Context, p *models.TrackedProduct) error {
	query := `
		INSERT INTO tracked_products (user_id, category_id, url, name, target_price, image_url, is_active, notification_sent)
		VALUES ($1, $2, $3, $4, $5, $6, true, false)
		RETURNING id, date_added, is_active, notification_sent
	`

	err := r.db.QueryRowContext(ctx, query,
		p.UserID, nullInt(p.CategoryID), p.URL, nullString(p.Name), p.TargetPrice, nullString(p.ImageURL),
	).Scan(&p.ID, &p.CreatedAt, &p.IsActive, &p.NotificationSent)
	if err != nil {
		return fmt.Errorf("failed to add product to track: %w", err)
	}
	return nil
}

// GetProduct returns a tracked product by ID regardless of owner
func (r *ProductRepository) GetProduct(ctx context.Context, id int) (*models.TrackedProduct, error) {
	query := `SELECT ` + productColumns + ` FROM tracked_products WHERE id = $1`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// GetProductForUser returns a product only if it belongs to userID
func (r *ProductRepository) GetProductForUser(ctx context.Context, userID, id int) (*models.TrackedProduct, error) {
	query := `SELECT ` + productColumns + ` FROM tracked_products WHERE id = $1 AND user_id = $2`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// ListByUser returns a user's products with the given active flag, newest first
func (r *ProductRepository) ListByUser(ctx context.Context, userID int, active bool) ([]models.TrackedProduct, error) {
	query := `SELECT ` + productColumns + `
		FROM tracked_products
		WHERE user_id = $1 AND is_active = $2
		ORDER BY date_added DESC`

	return r.list(ctx, query, userID, active)
}

// ListActive returns every active product, oldest first
func (r *ProductRepository) ListActive(ctx context.Context) ([]models.TrackedProduct, error) {
	query := `SELECT ` + productColumns + `
		FROM tracked_products
		WHERE is_active = true
		ORDER BY id`

	return r.list(ctx, query)
}

func (r *ProductRepository) list(ctx context.Context, query string, args ...any) ([]models.TrackedProduct, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []models.TrackedProduct
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Deactivate stops tracking a product without deleting its history
func (r *ProductRepository) Deactivate(ctx context.Context, userID, id int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tracked_products SET is_active = false WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to untrack product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to untrack product: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplyPriceCheck stores the result of one price check. The optional sample
// and the product update are written in a single transaction.
func (r *ProductRepository) ApplyPriceCheck(ctx context.Context, p *models.TrackedProduct, sample *models.PriceSample) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if sample != nil {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO price_history (product_id, price, checked_at) VALUES ($1, $2, $3) RETURNING id`,
			sample.ProductID, sample.Price, sample.CheckedAt,
		).Scan(&sample.ID)
		if err != nil {
			return fmt.Errorf("failed to add price history: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE tracked_products
		SET name = $2, image_url = $3, current_price = $4, original_price = $5, last_checked = $6,
			notification_sent = $7
		WHERE id = $1`,
		p.ID, nullString(p.Name), nullString(p.ImageURL), p.CurrentPrice, p.OriginalPrice, p.LastChecked,
		p.NotificationSent,
	)
	if err != nil {
		return fmt.Errorf("failed to update product price: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit price check: %w", err)
	}
	return nil
}

// PriceHistory returns the samples recorded for a product, newest first
func (r *ProductRepository) PriceHistory(ctx context.Context, productID int) ([]models.PriceSample, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, price, checked_at
		FROM price_history
		WHERE product_id = $1
		ORDER BY checked_at DESC, id DESC`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get price history: %w", err)
	}
	defer rows.Close()

	var history []models.PriceSample
	for rows.Next() {
		var s models.PriceSample
		if err := rows.Scan(&s.ID, &s.ProductID, &s.Price, &s.CheckedAt); err != nil {
			return nil, fmt.Errorf("failed to scan price history: %w", err)
		}
		history = append(history, s)
	}
	return history, rows.Err()
}
