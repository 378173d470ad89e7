package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pricetrack/models"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts a category; names are unique per user
func (r *CategoryRepository) Create(ctx context.Context, c *models.ProductCategory) error {
	query := `
		INSERT INTO product_categories (user_id, name, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query, c.UserID, c.Name, c.Description).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// GetForUser returns a category only if it belongs to userID
func (r *CategoryRepository) GetForUser(ctx context.Context, userID, id int) (*models.ProductCategory, error) {
	var c models.ProductCategory
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, description, created_at
		FROM product_categories
		WHERE id = $1 AND user_id = $2`, id, userID,
	).Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &c, nil
}

// ListByUser returns a user's categories ordered by name
func (r *CategoryRepository) ListByUser(ctx context.Context, userID int) ([]models.ProductCategory, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, description, created_at
		FROM product_categories
		WHERE user_id = $1
		ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.ProductCategory
	for rows.Next() {
		var c models.ProductCategory
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
