package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"pricetrack/config"

	_ "github.com/lib/pq"
)

// InitDatabase opens the Postgres connection pool and verifies it
func InitDatabase(cfg *config.DatabaseConfig) (*sql.DB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to database")
	return db, nil
}

// schema is applied in order; every statement is idempotent
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		username VARCHAR(150) NOT NULL UNIQUE,
		email VARCHAR(254) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS product_categories (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name VARCHAR(100) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (user_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS tracked_products (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		category_id INTEGER REFERENCES product_categories(id) ON DELETE SET NULL,
		url TEXT NOT NULL,
		name VARCHAR(255),
		target_price NUMERIC(10,2) NOT NULL,
		current_price NUMERIC(10,2),
		original_price NUMERIC(10,2),
		image_url TEXT,
		last_checked TIMESTAMPTZ,
		date_added TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		is_active BOOLEAN DEFAULT TRUE,
		notification_sent BOOLEAN DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS price_history (
		id SERIAL PRIMARY KEY,
		product_id INTEGER NOT NULL REFERENCES tracked_products(id) ON DELETE CASCADE,
		price NUMERIC(10,2) NOT NULL,
		checked_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE INDEX IF NOT EXISTS idx_tracked_products_user ON tracked_products (user_id, is_active)`,
	`CREATE INDEX IF NOT EXISTS idx_tracked_products_stale ON tracked_products (last_checked) WHERE is_active`,
	`CREATE INDEX IF NOT EXISTS idx_price_history_product ON price_history (product_id, checked_at DESC)`,
}

// CreateTables creates the necessary tables if they don't exist
func CreateTables(ctx context.Context, db *sql.DB) error {
	for _, query := range schema {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// CloseDatabase closes the database connection
func CloseDatabase(db *sql.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}
