package catalog

import (
	"context"
	"database/sql"
	"fmt"
)

type Repository interface {
	ListStores(ctx context.Context) ([]Store, error)
	ListChannels(ctx context.Context) ([]Channel, error)
	ListProducts(ctx context.Context, limit int) ([]Product, error)
	ListCategories(ctx context.Context) ([]Category, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListStores(ctx context.Context) ([]Store, error) {
	query := `
		SELECT id, name, COALESCE(city, ''), COALESCE(state, ''), is_active
		FROM stores
		WHERE is_active = TRUE
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	defer rows.Close()

	var stores []Store
	for rows.Next() {
		var s Store
		if err := rows.Scan(&s.ID, &s.Name, &s.City, &s.State, &s.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		stores = append(stores, s)
	}

	return stores, rows.Err()
}

func (r *repository) ListChannels(ctx context.Context) ([]Channel, error) {
	query := `SELECT id, name, COALESCE(type, '') FROM channels ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	defer rows.Close()

	var channels []Channel
	for rows.Next() {
		var c Channel
		if err := rows.Scan(&c.ID, &c.Name, &c.Type); err != nil {
			return nil, fmt.Errorf("failed to scan channel: %w", err)
		}
		channels = append(channels, c)
	}

	return channels, rows.Err()
}

func (r *repository) ListProducts(ctx context.Context, limit int) ([]Product, error) {
	query := `
		SELECT id, name, category_id
		FROM products
		WHERE deleted_at IS NULL
		ORDER BY name
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		var categoryID sql.NullInt64
		if err := rows.Scan(&p.ID, &p.Name, &categoryID); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if categoryID.Valid {
			p.CategoryID = &categoryID.Int64
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

// ListCategories returns product categories only (type P); item-level
// categories are internal to the catalog.
func (r *repository) ListCategories(ctx context.Context) ([]Category, error) {
	query := `SELECT id, name, type FROM categories WHERE type = 'P' AND deleted_at IS NULL ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}
