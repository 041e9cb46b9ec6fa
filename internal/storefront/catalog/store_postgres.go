// Package catalog exposes the product and discount lookups criteria
// evaluation needs. In a full deployment these tables are owned by
// the shop; this store only reads them.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"merx/internal/criteria"
	"merx/pkg/domain"
)

// Schema for EnsureSchema and the integration tests.
const Schema = `
CREATE TABLE IF NOT EXISTS products (
    id                   TEXT PRIMARY KEY,
    category_id          TEXT NOT NULL,
    manufacturer_id      TEXT NOT NULL,
    weight               DOUBLE PRECISION NOT NULL DEFAULT 0,
    price                DOUBLE PRECISION NOT NULL DEFAULT 0,
    distributor_price    DOUBLE PRECISION NOT NULL DEFAULT 0,
    for_sale             BOOLEAN NOT NULL DEFAULT FALSE,
    manual_delivery_time BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE TABLE IF NOT EXISTS discounts (
    id     TEXT PRIMARY KEY,
    name   TEXT NOT NULL,
    active BOOLEAN NOT NULL DEFAULT TRUE
);
`

// PostgresStore implements criteria.CatalogStore on PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure catalog schema: %w", err)
	}
	return nil
}

// Products resolves the given ids in one query. Unknown ids are
// simply absent from the result map.
func (s *PostgresStore) Products(ctx context.Context, ids []domain.ProductID) (map[domain.ProductID]criteria.ProductInfo, error) {
	out := make(map[domain.ProductID]criteria.ProductInfo, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category_id, manufacturer_id, weight, price,
		       distributor_price, for_sale, manual_delivery_time
		FROM products
		WHERE id = ANY($1)`, raw)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p criteria.ProductInfo
		var id, category, manufacturer string
		if err := rows.Scan(&id, &category, &manufacturer, &p.Weight, &p.Price,
			&p.DistributorPrice, &p.ForSale, &p.ManualDeliveryTime); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.ID = domain.ProductID(id)
		p.Category = domain.CategoryID(category)
		p.Manufacturer = domain.ManufacturerID(manufacturer)
		out[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return out, nil
}

// Discount returns nil when the id is unknown.
func (s *PostgresStore) Discount(ctx context.Context, id domain.DiscountID) (*criteria.DiscountInfo, error) {
	var d criteria.DiscountInfo
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, active FROM discounts WHERE id = $1`, id.String(),
	).Scan(&raw, &d.Name, &d.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query discount: %w", err)
	}
	d.ID = domain.DiscountID(raw)
	return &d, nil
}
