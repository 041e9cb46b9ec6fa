// Package orders answers order-history aggregates for criteria
// evaluation. Orders belong to a user when the shopper was
// authenticated at checkout, else to the session key.
package orders

import (
	"context"
	"database/sql"
	"fmt"

	"merx/internal/criteria"
	"merx/pkg/domain"
)

// StateClosed marks orders that completed; only these count toward
// the order_count criterion.
const StateClosed = "closed"

// Schema holds the tables this store expects, for EnsureSchema and
// the integration tests. The host shop usually owns these tables.
const Schema = `
CREATE TABLE IF NOT EXISTS orders (
    id          UUID PRIMARY KEY,
    user_id     TEXT,
    session_key TEXT,
    state       TEXT NOT NULL,
    total       DOUBLE PRECISION NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS order_items (
    order_id   UUID NOT NULL REFERENCES orders (id) ON DELETE CASCADE,
    product_id TEXT NOT NULL,
    quantity   INT  NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS orders_user_idx ON orders (user_id);
CREATE INDEX IF NOT EXISTS orders_session_idx ON orders (session_key);
CREATE INDEX IF NOT EXISTS order_items_order_idx ON order_items (order_id);
`

// PostgresStore implements criteria.OrderStore on PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure orders schema: %w", err)
	}
	return nil
}

// actorFilter returns the WHERE clause half selecting the actor's
// orders: by user id when authenticated, else by session key.
func actorFilter(actor criteria.Actor) (clause string, arg string) {
	if actor.Authenticated() {
		return "user_id = $1", actor.UserID.String()
	}
	return "session_key = $1", actor.SessionKey
}

func (s *PostgresStore) CountClosed(ctx context.Context, actor criteria.Actor, product *domain.ProductID) (int, error) {
	clause, arg := actorFilter(actor)

	query := `SELECT COUNT(*) FROM orders WHERE ` + clause + ` AND state = $2`
	args := []any{arg, StateClosed}
	if product != nil {
		query = `SELECT COUNT(DISTINCT o.id)
			FROM orders o
			JOIN order_items i ON i.order_id = o.id
			WHERE ` + clause + ` AND o.state = $2 AND i.product_id = $3`
		args = append(args, product.String())
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count closed orders: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) SumTotals(ctx context.Context, actor criteria.Actor, product *domain.ProductID) (*float64, error) {
	clause, arg := actorFilter(actor)

	query := `SELECT SUM(total) FROM orders WHERE ` + clause
	args := []any{arg}
	if product != nil {
		query = `SELECT SUM(o.total) FROM (
			SELECT DISTINCT o.id, o.total
			FROM orders o
			JOIN order_items i ON i.order_id = o.id
			WHERE ` + clause + ` AND i.product_id = $2
		) o`
		args = append(args, product.String())
	}

	var total sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("sum order totals: %w", err)
	}
	if !total.Valid {
		return nil, nil
	}
	return &total.Float64, nil
}
