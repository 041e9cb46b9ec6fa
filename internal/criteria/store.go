package criteria

import (
	"context"

	"merx/pkg/domain"
)

// CriterionStore persists criterion instances per owning business
// object.
type CriterionStore interface {
	// ListForOwner returns the owner's criteria in position order.
	ListForOwner(ctx context.Context, owner domain.OwnerRef) ([]Criterion, error)

	// ReplaceForOwner atomically swaps the owner's criteria set. This
	// is the save path of the management UI: the previous set is
	// dropped and the new one written with fresh positions.
	ReplaceForOwner(ctx context.Context, owner domain.OwnerRef, criteria []Criterion) error

	// DeleteForOwner removes the owner's criteria when the owning
	// business object is deleted.
	DeleteForOwner(ctx context.Context, owner domain.OwnerRef) error
}

// CartStore resolves the current cart for a session. A missing cart
// is (nil, nil), not an error.
type CartStore interface {
	Get(ctx context.Context, sessionKey string) (*Cart, error)
}

// OrderStore answers the order-history aggregates. Orders are keyed
// by user id for authenticated actors and by session key otherwise.
type OrderStore interface {
	// CountClosed counts closed orders, optionally filtered to orders
	// containing the given product.
	CountClosed(ctx context.Context, actor Actor, product *domain.ProductID) (int, error)

	// SumTotals sums order totals, optionally filtered by product.
	// Returns nil when the actor has no matching orders.
	SumTotals(ctx context.Context, actor Actor, product *domain.ProductID) (*float64, error)
}

// CatalogStore is the read-only product and discount catalog.
type CatalogStore interface {
	// Products resolves catalog data for the given ids. Unknown ids
	// are simply absent from the result.
	Products(ctx context.Context, ids []domain.ProductID) (map[domain.ProductID]ProductInfo, error)

	// Discount resolves a referenced discount, or (nil, nil) when it
	// no longer exists.
	Discount(ctx context.Context, id domain.DiscountID) (*DiscountInfo, error)
}
