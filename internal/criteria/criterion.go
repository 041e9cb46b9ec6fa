// Package criteria implements the criterion model: small persisted
// rules (operator + value) attached to discounts, shipping methods,
// and payment methods, evaluated against a shopper's context to
// decide whether the owning object currently applies.
package criteria

import (
	"context"
	"time"

	"github.com/google/uuid"

	"merx/pkg/domain"
)

// CompositionEntry is one (category, required amount) pair of the
// composition criterion. The cart must hold at least Amount units
// across products in Category; surplus in one category never
// compensates a deficit in another.
type CompositionEntry struct {
	Category domain.CategoryID `json:"category"`
	Amount   int               `json:"amount"`
}

// Criterion is one persisted rule instance. Exactly one of Value,
// Refs, or Compositions carries the stored comparison value,
// depending on the content type; flag criteria carry none.
type Criterion struct {
	ID          uuid.UUID
	Owner       domain.OwnerRef
	Position    int
	ContentType string
	Operator    Operator

	Value        float64
	Refs         []string
	Compositions []CompositionEntry
}

// Actor is the shopper an evaluation runs for. Anonymous shoppers
// have an empty UserID and are identified by their session key, the
// same way the order history is keyed.
type Actor struct {
	UserID     domain.UserID
	SessionKey string
	Groups     []domain.GroupID
	Country    domain.CountryCode
}

// Authenticated reports whether the actor carries a user identity.
func (a Actor) Authenticated() bool { return !a.UserID.IsNil() }

// InGroup reports whether the actor belongs to the given group.
func (a Actor) InGroup(g domain.GroupID) bool {
	for _, have := range a.Groups {
		if have == g {
			return true
		}
	}
	return false
}

// CartLine is one cart position: a product and how many units of it.
type CartLine struct {
	ProductID domain.ProductID `json:"product_id"`
	Quantity  int              `json:"quantity"`
	UnitPrice float64          `json:"unit_price"`
}

// Cart is the current cart snapshot. A nil *Cart means "no cart".
type Cart struct {
	SessionKey string     `json:"session_key"`
	Lines      []CartLine `json:"lines"`
}

// Empty reports whether the cart holds no lines. Criteria that read
// cart contents treat an empty cart exactly like a missing one.
func (c *Cart) Empty() bool { return c == nil || len(c.Lines) == 0 }

// ProductIDs returns the distinct products in the cart.
func (c *Cart) ProductIDs() []domain.ProductID {
	if c == nil {
		return nil
	}
	seen := make(map[domain.ProductID]bool, len(c.Lines))
	ids := make([]domain.ProductID, 0, len(c.Lines))
	for _, line := range c.Lines {
		if seen[line.ProductID] {
			continue
		}
		seen[line.ProductID] = true
		ids = append(ids, line.ProductID)
	}
	return ids
}

// ProductInfo is the catalog view a criterion needs of one product.
type ProductInfo struct {
	ID                 domain.ProductID
	Category           domain.CategoryID
	Manufacturer       domain.ManufacturerID
	Weight             float64
	Price              float64
	DistributorPrice   float64
	ForSale            bool
	ManualDeliveryTime bool
}

// Profit is the margin between the retail price and the best
// distributor price.
func (p ProductInfo) Profit() float64 { return p.Price - p.DistributorPrice }

// DiscountInfo is the catalog view of a referenced discount.
type DiscountInfo struct {
	ID     domain.DiscountID
	Name   string
	Active bool
}

// DiscountValidator lets the discount criterion evaluate referenced
// discounts recursively. The service installs an implementation that
// carries the evaluation stack for cycle detection.
type DiscountValidator interface {
	// Validate resolves the discount and, when it is active, evaluates
	// its own criteria set for the same subject.
	Validate(ctx context.Context, id domain.DiscountID) (active bool, valid bool, err error)
}

// Evidence is everything a criterion may read during evaluation. It
// is gathered once per owner evaluation and is read-only afterwards.
//
// Aggregates that could not be computed are nil; the unsatisfiable
// convention turns them into a false result, never an error.
type Evidence struct {
	Actor   Actor
	Now     time.Time
	Cart    *Cart
	Subject *ProductInfo

	// Products holds catalog data for every cart line product plus
	// the subject, keyed by product id. Lines whose product is gone
	// from the catalog are absent.
	Products map[domain.ProductID]ProductInfo

	// ClosedOrders is the number of closed orders for the actor,
	// filtered to the subject product when one is set.
	ClosedOrders *int

	// OrderTotal is the sum of order totals for the actor, filtered
	// to the subject product when one is set. Nil when the actor has
	// no orders.
	OrderTotal *float64

	Discounts DiscountValidator
}

// product returns catalog data for a cart line product, if known.
func (ev *Evidence) product(id domain.ProductID) (ProductInfo, bool) {
	info, ok := ev.Products[id]
	return info, ok
}
