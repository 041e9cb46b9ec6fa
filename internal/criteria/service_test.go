package criteria_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"merx/internal/criteria"
	criterionstore "merx/internal/criteria/store/criterion"
	"merx/internal/storefront/cart"
	"merx/internal/storefront/catalog"
	"merx/internal/storefront/orders"
	"merx/pkg/domain"
	auditmemory "merx/pkg/platform/audit/publishers/memory"
	"merx/pkg/requestcontext"
)

// =============================================================================
// Criteria Service Test Suite
// =============================================================================
// These tests drive the service through the same stores the binary
// uses without a database, so the evidence gathering, conjunction
// semantics, and recursion all run for real.

type ServiceSuite struct {
	suite.Suite
	registry *criteria.Registry
	store    *criterionstore.InMemoryStore
	carts    *cart.InMemoryStore
	orders   *orders.InMemoryStore
	catalog  *catalog.InMemoryStore
	audit    *auditmemory.Publisher
	service  *criteria.Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.registry = criteria.Defaults()
	s.store = criterionstore.NewInMemory()
	s.carts = cart.NewInMemory()
	s.orders = orders.NewInMemory()
	s.catalog = catalog.NewInMemory()
	s.audit = auditmemory.New()

	var err error
	s.service, err = criteria.New(s.registry, s.store, s.carts, s.orders, s.catalog,
		criteria.WithAudit(s.audit),
	)
	s.Require().NoError(err)
}

// sessionCtx returns a context for an anonymous shopper with the
// given session key.
func (s *ServiceSuite) sessionCtx(sessionKey string) context.Context {
	return requestcontext.WithSessionKey(context.Background(), sessionKey)
}

func (s *ServiceSuite) owner(kind, id string) domain.OwnerRef {
	owner, err := domain.ParseOwnerRef(kind, id)
	s.Require().NoError(err)
	return owner
}

// mustCreate builds a criterion through the factory, as the handler
// does.
func (s *ServiceSuite) mustCreate(contentType string, raw criteria.RawValue) criteria.Criterion {
	c, err := s.registry.Create(contentType, raw)
	s.Require().NoError(err)
	return c
}

func (s *ServiceSuite) seedCart(sessionKey string, lines ...criteria.CartLine) {
	s.Require().NoError(s.carts.Put(context.Background(), &criteria.Cart{
		SessionKey: sessionKey,
		Lines:      lines,
	}))
}

// =============================================================================
// Constructor Tests
// =============================================================================

func (s *ServiceSuite) TestNew() {
	s.Run("nil registry returns error", func() {
		_, err := criteria.New(nil, s.store, s.carts, s.orders, s.catalog)
		s.Error(err)
		s.Contains(err.Error(), "registry is required")
	})

	s.Run("nil criterion store returns error", func() {
		_, err := criteria.New(s.registry, nil, s.carts, s.orders, s.catalog)
		s.Error(err)
	})

	s.Run("nil cart store returns error", func() {
		_, err := criteria.New(s.registry, s.store, nil, s.orders, s.catalog)
		s.Error(err)
	})
}

// =============================================================================
// Owner Evaluation Tests
// =============================================================================

func (s *ServiceSuite) TestEvaluateOwnerEmptySet() {
	decision, err := s.service.EvaluateOwner(s.sessionCtx("sess-1"), s.owner("discount", "d1"), nil)
	s.Require().NoError(err)
	s.True(decision.Valid, "an owner without criteria applies unconditionally")
	s.Empty(decision.Results)
}

func (s *ServiceSuite) TestEvaluateOwnerConjunction() {
	ctx := s.sessionCtx("sess-1")
	owner := s.owner("shipping_method", "express")
	s.seedCart("sess-1",
		criteria.CartLine{ProductID: "p1", Quantity: 2, UnitPrice: 25},
	)

	s.Run("all criteria hold", func() {
		set := []criteria.Criterion{
			s.mustCreate("cart_amount", criteria.RawValue{Operator: "gte", Value: "2"}),
			s.mustCreate("cart_price", criteria.RawValue{Operator: "lte", Value: "50"}),
		}
		s.Require().NoError(s.service.SaveCriteria(ctx, owner, set))

		decision, err := s.service.EvaluateOwner(ctx, owner, nil)
		s.Require().NoError(err)
		s.True(decision.Valid)
		s.Len(decision.Results, 2)
	})

	s.Run("one failing criterion fails the owner and short-circuits", func() {
		set := []criteria.Criterion{
			s.mustCreate("cart_amount", criteria.RawValue{Operator: "gte", Value: "10"}),
			s.mustCreate("cart_price", criteria.RawValue{Operator: "lte", Value: "50"}),
		}
		s.Require().NoError(s.service.SaveCriteria(ctx, owner, set))

		decision, err := s.service.EvaluateOwner(ctx, owner, nil)
		s.Require().NoError(err)
		s.False(decision.Valid)
		// The second criterion is never reached.
		s.Len(decision.Results, 1)
		s.Equal("cart_amount", decision.Results[0].ContentType)
		s.False(decision.Results[0].Valid)
	})
}

func (s *ServiceSuite) TestEvaluateOwnerPositionOrder() {
	ctx := s.sessionCtx("sess-1")
	owner := s.owner("payment_method", "invoice")
	s.seedCart("sess-1", criteria.CartLine{ProductID: "p1", Quantity: 1})

	set := []criteria.Criterion{
		s.mustCreate("cart_amount", criteria.RawValue{Operator: "gte", Value: "1"}),
		s.mustCreate("cart_amount", criteria.RawValue{Operator: "gte", Value: "5"}),
		s.mustCreate("cart_amount", criteria.RawValue{Operator: "gte", Value: "1"}),
	}
	s.Require().NoError(s.service.SaveCriteria(ctx, owner, set))

	decision, err := s.service.EvaluateOwner(ctx, owner, nil)
	s.Require().NoError(err)
	s.False(decision.Valid)
	// Position order: the first criterion passes, the second fails,
	// the third is never evaluated.
	s.Require().Len(decision.Results, 2)
	s.True(decision.Results[0].Valid)
	s.False(decision.Results[1].Valid)
}

func (s *ServiceSuite) TestEvaluateOwnerConfigurationErrors() {
	ctx := s.sessionCtx("sess-1")
	owner := s.owner("discount", "d1")

	s.Run("stale content type fails loudly", func() {
		stale := criteria.Criterion{ContentType: "retired_type", Operator: criteria.OpIs}
		s.Require().NoError(s.store.ReplaceForOwner(ctx, owner, []criteria.Criterion{stale}))

		_, err := s.service.EvaluateOwner(ctx, owner, nil)
		s.ErrorIs(err, criteria.ErrUnknownType)
	})

	s.Run("illegal operator fails loudly", func() {
		// A validity operator persisted on a threshold type.
		broken := criteria.Criterion{ContentType: "cart_amount", Operator: criteria.OpIsValid}
		s.Require().NoError(s.store.ReplaceForOwner(ctx, owner, []criteria.Criterion{broken}))

		_, err := s.service.EvaluateOwner(ctx, owner, nil)
		s.ErrorIs(err, criteria.ErrIllegalOperator)
	})
}

func (s *ServiceSuite) TestEvaluateOwnerSubject() {
	ctx := s.sessionCtx("sess-1")
	owner := s.owner("discount", "d1")
	product := domain.ProductID("p1")

	s.catalog.SeedProduct(criteria.ProductInfo{
		ID:       product,
		Category: "books",
		Weight:   2,
	})

	set := []criteria.Criterion{
		s.mustCreate("category", criteria.RawValue{Operator: "is", Refs: []string{"books"}}),
		s.mustCreate("max_weight", criteria.RawValue{Operator: "lte", Value: "5"}),
	}
	s.Require().NoError(s.service.SaveCriteria(ctx, owner, set))

	s.Run("subject product satisfies the set", func() {
		decision, err := s.service.EvaluateOwner(ctx, owner, &product)
		s.Require().NoError(err)
		s.True(decision.Valid)
	})

	s.Run("unknown subject product is an error", func() {
		missing := domain.ProductID("gone")
		_, err := s.service.EvaluateOwner(ctx, owner, &missing)
		s.Error(err)
	})
}

func (s *ServiceSuite) TestEvaluateOwnerOrderHistory() {
	owner := s.owner("payment_method", "invoice")
	userID := domain.UserID("1b4e28ba-2fa1-11d2-883f-0016d3cca427")
	ctx := requestcontext.WithUserID(context.Background(), userID)

	s.orders.Add(orders.Order{UserID: userID, State: orders.StateClosed, Total: 120})
	s.orders.Add(orders.Order{UserID: userID, State: orders.StateClosed, Total: 80})
	s.orders.Add(orders.Order{UserID: userID, State: "cancelled", Total: 999})

	set := []criteria.Criterion{
		s.mustCreate("order_count", criteria.RawValue{Operator: "gte", Value: "2"}),
		s.mustCreate("order_sum", criteria.RawValue{Operator: "gte", Value: "2000"}),
	}
	s.Require().NoError(s.service.SaveCriteria(ctx, owner, set))

	decision, err := s.service.EvaluateOwner(ctx, owner, nil)
	s.Require().NoError(err)
	// Two closed orders; the sum covers every order state.
	s.False(decision.Valid)
	s.Require().Len(decision.Results, 2)
	s.True(decision.Results[0].Valid)
	s.False(decision.Results[1].Valid)
}

// =============================================================================
// Discount Recursion Tests
// =============================================================================

func (s *ServiceSuite) TestDiscountCriterionRecursion() {
	ctx := s.sessionCtx("sess-1")
	s.seedCart("sess-1", criteria.CartLine{ProductID: "p1", Quantity: 3})

	s.catalog.SeedDiscount(criteria.DiscountInfo{ID: "base", Name: "Base", Active: true})
	s.catalog.SeedDiscount(criteria.DiscountInfo{ID: "inactive", Name: "Old", Active: false})

	// "base" holds when the cart has at least 2 items.
	baseOwner := domain.DiscountOwner("base")
	s.Require().NoError(s.service.SaveCriteria(ctx, baseOwner, []criteria.Criterion{
		s.mustCreate("cart_amount", criteria.RawValue{Operator: "gte", Value: "2"}),
	}))

	topOwner := s.owner("discount", "top")

	s.Run("is_valid follows the referenced discount", func() {
		s.Require().NoError(s.service.SaveCriteria(ctx, topOwner, []criteria.Criterion{
			s.mustCreate("discounts", criteria.RawValue{Operator: "is_valid", Refs: []string{"base"}}),
		}))
		decision, err := s.service.EvaluateOwner(ctx, topOwner, nil)
		s.Require().NoError(err)
		s.True(decision.Valid)
	})

	s.Run("is_not_valid is the negation for active references", func() {
		s.Require().NoError(s.service.SaveCriteria(ctx, topOwner, []criteria.Criterion{
			s.mustCreate("discounts", criteria.RawValue{Operator: "is_not_valid", Refs: []string{"base"}}),
		}))
		decision, err := s.service.EvaluateOwner(ctx, topOwner, nil)
		s.Require().NoError(err)
		s.False(decision.Valid)
	})

	s.Run("inactive and missing references are skipped", func() {
		s.Require().NoError(s.service.SaveCriteria(ctx, topOwner, []criteria.Criterion{
			s.mustCreate("discounts", criteria.RawValue{Operator: "is_valid", Refs: []string{"inactive", "vanished"}}),
		}))
		decision, err := s.service.EvaluateOwner(ctx, topOwner, nil)
		s.Require().NoError(err)
		s.True(decision.Valid, "zero active references is vacuously true")
	})

	s.Run("reference cycles are detected", func() {
		a := domain.DiscountOwner("cycle-a")
		b := domain.DiscountOwner("cycle-b")
		s.catalog.SeedDiscount(criteria.DiscountInfo{ID: "cycle-a", Active: true})
		s.catalog.SeedDiscount(criteria.DiscountInfo{ID: "cycle-b", Active: true})

		s.Require().NoError(s.service.SaveCriteria(ctx, a, []criteria.Criterion{
			s.mustCreate("discounts", criteria.RawValue{Operator: "is_valid", Refs: []string{"cycle-b"}}),
		}))
		s.Require().NoError(s.service.SaveCriteria(ctx, b, []criteria.Criterion{
			s.mustCreate("discounts", criteria.RawValue{Operator: "is_valid", Refs: []string{"cycle-a"}}),
		}))

		_, err := s.service.EvaluateOwner(ctx, a, nil)
		s.ErrorIs(err, criteria.ErrCriteriaCycle)
	})

	s.Run("self reference is the smallest cycle", func() {
		selfOwner := domain.DiscountOwner("selfref")
		s.catalog.SeedDiscount(criteria.DiscountInfo{ID: "selfref", Active: true})
		s.Require().NoError(s.service.SaveCriteria(ctx, selfOwner, []criteria.Criterion{
			s.mustCreate("discounts", criteria.RawValue{Operator: "is_valid", Refs: []string{"selfref"}}),
		}))

		_, err := s.service.EvaluateOwner(ctx, selfOwner, nil)
		s.ErrorIs(err, criteria.ErrCriteriaCycle)
	})
}

// =============================================================================
// Audit Tests
// =============================================================================

func (s *ServiceSuite) TestEvaluateOwnerEmitsAudit() {
	ctx := requestcontext.WithRequestID(s.sessionCtx("sess-9"), "req-1")
	owner := s.owner("shipping_method", "pickup")

	decision, err := s.service.EvaluateOwner(ctx, owner, nil)
	s.Require().NoError(err)

	events := s.audit.Events()
	s.Require().Len(events, 1)
	s.Equal("shipping_method", events[0].OwnerKind)
	s.Equal("pickup", events[0].OwnerID)
	s.Equal("sess-9", events[0].SessionKey)
	s.Equal("req-1", events[0].RequestID)
	s.Equal(decision.Valid, events[0].Valid)
}

// =============================================================================
// Persistence Surface Tests
// =============================================================================

func (s *ServiceSuite) TestSaveCriteriaStampsOwnerAndPositions() {
	ctx := context.Background()
	owner := s.owner("discount", "d1")

	set := []criteria.Criterion{
		s.mustCreate("cart_amount", criteria.RawValue{Operator: "gte", Value: "1"}),
		s.mustCreate("for_sale", criteria.RawValue{Operator: "is"}),
	}
	s.Require().NoError(s.service.SaveCriteria(ctx, owner, set))

	stored, err := s.service.CriteriaForOwner(ctx, owner)
	s.Require().NoError(err)
	s.Require().Len(stored, 2)
	for i, c := range stored {
		s.Equal(owner, c.Owner)
		s.Equal(i, c.Position)
	}
}

func (s *ServiceSuite) TestDeleteCriteria() {
	ctx := context.Background()
	owner := s.owner("discount", "d1")

	s.Require().NoError(s.service.SaveCriteria(ctx, owner, []criteria.Criterion{
		s.mustCreate("for_sale", criteria.RawValue{Operator: "is"}),
	}))
	s.Require().NoError(s.service.DeleteCriteria(ctx, owner))

	stored, err := s.service.CriteriaForOwner(ctx, owner)
	s.Require().NoError(err)
	s.Empty(stored)
}

// =============================================================================
// Request Time Tests
// =============================================================================

func (s *ServiceSuite) TestTimeCriterionUsesFrozenRequestTime() {
	owner := s.owner("shipping_method", "night-express")
	frozen := time.Date(2026, 3, 10, 22, 15, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(s.sessionCtx("sess-1"), frozen)

	s.Require().NoError(s.service.SaveCriteria(ctx, owner, []criteria.Criterion{
		s.mustCreate("time", criteria.RawValue{Operator: "gte", Value: "20:00"}),
	}))

	decision, err := s.service.EvaluateOwner(ctx, owner, nil)
	s.Require().NoError(err)
	s.True(decision.Valid)
	s.Equal(frozen, decision.EvaluatedAt)
}
