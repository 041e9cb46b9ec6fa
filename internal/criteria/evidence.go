package criteria

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"merx/pkg/domain"
	dErrors "merx/pkg/domain-errors"
	"merx/pkg/requestcontext"
)

// evidenceNeeds is which external fetches a criteria set requires.
// Only what the set actually reads is gathered.
type evidenceNeeds struct {
	cart       bool
	catalog    bool
	orderCount bool
	orderSum   bool
}

// cartAlways lists types that read the cart even when a subject
// product is given (the cart is their aggregate, not the product).
var cartAlways = map[string]bool{
	"cart_amount":          true,
	"cart_price":           true,
	"composition_category": true,
}

// cartUnlessSubject lists types that fall back to the cart only when
// no subject product is under evaluation.
var cartUnlessSubject = map[string]bool{
	"max_weight":           true,
	"profit":               true,
	"category":             true,
	"product":              true,
	"manufacturer":         true,
	"for_sale":             true,
	"manual_delivery_time": true,
}

// catalogReaders lists types that need catalog data for cart lines.
var catalogReaders = map[string]bool{
	"max_weight":           true,
	"profit":               true,
	"category":             true,
	"product":              true,
	"manufacturer":         true,
	"composition_category": true,
	"for_sale":             true,
	"manual_delivery_time": true,
}

func analyzeNeeds(set []Criterion, subject *domain.ProductID) evidenceNeeds {
	var needs evidenceNeeds
	for _, c := range set {
		if cartAlways[c.ContentType] || (subject == nil && cartUnlessSubject[c.ContentType]) {
			needs.cart = true
		}
		if catalogReaders[c.ContentType] {
			needs.catalog = true
		}
		switch c.ContentType {
		case "order_count":
			needs.orderCount = true
		case "order_sum":
			needs.orderSum = true
		}
	}
	return needs
}

// gatherEvidence fetches everything the criteria set reads, in
// parallel with shared cancellation. The actor and request time come
// from the request context set by middleware.
func (s *Service) gatherEvidence(ctx context.Context, set []Criterion, subject *domain.ProductID, stack ownerStack) (*Evidence, error) {
	gctx, cancel := context.WithTimeout(ctx, s.evidenceTimeout)
	defer cancel()

	actor := Actor{
		UserID:     requestcontext.UserID(ctx),
		SessionKey: requestcontext.SessionKey(ctx),
		Groups:     requestcontext.Groups(ctx),
		Country:    requestcontext.Country(ctx),
	}

	ev := &Evidence{
		Actor:    actor,
		Now:      requestcontext.Now(ctx),
		Products: make(map[domain.ProductID]ProductInfo),
	}
	ev.Discounts = &discountValidator{service: s, subject: subject, stack: stack}

	needs := analyzeNeeds(set, subject)

	g, gctx := errgroup.WithContext(gctx)

	if needs.cart {
		g.Go(func() error {
			start := time.Now()
			cart, err := s.carts.Get(gctx, actor.SessionKey)
			s.metrics.ObserveEvidenceLatency("cart", time.Since(start))
			if err != nil {
				return err
			}
			ev.Cart = cart

			// Catalog data for cart lines depends on the cart, so it
			// stays in this goroutine.
			if needs.catalog && !cart.Empty() {
				start = time.Now()
				products, err := s.catalog.Products(gctx, cart.ProductIDs())
				s.metrics.ObserveEvidenceLatency("catalog", time.Since(start))
				if err != nil {
					return err
				}
				for id, info := range products {
					ev.Products[id] = info
				}
			}
			return nil
		})
	}

	var subjectInfo *ProductInfo
	if subject != nil {
		g.Go(func() error {
			start := time.Now()
			products, err := s.catalog.Products(gctx, []domain.ProductID{*subject})
			s.metrics.ObserveEvidenceLatency("catalog", time.Since(start))
			if err != nil {
				return err
			}
			info, ok := products[*subject]
			if !ok {
				return dErrors.Newf(dErrors.CodeNotFound, "product %q not found", *subject)
			}
			subjectInfo = &info
			return nil
		})
	}

	if needs.orderCount {
		g.Go(func() error {
			start := time.Now()
			count, err := s.orders.CountClosed(gctx, actor, subject)
			s.metrics.ObserveEvidenceLatency("order_count", time.Since(start))
			if err != nil {
				return err
			}
			ev.ClosedOrders = &count
			return nil
		})
	}

	if needs.orderSum {
		g.Go(func() error {
			start := time.Now()
			total, err := s.orders.SumTotals(gctx, actor, subject)
			s.metrics.ObserveEvidenceLatency("order_sum", time.Since(start))
			if err != nil {
				return err
			}
			ev.OrderTotal = total
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if subjectInfo != nil {
		ev.Subject = subjectInfo
		ev.Products[subjectInfo.ID] = *subjectInfo
	}

	return ev, nil
}
