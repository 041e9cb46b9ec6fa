package criteria

import (
	"context"
	"fmt"

	"merx/pkg/domain"
)

// discountDefinition evaluates other discounts recursively. With
// is_valid, every referenced active discount must itself be valid for
// the same subject; with is_not_valid, none may be. Inactive
// referenced discounts are skipped, so zero active references makes
// both operators vacuously true. The installed DiscountValidator
// carries the evaluation stack and turns reference cycles into
// ErrCriteriaCycle.
func discountDefinition() Definition {
	return Definition{
		ContentType: "discounts",
		Name:        "Discount",
		Operators:   ValidityOperators,
		Kind:        ValueRefs,
		ParseRef: func(raw string) error {
			_, err := domain.ParseDiscountID(raw)
			return err
		},
		Evaluate: func(ctx context.Context, c Criterion, ev *Evidence) (bool, error) {
			if ev.Discounts == nil {
				return false, fmt.Errorf("discount criterion %s: no discount validator installed", c.ID)
			}
			wantValid := c.Operator == OpIsValid
			for _, ref := range c.Refs {
				active, valid, err := ev.Discounts.Validate(ctx, domain.DiscountID(ref))
				if err != nil {
					return false, err
				}
				if !active {
					continue
				}
				if valid != wantValid {
					return false, nil
				}
			}
			return true, nil
		},
	}
}
