package criteria

import "context"

// compositionDefinition requires, for every configured (category,
// amount) pair, that the cart's cumulative quantity in that category
// reaches the amount. It is a conjunction over the pairs: failing any
// one pair fails the raw result, and surplus in one category never
// compensates a deficit in another. Polarity applies to the raw
// conjunction.
func compositionDefinition() Definition {
	return Definition{
		ContentType: "composition_category",
		Name:        "Composition",
		Operators:   ChoiceOperators,
		Kind:        ValueCompositions,
		Evaluate: func(_ context.Context, c Criterion, ev *Evidence) (bool, error) {
			if ev.Cart.Empty() {
				return false, nil
			}

			quantities := make(map[string]int)
			for _, line := range ev.Cart.Lines {
				info, ok := ev.product(line.ProductID)
				if !ok {
					continue
				}
				quantities[info.Category.String()] += line.Quantity
			}

			raw := true
			for _, entry := range c.Compositions {
				if quantities[entry.Category.String()] < entry.Amount {
					raw = false
					break
				}
			}
			return applyPolarity(c.Operator, raw), nil
		},
	}
}
