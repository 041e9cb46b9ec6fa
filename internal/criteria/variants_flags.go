package criteria

import "context"

// Flag criteria read a boolean product attribute: the subject's own
// flag, or "any cart item has it", then apply polarity.

func flagDefinition(contentType, name string, flag func(ProductInfo) bool) Definition {
	return Definition{
		ContentType: contentType,
		Name:        name,
		Operators:   ChoiceOperators,
		Kind:        ValueNone,
		Evaluate: func(_ context.Context, c Criterion, ev *Evidence) (bool, error) {
			if ev.Subject != nil {
				return applyPolarity(c.Operator, flag(*ev.Subject)), nil
			}
			if ev.Cart.Empty() {
				return false, nil
			}
			raw := false
			for _, id := range ev.Cart.ProductIDs() {
				info, ok := ev.product(id)
				if !ok {
					continue
				}
				if flag(info) {
					raw = true
					break
				}
			}
			return applyPolarity(c.Operator, raw), nil
		},
	}
}

func forSaleDefinition() Definition {
	return flagDefinition("for_sale", "For sale",
		func(p ProductInfo) bool { return p.ForSale })
}

func manualDeliveryTimeDefinition() Definition {
	return flagDefinition("manual_delivery_time", "Manual delivery time",
		func(p ProductInfo) bool { return p.ManualDeliveryTime })
}
