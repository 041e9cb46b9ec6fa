package criteria

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Aggregate-threshold criteria compute one number from the shopper's
// context and compare it against the stored value. A missing
// aggregate (no cart, no orders) is unsatisfiable and evaluates to
// false for every operator.

func orderCountDefinition() Definition {
	return Definition{
		ContentType: "order_count",
		Name:        "Order count",
		Operators:   NumberOperators,
		Kind:        ValueScalar,
		Evaluate: func(_ context.Context, c Criterion, ev *Evidence) (bool, error) {
			if ev.ClosedOrders == nil {
				return false, nil
			}
			return compareNumber(c.Operator, float64(*ev.ClosedOrders), c.Value), nil
		},
	}
}

func orderSumDefinition() Definition {
	return Definition{
		ContentType: "order_sum",
		Name:        "Order sum",
		Operators:   NumberOperators,
		Kind:        ValueScalar,
		Evaluate: func(_ context.Context, c Criterion, ev *Evidence) (bool, error) {
			if ev.OrderTotal == nil {
				return false, nil
			}
			return compareNumber(c.Operator, *ev.OrderTotal, c.Value), nil
		},
	}
}

func cartAmountDefinition() Definition {
	return Definition{
		ContentType: "cart_amount",
		Name:        "Cart amount",
		Operators:   NumberOperators,
		Kind:        ValueScalar,
		Evaluate: func(_ context.Context, c Criterion, ev *Evidence) (bool, error) {
			if ev.Cart.Empty() {
				return false, nil
			}
			amount := 0
			for _, line := range ev.Cart.Lines {
				amount += line.Quantity
			}
			return compareNumber(c.Operator, float64(amount), c.Value), nil
		},
	}
}

func cartPriceDefinition() Definition {
	return Definition{
		ContentType: "cart_price",
		Name:        "Cart price",
		Operators:   NumberOperators,
		Kind:        ValueScalar,
		Evaluate: func(_ context.Context, c Criterion, ev *Evidence) (bool, error) {
			if ev.Cart.Empty() {
				return false, nil
			}
			total := 0.0
			for _, line := range ev.Cart.Lines {
				total += line.UnitPrice * float64(line.Quantity)
			}
			return compareNumber(c.Operator, total, c.Value), nil
		},
	}
}

func maxWeightDefinition() Definition {
	return Definition{
		ContentType: "max_weight",
		Name:        "Max weight",
		Operators:   NumberOperators,
		Kind:        ValueScalar,
		Evaluate: func(_ context.Context, c Criterion, ev *Evidence) (bool, error) {
			if ev.Subject != nil {
				return compareNumber(c.Operator, ev.Subject.Weight, c.Value), nil
			}
			if ev.Cart.Empty() {
				return false, nil
			}
			max := 0.0
			seen := false
			for _, line := range ev.Cart.Lines {
				info, ok := ev.product(line.ProductID)
				if !ok {
					continue
				}
				if !seen || info.Weight > max {
					max = info.Weight
					seen = true
				}
			}
			if !seen {
				return false, nil
			}
			return compareNumber(c.Operator, max, c.Value), nil
		},
	}
}

func profitDefinition() Definition {
	return Definition{
		ContentType: "profit",
		Name:        "Profit",
		Operators:   NumberOperators,
		Kind:        ValueScalar,
		Evaluate: func(_ context.Context, c Criterion, ev *Evidence) (bool, error) {
			if ev.Subject != nil {
				return compareNumber(c.Operator, ev.Subject.Profit(), c.Value), nil
			}
			if ev.Cart.Empty() {
				return false, nil
			}
			profit := 0.0
			for _, id := range ev.Cart.ProductIDs() {
				info, ok := ev.product(id)
				if !ok {
					continue
				}
				profit += info.Profit()
			}
			return compareNumber(c.Operator, profit, c.Value), nil
		},
	}
}

func timeDefinition() Definition {
	return Definition{
		ContentType: "time",
		Name:        "Time of day",
		Operators:   NumberOperators,
		Kind:        ValueScalar,
		ParseScalar: ParseClock,
		Evaluate: func(_ context.Context, c Criterion, ev *Evidence) (bool, error) {
			minutes := float64(ev.Now.Hour()*60 + ev.Now.Minute())
			return compareNumber(c.Operator, minutes, c.Value), nil
		},
	}
}

// ParseClock parses an HH:MM wall-clock value into minutes since
// midnight, the unit the time criterion compares in.
func ParseClock(raw string) (float64, error) {
	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", raw)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", raw)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", raw)
	}
	return float64(hours*60 + minutes), nil
}
