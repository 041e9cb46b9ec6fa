package criteria

import (
	"context"

	"merx/pkg/domain"
)

// Set-membership criteria derive a set from the context (or a single
// attribute from the subject product), test it against the stored
// reference set, then apply the is/is_not polarity. When the cart is
// the source, an empty or missing cart is false regardless of
// polarity.

func refSet(refs []string) map[string]bool {
	set := make(map[string]bool, len(refs))
	for _, r := range refs {
		set[r] = true
	}
	return set
}

// cartMembership runs the common cart-backed membership shape: fold
// every cart product through attr and intersect with the stored refs.
func cartMembership(c Criterion, ev *Evidence, attr func(ProductInfo) string) (bool, error) {
	if ev.Cart.Empty() {
		return false, nil
	}
	stored := refSet(c.Refs)
	raw := false
	for _, id := range ev.Cart.ProductIDs() {
		info, ok := ev.product(id)
		if !ok {
			continue
		}
		if stored[attr(info)] {
			raw = true
			break
		}
	}
	return applyPolarity(c.Operator, raw), nil
}

// subjectMembership tests a single product attribute against the
// stored refs.
func subjectMembership(c Criterion, subject *ProductInfo, attr func(ProductInfo) string) (bool, error) {
	raw := refSet(c.Refs)[attr(*subject)]
	return applyPolarity(c.Operator, raw), nil
}

func categoryDefinition() Definition {
	attr := func(p ProductInfo) string { return p.Category.String() }
	return Definition{
		ContentType: "category",
		Name:        "Category",
		Operators:   ChoiceOperators,
		Kind:        ValueRefs,
		ParseRef: func(raw string) error {
			_, err := domain.ParseCategoryID(raw)
			return err
		},
		Evaluate: func(_ context.Context, c Criterion, ev *Evidence) (bool, error) {
			if ev.Subject != nil {
				return subjectMembership(c, ev.Subject, attr)
			}
			return cartMembership(c, ev, attr)
		},
	}
}

func productDefinition() Definition {
	attr := func(p ProductInfo) string { return p.ID.String() }
	return Definition{
		ContentType: "product",
		Name:        "Product",
		Operators:   ChoiceOperators,
		Kind:        ValueRefs,
		ParseRef: func(raw string) error {
			_, err := domain.ParseProductID(raw)
			return err
		},
		Evaluate: func(_ context.Context, c Criterion, ev *Evidence) (bool, error) {
			if ev.Subject != nil {
				return subjectMembership(c, ev.Subject, attr)
			}
			return cartMembership(c, ev, attr)
		},
	}
}

func manufacturerDefinition() Definition {
	attr := func(p ProductInfo) string { return p.Manufacturer.String() }
	return Definition{
		ContentType: "manufacturer",
		Name:        "Manufacturer",
		Operators:   ChoiceOperators,
		Kind:        ValueRefs,
		ParseRef: func(raw string) error {
			_, err := domain.ParseManufacturerID(raw)
			return err
		},
		Evaluate: func(_ context.Context, c Criterion, ev *Evidence) (bool, error) {
			if ev.Subject != nil {
				return subjectMembership(c, ev.Subject, attr)
			}
			return cartMembership(c, ev, attr)
		},
	}
}

func groupDefinition() Definition {
	return Definition{
		ContentType: "group",
		Name:        "Group",
		Operators:   ChoiceOperators,
		Kind:        ValueRefs,
		ParseRef: func(raw string) error {
			_, err := domain.ParseGroupID(raw)
			return err
		},
		Evaluate: func(_ context.Context, c Criterion, ev *Evidence) (bool, error) {
			// Anonymous shoppers belong to no group.
			if !ev.Actor.Authenticated() {
				return false, nil
			}
			stored := refSet(c.Refs)
			raw := false
			for _, g := range ev.Actor.Groups {
				if stored[g.String()] {
					raw = true
					break
				}
			}
			return applyPolarity(c.Operator, raw), nil
		},
	}
}

func countryDefinition() Definition {
	return Definition{
		ContentType: "country",
		Name:        "Country",
		Operators:   ChoiceOperators,
		Kind:        ValueRefs,
		ParseRef: func(raw string) error {
			_, err := domain.ParseCountryCode(raw)
			return err
		},
		Evaluate: func(_ context.Context, c Criterion, ev *Evidence) (bool, error) {
			if ev.Actor.Country == "" {
				return false, nil
			}
			raw := refSet(c.Refs)[ev.Actor.Country.String()]
			return applyPolarity(c.Operator, raw), nil
		},
	}
}
