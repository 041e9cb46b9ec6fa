package criteria

import (
	"strconv"

	"github.com/google/uuid"

	"merx/pkg/domain"
	dErrors "merx/pkg/domain-errors"
	pstrings "merx/pkg/platform/strings"
)

// RawComposition is one unparsed (category, amount) pair.
type RawComposition struct {
	Category string `json:"category"`
	Amount   int    `json:"amount"`
}

// RawValue is the untyped operator+value input arriving from the
// management surface.
type RawValue struct {
	Operator     string           `json:"operator"`
	Value        string           `json:"value,omitempty"`
	Refs         []string         `json:"refs,omitempty"`
	Compositions []RawComposition `json:"compositions,omitempty"`
}

// Create builds a typed criterion from raw input. Malformed input is
// a validation error surfaced to the caller; nothing is silently
// coerced to a zero value.
func (r *Registry) Create(contentType string, raw RawValue) (Criterion, error) {
	def, err := r.Lookup(contentType)
	if err != nil {
		return Criterion{}, dErrors.Wrap(dErrors.CodeUnprocessable, "unknown criterion type", err)
	}

	op, err := ParseOperator(raw.Operator)
	if err != nil {
		return Criterion{}, err
	}
	if !def.Allows(op) {
		return Criterion{}, dErrors.Newf(dErrors.CodeInvalidInput,
			"operator %q is not legal for criterion type %q", op, contentType)
	}

	c := Criterion{
		ID:          uuid.New(),
		ContentType: contentType,
		Operator:    op,
	}

	switch def.Kind {
	case ValueScalar:
		if raw.Value == "" {
			return Criterion{}, dErrors.Newf(dErrors.CodeInvalidInput,
				"criterion type %q requires a value", contentType)
		}
		parse := def.ParseScalar
		if parse == nil {
			parse = func(s string) (float64, error) { return strconv.ParseFloat(s, 64) }
		}
		v, err := parse(raw.Value)
		if err != nil {
			return Criterion{}, dErrors.Newf(dErrors.CodeInvalidInput,
				"invalid value %q for criterion type %q", raw.Value, contentType)
		}
		c.Value = v

	case ValueRefs:
		refs := pstrings.DedupeAndTrim(raw.Refs)
		if len(refs) == 0 {
			return Criterion{}, dErrors.Newf(dErrors.CodeInvalidInput,
				"criterion type %q requires at least one reference", contentType)
		}
		for _, ref := range refs {
			if def.ParseRef != nil {
				if err := def.ParseRef(ref); err != nil {
					return Criterion{}, err
				}
			}
		}
		c.Refs = refs

	case ValueCompositions:
		if len(raw.Compositions) == 0 {
			return Criterion{}, dErrors.Newf(dErrors.CodeInvalidInput,
				"criterion type %q requires at least one composition entry", contentType)
		}
		entries := make([]CompositionEntry, 0, len(raw.Compositions))
		for _, rc := range raw.Compositions {
			category, err := domain.ParseCategoryID(rc.Category)
			if err != nil {
				return Criterion{}, err
			}
			if rc.Amount < 1 {
				return Criterion{}, dErrors.Newf(dErrors.CodeInvalidInput,
					"composition amount for category %q must be at least 1", rc.Category)
			}
			entries = append(entries, CompositionEntry{Category: category, Amount: rc.Amount})
		}
		c.Compositions = entries

	case ValueNone:
		if raw.Value != "" || len(raw.Refs) > 0 || len(raw.Compositions) > 0 {
			return Criterion{}, dErrors.Newf(dErrors.CodeInvalidInput,
				"criterion type %q takes no value", contentType)
		}
	}

	return c, nil
}
