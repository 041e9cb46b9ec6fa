package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "merx/pkg/domain-errors"
)

func TestRegistryCreate(t *testing.T) {
	r := Defaults()

	t.Run("scalar value is parsed, not coerced", func(t *testing.T) {
		c, err := r.Create("cart_amount", RawValue{Operator: "gte", Value: "3"})
		require.NoError(t, err)
		assert.Equal(t, OpGreaterThanEqual, c.Operator)
		assert.Equal(t, 3.0, c.Value)
		assert.NotEqual(t, c.ID.String(), "00000000-0000-0000-0000-000000000000")
	})

	t.Run("malformed scalar is an error, never zero", func(t *testing.T) {
		_, err := r.Create("cart_amount", RawValue{Operator: "gte", Value: "three"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("missing scalar is an error", func(t *testing.T) {
		_, err := r.Create("order_sum", RawValue{Operator: "lt"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("time values parse as HH:MM", func(t *testing.T) {
		c, err := r.Create("time", RawValue{Operator: "gte", Value: "08:30"})
		require.NoError(t, err)
		assert.Equal(t, 510.0, c.Value)

		_, err = r.Create("time", RawValue{Operator: "gte", Value: "510"})
		assert.Error(t, err)
	})

	t.Run("unknown content type is unprocessable", func(t *testing.T) {
		_, err := r.Create("cart_weight", RawValue{Operator: "gte", Value: "1"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnprocessable))
	})

	t.Run("operator outside the type's legal set is rejected", func(t *testing.T) {
		// Numeric operator on a membership type.
		_, err := r.Create("category", RawValue{Operator: "gte", Refs: []string{"books"}})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

		// Validity operator on a threshold type.
		_, err = r.Create("cart_amount", RawValue{Operator: "is_valid", Value: "1"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("unknown operator is rejected", func(t *testing.T) {
		_, err := r.Create("cart_amount", RawValue{Operator: "equals", Value: "1"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("refs are validated and deduplicated", func(t *testing.T) {
		c, err := r.Create("category", RawValue{Operator: "is", Refs: []string{"books", "books", "toys"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"books", "toys"}, c.Refs)
	})

	t.Run("empty ref set is rejected", func(t *testing.T) {
		_, err := r.Create("category", RawValue{Operator: "is"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("invalid ref is rejected", func(t *testing.T) {
		_, err := r.Create("user", RawValue{Operator: "is", Refs: []string{"not-a-uuid"}})
		assert.Error(t, err)
	})

	t.Run("compositions require category and positive amount", func(t *testing.T) {
		c, err := r.Create("composition_category", RawValue{
			Operator: "is",
			Compositions: []RawComposition{
				{Category: "cat-a", Amount: 2},
				{Category: "cat-b", Amount: 1},
			},
		})
		require.NoError(t, err)
		require.Len(t, c.Compositions, 2)
		assert.Equal(t, 2, c.Compositions[0].Amount)

		_, err = r.Create("composition_category", RawValue{
			Operator:     "is",
			Compositions: []RawComposition{{Category: "cat-a", Amount: 0}},
		})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

		_, err = r.Create("composition_category", RawValue{Operator: "is"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("flag types take no value", func(t *testing.T) {
		c, err := r.Create("for_sale", RawValue{Operator: "is"})
		require.NoError(t, err)
		assert.Equal(t, OpIs, c.Operator)

		_, err = r.Create("for_sale", RawValue{Operator: "is", Value: "1"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("discount refs use validity operators", func(t *testing.T) {
		c, err := r.Create("discounts", RawValue{Operator: "is_valid", Refs: []string{"summer-sale"}})
		require.NoError(t, err)
		assert.Equal(t, OpIsValid, c.Operator)

		_, err = r.Create("discounts", RawValue{Operator: "is", Refs: []string{"summer-sale"}})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}
