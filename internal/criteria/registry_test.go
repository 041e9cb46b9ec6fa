package criteria

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubDefinition(contentType string) Definition {
	return Definition{
		ContentType: contentType,
		Name:        contentType,
		Operators:   ChoiceOperators,
		Kind:        ValueNone,
		Evaluate: func(context.Context, Criterion, *Evidence) (bool, error) {
			return true, nil
		},
	}
}

func TestRegistryRegister(t *testing.T) {
	t.Run("registered type resolves back to its definition", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(stubDefinition("stub")))

		def, err := r.Lookup("stub")
		require.NoError(t, err)
		assert.Equal(t, "stub", def.ContentType)
	})

	t.Run("duplicate content type is rejected", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(stubDefinition("stub")))

		err := r.Register(stubDefinition("stub"))
		assert.ErrorIs(t, err, ErrDuplicateType)
	})

	t.Run("empty content type is rejected", func(t *testing.T) {
		r := NewRegistry()
		assert.Error(t, r.Register(stubDefinition("")))
	})

	t.Run("missing evaluate func is rejected", func(t *testing.T) {
		r := NewRegistry()
		def := stubDefinition("stub")
		def.Evaluate = nil
		assert.Error(t, r.Register(def))
	})

	t.Run("empty operator set is rejected", func(t *testing.T) {
		r := NewRegistry()
		def := stubDefinition("stub")
		def.Operators = nil
		assert.Error(t, r.Register(def))
	})
}

func TestRegistryLookup(t *testing.T) {
	t.Run("unknown type yields ErrUnknownType", func(t *testing.T) {
		r := NewRegistry()
		_, err := r.Lookup("retired_type")
		assert.ErrorIs(t, err, ErrUnknownType)
	})
}

func TestRegistryList(t *testing.T) {
	t.Run("listing preserves registration order", func(t *testing.T) {
		r := NewRegistry()
		for _, ct := range []string{"c", "a", "b"} {
			require.NoError(t, r.Register(stubDefinition(ct)))
		}

		infos := r.List()
		require.Len(t, infos, 3)
		assert.Equal(t, "c", infos[0].ID)
		assert.Equal(t, "a", infos[1].ID)
		assert.Equal(t, "b", infos[2].ID)
	})
}

func TestDefaults(t *testing.T) {
	r := Defaults()

	expected := []string{
		"order_count", "order_sum", "cart_amount", "cart_price",
		"max_weight", "profit", "time",
		"category", "product", "manufacturer", "group", "country",
		"composition_category", "discounts",
		"for_sale", "manual_delivery_time", "user",
	}

	t.Run("every built-in type is registered", func(t *testing.T) {
		assert.Equal(t, len(expected), r.Len())
		for _, ct := range expected {
			def, err := r.Lookup(ct)
			require.NoError(t, err, ct)
			assert.Equal(t, ct, def.ContentType)
			assert.NotEmpty(t, def.Name, ct)
		}
	})

	t.Run("content types survive a lookup round-trip", func(t *testing.T) {
		for _, info := range r.List() {
			def, err := r.Lookup(info.ID)
			require.NoError(t, err)
			assert.Equal(t, info.ID, def.ContentType)
		}
	})

	t.Run("unknown type does not fold into a default", func(t *testing.T) {
		_, err := r.Lookup("cart_weight")
		assert.True(t, errors.Is(err, ErrUnknownType))
	})
}
