package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "merx/pkg/domain-errors"
)

func TestParseUserID(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseUserID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseUserID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil uuid", func(t *testing.T) {
		_, err := ParseUserID("00000000-0000-0000-0000-000000000000")
		require.Error(t, err)
	})

	t.Run("accepts and canonicalizes a valid uuid", func(t *testing.T) {
		id, err := ParseUserID("550E8400-E29B-41D4-A716-446655440000")
		require.NoError(t, err)
		assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", id.String())
		assert.False(t, id.IsNil())
	})

	t.Run("zero value is anonymous", func(t *testing.T) {
		var id UserID
		assert.True(t, id.IsNil())
	})
}

func TestParseCatalogRefs(t *testing.T) {
	t.Run("rejects empty refs", func(t *testing.T) {
		_, err := ParseProductID("")
		assert.Error(t, err)
		_, err = ParseCategoryID("")
		assert.Error(t, err)
		_, err = ParseDiscountID("")
		assert.Error(t, err)
	})

	t.Run("rejects whitespace", func(t *testing.T) {
		_, err := ParseProductID("two words")
		assert.Error(t, err)
		_, err = ParseGroupID("tab\tchar")
		assert.Error(t, err)
	})

	t.Run("accepts opaque slugs", func(t *testing.T) {
		id, err := ParseProductID("sku-123")
		require.NoError(t, err)
		assert.Equal(t, "sku-123", id.String())
	})
}

func TestParseCountryCode(t *testing.T) {
	t.Run("uppercases valid codes", func(t *testing.T) {
		code, err := ParseCountryCode("de")
		require.NoError(t, err)
		assert.Equal(t, "DE", code.String())
	})

	t.Run("rejects wrong lengths and non-letters", func(t *testing.T) {
		for _, raw := range []string{"", "D", "DEU", "D3", "##"} {
			_, err := ParseCountryCode(raw)
			assert.Error(t, err, raw)
		}
	})
}

func TestParseOwnerRef(t *testing.T) {
	t.Run("accepts every owner kind", func(t *testing.T) {
		for _, kind := range []string{"discount", "shipping_method", "payment_method"} {
			owner, err := ParseOwnerRef(kind, "x1")
			require.NoError(t, err, kind)
			assert.Equal(t, kind+":x1", owner.String())
		}
	})

	t.Run("rejects unknown kinds", func(t *testing.T) {
		_, err := ParseOwnerRef("voucher", "x1")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects empty ids", func(t *testing.T) {
		_, err := ParseOwnerRef("discount", "")
		assert.Error(t, err)
	})

	t.Run("discount owner constructor", func(t *testing.T) {
		owner := DiscountOwner("summer-sale")
		assert.Equal(t, OwnerDiscount, owner.Kind)
		assert.Equal(t, "discount:summer-sale", owner.String())
		assert.False(t, owner.IsZero())
		assert.True(t, OwnerRef{}.IsZero())
	})
}
