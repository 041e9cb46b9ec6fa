package criterion

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merx/internal/criteria"
	"merx/pkg/domain"
)

func testOwner(t *testing.T, id string) domain.OwnerRef {
	t.Helper()
	owner, err := domain.ParseOwnerRef("discount", id)
	require.NoError(t, err)
	return owner
}

func testCriterion(owner domain.OwnerRef, position int, contentType string) criteria.Criterion {
	return criteria.Criterion{
		ID:          uuid.New(),
		Owner:       owner,
		Position:    position,
		ContentType: contentType,
		Operator:    criteria.OpIs,
	}
}

func TestInMemoryStoreReplaceAndList(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	owner := testOwner(t, "d1")

	t.Run("missing owner lists empty", func(t *testing.T) {
		set, err := store.ListForOwner(ctx, owner)
		require.NoError(t, err)
		assert.Empty(t, set)
	})

	t.Run("list returns position order regardless of insert order", func(t *testing.T) {
		set := []criteria.Criterion{
			testCriterion(owner, 2, "for_sale"),
			testCriterion(owner, 0, "cart_amount"),
			testCriterion(owner, 1, "category"),
		}
		require.NoError(t, store.ReplaceForOwner(ctx, owner, set))

		got, err := store.ListForOwner(ctx, owner)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "cart_amount", got[0].ContentType)
		assert.Equal(t, "category", got[1].ContentType)
		assert.Equal(t, "for_sale", got[2].ContentType)
	})

	t.Run("replace swaps the whole set", func(t *testing.T) {
		require.NoError(t, store.ReplaceForOwner(ctx, owner, []criteria.Criterion{
			testCriterion(owner, 0, "country"),
		}))

		got, err := store.ListForOwner(ctx, owner)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "country", got[0].ContentType)
	})

	t.Run("owners are isolated", func(t *testing.T) {
		other := testOwner(t, "d2")
		got, err := store.ListForOwner(ctx, other)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("list copies do not alias the stored set", func(t *testing.T) {
		got, err := store.ListForOwner(ctx, owner)
		require.NoError(t, err)
		got[0].ContentType = "mutated"

		again, err := store.ListForOwner(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, "country", again[0].ContentType)
	})
}

func TestInMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	owner := testOwner(t, "d1")

	require.NoError(t, store.ReplaceForOwner(ctx, owner, []criteria.Criterion{
		testCriterion(owner, 0, "for_sale"),
	}))
	require.NoError(t, store.DeleteForOwner(ctx, owner))

	got, err := store.ListForOwner(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, got)

	// Deleting a missing owner is a no-op.
	assert.NoError(t, store.DeleteForOwner(ctx, owner))
}
