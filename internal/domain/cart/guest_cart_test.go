package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuestCart_Add_UpsertsByProduct(t *testing.T) {
	c := NewGuestCart(1)

	require.NoError(t, c.Add(5, 2))
	require.NoError(t, c.Add(5, 3))

	require.Len(t, c.Lines, 1, "same product must not create a second line")
	assert.Equal(t, int64(5), c.Lines[0].ProductID)
	assert.Equal(t, 5, c.Lines[0].Quantity)
}

func TestGuestCart_Add_PreservesInsertionOrder(t *testing.T) {
	c := NewGuestCart(1)
	require.NoError(t, c.Add(9, 1))
	require.NoError(t, c.Add(3, 1))
	require.NoError(t, c.Add(9, 1))

	require.Len(t, c.Lines, 2)
	assert.Equal(t, int64(9), c.Lines[0].ProductID)
	assert.Equal(t, int64(3), c.Lines[1].ProductID)
}

func TestGuestCart_Add_Validation(t *testing.T) {
	c := NewGuestCart(1)

	assert.ErrorIs(t, c.Add(0, 1), ErrInvalidProduct)
	assert.ErrorIs(t, c.Add(1, 0), ErrInvalidQuantity)
	assert.ErrorIs(t, c.Add(1, -2), ErrInvalidQuantity)
	assert.Empty(t, c.Lines)
}

func TestGuestCart_Remove(t *testing.T) {
	c := NewGuestCart(1)
	require.NoError(t, c.Add(5, 2))
	require.NoError(t, c.Add(7, 1))

	c.Remove(5)

	require.Len(t, c.Lines, 1)
	assert.Equal(t, int64(7), c.Lines[0].ProductID)

	// Removing an absent product is a no-op
	c.Remove(99)
	assert.Len(t, c.Lines, 1)
}

func TestGuestCart_ItemCount(t *testing.T) {
	c := NewGuestCart(1)
	assert.Equal(t, 0, c.ItemCount())
	assert.True(t, c.IsEmpty())

	require.NoError(t, c.Add(5, 2))
	require.NoError(t, c.Add(7, 3))
	assert.Equal(t, 5, c.ItemCount())
	assert.False(t, c.IsEmpty())
}

func TestCarts_Get(t *testing.T) {
	carts := Carts{}
	got := carts.Get(4)
	require.NotNil(t, got)
	assert.Equal(t, int64(4), got.StoreID)
	assert.True(t, got.IsEmpty())

	existing := NewGuestCart(4)
	require.NoError(t, existing.Add(1, 1))
	carts[4] = existing
	assert.Equal(t, existing, carts.Get(4))
}

func TestCarts_TotalItems(t *testing.T) {
	a := NewGuestCart(1)
	require.NoError(t, a.Add(5, 2))
	b := NewGuestCart(2)
	require.NoError(t, b.Add(6, 4))

	carts := Carts{1: a, 2: b}
	assert.Equal(t, 6, carts.TotalItems())
}
