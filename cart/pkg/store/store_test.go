package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inErrors "github.com/ammasidli/storefront/internal/errors"
)

func openEmpty(t *testing.T) (*Store, *MemorySlot) {
	t.Helper()
	slot := NewMemorySlot()
	s, state, err := Open(context.Background(), slot)
	require.NoError(t, err)
	require.Equal(t, LoadEmpty, state)
	return s, slot
}

func TestAddToCartMergesSameIdAndSize(t *testing.T) {
	c := context.Background()
	s, _ := openEmpty(t)

	require.NoError(t, s.AddToCart(c, CartItem{ID: "idli", Name: "Idli", Size: "M", Price: "₹40", Quantity: 2}))
	require.NoError(t, s.AddToCart(c, CartItem{ID: "idli", Name: "Idli", Size: "L", Price: "₹50", Quantity: 1}))
	require.NoError(t, s.AddToCart(c, CartItem{ID: "idli", Name: "Idli", Size: "M", Price: "₹40", Quantity: 3}))

	items := s.Items()
	assert.Len(t, items, 2)
	assert.Equal(t, int32(5), items[0].Quantity)
	assert.Equal(t, int32(1), items[1].Quantity)
	assert.Equal(t, int32(6), s.CartItemsCount())
}

func TestRemoveFromCartAbsentKeyIsNoop(t *testing.T) {
	c := context.Background()
	s, _ := openEmpty(t)

	require.NoError(t, s.AddToCart(c, CartItem{ID: "vada", Name: "Vada", Size: "M", Price: "₹30", Quantity: 1}))
	require.NoError(t, s.RemoveFromCart(c, "vada", "XL"))
	assert.Len(t, s.Items(), 1)

	require.NoError(t, s.RemoveFromCart(c, "vada", "M"))
	assert.Empty(t, s.Items())
}

func TestUpdateQuantityZeroEqualsRemove(t *testing.T) {
	c := context.Background()

	viaUpdate, _ := openEmpty(t)
	viaRemove, _ := openEmpty(t)
	for _, s := range []*Store{viaUpdate, viaRemove} {
		require.NoError(t, s.AddToCart(c, CartItem{ID: "dosa", Name: "Dosa", Size: "M", Price: "₹60", Quantity: 2}))
		require.NoError(t, s.AddToCart(c, CartItem{ID: "vada", Name: "Vada", Size: "S", Price: "₹30", Quantity: 1}))
	}

	require.NoError(t, viaUpdate.UpdateQuantity(c, "dosa", "M", 0))
	require.NoError(t, viaRemove.RemoveFromCart(c, "dosa", "M"))

	assert.Equal(t, viaRemove.Items(), viaUpdate.Items())
}

func TestUpdateQuantityReplaces(t *testing.T) {
	c := context.Background()
	s, _ := openEmpty(t)

	require.NoError(t, s.AddToCart(c, CartItem{ID: "dosa", Name: "Dosa", Size: "M", Price: "₹60", Quantity: 2}))
	require.NoError(t, s.UpdateQuantity(c, "dosa", "M", 7))
	assert.Equal(t, int32(7), s.Items()[0].Quantity)
}

func TestCartTotal(t *testing.T) {
	c := context.Background()
	s, _ := openEmpty(t)

	require.NoError(t, s.AddToCart(c, CartItem{ID: "a", Name: "A", Price: "₹40", Quantity: 2}))
	require.NoError(t, s.AddToCart(c, CartItem{ID: "b", Name: "B", Price: "₹15", Quantity: 3}))

	total, err := s.CartTotal()
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(125).Equal(total), "got %s", total)
}

func TestCartTotalMalformedPrice(t *testing.T) {
	c := context.Background()
	s, _ := openEmpty(t)

	require.NoError(t, s.AddToCart(c, CartItem{ID: "a", Name: "A", Price: "₹40", Quantity: 1}))
	require.NoError(t, s.AddToCart(c, CartItem{ID: "b", Name: "B", Price: "free", Quantity: 1}))

	_, err := s.CartTotal()
	assert.ErrorIs(t, err, inErrors.ErrMalformedPrice)
}

func TestToOrderInputExpandsUnits(t *testing.T) {
	c := context.Background()
	s, _ := openEmpty(t)
	userID := uuid.New()

	require.NoError(t, s.AddToCart(c, CartItem{ID: "tea", Name: "Tea", Size: "M", Price: "₹20", Quantity: 2, Category: "beverage"}))

	order, err := s.ToOrderInput(userID)
	require.NoError(t, err)

	assert.Equal(t, userID, order.UserID)
	assert.Equal(t, "PENDING", string(order.Status))
	require.Len(t, order.Products, 2)
	for _, p := range order.Products {
		assert.Equal(t, "Tea (M)", p.Name)
		assert.True(t, decimal.NewFromInt(20).Equal(p.Price))
	}
	assert.True(t, decimal.NewFromInt(40).Equal(order.CategoryTotals["beverage"]))
}

func TestOrderAmountEqualsCartTotal(t *testing.T) {
	c := context.Background()
	s, _ := openEmpty(t)

	require.NoError(t, s.AddToCart(c, CartItem{ID: "idli", Name: "Idli", Size: "M", Price: "₹40", Quantity: 2, Category: "food"}))
	require.NoError(t, s.AddToCart(c, CartItem{ID: "tea", Name: "Tea", Size: "S", Price: "₹15", Quantity: 3, Category: "beverage"}))

	order, err := s.ToOrderInput(uuid.New())
	require.NoError(t, err)
	total, err := s.CartTotal()
	require.NoError(t, err)

	assert.True(t, total.Equal(order.Amount()), "amount=%s total=%s", order.Amount(), total)
}

func TestMutationsWriteThroughToSlot(t *testing.T) {
	c := context.Background()
	s, slot := openEmpty(t)

	require.NoError(t, s.AddToCart(c, CartItem{ID: "idli", Name: "Idli", Size: "M", Price: "₹40", Quantity: 2}))
	require.NoError(t, s.AddToCart(c, CartItem{ID: "tea", Name: "Tea", Size: "S", Price: "₹15", Quantity: 1}))
	require.NoError(t, s.UpdateQuantity(c, "tea", "S", 4))
	require.NoError(t, s.RemoveFromCart(c, "idli", "M"))

	want, err := json.Marshal(s.Items())
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(slot.Snapshot()))
}

func TestOpenRestoresSnapshot(t *testing.T) {
	c := context.Background()
	s, slot := openEmpty(t)
	require.NoError(t, s.AddToCart(c, CartItem{ID: "idli", Name: "Idli", Size: "M", Price: "₹40", Quantity: 2}))

	reopened, state, err := Open(c, slot)
	require.NoError(t, err)
	assert.Equal(t, LoadRestored, state)
	assert.Equal(t, s.Items(), reopened.Items())
}

func TestOpenDiscardsCorruptSnapshot(t *testing.T) {
	c := context.Background()
	slot := NewMemorySlot()
	slot.Seed([]byte(`{not json`))

	s, state, err := Open(c, slot)
	require.NoError(t, err)
	assert.Equal(t, LoadDiscarded, state)
	assert.Empty(t, s.Items())
}

func TestClearCart(t *testing.T) {
	c := context.Background()
	s, slot := openEmpty(t)
	require.NoError(t, s.AddToCart(c, CartItem{ID: "idli", Name: "Idli", Size: "M", Price: "₹40", Quantity: 2}))

	require.NoError(t, s.ClearCart(c))
	assert.Empty(t, s.Items())
	assert.JSONEq(t, `[]`, string(slot.Snapshot()))
}
