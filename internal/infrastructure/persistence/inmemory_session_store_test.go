package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/checkout/internal/domain/checkout"
)

func newSession(ttl time.Duration) *checkout.Session {
	now := time.Now()
	return &checkout.Session{
		ID:      "sess-1",
		StoreID: 42,
		Step:    checkout.StepCustomerInfo,
		Data: checkout.SessionData{
			Items: []checkout.LineItem{{ProductID: 1, Quantity: 2}},
		},
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestInMemorySessionStore_CreateAndGet(t *testing.T) {
	store := NewInMemorySessionStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newSession(time.Minute)))

	got, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.StoreID)
	assert.Equal(t, checkout.StepCustomerInfo, got.Step)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, checkout.ErrSessionExpired)
}

func TestInMemorySessionStore_Expiry(t *testing.T) {
	store := NewInMemorySessionStore()
	ctx := context.Background()

	session := newSession(time.Minute)
	require.NoError(t, store.Create(ctx, session))

	// Move the clock past the session's ExpiresAt
	store.now = func() time.Time { return session.ExpiresAt.Add(time.Second) }

	_, err := store.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, checkout.ErrSessionExpired)

	_, err = store.UpdateStep(ctx, "sess-1", checkout.StepShipping)
	assert.ErrorIs(t, err, checkout.ErrSessionExpired)
}

func TestInMemorySessionStore_UpdateStep(t *testing.T) {
	store := NewInMemorySessionStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newSession(time.Minute)))

	updated, err := store.UpdateStep(ctx, "sess-1", checkout.StepShipping)
	require.NoError(t, err)
	assert.Equal(t, checkout.StepShipping, updated.Step)

	got, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, checkout.StepShipping, got.Step)
}

func TestInMemorySessionStore_UpdateDataIsShallow(t *testing.T) {
	store := NewInMemorySessionStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newSession(time.Minute)))

	_, err := store.UpdateData(ctx, "sess-1", checkout.SessionDataPatch{
		CustomerInfo: &checkout.CustomerInfo{FirstName: "Ada", Email: "a@example.com"},
	})
	require.NoError(t, err)

	// A later patch without customer info leaves it untouched
	updated, err := store.UpdateData(ctx, "sess-1", checkout.SessionDataPatch{
		ShippingAddress: &checkout.ShippingAddress{Line1: "1 Main St", City: "Lagos", Country: "NG"},
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Data.CustomerInfo)
	assert.Equal(t, "a@example.com", updated.Data.CustomerInfo.Email)
	require.NotNil(t, updated.Data.ShippingAddress)

	// Replacing customer info swaps the whole object, not field by field
	updated, err = store.UpdateData(ctx, "sess-1", checkout.SessionDataPatch{
		CustomerInfo: &checkout.CustomerInfo{Email: "b@example.com"},
	})
	require.NoError(t, err)
	assert.Empty(t, updated.Data.CustomerInfo.FirstName)
	assert.Equal(t, "b@example.com", updated.Data.CustomerInfo.Email)

	// Items survive every patch
	assert.Len(t, updated.Data.Items, 1)
}

func TestInMemorySessionStore_Delete(t *testing.T) {
	store := NewInMemorySessionStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newSession(time.Minute)))
	require.NoError(t, store.Delete(ctx, "sess-1"))

	_, err := store.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, checkout.ErrSessionExpired)
}
