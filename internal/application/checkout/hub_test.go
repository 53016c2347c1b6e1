package checkout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/checkout/internal/domain/checkout"
)

func TestHubStartRegistersCoordinator(t *testing.T) {
	store := newFakeSessionStore()
	hub := NewHub(&fakeCommerceAPI{initResult: validInitResult()}, store, nil, nil, Config{})

	coord, state, err := hub.Start(context.Background(), 7)
	require.NoError(t, err)
	require.NotEmpty(t, state.SessionID)

	got, err := hub.Get(context.Background(), state.SessionID)
	require.NoError(t, err)
	assert.Same(t, coord, got)
}

func TestHubGetResumesUnknownSession(t *testing.T) {
	store := newFakeSessionStore()
	hub := NewHub(&fakeCommerceAPI{initResult: validInitResult()}, store, nil, nil, Config{})

	_, state, err := hub.Start(context.Background(), 7)
	require.NoError(t, err)

	// A second hub simulates another process resuming the same session.
	other := NewHub(&fakeCommerceAPI{initResult: validInitResult()}, store, nil, nil, Config{})
	coord, err := other.Get(context.Background(), state.SessionID)
	require.NoError(t, err)

	resumed := coord.State()
	assert.Equal(t, state.SessionID, resumed.SessionID)
	assert.Equal(t, checkout.StepCustomerInfo, resumed.CurrentStep)
}

func TestHubGetMissingSession(t *testing.T) {
	hub := NewHub(&fakeCommerceAPI{initResult: validInitResult()}, newFakeSessionStore(), nil, nil, Config{})

	_, err := hub.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, checkout.ErrSessionExpired)
}

func TestHubReleaseForgetsSession(t *testing.T) {
	store := newFakeSessionStore()
	hub := NewHub(&fakeCommerceAPI{initResult: validInitResult()}, store, nil, nil, Config{})

	first, state, err := hub.Start(context.Background(), 7)
	require.NoError(t, err)

	hub.Release(state.SessionID)

	// The session still exists in the store, so Get resumes a new
	// coordinator rather than returning the released one.
	second, err := hub.Get(context.Background(), state.SessionID)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}
