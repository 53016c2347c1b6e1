package event

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appcheckout "github.com/storefront/checkout/internal/application/checkout"
	"github.com/storefront/checkout/internal/domain/shared"
)

type capturingHandler struct {
	types    []string
	received []shared.DomainEvent
	err      error
	panics   bool
}

func (h *capturingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("handler blew up")
	}
	h.received = append(h.received, event)
	return h.err
}

func (h *capturingHandler) EventTypes() []string { return h.types }

func TestInMemoryEventBus_PublishToSubscribers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	expired := &capturingHandler{types: []string{appcheckout.EventTypeSessionExpired}}
	all := &capturingHandler{}
	bus.Subscribe(expired)
	bus.Subscribe(all)

	event := appcheckout.NewSessionExpiredEvent("sess-1", 42)
	require.NoError(t, bus.Publish(context.Background(), event))

	require.Len(t, expired.received, 1)
	assert.Equal(t, appcheckout.EventTypeSessionExpired, expired.received[0].EventType())
	assert.Len(t, all.received, 1, "wildcard handler sees every event")

	other := appcheckout.NewCheckoutCompletedEvent("sess-1", 42)
	require.NoError(t, bus.Publish(context.Background(), other))
	assert.Len(t, expired.received, 1, "type-scoped handler skips other types")
	assert.Len(t, all.received, 2)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	h := &capturingHandler{types: []string{appcheckout.EventTypeSessionExpired}}
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(context.Background(), appcheckout.NewSessionExpiredEvent("sess-1", 42)))
	assert.Empty(t, h.received)
}

func TestInMemoryEventBus_PanickingHandlerDoesNotStopDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	bad := &capturingHandler{types: []string{appcheckout.EventTypeSessionExpired}, panics: true}
	good := &capturingHandler{types: []string{appcheckout.EventTypeSessionExpired}}
	bus.Subscribe(bad)
	bus.Subscribe(good)

	require.NoError(t, bus.Publish(context.Background(), appcheckout.NewSessionExpiredEvent("sess-1", 42)))
	assert.Len(t, good.received, 1)
}
