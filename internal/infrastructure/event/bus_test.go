package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/techcity/backoffice/internal/domain/shared"
)

type recordingHandler struct {
	types    []string
	received []shared.DomainEvent
	err      error
	panics   bool
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.received = append(h.received, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func newTestEvent(eventType string) shared.DomainEvent {
	evt := shared.NewBaseDomainEvent(eventType, "invoice", uuid.New(), uuid.New())
	return &evt
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	t.Run("delivers to handlers subscribed to the type", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{types: []string{"invoice.created"}}
		bus.Subscribe(handler)

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("invoice.created")))
		require.NoError(t, bus.Publish(context.Background(), newTestEvent("invoice.cancelled")))

		require.Len(t, handler.received, 1)
		assert.Equal(t, "invoice.created", handler.received[0].EventType())
	})

	t.Run("handler with no types receives every event", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{}
		bus.Subscribe(handler)

		require.NoError(t, bus.Publish(context.Background(),
			newTestEvent("invoice.created"),
			newTestEvent("deposit.received"),
		))

		assert.Len(t, handler.received, 2)
	})

	t.Run("explicit subscription types override the handler's own", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{types: []string{"invoice.created"}}
		bus.Subscribe(handler, "deposit.received")

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("invoice.created")))
		require.NoError(t, bus.Publish(context.Background(), newTestEvent("deposit.received")))

		require.Len(t, handler.received, 1)
		assert.Equal(t, "deposit.received", handler.received[0].EventType())
	})

	t.Run("a failing handler does not fail the publish", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		failing := &recordingHandler{err: errors.New("downstream unavailable")}
		healthy := &recordingHandler{}
		bus.Subscribe(failing)
		bus.Subscribe(healthy)

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("invoice.created")))
		assert.Len(t, healthy.received, 1)
	})

	t.Run("a panicking handler does not fail the publish", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		bus.Subscribe(&recordingHandler{panics: true})
		healthy := &recordingHandler{}
		bus.Subscribe(healthy)

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("invoice.created")))
		assert.Len(t, healthy.received, 1)
	})
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	typed := &recordingHandler{types: []string{"invoice.created"}}
	catchAll := &recordingHandler{}
	bus.Subscribe(typed)
	bus.Subscribe(catchAll)

	bus.Unsubscribe(typed)
	bus.Unsubscribe(catchAll)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("invoice.created")))
	assert.Empty(t, typed.received)
	assert.Empty(t, catchAll.received)
}
