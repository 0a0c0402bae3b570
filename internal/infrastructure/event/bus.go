package event

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/techcity/backoffice/internal/domain/shared"
)

// InMemoryEventBus dispatches domain events to registered handlers
// synchronously, in process. A failing handler is logged and never fails the
// publishing transaction.
type InMemoryEventBus struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
	catchAll []shared.EventHandler
	logger   *zap.Logger
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		handlers: make(map[string][]shared.EventHandler),
		logger:   logger,
	}
}

// Publish delivers events to every handler subscribed to their type
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, evt := range events {
		for _, handler := range b.handlersFor(evt.EventType()) {
			if err := b.dispatch(ctx, handler, evt); err != nil {
				b.logger.Error("handler failed to process event",
					zap.String("event_type", evt.EventType()),
					zap.String("event_id", evt.EventID().String()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Subscribe registers a handler for specific event types. With no types given
// the handler's own EventTypes are used; an empty result subscribes it to all
// events.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if len(eventTypes) == 0 {
		b.catchAll = append(b.catchAll, handler)
		return
	}
	for _, eventType := range eventTypes {
		b.handlers[eventType] = append(b.handlers[eventType], handler)
	}
}

// Unsubscribe removes a handler from every subscription list
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for eventType, handlers := range b.handlers {
		b.handlers[eventType] = remove(handlers, handler)
	}
	b.catchAll = remove(b.catchAll, handler)
}

func (b *InMemoryEventBus) handlersFor(eventType string) []shared.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	matched := b.handlers[eventType]
	out := make([]shared.EventHandler, 0, len(matched)+len(b.catchAll))
	out = append(out, matched...)
	out = append(out, b.catchAll...)
	return out
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, evt shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				zap.String("event_type", evt.EventType()),
				zap.Any("panic", r),
			)
		}
	}()
	return handler.Handle(ctx, evt)
}

func remove(handlers []shared.EventHandler, target shared.EventHandler) []shared.EventHandler {
	out := handlers[:0]
	for _, h := range handlers {
		if h != target {
			out = append(out, h)
		}
	}
	return out
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
