package events

import (
	"context"
	"sync"
)

// EventHandler consumes a coupon lifecycle event.
type EventHandler func(context.Context, Event) error

// Dispatcher fans coupon lifecycle events out to in-process subscribers.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// dispatcher delivers events synchronously on the publisher's goroutine.
type dispatcher struct {
	mu       sync.RWMutex
	handlers map[EventType][]EventHandler
}

// NewInMemoryDispatcher returns a synchronous in-process dispatcher.
func NewInMemoryDispatcher() Dispatcher {
	return &dispatcher{handlers: make(map[EventType][]EventHandler)}
}

// Publish delivers the event to every subscriber of its type. A failing
// subscriber does not block the others.
func (d *dispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	handlers := append([]EventHandler{}, d.handlers[event.Type]...)
	d.mu.RUnlock()

	for _, handler := range handlers {
		_ = handler(ctx, event)
	}
	return nil
}

// Subscribe registers a handler for the event type.
func (d *dispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = append(d.handlers[eventType], handler)
}
