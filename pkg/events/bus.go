package events

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"

	"github.com/rishtahub/rishta-backend/pkg/logger"
)

// Handler consumes a published event. Handlers run synchronously in
// publish order; a failing handler does not stop the others.
type Handler func(ctx context.Context, event any) error

// Bus is a synchronous in-process event bus. Events are dispatched to
// subscribers registered for the event's concrete type.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logg     *logger.Logger
}

func NewBus(logg *logger.Logger) *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
		logg:     logg,
	}
}

func typeKey(event any) string {
	return fmt.Sprintf("%T", event)
}

// Subscribe registers a handler for the concrete type of the prototype
// value. The prototype's value is ignored; only its type matters.
func (b *Bus) Subscribe(prototype any, h Handler) {
	if h == nil {
		return
	}
	key := typeKey(prototype)
	b.mu.Lock()
	b.handlers[key] = append(b.handlers[key], h)
	b.mu.Unlock()
}

// Publish dispatches the event to every subscriber of its type and
// returns the combined handler errors. A panicking handler is recovered
// and reported as an error without affecting other handlers.
func (b *Bus) Publish(ctx context.Context, event any) error {
	b.mu.RLock()
	handlers := b.handlers[typeKey(event)]
	b.mu.RUnlock()

	var combined error
	for _, h := range handlers {
		if err := b.invoke(ctx, h, event); err != nil {
			combined = multierr.Append(combined, err)
		}
	}
	return combined
}

func (b *Bus) invoke(ctx context.Context, h Handler, event any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("event handler panic: %v", r)
			if b.logg != nil {
				b.logg.Error(ctx, "event handler panicked", err)
			}
		}
	}()
	return h(ctx, event)
}
