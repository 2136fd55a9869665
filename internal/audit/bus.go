package audit

import (
	"context"
	"log/slog"
	"sync"
)

// Handler consumes one event. A returned error is logged by the bus and
// never reaches the publisher.
type Handler func(ctx context.Context, event Event) error

// Bus is the in-process publish/subscribe channel for domain events.
// Delivery is fire-and-forget relative to the originating request: the
// response never waits for subscribers, and a subscriber failure or panic
// never fails the operation that emitted the event.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[Kind][]Handler
	logger      *slog.Logger
	wg          sync.WaitGroup
}

// NewBus constructs an event bus.
func NewBus(logger *slog.Logger) *Bus {
	return &Bus{subscribers: make(map[Kind][]Handler), logger: logger}
}

// Subscribe registers a handler for one event kind.
func (b *Bus) Subscribe(kind Kind, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[kind] = append(b.subscribers[kind], handler)
}

// Publish delivers the event to every subscriber of its kind. Subscribers
// run on a context detached from request cancellation: a delivery already in
// flight completes even when the caller's request is aborted downstream.
func (b *Bus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := b.subscribers[event.EventKind()]
	b.mu.RUnlock()
	if len(handlers) == 0 {
		return
	}

	detached := context.WithoutCancel(ctx)
	for _, handler := range handlers {
		b.wg.Add(1)
		go b.dispatch(detached, handler, event)
	}
}

// Drain blocks until all in-flight deliveries complete. Used at shutdown and
// in tests.
func (b *Bus) Drain() {
	b.wg.Wait()
}

func (b *Bus) dispatch(ctx context.Context, handler Handler, event Event) {
	defer b.wg.Done()
	defer func() {
		if rec := recover(); rec != nil && b.logger != nil {
			b.logger.Error("audit subscriber panicked",
				slog.String("kind", string(event.EventKind())),
				slog.Any("panic", rec))
		}
	}()
	if err := handler(ctx, event); err != nil && b.logger != nil {
		b.logger.Error("audit subscriber failed",
			slog.String("kind", string(event.EventKind())),
			slog.String("transaction_id", event.EventScope().TransactionID),
			slog.Any("error", err))
	}
}
