// Package bus is the in-process invalidation channel between the currency
// core and independently-rendered UI fragments. Signals carry no payload:
// subscribers re-read current state instead of trusting event data, which
// closes the staleness race a payload would open.
package bus

import (
	"sync"

	"go.uber.org/zap"
)

// Signal names one invalidation event.
type Signal string

const (
	// SignalSelectionChanged fires after the display currency or exchange
	// type changes. One signal per mutation, never two.
	SignalSelectionChanged Signal = "selection_changed"
	// SignalRatesRefreshed fires after a successful rate refresh. Never
	// fired on a failed refresh; stale-but-known state must not flap the UI.
	SignalRatesRefreshed Signal = "rates_refreshed"
)

// Subscription is one registered listener.
type Subscription struct {
	ID int
	C  <-chan Signal

	ch chan Signal
}

// InvalidationBus is an explicit, enumerable observer registry. Publish is
// fire-and-forget and never blocks: a subscriber that cannot keep up misses
// a signal, which is harmless because it re-reads state on the next one.
type InvalidationBus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]*Subscription
	logger *zap.Logger
}

// NewInvalidationBus creates an empty bus.
func NewInvalidationBus(log *zap.Logger) *InvalidationBus {
	if log == nil {
		log = zap.NewNop()
	}
	return &InvalidationBus{
		subs:   make(map[int]*Subscription),
		logger: log,
	}
}

// Subscribe registers a listener and returns its subscription. The channel
// is buffered so a briefly busy subscriber does not drop signals.
func (b *InvalidationBus) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	ch := make(chan Signal, 8)
	sub := &Subscription{ID: b.nextID, C: ch, ch: ch}
	b.subs[sub.ID] = sub

	return sub
}

// Unsubscribe removes a listener and closes its channel. Unknown IDs are
// ignored so a double unsubscribe is safe.
func (b *InvalidationBus) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subs[id]
	if !ok {
		return
	}
	delete(b.subs, id)
	close(sub.ch)
}

// Publish broadcasts a signal to every subscriber without blocking.
func (b *InvalidationBus) Publish(sig Signal) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		select {
		case sub.ch <- sig:
		default:
			b.logger.Debug("subscriber lagging, signal dropped",
				zap.Int("subscriber", sub.ID),
				zap.String("signal", string(sig)))
		}
	}
}

// Len returns the number of live subscriptions, making leaks checkable.
func (b *InvalidationBus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subs)
}
