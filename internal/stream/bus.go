// Package stream fans rating-change events out to live subscribers. The
// rating engine publishes after a successful commit; delivery transports
// (websocket today) subscribe and never touch the commit path.
package stream

import (
	"sync"
	"time"
)

// RatingEvent announces one profile's committed rating change.
type RatingEvent struct {
	ProfileID string    `json:"profile_id"`
	Rating    int       `json:"rating"`
	Change    int       `json:"change"`
	At        time.Time `json:"at"`
}

// Publisher is the side the rating engine sees.
type Publisher interface {
	PublishRatingChange(event RatingEvent)
}

// Bus is an in-process publisher with per-subscriber coalescing: rapid
// changes to the same profile collapse to the latest value, so delivery is
// at-least-once but not necessarily every intermediate rating.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*Subscription
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]*Subscription)}
}

// Subscribe registers a new subscriber. The caller must Close it when done.
func (b *Bus) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{
		id:      b.nextID,
		bus:     b,
		pending: make(map[string]RatingEvent),
		ready:   make(chan struct{}, 1),
	}
	b.subs[sub.id] = sub
	return sub
}

// PublishRatingChange delivers the event to every subscriber.
func (b *Bus) PublishRatingChange(event RatingEvent) {
	b.mu.Lock()
	subs := make([]*Subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.Unlock()

	for _, sub := range subs {
		sub.offer(event)
	}
}

// SubscriberCount returns the number of active subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Bus) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
}

// Subscription receives coalesced rating events. Wait on Ready, then Drain.
type Subscription struct {
	id  int
	bus *Bus

	mu      sync.Mutex
	pending map[string]RatingEvent
	ready   chan struct{}
	closed  bool
}

func (s *Subscription) offer(event RatingEvent) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	// Latest value wins per profile. The notify send stays under the lock
	// so it cannot race a concurrent Close of the channel.
	s.pending[event.ProfileID] = event
	select {
	case s.ready <- struct{}{}:
	default:
	}
	s.mu.Unlock()
}

// Ready signals that Drain will return at least one event. The channel is
// closed when the subscription is closed.
func (s *Subscription) Ready() <-chan struct{} {
	return s.ready
}

// Drain returns and clears the pending events.
func (s *Subscription) Drain() []RatingEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		return nil
	}
	events := make([]RatingEvent, 0, len(s.pending))
	for _, ev := range s.pending {
		events = append(events, ev)
	}
	s.pending = make(map[string]RatingEvent)
	return events
}

// Close detaches the subscription from the bus.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.bus.unsubscribe(s.id)
	close(s.ready)
}
