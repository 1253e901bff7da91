package store

import (
	"sync"

	"github.com/google/uuid"

	"taskboard/internal/model"
)

// subscriptionBuffer is how many undelivered events a subscriber may
// accumulate before the hub closes its subscription.
const subscriptionBuffer = 64

// feedScope distinguishes the task feed from the notification feed.
type feedScope int

const (
	scopeTasks feedScope = iota
	scopeNotifications
)

// Subscription is a cancellable handle on a change-feed stream.
// Events arrive strictly in the order the store applied the
// corresponding writes. A subscriber that falls too far behind is
// closed rather than receiving a stream with gaps in the middle; it
// must resync from a snapshot and resubscribe.
type Subscription struct {
	id     string
	events chan model.Event
	hub    *feedHub
	once   sync.Once
}

// Events returns the stream of change events. The channel is closed
// when the subscription ends, either via Close or by the hub.
func (s *Subscription) Events() <-chan model.Event {
	return s.events
}

// Close cancels the subscription and closes the event channel.
// Safe to call multiple times.
func (s *Subscription) Close() {
	s.hub.unsubscribe(s.id)
}

// subscriber pairs a subscription with its scope and row predicate.
type subscriber struct {
	sub   *Subscription
	scope feedScope
	match func(model.Event) bool
}

// feedHub fans mutation events out to registered subscribers.
type feedHub struct {
	mu   sync.Mutex
	subs map[string]*subscriber
}

func newFeedHub() *feedHub {
	return &feedHub{subs: make(map[string]*subscriber)}
}

// subscribe registers a new subscription. A nil match accepts every
// event in the scope.
func (h *feedHub) subscribe(scope feedScope, match func(model.Event) bool) *Subscription {
	sub := &Subscription{
		id:     uuid.New().String(),
		events: make(chan model.Event, subscriptionBuffer),
		hub:    h,
	}

	h.mu.Lock()
	h.subs[sub.id] = &subscriber{sub: sub, scope: scope, match: match}
	h.mu.Unlock()

	return sub
}

// unsubscribe removes a subscription and closes its channel.
func (h *feedHub) unsubscribe(id string) {
	h.mu.Lock()
	entry, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
	}
	h.mu.Unlock()

	if ok {
		entry.sub.once.Do(func() { close(entry.sub.events) })
	}
}

// publish delivers an event to every matching subscriber. Subscribers
// whose buffer is full are dropped so that the remaining stream never
// skips an event.
func (h *feedHub) publish(scope feedScope, ev model.Event) {
	h.mu.Lock()
	var overflowed []*subscriber
	for id, entry := range h.subs {
		if entry.scope != scope {
			continue
		}
		if entry.match != nil && !entry.match(ev) {
			continue
		}
		select {
		case entry.sub.events <- ev:
		default:
			delete(h.subs, id)
			overflowed = append(overflowed, entry)
		}
	}
	h.mu.Unlock()

	for _, entry := range overflowed {
		entry.sub.once.Do(func() { close(entry.sub.events) })
	}
}

// closeAll terminates every open subscription.
func (h *feedHub) closeAll() {
	h.mu.Lock()
	entries := make([]*subscriber, 0, len(h.subs))
	for id, entry := range h.subs {
		delete(h.subs, id)
		entries = append(entries, entry)
	}
	h.mu.Unlock()

	for _, entry := range entries {
		entry.sub.once.Do(func() { close(entry.sub.events) })
	}
}
