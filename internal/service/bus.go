package service

import "sync"

// EventKind names what changed in a session.
type EventKind string

const (
	EventMarkers   EventKind = "markers"   // pins re-rendered or restyled
	EventStats     EventKind = "stats"     // viewport summary recomputed
	EventLayers    EventKind = "layers"    // layer visibility changed
	EventIndicator EventKind = "indicator" // press indicator shown or hidden
	EventVibrate   EventKind = "vibrate"
	EventDraft     EventKind = "draft"    // draft opened or closed
	EventLocation  EventKind = "location" // user location placed
	EventBasemap   EventKind = "basemap"
	EventNotice    EventKind = "notice" // message for the user
)

// Event is a session state change. Subscribers re-read session state; the
// event carries only what cannot be re-read.
type Event struct {
	Kind    EventKind
	Visible bool    // indicator shown
	X, Y    float64 // indicator anchor, container pixels
	Message string  // notice text
}

// EventBus is a simple fan-out pub/sub for session events.
type EventBus struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

// NewEventBus creates a new event bus.
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[chan Event]struct{})}
}

// Publish sends an event to all subscribers (non-blocking).
func (b *EventBus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
			// subscriber too slow, skip
		}
	}
}

// Subscribe returns a buffered channel that receives events.
func (b *EventBus) Subscribe() chan Event {
	ch := make(chan Event, 32)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *EventBus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	_, ok := b.subs[ch]
	delete(b.subs, ch)
	b.mu.Unlock()
	if ok {
		close(ch)
	}
}

// Subscribers returns the number of live subscriptions.
func (b *EventBus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
