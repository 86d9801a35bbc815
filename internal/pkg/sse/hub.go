package sse

import (
	"sync"

	"github.com/smc-analytics/attendance-dashboard/internal/domain/attendance"
)

const EventSnapshot = "snapshot"

// Event represents an SSE event to be sent to subscribers
type Event struct {
	Event string
	Data  interface{}
}

// Hub fans snapshot events out to every connected dashboard
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
}

var _ attendance.SnapshotPublisher = (*Hub)(nil)

// NewHub creates a new SSE Hub instance
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[chan Event]struct{}),
	}
}

// Subscribe registers a new subscriber and returns the event channel and cleanup function
func (h *Hub) Subscribe() (chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 10)
	h.subscribers[ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers, ch)
			close(ch)
		})
	}

	return ch, cleanup
}

// Publish sends an event to all subscribers
func (h *Hub) Publish(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			// Slow subscriber, drop
		}
	}
}

// PublishSnapshot implements attendance.SnapshotPublisher.
func (h *Hub) PublishSnapshot(info attendance.SnapshotInfo) {
	h.Publish(Event{Event: EventSnapshot, Data: info})
}

// SubscriberCount returns the number of active subscribers
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
