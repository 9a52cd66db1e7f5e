package utils

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// AnalyticsEvent is one view/interaction event. Events are fire-and-forget:
// recording never blocks or fails the request that produced them.
type AnalyticsEvent struct {
	ID         uuid.UUID
	BusinessID uuid.UUID
	Type       string // view, click, call, directions
	OccurredAt time.Time
}

// AnalyticsBuffer accumulates events in memory until a periodic drain. It is
// bounded; once full, the oldest events are dropped rather than blocking.
type AnalyticsBuffer struct {
	mu     sync.Mutex
	events []AnalyticsEvent
	max    int
}

// Analytics is the shared buffer instance.
var Analytics = NewAnalyticsBuffer(10000)

func NewAnalyticsBuffer(max int) *AnalyticsBuffer {
	if max <= 0 {
		max = 10000
	}
	return &AnalyticsBuffer{max: max}
}

// Record appends an event, evicting the oldest when the buffer is full.
func (b *AnalyticsBuffer) Record(businessID uuid.UUID, eventType string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.events) >= b.max {
		b.events = b.events[1:]
	}
	b.events = append(b.events, AnalyticsEvent{
		ID:         uuid.New(),
		BusinessID: businessID,
		Type:       eventType,
		OccurredAt: time.Now(),
	})
}

// Drain returns and clears the buffered events.
func (b *AnalyticsBuffer) Drain() []AnalyticsEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	events := b.events
	b.events = nil
	return events
}

// Len reports the number of buffered events.
func (b *AnalyticsBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}
