// Package testbus provides test utilities for the event bus.
// It wraps a real EventBus with event recording and assertion helpers.
package testbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rifters/RiftedReader-sub002/internal/core/eventbus"
)

// RecordedEvent holds a captured event name and payload.
type RecordedEvent struct {
	Event   eventbus.Event
	Payload any
}

// Bus wraps a real EventBus with event recording for tests.
type Bus struct {
	*eventbus.EventBus
	cancel context.CancelFunc

	mu     sync.Mutex
	events []RecordedEvent
}

// New creates a test bus, starts it in a background goroutine, and
// subscribes to all event types for recording. The bus is stopped
// when the test completes.
func New(t *testing.T) *Bus {
	t.Helper()

	bus := eventbus.New(64)
	ctx, cancel := context.WithCancel(context.Background())

	tb := &Bus{
		EventBus: bus,
		cancel:   cancel,
	}

	// Subscribe to all event types for recording.
	bus.SubscribeReadingStarted(func(p eventbus.ReadingStartedPayload) {
		tb.record(eventbus.EventReadingStarted, p)
	})
	bus.SubscribeWindowActivated(func(p eventbus.WindowActivatedPayload) {
		tb.record(eventbus.EventWindowActivated, p)
	})
	bus.SubscribeBufferShifted(func(p eventbus.BufferShiftedPayload) {
		tb.record(eventbus.EventBufferShifted, p)
	})
	bus.SubscribeSurfaceFailed(func(p eventbus.SurfaceFailedPayload) {
		tb.record(eventbus.EventSurfaceFailed, p)
	})
	bus.SubscribeNavigationDropped(func(p eventbus.NavigationDroppedPayload) {
		tb.record(eventbus.EventNavigationDropped, p)
	})
	bus.SubscribeSegmentEvicted(func(p eventbus.SegmentEvictedPayload) {
		tb.record(eventbus.EventSegmentEvicted, p)
	})
	bus.SubscribeDocumentCompleted(func(p eventbus.DocumentCompletedPayload) {
		tb.record(eventbus.EventDocumentCompleted, p)
	})
	bus.SubscribePositionSaved(func(p eventbus.PositionSavedPayload) {
		tb.record(eventbus.EventPositionSaved, p)
	})
	bus.SubscribeNotificationPublished(func(p eventbus.NotificationPublishedPayload) {
		tb.record(eventbus.EventNotificationPublished, p)
	})

	go bus.Start(ctx)

	t.Cleanup(func() {
		cancel()
	})

	return tb
}

func (tb *Bus) record(event eventbus.Event, payload any) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.events = append(tb.events, RecordedEvent{Event: event, Payload: payload})
}

// Events returns a copy of all recorded events.
func (tb *Bus) Events() []RecordedEvent {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	out := make([]RecordedEvent, len(tb.events))
	copy(out, tb.events)
	return out
}

// Count returns how many events of the given type were recorded so far.
func (tb *Bus) Count(event eventbus.Event) int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	n := 0
	for _, e := range tb.events {
		if e.Event == event {
			n++
		}
	}
	return n
}

// Reset clears all recorded events.
func (tb *Bus) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.events = nil
}

// WaitFor blocks until an event of the given type is recorded or the timeout expires.
// Returns true if the event was found.
func (tb *Bus) WaitFor(event eventbus.Event, timeout time.Duration) bool {
	deadline := time.After(timeout)
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			return false
		case <-ticker.C:
			if tb.has(event) {
				return true
			}
		}
	}
}

func (tb *Bus) has(event eventbus.Event) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	for _, e := range tb.events {
		if e.Event == event {
			return true
		}
	}
	return false
}

// AssertPublished asserts that an event of the given type was recorded.
func (tb *Bus) AssertPublished(t *testing.T, event eventbus.Event) {
	t.Helper()
	if !tb.WaitFor(event, 500*time.Millisecond) {
		t.Errorf("expected event %q to be published, but it was not", event)
	}
}

// AssertNotPublished asserts that an event of the given type was NOT recorded
// within the given wait period.
func (tb *Bus) AssertNotPublished(t *testing.T, event eventbus.Event, wait time.Duration) {
	t.Helper()
	time.Sleep(wait)
	if tb.has(event) {
		t.Errorf("expected event %q to NOT be published, but it was", event)
	}
}
