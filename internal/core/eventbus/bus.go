package eventbus

import (
	"context"
	"sync"
)

// Event is the name of an event type on the bus.
type Event string

// Event name constants, one per entry in Events.
const (
	EventBufferShifted         Event = "buffer.shifted"
	EventDocumentCompleted     Event = "document.completed"
	EventNavigationDropped     Event = "navigation.dropped"
	EventNotificationPublished Event = "notification.published"
	EventPositionSaved         Event = "position.saved"
	EventReadingStarted        Event = "reading.started"
	EventSegmentEvicted        Event = "segment.evicted"
	EventSurfaceFailed         Event = "surface.failed"
	EventWindowActivated       Event = "window.activated"
)

// envelope pairs an event name with its payload on the bus channel.
type envelope struct {
	event   Event
	payload any
}

// EventBus is a session-scoped typed publish/subscribe bus. Publishing never
// blocks: events are dropped (with the OnDrop hook) when the buffer is full.
// Subscribers run sequentially on the Start goroutine; a panicking subscriber
// is recovered and reported via the OnPanic hook without stopping dispatch.
type EventBus struct {
	ch    chan envelope
	hooks hooks

	mu   sync.RWMutex
	subs map[Event][]func(any)
}

// New creates an event bus with the given channel buffer size.
func New(size int) *EventBus {
	return &EventBus{
		ch:   make(chan envelope, size),
		subs: make(map[Event][]func(any)),
	}
}

// Start runs the dispatch loop until ctx is cancelled. Call in a goroutine.
func (bus *EventBus) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-bus.ch:
			bus.dispatch(env)
		}
	}
}

func (bus *EventBus) dispatch(env envelope) {
	bus.mu.RLock()
	subs := make([]func(any), len(bus.subs[env.event]))
	copy(subs, bus.subs[env.event])
	bus.mu.RUnlock()

	for _, fn := range subs {
		bus.call(env, fn)
	}
}

func (bus *EventBus) call(env envelope, fn func(any)) {
	defer func() {
		if r := recover(); r != nil {
			bus.runOnPanic(env.event, env.payload, r)
		}
	}()
	fn(env.payload)
}

// subscribe registers a raw handler. Used by the typed Subscribe* methods.
func (bus *EventBus) subscribe(event Event, fn func(any)) {
	bus.mu.Lock()
	bus.subs[event] = append(bus.subs[event], fn)
	bus.mu.Unlock()

	bus.hooks.mu.RLock()
	hooks := make([]func(Event), len(bus.hooks.onSubscribe))
	copy(hooks, bus.hooks.onSubscribe)
	bus.hooks.mu.RUnlock()
	for _, hook := range hooks {
		hook(event)
	}
}

// PublishReadingStarted publishes a reading.started event.
func (bus *EventBus) PublishReadingStarted(p ReadingStartedPayload) {
	bus.send(EventReadingStarted, p)
}

// SubscribeReadingStarted registers a handler for reading.started events.
func (bus *EventBus) SubscribeReadingStarted(fn func(ReadingStartedPayload)) {
	bus.subscribe(EventReadingStarted, func(payload any) {
		if p, ok := payload.(ReadingStartedPayload); ok {
			fn(p)
		}
	})
}

// PublishWindowActivated publishes a window.activated event.
func (bus *EventBus) PublishWindowActivated(p WindowActivatedPayload) {
	bus.send(EventWindowActivated, p)
}

// SubscribeWindowActivated registers a handler for window.activated events.
func (bus *EventBus) SubscribeWindowActivated(fn func(WindowActivatedPayload)) {
	bus.subscribe(EventWindowActivated, func(payload any) {
		if p, ok := payload.(WindowActivatedPayload); ok {
			fn(p)
		}
	})
}

// PublishBufferShifted publishes a buffer.shifted event.
func (bus *EventBus) PublishBufferShifted(p BufferShiftedPayload) {
	bus.send(EventBufferShifted, p)
}

// SubscribeBufferShifted registers a handler for buffer.shifted events.
func (bus *EventBus) SubscribeBufferShifted(fn func(BufferShiftedPayload)) {
	bus.subscribe(EventBufferShifted, func(payload any) {
		if p, ok := payload.(BufferShiftedPayload); ok {
			fn(p)
		}
	})
}

// PublishSurfaceFailed publishes a surface.failed event.
func (bus *EventBus) PublishSurfaceFailed(p SurfaceFailedPayload) {
	bus.send(EventSurfaceFailed, p)
}

// SubscribeSurfaceFailed registers a handler for surface.failed events.
func (bus *EventBus) SubscribeSurfaceFailed(fn func(SurfaceFailedPayload)) {
	bus.subscribe(EventSurfaceFailed, func(payload any) {
		if p, ok := payload.(SurfaceFailedPayload); ok {
			fn(p)
		}
	})
}

// PublishNavigationDropped publishes a navigation.dropped event.
func (bus *EventBus) PublishNavigationDropped(p NavigationDroppedPayload) {
	bus.send(EventNavigationDropped, p)
}

// SubscribeNavigationDropped registers a handler for navigation.dropped events.
func (bus *EventBus) SubscribeNavigationDropped(fn func(NavigationDroppedPayload)) {
	bus.subscribe(EventNavigationDropped, func(payload any) {
		if p, ok := payload.(NavigationDroppedPayload); ok {
			fn(p)
		}
	})
}

// PublishSegmentEvicted publishes a segment.evicted event.
func (bus *EventBus) PublishSegmentEvicted(p SegmentEvictedPayload) {
	bus.send(EventSegmentEvicted, p)
}

// SubscribeSegmentEvicted registers a handler for segment.evicted events.
func (bus *EventBus) SubscribeSegmentEvicted(fn func(SegmentEvictedPayload)) {
	bus.subscribe(EventSegmentEvicted, func(payload any) {
		if p, ok := payload.(SegmentEvictedPayload); ok {
			fn(p)
		}
	})
}

// PublishDocumentCompleted publishes a document.completed event.
func (bus *EventBus) PublishDocumentCompleted(p DocumentCompletedPayload) {
	bus.send(EventDocumentCompleted, p)
}

// SubscribeDocumentCompleted registers a handler for document.completed events.
func (bus *EventBus) SubscribeDocumentCompleted(fn func(DocumentCompletedPayload)) {
	bus.subscribe(EventDocumentCompleted, func(payload any) {
		if p, ok := payload.(DocumentCompletedPayload); ok {
			fn(p)
		}
	})
}

// PublishPositionSaved publishes a position.saved event.
func (bus *EventBus) PublishPositionSaved(p PositionSavedPayload) {
	bus.send(EventPositionSaved, p)
}

// SubscribePositionSaved registers a handler for position.saved events.
func (bus *EventBus) SubscribePositionSaved(fn func(PositionSavedPayload)) {
	bus.subscribe(EventPositionSaved, func(payload any) {
		if p, ok := payload.(PositionSavedPayload); ok {
			fn(p)
		}
	})
}

// PublishNotificationPublished publishes a notification.published event.
func (bus *EventBus) PublishNotificationPublished(p NotificationPublishedPayload) {
	bus.send(EventNotificationPublished, p)
}

// SubscribeNotificationPublished registers a handler for notification.published events.
func (bus *EventBus) SubscribeNotificationPublished(fn func(NotificationPublishedPayload)) {
	bus.subscribe(EventNotificationPublished, func(payload any) {
		if p, ok := payload.(NotificationPublishedPayload); ok {
			fn(p)
		}
	})
}
