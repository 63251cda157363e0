package eventbus

import (
	"fmt"

	"github.com/rifters/RiftedReader-sub002/internal/core/notify"
)

// NotificationRouter maps domain events to user-facing notifications.
// Telemetry-only events (segment evictions, buffer shifts, page activations)
// are deliberately not routed; they would flood the toast stack.
type NotificationRouter struct {
	bus *EventBus
}

// NewNotificationRouter constructs a router for event-to-notification mappings.
func NewNotificationRouter(bus *EventBus) *NotificationRouter {
	return &NotificationRouter{bus: bus}
}

// Register subscribes all supported event mappings.
func (r *NotificationRouter) Register() {
	if r == nil || r.bus == nil {
		return
	}

	r.bus.SubscribeSurfaceFailed(func(p SurfaceFailedPayload) {
		r.notifyf(notify.LevelError, "window %d failed to load: %v", p.WindowID, p.Err)
	})

	r.bus.SubscribeNavigationDropped(func(p NavigationDroppedPayload) {
		r.notifyf(notify.LevelWarning, "still paginating, try again in a moment")
	})

	r.bus.SubscribeDocumentCompleted(func(p DocumentCompletedPayload) {
		r.notifyf(notify.LevelInfo, "finished %q", p.Title)
	})

	r.bus.SubscribePositionSaved(func(p PositionSavedPayload) {
		if p.Completed {
			return // the completion notice already covers this save
		}
		r.notifyf(notify.LevelInfo, "position saved (window %d, page %d)", p.WindowID, p.Page+1)
	})
}

func (r *NotificationRouter) notifyf(level notify.Level, format string, args ...any) {
	r.bus.PublishNotificationPublished(NotificationPublishedPayload{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}
