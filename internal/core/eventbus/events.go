// Package eventbus provides a typed publish/subscribe event bus scoped to a
// reading session. The bus is created when a book is opened and stopped when
// the session closes; it is never process-global.
package eventbus

import (
	"github.com/rifters/RiftedReader-sub002/internal/core/notify"
)

// Events defines all event types and their payload structs.
var Events = map[string]any{
	// Keep list sorted A-Z
	"buffer.shifted":         BufferShiftedPayload{},
	"document.completed":     DocumentCompletedPayload{},
	"navigation.dropped":     NavigationDroppedPayload{},
	"notification.published": NotificationPublishedPayload{},
	"position.saved":         PositionSavedPayload{},
	"reading.started":        ReadingStartedPayload{},
	"segment.evicted":        SegmentEvictedPayload{},
	"surface.failed":         SurfaceFailedPayload{},
	"window.activated":       WindowActivatedPayload{},
}

// ReadingStartedPayload is emitted once the initial buffer has settled and
// the session is interactive.
type ReadingStartedPayload struct {
	BookID      string
	Title       string
	WindowCount int
	Window      int
	Page        int
}

// WindowActivatedPayload is emitted when the active window changes.
type WindowActivatedPayload struct {
	WindowID int
	Page     int
}

// BufferShiftedPayload is emitted after a committed buffer mutation.
type BufferShiftedPayload struct {
	Buffer  []int
	Added   []int
	Dropped []int
}

// SurfaceFailedPayload is emitted when a render surface fails to load its
// window content.
type SurfaceFailedPayload struct {
	WindowID int
	Err      error
}

// NavigationDroppedPayload is emitted when a queued navigation request is
// abandoned (deadline expiry or supersession).
type NavigationDroppedPayload struct {
	WindowID int
	Reason   string
}

// SegmentEvictedPayload is telemetry for a rendered chapter segment dropped
// under memory pressure.
type SegmentEvictedPayload struct {
	WindowID     int
	ChapterIndex int
}

// DocumentCompletedPayload is emitted exactly once when the reader crosses
// the last page of the last window.
type DocumentCompletedPayload struct {
	BookID string
	Title  string
}

// PositionSavedPayload is emitted after the reading position is persisted.
type PositionSavedPayload struct {
	BookID    string
	WindowID  int
	Page      int
	Completed bool
}

// NotificationPublishedPayload carries a user-facing notice for the TUI
// toast stack.
type NotificationPublishedPayload struct {
	Level   notify.Level
	Message string
}
