package surface

import "fmt"

// Direction is a reading direction for navigation and boundary events.
type Direction int

const (
	DirectionNext Direction = iota
	DirectionPrev
)

// String returns the lowercase direction name.
func (d Direction) String() string {
	switch d {
	case DirectionNext:
		return "next"
	case DirectionPrev:
		return "prev"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// EventKind enumerates the events a render surface reports on its channel.
type EventKind int

const (
	// EventWindowLoaded fires when window content has been ingested.
	EventWindowLoaded EventKind = iota
	// EventWindowLoadError fires when content ingestion or layout failed.
	EventWindowLoadError
	// EventReady fires when pagination has stabilized. TotalPages carries the
	// page count; consumers must ignore Ready events with TotalPages <= 0.
	EventReady
	// EventPageChanged fires after an in-window page turn. Page carries the
	// new current page.
	EventPageChanged
	// EventBoundaryReached fires when a page turn runs off the window edge.
	EventBoundaryReached
	// EventStreamingRequest is a pre-warm hint: the reader is close enough to
	// a window edge that the adjacent window should be materialized.
	EventStreamingRequest
	// EventSegmentEvicted is telemetry for a rendered chapter segment dropped
	// under memory pressure. ChapterIndex identifies the segment.
	EventSegmentEvicted
	// EventWindowFinalized fires once layout is complete and the page count
	// is final. TotalPages carries the count.
	EventWindowFinalized
	// EventReconfigured fires after a layout change has been applied and the
	// window repaginated.
	EventReconfigured
	// EventDiagnostics carries free-form diagnostic text for the log layer.
	EventDiagnostics
	// EventPaginationState carries pagination engine state dumps for the log
	// layer.
	EventPaginationState
)

// String returns the event kind name as used in logs.
func (k EventKind) String() string {
	switch k {
	case EventWindowLoaded:
		return "window-loaded"
	case EventWindowLoadError:
		return "window-load-error"
	case EventReady:
		return "ready"
	case EventPageChanged:
		return "page-changed"
	case EventBoundaryReached:
		return "boundary-reached"
	case EventStreamingRequest:
		return "streaming-request"
	case EventSegmentEvicted:
		return "segment-evicted"
	case EventWindowFinalized:
		return "window-finalized"
	case EventReconfigured:
		return "reconfigured"
	case EventDiagnostics:
		return "diagnostics"
	case EventPaginationState:
		return "pagination-state"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is a single typed record on a surface's event channel. Only the
// fields relevant to Kind are populated.
type Event struct {
	Kind     EventKind
	WindowID int

	Page       int
	TotalPages int
	Direction  Direction

	ChapterIndex int
	Err          error
	Detail       string
}
