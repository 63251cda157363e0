// Package surface defines the render-surface contract: the boundary between
// the navigation core and whatever engine turns window content into pages.
//
// A surface is bound to exactly one window id for its whole life. It loads
// content asynchronously and reports everything it does as typed events on
// its channel; the owning control sequence consumes those events and never
// blocks on a surface call.
package surface

import "github.com/rifters/RiftedReader-sub002/internal/core/book"

// State is the surface lifecycle state.
type State int

const (
	// StateUnbound is a constructed surface with no content.
	StateUnbound State = iota
	// StateAttaching is a surface whose slot is being bound.
	StateAttaching
	// StateLoading is a surface ingesting or laying out content.
	StateLoading
	// StateReady is a surface with stable pagination.
	StateReady
	// StateFailed is a surface whose load failed.
	StateFailed
	// StateDestroyed is a released surface. Its event channel is closed.
	StateDestroyed
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateUnbound:
		return "unbound"
	case StateAttaching:
		return "attaching"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Layout is the render geometry handed to a surface. For a terminal surface
// this is the page text area in cells; a geometry change is the analog of a
// font-size change and forces repagination.
type Layout struct {
	Cols int
	Rows int
}

// Location places a page within its chapter.
type Location struct {
	ChapterIndex  int
	PageInChapter int
	ChapterPages  int
}

// Surface renders one window of content and pages within it.
//
// Load and Reconfigure are asynchronous: completion is reported via events.
// Navigation calls are cheap and also answer via events (PageChanged or
// BoundaryReached), so the caller observes one ordered stream per surface.
// All methods must be safe to call from the single control goroutine while
// the surface's internal layout work runs in the background.
type Surface interface {
	// WindowID returns the window this surface is bound to.
	WindowID() int
	// State returns the current lifecycle state.
	State() State
	// Events returns the surface's ordered event stream. The channel is
	// closed when the surface is destroyed.
	Events() <-chan Event

	// Load ingests window content and paginates it for the given layout.
	Load(content book.WindowContent, layout Layout)
	// Reconfigure repaginates existing content for a new layout.
	Reconfigure(layout Layout)

	// PageCount returns the finalized page count, or 0 before Ready.
	PageCount() int
	// CurrentPage returns the current page (0-based).
	CurrentPage() int
	// GoToPage moves to an absolute in-window page.
	GoToPage(page int)
	// NextPage advances one page, or reports a next boundary.
	NextPage()
	// PrevPage goes back one page, or reports a prev boundary.
	PrevPage()

	// PageContent returns the rendered content of an in-window page. False
	// before pagination is ready or when the page is out of range.
	PageContent(page int) (string, bool)
	// ChapterPage returns the first page of a chapter within this window.
	ChapterPage(chapterIndex int) (int, bool)
	// Location places an in-window page within its chapter.
	Location(page int) (Location, bool)
	// Text returns the extracted plain text of the window, empty until
	// content has loaded. Downstream consumers treat an empty extraction as
	// not ready.
	Text() string

	// Destroy releases the surface. Idempotent; the event channel closes
	// once any in-flight work has stopped.
	Destroy()
}

// Factory constructs surfaces bound to window ids.
type Factory interface {
	New(windowID int) Surface
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func(windowID int) Surface

// New calls f.
func (f FactoryFunc) New(windowID int) Surface { return f(windowID) }

// Content builds the WindowContent payload for a window from a document:
// the visible chapters in the window's half-open chapter range.
func Content(doc *book.Document, windowID, start, end int) book.WindowContent {
	visible := doc.VisibleChapters()
	if start < 0 {
		start = 0
	}
	if end > len(visible) {
		end = len(visible)
	}
	if start >= end {
		return book.WindowContent{WindowID: windowID}
	}
	return book.WindowContent{
		WindowID: windowID,
		Chapters: visible[start:end],
	}
}
