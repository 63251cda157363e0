// Package surfacetest provides a scripted fake render surface for exercising
// the navigation core without a real pagination engine.
package surfacetest

import (
	"fmt"
	"sync"

	"github.com/rifters/RiftedReader-sub002/internal/core/book"
	"github.com/rifters/RiftedReader-sub002/internal/core/surface"
)

// Surface is a fake render surface. Loads complete when the test script says
// so (or immediately via AutoLoadPages), and every navigation call answers
// with the same typed events a real surface would emit.
type Surface struct {
	mu        sync.Mutex
	id        int
	state     surface.State
	events    chan surface.Event
	current   int
	total     int
	text      string
	destroyed bool
	loads     int

	chapterPages map[int]int

	// AutoLoadPages > 0 completes every Load immediately with that count.
	AutoLoadPages int
	// LoadErr fails every Load immediately.
	LoadErr error
}

var _ surface.Surface = (*Surface)(nil)

// New creates an unbound fake surface for a window id.
func New(windowID int) *Surface {
	return &Surface{
		id:           windowID,
		state:        surface.StateUnbound,
		events:       make(chan surface.Event, 64),
		chapterPages: make(map[int]int),
	}
}

// WindowID implements surface.Surface.
func (s *Surface) WindowID() int { return s.id }

// State implements surface.Surface.
func (s *Surface) State() surface.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Events implements surface.Surface.
func (s *Surface) Events() <-chan surface.Event { return s.events }

// Load implements surface.Surface. Without AutoLoadPages or LoadErr the load
// stays pending until CompleteLoad or FailLoad is called.
func (s *Surface) Load(_ book.WindowContent, _ surface.Layout) {
	s.mu.Lock()
	s.state = surface.StateLoading
	s.loads++
	autoPages, loadErr := s.AutoLoadPages, s.LoadErr
	s.mu.Unlock()

	switch {
	case loadErr != nil:
		s.FailLoad(loadErr)
	case autoPages > 0:
		s.CompleteLoad(autoPages)
	}
}

// CompleteLoad finishes a pending load: the surface becomes ready with the
// given page count and emits the loaded/ready/finalized sequence.
func (s *Surface) CompleteLoad(totalPages int) {
	s.mu.Lock()
	s.state = surface.StateReady
	s.total = totalPages
	s.current = 0
	if s.text == "" {
		s.text = "window text"
	}
	s.mu.Unlock()

	s.emit(surface.Event{Kind: surface.EventWindowLoaded})
	s.emit(surface.Event{Kind: surface.EventReady, TotalPages: totalPages})
	s.emit(surface.Event{Kind: surface.EventWindowFinalized, TotalPages: totalPages})
}

// FailLoad fails a pending load.
func (s *Surface) FailLoad(err error) {
	s.mu.Lock()
	s.state = surface.StateFailed
	s.mu.Unlock()

	s.emit(surface.Event{Kind: surface.EventWindowLoadError, Err: err})
}

// Reconfigure implements surface.Surface: repaginate with the same count.
func (s *Surface) Reconfigure(_ surface.Layout) {
	s.mu.Lock()
	total := s.total
	s.mu.Unlock()

	s.emit(surface.Event{Kind: surface.EventReconfigured})
	s.emit(surface.Event{Kind: surface.EventReady, TotalPages: total})
}

// PageCount implements surface.Surface.
func (s *Surface) PageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// CurrentPage implements surface.Surface.
func (s *Surface) CurrentPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// GoToPage implements surface.Surface, clamping to the valid page range.
func (s *Surface) GoToPage(page int) {
	s.mu.Lock()
	if page < 0 {
		page = 0
	}
	if s.total > 0 && page > s.total-1 {
		page = s.total - 1
	}
	s.current = page
	s.mu.Unlock()

	s.emit(surface.Event{Kind: surface.EventPageChanged, Page: page})
}

// NextPage implements surface.Surface.
func (s *Surface) NextPage() {
	s.mu.Lock()
	if s.current >= s.total-1 {
		page, total := s.current, s.total
		s.mu.Unlock()
		s.emit(surface.Event{
			Kind:       surface.EventBoundaryReached,
			Direction:  surface.DirectionNext,
			Page:       page,
			TotalPages: total,
		})
		return
	}
	s.current++
	page := s.current
	s.mu.Unlock()

	s.emit(surface.Event{Kind: surface.EventPageChanged, Page: page})
}

// PrevPage implements surface.Surface.
func (s *Surface) PrevPage() {
	s.mu.Lock()
	if s.current <= 0 {
		total := s.total
		s.mu.Unlock()
		s.emit(surface.Event{
			Kind:       surface.EventBoundaryReached,
			Direction:  surface.DirectionPrev,
			Page:       0,
			TotalPages: total,
		})
		return
	}
	s.current--
	page := s.current
	s.mu.Unlock()

	s.emit(surface.Event{Kind: surface.EventPageChanged, Page: page})
}

// PageContent implements surface.Surface with synthetic page text.
func (s *Surface) PageContent(page int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != surface.StateReady || page < 0 || page >= s.total {
		return "", false
	}
	return fmt.Sprintf("window %d page %d", s.id, page), true
}

// SetChapterPage scripts the first page of a chapter within this window.
func (s *Surface) SetChapterPage(chapterIndex, page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chapterPages[chapterIndex] = page
}

// ChapterPage implements surface.Surface.
func (s *Surface) ChapterPage(chapterIndex int) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	page, ok := s.chapterPages[chapterIndex]
	return page, ok
}

// Location implements surface.Surface with a single-chapter approximation.
func (s *Surface) Location(page int) (surface.Location, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.total == 0 || page < 0 || page >= s.total {
		return surface.Location{}, false
	}
	return surface.Location{ChapterIndex: 0, PageInChapter: page, ChapterPages: s.total}, true
}

// SetText overrides the extracted text (empty marks the surface unusable).
func (s *Surface) SetText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = text
}

// Text implements surface.Surface.
func (s *Surface) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != surface.StateReady {
		return ""
	}
	return s.text
}

// Destroy implements surface.Surface. Idempotent.
func (s *Surface) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	s.destroyed = true
	s.state = surface.StateDestroyed
	close(s.events)
}

// Destroyed reports whether Destroy has been called.
func (s *Surface) Destroyed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroyed
}

// Loads returns how many times Load was called.
func (s *Surface) Loads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}

// Emit injects a raw event, stamping the surface's window id.
func (s *Surface) Emit(ev surface.Event) {
	s.emit(ev)
}

func (s *Surface) emit(ev surface.Event) {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	ev.WindowID = s.id
	select {
	case s.events <- ev:
	default:
	}
	s.mu.Unlock()
}

// Factory builds fake surfaces and remembers them for later scripting.
type Factory struct {
	mu      sync.Mutex
	created map[int][]*Surface

	// AutoLoadPages is applied to every new surface; PagesByWindow overrides
	// it per window id. FailWindows makes loads for those windows fail.
	AutoLoadPages int
	PagesByWindow map[int]int
	FailWindows   map[int]error
}

var _ surface.Factory = (*Factory)(nil)

// NewFactory creates an empty factory.
func NewFactory() *Factory {
	return &Factory{created: make(map[int][]*Surface)}
}

// New implements surface.Factory.
func (f *Factory) New(windowID int) surface.Surface {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := New(windowID)
	s.AutoLoadPages = f.AutoLoadPages
	if pages, ok := f.PagesByWindow[windowID]; ok {
		s.AutoLoadPages = pages
	}
	if err, ok := f.FailWindows[windowID]; ok {
		s.LoadErr = err
	}

	f.created[windowID] = append(f.created[windowID], s)
	return s
}

// Surface returns the most recently created surface for a window id.
func (f *Factory) Surface(windowID int) (*Surface, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.created[windowID]
	if len(list) == 0 {
		return nil, false
	}
	return list[len(list)-1], true
}

// CreatedCount returns how many surfaces were built for a window id.
func (f *Factory) CreatedCount(windowID int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created[windowID])
}
