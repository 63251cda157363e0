// Package render implements the terminal render surface: one window of
// Markdown chapters turned into ANSI pages sized to the terminal text area.
//
// Layout work runs on a background goroutine per load and reports through
// the surface event channel; navigation calls are cheap and synchronous.
package render

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/wordwrap"
	"github.com/rs/zerolog"

	"github.com/rifters/RiftedReader-sub002/internal/core/book"
	"github.com/rifters/RiftedReader-sub002/internal/core/styles"
	"github.com/rifters/RiftedReader-sub002/internal/core/surface"
)

// defaultSegmentCap bounds cached rendered chapters per surface.
const defaultSegmentCap = 8

// Options configures the terminal surface factory.
type Options struct {
	// Style is a glamour style name, or "theme" to derive the style from the
	// active palette.
	Style string
	// SegmentCap overrides the per-surface rendered-segment cache size.
	SegmentCap int

	Logger zerolog.Logger
}

// Factory builds terminal surfaces.
type Factory struct {
	opts Options
}

var _ surface.Factory = (*Factory)(nil)

// NewFactory creates a surface factory with the given options.
func NewFactory(opts Options) *Factory {
	if opts.SegmentCap == 0 {
		opts.SegmentCap = defaultSegmentCap
	}
	return &Factory{opts: opts}
}

// New implements surface.Factory.
func (f *Factory) New(windowID int) surface.Surface {
	s := &Surface{
		id:     windowID,
		opts:   f.opts,
		state:  surface.StateUnbound,
		events: make(chan surface.Event, 64),
		log:    f.opts.Logger.With().Int("window", windowID).Logger(),
	}
	s.cache = newSegmentCache(f.opts.SegmentCap, s.segmentEvicted)
	return s
}

// Surface renders one window of chapters into terminal pages.
type Surface struct {
	id   int
	opts Options
	log  zerolog.Logger

	mu        sync.Mutex
	state     surface.State
	events    chan surface.Event
	destroyed bool
	gen       int // load generation; stale background work is discarded

	chapters []book.Chapter
	layout   surface.Layout
	text     string

	pages        []string
	locs         []surface.Location
	chapterFirst map[int]int
	current      int
	total        int

	cache *segmentCache
}

var _ surface.Surface = (*Surface)(nil)

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

// Load implements surface.Surface: content is ingested and paginated on a
// background goroutine, completion arrives as events.
func (s *Surface) Load(content book.WindowContent, layout surface.Layout) {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	s.chapters = content.Chapters
	s.layout = layout
	s.state = surface.StateLoading
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	go s.paginate(gen, false)
}

// Reconfigure implements surface.Surface: repaginates the existing content
// for a new layout. The reading position is preserved by page clamp.
func (s *Surface) Reconfigure(layout surface.Layout) {
	s.mu.Lock()
	if s.destroyed || s.chapters == nil {
		s.mu.Unlock()
		return
	}
	s.layout = layout
	s.state = surface.StateLoading
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	go s.paginate(gen, true)
}

// paginate renders every chapter and slices the output into pages. Runs off
// the control sequence; results are discarded if a newer load superseded
// this generation.
func (s *Surface) paginate(gen int, reconfigure bool) {
	s.mu.Lock()
	chapters, layout := s.chapters, s.layout
	s.mu.Unlock()

	if layout.Cols < 1 || layout.Rows < 1 {
		s.fail(gen, fmt.Errorf("render: invalid layout %dx%d", layout.Cols, layout.Rows))
		return
	}

	s.cache.setWidth(layout.Cols)

	var (
		pages        []string
		locs         []surface.Location
		chapterFirst = make(map[int]int, len(chapters))
		textParts    = make([]string, 0, len(chapters))
	)

	for _, ch := range chapters {
		rendered, err := s.renderChapter(ch, layout.Cols)
		if err != nil {
			s.fail(gen, fmt.Errorf("render chapter %d: %w", ch.Index, err))
			return
		}
		textParts = append(textParts, strings.TrimSpace(ch.Body))

		// Each chapter starts on a fresh page.
		first := len(pages)
		chapterFirst[ch.Index] = first

		lines := strings.Split(strings.TrimRight(rendered, "\n"), "\n")
		for start := 0; start < len(lines); start += layout.Rows {
			end := min(start+layout.Rows, len(lines))
			pages = append(pages, strings.Join(lines[start:end], "\n"))
			locs = append(locs, surface.Location{
				ChapterIndex:  ch.Index,
				PageInChapter: len(pages) - 1 - first,
			})
		}
		for i := first; i < len(pages); i++ {
			locs[i].ChapterPages = len(pages) - first
		}
	}

	if len(pages) == 0 {
		s.fail(gen, fmt.Errorf("render: window %d produced no pages", s.id))
		return
	}

	s.mu.Lock()
	if s.destroyed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.pages = pages
	s.locs = locs
	s.chapterFirst = chapterFirst
	s.total = len(pages)
	s.text = strings.Join(textParts, "\n\n")
	if s.current > s.total-1 {
		s.current = s.total - 1
	}
	s.state = surface.StateReady
	s.mu.Unlock()

	if reconfigure {
		s.emit(surface.Event{Kind: surface.EventReconfigured})
	} else {
		s.emit(surface.Event{Kind: surface.EventWindowLoaded})
	}
	s.emit(surface.Event{Kind: surface.EventReady, TotalPages: len(pages)})
	s.emit(surface.Event{Kind: surface.EventWindowFinalized, TotalPages: len(pages)})
	s.emit(surface.Event{
		Kind:   surface.EventPaginationState,
		Detail: fmt.Sprintf("%d chapters, %d pages at %dx%d", len(chapters), len(pages), s.layoutCols(), s.layoutRows()),
	})
}

func (s *Surface) fail(gen int, err error) {
	s.mu.Lock()
	if s.destroyed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.state = surface.StateFailed
	s.mu.Unlock()

	s.log.Warn().Err(err).Msg("window load failed")
	s.emit(surface.Event{Kind: surface.EventWindowLoadError, Err: err})
}

// renderChapter produces the ANSI rendering of one chapter, consulting the
// segment cache first. Glamour failures fall back to plain word wrapping so
// a malformed chapter still reads.
func (s *Surface) renderChapter(ch book.Chapter, cols int) (string, error) {
	if cached, ok := s.cache.get(ch.Index); ok {
		return cached, nil
	}

	rendered, err := s.glamourRender(ch.Body, cols)
	if err != nil {
		s.log.Debug().Err(err).Int("chapter", ch.Index).Msg("glamour render failed, falling back to word wrap")
		rendered = wordwrap.String(ch.Body, cols)
	}
	if strings.TrimSpace(rendered) == "" {
		rendered = wordwrap.String(ch.Body, cols)
	}

	s.cache.put(ch.Index, rendered, s.currentChapter())
	return rendered, nil
}

func (s *Surface) glamourRender(markdown string, cols int) (string, error) {
	opts := []glamour.TermRendererOption{
		glamour.WithWordWrap(cols),
		glamour.WithEmoji(),
	}
	if s.opts.Style == "theme" {
		opts = append(opts, glamour.WithStyles(styles.GlamourStyle()))
	} else {
		opts = append(opts, glamour.WithStandardStyle(s.opts.Style))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", err
	}
	return r.Render(markdown)
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
	if s.state != surface.StateReady {
		s.mu.Unlock()
		return
	}
	if page < 0 {
		page = 0
	}
	if page > s.total-1 {
		page = s.total - 1
	}
	s.current = page
	s.mu.Unlock()

	s.emit(surface.Event{Kind: surface.EventPageChanged, Page: page})
}

// NextPage implements surface.Surface.
func (s *Surface) NextPage() {
	s.mu.Lock()
	if s.state != surface.StateReady {
		s.mu.Unlock()
		return
	}
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
	page, total := s.current, s.total
	s.mu.Unlock()

	s.emit(surface.Event{Kind: surface.EventPageChanged, Page: page})
	if page == total-1 {
		// Landing on the last page: hint that the next window should warm up.
		s.emit(surface.Event{
			Kind:       surface.EventStreamingRequest,
			Direction:  surface.DirectionNext,
			Page:       page,
			TotalPages: total,
		})
	}
}

// PrevPage implements surface.Surface.
func (s *Surface) PrevPage() {
	s.mu.Lock()
	if s.state != surface.StateReady {
		s.mu.Unlock()
		return
	}
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
	page, total := s.current, s.total
	s.mu.Unlock()

	s.emit(surface.Event{Kind: surface.EventPageChanged, Page: page})
	if page == 0 {
		s.emit(surface.Event{
			Kind:       surface.EventStreamingRequest,
			Direction:  surface.DirectionPrev,
			Page:       page,
			TotalPages: total,
		})
	}
}

// PageContent implements surface.Surface.
func (s *Surface) PageContent(page int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != surface.StateReady || page < 0 || page >= s.total {
		return "", false
	}
	return s.pages[page], true
}

// ChapterPage implements surface.Surface.
func (s *Surface) ChapterPage(chapterIndex int) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	page, ok := s.chapterFirst[chapterIndex]
	return page, ok
}

// Location implements surface.Surface.
func (s *Surface) Location(page int) (surface.Location, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if page < 0 || page >= len(s.locs) {
		return surface.Location{}, false
	}
	return s.locs[page], true
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

// Destroy implements surface.Surface. Idempotent; bumps the generation so
// any in-flight pagination is discarded.
func (s *Surface) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	s.destroyed = true
	s.gen++
	s.state = surface.StateDestroyed
	close(s.events)
}

func (s *Surface) segmentEvicted(chapterIdx int) {
	s.emit(surface.Event{Kind: surface.EventSegmentEvicted, ChapterIndex: chapterIdx})
}

func (s *Surface) currentChapter() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current < len(s.locs) {
		return s.locs[s.current].ChapterIndex
	}
	return 0
}

func (s *Surface) layoutCols() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layout.Cols
}

func (s *Surface) layoutRows() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layout.Rows
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
		s.log.Warn().Str("event", ev.Kind.String()).Msg("surface event dropped: channel full")
	}
	s.mu.Unlock()
}
