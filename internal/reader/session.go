// Package reader hosts the reading session: the control sequence that owns
// the window buffer, the render-surface pool, and all navigation state for
// one open book.
//
// All mutation runs on a single goroutine fed by a message inbox. Surface
// event streams, gesture commands, and timer callbacks are marshalled onto
// that inbox; nothing else touches session state. Queued navigation waits
// are cooperative: they carry a token and simply expire when superseded.
package reader

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rifters/RiftedReader-sub002/internal/core/book"
	"github.com/rifters/RiftedReader-sub002/internal/core/conveyor"
	"github.com/rifters/RiftedReader-sub002/internal/core/eventbus"
	"github.com/rifters/RiftedReader-sub002/internal/core/pagewindow"
	"github.com/rifters/RiftedReader-sub002/internal/core/surface"
)

const (
	defaultNavQueueTimeout = 2 * time.Second
	defaultNavPollInterval = 50 * time.Millisecond

	inboxSize   = 256
	updatesSize = 16
)

// Saver persists the reading position. Implementations must be safe to call
// from a background goroutine.
type Saver interface {
	SavePosition(bookID string, windowID, page int, completed bool) error
}

// Config configures a reading session.
type Config struct {
	Doc     *book.Document
	Factory surface.Factory
	Bus     *eventbus.EventBus
	Saver   Saver // optional
	Layout  surface.Layout

	ChaptersPerWindow int
	BufferCapacity    int
	LowWatermark      int
	HighWatermark     int

	// NavQueueTimeout bounds how long a navigation request may wait for the
	// active surface to become ready; NavPollInterval is the re-check cadence.
	NavQueueTimeout time.Duration
	NavPollInterval time.Duration

	// Prewarm loads every buffered window eagerly. When false, windows load
	// on activation or on a streaming hint from the active surface.
	Prewarm bool

	// AutosaveInterval persists the position periodically; zero disables it.
	AutosaveInterval time.Duration

	// StartWindow and StartPage restore a saved position. Both are clamped.
	StartWindow int
	StartPage   int

	Logger zerolog.Logger
}

// Update is a session state snapshot for the UI. Consecutive identical
// snapshots are not re-published.
type Update struct {
	ActiveWindow int
	Page         int
	TotalPages   int
	Buffer       []int
	WindowCount  int
	Phase        conveyor.Phase

	// GlobalPage and GlobalPages estimate document-wide position; windows
	// that have never paginated contribute the mean of the known counts.
	GlobalPage  int
	GlobalPages int
	Percent     float64

	ChapterIndex int
	ChapterTitle string
	ChapterPage  int
	ChapterPages int

	Content   string
	Completed bool
}

func (u Update) equal(o Update) bool {
	return u.ActiveWindow == o.ActiveWindow &&
		u.Page == o.Page &&
		u.TotalPages == o.TotalPages &&
		slices.Equal(u.Buffer, o.Buffer) &&
		u.Phase == o.Phase &&
		u.GlobalPage == o.GlobalPage &&
		u.GlobalPages == o.GlobalPages &&
		u.ChapterIndex == o.ChapterIndex &&
		u.ChapterPage == o.ChapterPage &&
		u.ChapterPages == o.ChapterPages &&
		u.Content == o.Content &&
		u.Completed == o.Completed
}

// message is a unit of work for the control goroutine.
type message interface{ isMessage() }

type surfaceEventMsg struct{ ev surface.Event }
type navMsg struct{ dir surface.Direction }
type gotoWindowMsg struct{ window int }
type gotoChapterMsg struct{ chapter int }
type resizeMsg struct{ layout surface.Layout }
type navPollMsg struct{ token uint64 }
type navDeadlineMsg struct{ token uint64 }

func (surfaceEventMsg) isMessage() {}
func (navMsg) isMessage()          {}
func (gotoWindowMsg) isMessage()   {}
func (gotoChapterMsg) isMessage()  {}
func (resizeMsg) isMessage()       {}
func (navPollMsg) isMessage()      {}
func (navDeadlineMsg) isMessage()  {}

// pendingNav is a queued navigation request waiting for the active surface.
type pendingNav struct {
	token  uint64
	dir    surface.Direction
	window int
}

// pendingEntry records where to land in a window once it becomes ready.
// chapter >= 0 resolves to that chapter's first page; atLast resolves to the
// window's last page; otherwise page is used directly.
type pendingEntry struct {
	window  int
	page    int
	atLast  bool
	chapter int
}

// Session is the reading session actor for one open book.
type Session struct {
	cfg Config
	doc *book.Document
	bus *eventbus.EventBus
	log zerolog.Logger

	windowCount int
	layout      surface.Layout

	inbox    chan message
	updates  chan Update
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	conv *conveyor.Conveyor
	pool *surface.Pool

	active     int
	activePage int
	steady     bool
	announced  bool
	completed  bool

	navToken uint64
	pending  *pendingNav
	entry    *pendingEntry

	knownPages map[int]int
	lastUpdate *Update
}

// New validates cfg and builds an unstarted session.
func New(cfg Config) (*Session, error) {
	if cfg.Doc == nil {
		return nil, fmt.Errorf("reader: document is required")
	}
	if cfg.Factory == nil {
		return nil, fmt.Errorf("reader: surface factory is required")
	}
	if cfg.Bus == nil {
		return nil, fmt.Errorf("reader: event bus is required")
	}

	visible := cfg.Doc.VisibleCount()
	windowCount, err := pagewindow.Count(visible, cfg.ChaptersPerWindow)
	if err != nil {
		return nil, fmt.Errorf("reader: %w", err)
	}
	if windowCount == 0 {
		return nil, fmt.Errorf("reader: document %q has no visible chapters", cfg.Doc.Title)
	}

	if cfg.NavQueueTimeout <= 0 {
		cfg.NavQueueTimeout = defaultNavQueueTimeout
	}
	if cfg.NavPollInterval <= 0 {
		cfg.NavPollInterval = defaultNavPollInterval
	}

	s := &Session{
		cfg:         cfg,
		doc:         cfg.Doc,
		bus:         cfg.Bus,
		log:         cfg.Logger.With().Str("book", cfg.Doc.ID).Logger(),
		windowCount: windowCount,
		layout:      cfg.Layout,
		inbox:       make(chan message, inboxSize),
		updates:     make(chan Update, updatesSize),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
		knownPages:  make(map[int]int),
	}

	s.conv, err = conveyor.New(conveyor.Config{
		Capacity:      cfg.BufferCapacity,
		WindowCount:   windowCount,
		LowWatermark:  cfg.LowWatermark,
		HighWatermark: cfg.HighWatermark,
		OnEvict:       s.evict,
		Logger:        s.log,
	})
	if err != nil {
		return nil, fmt.Errorf("reader: %w", err)
	}

	s.pool, err = surface.NewPool(cfg.BufferCapacity, cfg.Factory, s.log)
	if err != nil {
		return nil, fmt.Errorf("reader: %w", err)
	}

	return s, nil
}

// Start builds the initial buffer around the start window and launches the
// control goroutine. The session becomes interactive once the start window's
// surface reports ready.
func (s *Session) Start() error {
	start := s.cfg.StartWindow
	if start < 0 {
		start = 0
	}
	if start > s.windowCount-1 {
		start = s.windowCount - 1
	}

	if err := s.conv.Initialize(start); err != nil {
		return fmt.Errorf("reader: %w", err)
	}

	s.active = start
	s.entry = &pendingEntry{window: start, page: max(s.cfg.StartPage, 0), chapter: -1}

	if s.cfg.Prewarm {
		for _, id := range s.conv.Buffer() {
			s.materialize(id)
		}
	} else {
		s.materialize(start)
	}

	go s.run()
	return nil
}

// Updates returns the UI snapshot channel. Closed at session teardown.
func (s *Session) Updates() <-chan Update { return s.updates }

// Done is closed once the session has fully torn down.
func (s *Session) Done() <-chan struct{} { return s.done }

// NextPage requests a forward page turn.
func (s *Session) NextPage() { s.post(navMsg{dir: surface.DirectionNext}) }

// PrevPage requests a backward page turn.
func (s *Session) PrevPage() { s.post(navMsg{dir: surface.DirectionPrev}) }

// GoToWindow jumps to an absolute window id.
func (s *Session) GoToWindow(id int) { s.post(gotoWindowMsg{window: id}) }

// GoToChapter jumps to the window holding a document chapter and lands on
// that chapter's first page.
func (s *Session) GoToChapter(chapterIndex int) { s.post(gotoChapterMsg{chapter: chapterIndex}) }

// Resize repaginates every live surface for a new layout.
func (s *Session) Resize(layout surface.Layout) { s.post(resizeMsg{layout: layout}) }

// Stop tears the session down: the final position is saved and every live
// surface destroyed. Safe to call more than once.
func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.quit) })
}

func (s *Session) post(m message) {
	select {
	case s.inbox <- m:
	case <-s.quit:
	}
}

// run is the control goroutine: the only place session state is mutated.
func (s *Session) run() {
	var autosave <-chan time.Time
	if s.cfg.AutosaveInterval > 0 {
		t := time.NewTicker(s.cfg.AutosaveInterval)
		defer t.Stop()
		autosave = t.C
	}

	for {
		select {
		case <-s.quit:
			s.teardown()
			return
		case m := <-s.inbox:
			s.handle(m)
		case <-autosave:
			s.saveAsync()
		}
	}
}

// handle dispatches one message. A panic while processing a single message
// is recovered and logged; the control sequence keeps running.
func (s *Session) handle(m message) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("recovered while handling session message")
		}
	}()

	switch m := m.(type) {
	case surfaceEventMsg:
		s.handleSurfaceEvent(m.ev)
	case navMsg:
		s.handleNav(m.dir)
	case gotoWindowMsg:
		s.activateWindow(m.window, pendingEntry{window: m.window, chapter: -1})
	case gotoChapterMsg:
		s.handleGoToChapter(m.chapter)
	case resizeMsg:
		s.handleResize(m.layout)
	case navPollMsg:
		s.handleNavPoll(m.token)
	case navDeadlineMsg:
		s.handleNavDeadline(m.token)
	}
}

func (s *Session) teardown() {
	s.saveSync()
	s.pool.ReleaseAll()
	close(s.updates)
	close(s.done)
	s.log.Debug().Msg("session torn down")
}

// materialize ensures a live, loading-or-ready surface for a buffered window
// id. New surfaces get a forwarder goroutine pumping their event stream into
// the inbox.
func (s *Session) materialize(windowID int) {
	slot, ok := s.conv.SlotOf(windowID)
	if !ok {
		return
	}

	sf, created, err := s.pool.Acquire(windowID, slot, s.conv.Buffer())
	if err != nil {
		s.log.Debug().Err(err).Int("window", windowID).Msg("acquire aborted")
		return
	}
	if !created {
		return
	}

	go s.forward(sf)

	start, end, err := pagewindow.Range(windowID, s.cfg.ChaptersPerWindow, s.doc.VisibleCount())
	if err != nil {
		s.log.Error().Err(err).Int("window", windowID).Msg("window range")
		return
	}
	sf.Load(surface.Content(s.doc, windowID, start, end), s.layout)
}

func (s *Session) forward(sf surface.Surface) {
	for ev := range sf.Events() {
		select {
		case s.inbox <- surfaceEventMsg{ev: ev}:
		case <-s.quit:
			return
		}
	}
}

// evict is the conveyor's eviction hook: exactly one release per dropped id.
func (s *Session) evict(windowID int) {
	s.pool.Release(windowID)
	if s.entry != nil && s.entry.window == windowID {
		s.entry = nil
	}
}

func (s *Session) handleSurfaceEvent(ev surface.Event) {
	// Telemetry passes through regardless of buffer membership.
	switch ev.Kind {
	case surface.EventSegmentEvicted:
		s.bus.PublishSegmentEvicted(eventbus.SegmentEvictedPayload{
			WindowID:     ev.WindowID,
			ChapterIndex: ev.ChapterIndex,
		})
		return
	case surface.EventDiagnostics, surface.EventPaginationState:
		s.log.Debug().Int("window", ev.WindowID).Str("detail", ev.Detail).Msg(ev.Kind.String())
		return
	}

	if !s.conv.Contains(ev.WindowID) {
		s.log.Debug().
			Int("window", ev.WindowID).
			Str("event", ev.Kind.String()).
			Msg("event from unbuffered window ignored")
		return
	}

	switch ev.Kind {
	case surface.EventReady:
		s.handleReady(ev)
	case surface.EventWindowFinalized:
		if ev.TotalPages > 0 {
			s.knownPages[ev.WindowID] = ev.TotalPages
		}
	case surface.EventPageChanged:
		if ev.WindowID == s.active {
			s.activePage = ev.Page
			s.maybeShift()
			s.pushUpdate()
		}
	case surface.EventBoundaryReached:
		s.handleBoundary(ev)
	case surface.EventStreamingRequest:
		s.handleStreamingHint(ev)
	case surface.EventWindowLoadError:
		s.log.Warn().Err(ev.Err).Int("window", ev.WindowID).Msg("window load failed")
		s.bus.PublishSurfaceFailed(eventbus.SurfaceFailedPayload{WindowID: ev.WindowID, Err: ev.Err})
	case surface.EventReconfigured:
		s.log.Debug().Int("window", ev.WindowID).Msg("window repaginated")
	}
}

// handleReady commits the initial buffer on the first ready of the active
// window and applies any pending entry position. Ready with a non-positive
// page count is treated as not yet ready.
func (s *Session) handleReady(ev surface.Event) {
	if ev.TotalPages <= 0 {
		return
	}
	s.knownPages[ev.WindowID] = ev.TotalPages

	if !s.steady && ev.WindowID == s.active {
		if err := s.conv.Commit(); err != nil {
			s.log.Error().Err(err).Msg("buffer commit")
		} else {
			s.steady = true
		}
	}
	if s.steady && !s.announced && ev.WindowID == s.active {
		s.announced = true
		s.bus.PublishReadingStarted(eventbus.ReadingStartedPayload{
			BookID:      s.doc.ID,
			Title:       s.doc.Title,
			WindowCount: s.windowCount,
			Window:      s.active,
			Page:        s.activePage,
		})
	}

	s.applyEntry(ev.WindowID)
	if ev.WindowID == s.active {
		s.pushUpdate()
	}
}

// applyEntry moves a freshly ready window to its recorded entry page.
func (s *Session) applyEntry(windowID int) {
	if s.entry == nil || s.entry.window != windowID {
		return
	}
	sf, ok := s.pool.Get(windowID)
	if !ok || sf.State() != surface.StateReady {
		return
	}

	e := *s.entry
	s.entry = nil

	page := e.page
	switch {
	case e.atLast:
		page = sf.PageCount() - 1
	case e.chapter >= 0:
		if p, ok := sf.ChapterPage(e.chapter); ok {
			page = p
		} else {
			page = 0
		}
	}
	if page != 0 || sf.CurrentPage() != 0 {
		sf.GoToPage(page)
	} else {
		// Already on the entry page; surfaces only emit on movement.
		s.activePage = 0
	}
}

func (s *Session) handleBoundary(ev surface.Event) {
	if ev.WindowID != s.active || s.completed {
		return
	}

	switch ev.Direction {
	case surface.DirectionNext:
		if s.active == s.windowCount-1 {
			s.complete()
			return
		}
		s.activateWindow(s.active+1, pendingEntry{window: s.active + 1, chapter: -1})
	case surface.DirectionPrev:
		if s.active == 0 {
			return
		}
		// Crossing backward enters the previous window at its last page.
		s.activateWindow(s.active-1, pendingEntry{window: s.active - 1, atLast: true, chapter: -1})
	}
}

// handleStreamingHint pre-materializes the adjacent window the surface says
// the reader is about to need.
func (s *Session) handleStreamingHint(ev surface.Event) {
	if ev.WindowID != s.active {
		return
	}
	neighbor := s.active + 1
	if ev.Direction == surface.DirectionPrev {
		neighbor = s.active - 1
	}
	if s.conv.Contains(neighbor) {
		s.materialize(neighbor)
	}
}

// handleNav resolves a page-turn gesture. The active surface gets first
// refusal; a surface that is not ready queues the request under a fresh
// token.
func (s *Session) handleNav(dir surface.Direction) {
	if s.completed {
		return
	}
	s.supersedeNav()

	if sf, ok := s.activeSurface(); ok {
		if dir == surface.DirectionNext {
			sf.NextPage()
		} else {
			sf.PrevPage()
		}
		return
	}

	s.queueNav(dir)
}

// activeSurface returns the active window's surface when it is fully usable:
// state ready, a positive page count, and non-empty extracted text.
func (s *Session) activeSurface() (surface.Surface, bool) {
	sf, ok := s.pool.Get(s.active)
	if !ok {
		return nil, false
	}
	if sf.State() != surface.StateReady || sf.PageCount() <= 0 || sf.Text() == "" {
		return nil, false
	}
	return sf, true
}

func (s *Session) queueNav(dir surface.Direction) {
	s.navToken++
	token := s.navToken
	s.pending = &pendingNav{token: token, dir: dir, window: s.active}

	s.log.Debug().
		Uint64("token", token).
		Str("direction", dir.String()).
		Int("window", s.active).
		Msg("navigation queued: surface not ready")

	// Lazily-loaded windows may never have been asked to materialize.
	s.materialize(s.active)

	time.AfterFunc(s.cfg.NavPollInterval, func() { s.post(navPollMsg{token: token}) })
	time.AfterFunc(s.cfg.NavQueueTimeout, func() { s.post(navDeadlineMsg{token: token}) })
}

func (s *Session) handleNavPoll(token uint64) {
	p := s.pending
	if p == nil || p.token != token || token != s.navToken {
		return
	}
	if p.window != s.active {
		// The wait's world moved on; exit with no action.
		s.dropNav("active window changed")
		return
	}

	if sf, ok := s.activeSurface(); ok {
		s.pending = nil
		if p.dir == surface.DirectionNext {
			sf.NextPage()
		} else {
			sf.PrevPage()
		}
		return
	}

	time.AfterFunc(s.cfg.NavPollInterval, func() { s.post(navPollMsg{token: token}) })
}

func (s *Session) handleNavDeadline(token uint64) {
	if s.pending == nil || s.pending.token != token {
		return
	}
	s.dropNav("timeout")
}

// supersedeNav invalidates any queued navigation wait. A fresh gesture always
// wins over a stale queued one.
func (s *Session) supersedeNav() {
	s.navToken++
	if s.pending != nil {
		s.dropNav("superseded")
	}
}

func (s *Session) dropNav(reason string) {
	p := s.pending
	s.pending = nil

	s.log.Warn().
		Int("window", p.window).
		Str("direction", p.dir.String()).
		Str("reason", reason).
		Msg("queued navigation dropped")

	s.bus.PublishNavigationDropped(eventbus.NavigationDroppedPayload{
		WindowID: p.window,
		Reason:   reason,
	})
}

// activateWindow makes target the active window, recentering the buffer and
// recording where to land once the target surface is ready. Out-of-range
// targets are rejected before any state changes.
func (s *Session) activateWindow(target int, entry pendingEntry) {
	if s.completed {
		return
	}
	if target < 0 || target >= s.windowCount {
		s.log.Warn().Int("window", target).Int("count", s.windowCount).Msg("window out of range")
		return
	}

	s.supersedeNav()

	s.active = target
	s.activePage = 0
	s.entry = &entry

	s.bus.PublishWindowActivated(eventbus.WindowActivatedPayload{WindowID: target, Page: 0})

	if s.conv.Contains(target) {
		s.maybeShift()
	} else {
		res, err := s.conv.Recenter(target)
		if errors.Is(err, conveyor.ErrNotSteady) && !s.steady {
			// A jump before the initial buffer settled: commit it as-is so
			// the recenter can proceed.
			if cerr := s.conv.Commit(); cerr == nil {
				s.steady = true
				res, err = s.conv.Recenter(target)
			}
		}
		if err != nil {
			s.log.Error().Err(err).Int("window", target).Msg("recenter")
		} else if len(res.Added) > 0 || len(res.Dropped) > 0 {
			s.bus.PublishBufferShifted(eventbus.BufferShiftedPayload{
				Buffer:  res.Buffer,
				Added:   res.Added,
				Dropped: res.Dropped,
			})
		}
	}

	if s.cfg.Prewarm {
		for _, id := range s.conv.Buffer() {
			s.materialize(id)
		}
	} else {
		s.materialize(target)
	}

	s.applyEntry(target)
	s.saveAsync()
	s.pushUpdate()
}

// maybeShift consults the conveyor's watermark advice and performs at most
// one single-step shift.
func (s *Session) maybeShift() {
	if !s.steady || s.completed {
		return
	}

	var (
		res conveyor.ShiftResult
		err error
	)
	switch s.conv.Advise(s.active) {
	case conveyor.AdviceForward:
		res, err = s.conv.ShiftForward(1)
	case conveyor.AdviceBackward:
		res, err = s.conv.ShiftBackward(1)
	default:
		return
	}
	if err != nil {
		s.log.Debug().Err(err).Msg("shift declined")
		return
	}
	if len(res.Added) == 0 && len(res.Dropped) == 0 {
		return
	}

	s.bus.PublishBufferShifted(eventbus.BufferShiftedPayload{
		Buffer:  res.Buffer,
		Added:   res.Added,
		Dropped: res.Dropped,
	})

	if s.cfg.Prewarm {
		for _, id := range res.Added {
			s.materialize(id)
		}
	}
}

func (s *Session) handleGoToChapter(chapterIndex int) {
	visIdx, ok := s.doc.VisibleIndex(chapterIndex)
	if !ok {
		s.log.Warn().Int("chapter", chapterIndex).Msg("chapter hidden or unknown")
		return
	}
	target, err := pagewindow.ForChapter(visIdx, s.cfg.ChaptersPerWindow)
	if err != nil {
		s.log.Error().Err(err).Int("chapter", chapterIndex).Msg("chapter window")
		return
	}
	s.activateWindow(target, pendingEntry{window: target, chapter: chapterIndex})
}

func (s *Session) handleResize(layout surface.Layout) {
	if layout == s.layout {
		return
	}
	s.layout = layout

	for _, id := range s.pool.Live() {
		if sf, ok := s.pool.Get(id); ok {
			sf.Reconfigure(layout)
		}
	}
}

// complete marks the document finished exactly once and tears the session
// down. Duplicate boundary signals after completion are ignored upstream.
func (s *Session) complete() {
	if s.completed {
		return
	}
	s.completed = true

	s.log.Info().Str("title", s.doc.Title).Msg("document completed")
	s.saveSync()
	s.bus.PublishDocumentCompleted(eventbus.DocumentCompletedPayload{
		BookID: s.doc.ID,
		Title:  s.doc.Title,
	})
	s.pushUpdate()
	s.Stop()
}

func (s *Session) saveAsync() {
	if s.cfg.Saver == nil {
		return
	}
	bookID, window, page, completed := s.doc.ID, s.active, s.activePage, s.completed
	go s.save(bookID, window, page, completed)
}

func (s *Session) saveSync() {
	if s.cfg.Saver == nil {
		return
	}
	s.save(s.doc.ID, s.active, s.activePage, s.completed)
}

func (s *Session) save(bookID string, window, page int, completed bool) {
	if err := s.cfg.Saver.SavePosition(bookID, window, page, completed); err != nil {
		s.log.Warn().Err(err).Msg("position save failed")
		return
	}
	s.bus.PublishPositionSaved(eventbus.PositionSavedPayload{
		BookID:    bookID,
		WindowID:  window,
		Page:      page,
		Completed: completed,
	})
}

// globalPosition estimates the document-wide page position. Windows without
// a finalized count contribute the mean of the known counts.
func (s *Session) globalPosition() (page, total int) {
	avg := 1
	if len(s.knownPages) > 0 {
		sum := 0
		for _, n := range s.knownPages {
			sum += n
		}
		avg = max(sum/len(s.knownPages), 1)
	}

	for w := range s.windowCount {
		n, ok := s.knownPages[w]
		if !ok {
			n = avg
		}
		if w < s.active {
			page += n
		}
		total += n
	}
	page += s.activePage + 1
	if page > total {
		page = total
	}
	return page, total
}

// pushUpdate publishes a deduplicated state snapshot. The updates channel
// never blocks the control goroutine; when the consumer lags, the oldest
// snapshot is dropped in favor of the newest.
func (s *Session) pushUpdate() {
	u := Update{
		ActiveWindow: s.active,
		Page:         s.activePage,
		Buffer:       s.conv.Buffer(),
		WindowCount:  s.windowCount,
		Phase:        s.conv.Phase(),
		ChapterIndex: -1,
		Completed:    s.completed,
	}

	if sf, ok := s.pool.Get(s.active); ok && sf.State() == surface.StateReady {
		u.TotalPages = sf.PageCount()
		if content, ok := sf.PageContent(s.activePage); ok {
			u.Content = content
		}
		if loc, ok := sf.Location(s.activePage); ok {
			u.ChapterIndex = loc.ChapterIndex
			u.ChapterPage = loc.PageInChapter
			u.ChapterPages = loc.ChapterPages
			if ch, ok := s.doc.Chapter(loc.ChapterIndex); ok {
				u.ChapterTitle = ch.Title
			}
		}
	}

	u.GlobalPage, u.GlobalPages = s.globalPosition()
	if u.GlobalPages > 0 {
		u.Percent = 100 * float64(u.GlobalPage) / float64(u.GlobalPages)
	}

	if s.lastUpdate != nil && u.equal(*s.lastUpdate) {
		return
	}
	s.lastUpdate = &u

	select {
	case s.updates <- u:
	default:
		select {
		case <-s.updates:
		default:
		}
		select {
		case s.updates <- u:
		default:
		}
	}
}
