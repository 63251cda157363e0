package render

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rifters/RiftedReader-sub002/internal/core/book"
	"github.com/rifters/RiftedReader-sub002/internal/core/surface"
)

func testFactory(t *testing.T) *Factory {
	t.Helper()
	return NewFactory(Options{
		Style:  "notty",
		Logger: zerolog.Nop(),
	})
}

func chapters(bodies ...string) []book.Chapter {
	out := make([]book.Chapter, len(bodies))
	for i, b := range bodies {
		out[i] = book.Chapter{Index: i, Title: "ch", Body: b, Visible: true}
	}
	return out
}

// waitFor drains the surface's event channel until an event of the wanted
// kind arrives.
func waitFor(t *testing.T, s surface.Surface, kind surface.EventKind) surface.Event {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-s.Events():
			require.True(t, ok, "event channel closed while waiting for %s", kind)
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", kind)
		}
	}
}

func loadReady(t *testing.T, s surface.Surface, chs []book.Chapter, layout surface.Layout) int {
	t.Helper()
	s.Load(book.WindowContent{WindowID: s.WindowID(), Chapters: chs}, layout)
	ev := waitFor(t, s, surface.EventReady)
	require.Positive(t, ev.TotalPages)
	return ev.TotalPages
}

func TestSurface_Load_emitsLifecycleEvents(t *testing.T) {
	s := testFactory(t).New(3)
	defer s.Destroy()

	s.Load(book.WindowContent{
		WindowID: 3,
		Chapters: chapters("# One\n\nfirst body\n", "# Two\n\nsecond body\n"),
	}, surface.Layout{Cols: 40, Rows: 10})

	loaded := waitFor(t, s, surface.EventWindowLoaded)
	assert.Equal(t, 3, loaded.WindowID)

	ready := waitFor(t, s, surface.EventReady)
	assert.Positive(t, ready.TotalPages)

	fin := waitFor(t, s, surface.EventWindowFinalized)
	assert.Equal(t, ready.TotalPages, fin.TotalPages)

	assert.Equal(t, surface.StateReady, s.State())
	assert.Equal(t, ready.TotalPages, s.PageCount())
	assert.Equal(t, 0, s.CurrentPage())
}

func TestSurface_Load_eachChapterStartsAFreshPage(t *testing.T) {
	s := testFactory(t).New(0)
	defer s.Destroy()

	loadReady(t, s, chapters("short one\n", "short two\n"), surface.Layout{Cols: 40, Rows: 20})

	p0, ok := s.ChapterPage(0)
	require.True(t, ok)
	p1, ok := s.ChapterPage(1)
	require.True(t, ok)
	assert.Less(t, p0, p1)

	loc, ok := s.Location(p1)
	require.True(t, ok)
	assert.Equal(t, 1, loc.ChapterIndex)
	assert.Equal(t, 0, loc.PageInChapter)
}

func TestSurface_Load_longChapterSpansPages(t *testing.T) {
	s := testFactory(t).New(0)
	defer s.Destroy()

	var body string
	for range 30 {
		body += "A paragraph of the chapter.\n\n"
	}
	total := loadReady(t, s, chapters(body), surface.Layout{Cols: 40, Rows: 5})
	assert.Greater(t, total, 1)

	content, ok := s.PageContent(0)
	require.True(t, ok)
	assert.NotEmpty(t, content)

	_, ok = s.PageContent(total)
	assert.False(t, ok, "out-of-range page must not resolve")
}

func TestSurface_Load_invalidLayoutFails(t *testing.T) {
	s := testFactory(t).New(0)
	defer s.Destroy()

	s.Load(book.WindowContent{Chapters: chapters("text\n")}, surface.Layout{Cols: 0, Rows: 10})

	ev := waitFor(t, s, surface.EventWindowLoadError)
	require.Error(t, ev.Err)
	assert.Equal(t, surface.StateFailed, s.State())
	assert.Equal(t, 0, s.PageCount())
}

func TestSurface_NextPage_emitsStreamingRequestAtLastPage(t *testing.T) {
	s := testFactory(t).New(0)
	defer s.Destroy()

	var body string
	for range 30 {
		body += "Line after line after line.\n\n"
	}
	total := loadReady(t, s, chapters(body), surface.Layout{Cols: 40, Rows: 5})
	require.Greater(t, total, 1)

	s.GoToPage(total - 2)
	waitFor(t, s, surface.EventPageChanged)

	s.NextPage()
	ev := waitFor(t, s, surface.EventPageChanged)
	assert.Equal(t, total-1, ev.Page)

	stream := waitFor(t, s, surface.EventStreamingRequest)
	assert.Equal(t, surface.DirectionNext, stream.Direction)

	// Another turn past the edge only reports the boundary.
	s.NextPage()
	bound := waitFor(t, s, surface.EventBoundaryReached)
	assert.Equal(t, surface.DirectionNext, bound.Direction)
	assert.Equal(t, total-1, s.CurrentPage())
}

func TestSurface_PrevPage_boundaryAtFirstPage(t *testing.T) {
	s := testFactory(t).New(0)
	defer s.Destroy()

	loadReady(t, s, chapters("tiny\n"), surface.Layout{Cols: 40, Rows: 10})

	s.PrevPage()
	ev := waitFor(t, s, surface.EventBoundaryReached)
	assert.Equal(t, surface.DirectionPrev, ev.Direction)
	assert.Equal(t, 0, s.CurrentPage())
}

func TestSurface_GoToPage_clamps(t *testing.T) {
	s := testFactory(t).New(0)
	defer s.Destroy()

	total := loadReady(t, s, chapters("tiny\n"), surface.Layout{Cols: 40, Rows: 10})

	s.GoToPage(999)
	ev := waitFor(t, s, surface.EventPageChanged)
	assert.Equal(t, total-1, ev.Page)

	s.GoToPage(-5)
	ev = waitFor(t, s, surface.EventPageChanged)
	assert.Equal(t, 0, ev.Page)
}

func TestSurface_Reconfigure_repaginates(t *testing.T) {
	s := testFactory(t).New(0)
	defer s.Destroy()

	var body string
	for range 20 {
		body += "Words to wrap around the margin.\n\n"
	}
	loadReady(t, s, chapters(body), surface.Layout{Cols: 60, Rows: 10})

	s.Reconfigure(surface.Layout{Cols: 30, Rows: 4})
	waitFor(t, s, surface.EventReconfigured)
	ev := waitFor(t, s, surface.EventReady)
	assert.Positive(t, ev.TotalPages)
	assert.Equal(t, surface.StateReady, s.State())
}

func TestSurface_Text_joinsChapterBodies(t *testing.T) {
	s := testFactory(t).New(0)
	defer s.Destroy()

	assert.Empty(t, s.Text(), "no text before load")

	loadReady(t, s, chapters("alpha body\n", "beta body\n"), surface.Layout{Cols: 40, Rows: 10})

	text := s.Text()
	assert.Contains(t, text, "alpha body")
	assert.Contains(t, text, "beta body")
}

func TestSurface_SegmentCache_evictsFarthestChapter(t *testing.T) {
	f := NewFactory(Options{Style: "notty", SegmentCap: 1, Logger: zerolog.Nop()})
	s := f.New(0)
	defer s.Destroy()

	s.Load(book.WindowContent{
		Chapters: chapters("one\n", "two\n", "three\n"),
	}, surface.Layout{Cols: 40, Rows: 10})

	// With a single cache slot, rendering three chapters evicts two segments.
	waitFor(t, s, surface.EventSegmentEvicted)
	waitFor(t, s, surface.EventSegmentEvicted)
	waitFor(t, s, surface.EventReady)
}

func TestSurface_Destroy_isIdempotent(t *testing.T) {
	s := testFactory(t).New(0)
	loadReady(t, s, chapters("text\n"), surface.Layout{Cols: 40, Rows: 10})

	s.Destroy()
	s.Destroy()
	assert.Equal(t, surface.StateDestroyed, s.State())

	for range s.Events() {
	}
}
