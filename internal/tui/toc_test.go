package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rifters/RiftedReader-sub002/internal/core/book"
)

func testTOC() []book.TOCEntry {
	return []book.TOCEntry{
		{ChapterIndex: 0, Title: "Prologue", Level: 1},
		{ChapterIndex: 1, Title: "The Long Road", Level: 1},
		{ChapterIndex: 2, Title: "Roadside Camp", Level: 2},
		{ChapterIndex: 3, Title: "Epilogue", Level: 1},
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTOCOverlay_OpenSeedsCursorAtCurrentChapter(t *testing.T) {
	o := newTOCOverlay(testTOC())

	o.Open(2)

	assert.True(t, o.IsOpen())
	assert.Equal(t, 2, o.cursor)
}

func TestTOCOverlay_FilterNarrowsEntries(t *testing.T) {
	o := newTOCOverlay(testTOC())
	o.Open(0)

	for _, r := range "road" {
		o.Update(keyRunes(string(r)))
	}

	require.Len(t, o.filtered, 2)
	assert.Equal(t, "The Long Road", o.filtered[0].Title)
	assert.Equal(t, "Roadside Camp", o.filtered[1].Title)
}

func TestTOCOverlay_EnterSelectsChapter(t *testing.T) {
	o := newTOCOverlay(testTOC())
	o.Open(0)

	o.Update(tea.KeyMsg{Type: tea.KeyDown})
	chapter, ok := o.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.True(t, ok)
	assert.Equal(t, 1, chapter)
	assert.False(t, o.IsOpen())
}

func TestTOCOverlay_EscCloses(t *testing.T) {
	o := newTOCOverlay(testTOC())
	o.Open(0)

	_, ok := o.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.False(t, ok)
	assert.False(t, o.IsOpen())
}

func TestTOCOverlay_NoMatchesResetsCursor(t *testing.T) {
	o := newTOCOverlay(testTOC())
	o.Open(3)

	o.Update(keyRunes("z"))
	o.Update(keyRunes("q"))

	assert.Empty(t, o.filtered)
	assert.Equal(t, 0, o.cursor)
	assert.Contains(t, o.View(), "no matching chapters")
}
