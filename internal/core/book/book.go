// Package book defines the document model shared by the parser, the
// reading session, and persistence.
package book

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

// Chapter is a single unit of document content. Index is dense from 0 in
// document order and includes hidden chapters.
type Chapter struct {
	Index   int
	Title   string
	Body    string // raw markdown source
	Visible bool
}

// TOCEntry is a table-of-contents row pointing at a chapter.
type TOCEntry struct {
	ChapterIndex int
	Title        string
	Level        int
}

// Document is a fully parsed book.
type Document struct {
	ID       string // stable identity derived from the source path
	Title    string
	Path     string
	Chapters []Chapter
	TOC      []TOCEntry
}

// WindowContent is the payload handed to a render surface: the visible
// chapters belonging to one window, in document order.
type WindowContent struct {
	WindowID int
	Chapters []Chapter
}

// ID derives a stable document identity from a source path. Relative paths
// are resolved first so the same book opened from different working
// directories maps to one identity.
func ID(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	sum := sha256.Sum256([]byte(abs))
	return hex.EncodeToString(sum[:])[:16]
}

// VisibleChapters returns the chapters that participate in pagination,
// in document order.
func (d *Document) VisibleChapters() []Chapter {
	out := make([]Chapter, 0, len(d.Chapters))
	for _, ch := range d.Chapters {
		if ch.Visible {
			out = append(out, ch)
		}
	}
	return out
}

// VisibleCount returns the number of visible chapters.
func (d *Document) VisibleCount() int {
	n := 0
	for _, ch := range d.Chapters {
		if ch.Visible {
			n++
		}
	}
	return n
}

// VisibleIndex maps a document chapter index to its position among visible
// chapters. Returns false when the chapter is hidden or out of range.
func (d *Document) VisibleIndex(chapterIndex int) (int, bool) {
	pos := 0
	for _, ch := range d.Chapters {
		if ch.Index == chapterIndex {
			if !ch.Visible {
				return 0, false
			}
			return pos, true
		}
		if ch.Visible {
			pos++
		}
	}
	return 0, false
}

// Chapter returns the chapter with the given document index.
func (d *Document) Chapter(index int) (Chapter, bool) {
	for _, ch := range d.Chapters {
		if ch.Index == index {
			return ch, true
		}
	}
	return Chapter{}, false
}
