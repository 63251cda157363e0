// Package parse turns Markdown sources into book documents: a single file is
// split into chapters on level-1/2 headings, a directory becomes one chapter
// per file in lexical order.
package parse

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/rifters/RiftedReader-sub002/internal/core/book"
)

// maxChapterHeadingLevel is the deepest heading that starts a new chapter.
// Deeper headings stay inside their chapter body.
const maxChapterHeadingLevel = 2

// Open parses the book at path. A regular file is split on headings; a
// directory is read as one chapter per Markdown file.
func Open(path string) (*book.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open book: %w", err)
	}
	if info.IsDir() {
		return parseDir(path)
	}
	return parseFile(path)
}

// heading is a chapter boundary found in a Markdown source.
type heading struct {
	title     string
	level     int
	lineStart int // byte offset of the start of the heading line
}

// headings walks the top-level AST and collects chapter-boundary headings.
func headings(src []byte) ([]heading, error) {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))

	var out []heading
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok || h.Level > maxChapterHeadingLevel {
			continue
		}
		if h.Lines().Len() == 0 {
			continue
		}

		seg := h.Lines().At(0)
		lineStart := bytes.LastIndexByte(src[:seg.Start], '\n') + 1
		out = append(out, heading{
			title:     strings.TrimSpace(string(src[seg.Start:seg.Stop])),
			level:     h.Level,
			lineStart: lineStart,
		})
	}
	return out, nil
}

func parseFile(path string) (*book.Document, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read book: %w", err)
	}

	hs, err := headings(src)
	if err != nil {
		return nil, err
	}

	doc := &book.Document{
		ID:    book.ID(path),
		Title: titleFromPath(path),
		Path:  path,
	}
	if len(hs) > 0 && hs[0].level == 1 {
		doc.Title = hs[0].title
	}

	var levels []int
	if len(hs) == 0 {
		// No headings: the whole file is one chapter.
		doc.Chapters = append(doc.Chapters, chapter(0, doc.Title, string(src)))
		levels = append(levels, 1)
	} else {
		// Preamble before the first heading becomes a front-matter chapter.
		if pre := string(src[:hs[0].lineStart]); strings.TrimSpace(pre) != "" {
			doc.Chapters = append(doc.Chapters, chapter(len(doc.Chapters), "Front matter", pre))
			levels = append(levels, 1)
		}
		for i, h := range hs {
			end := len(src)
			if i+1 < len(hs) {
				end = hs[i+1].lineStart
			}
			doc.Chapters = append(doc.Chapters, chapterWithHeading(len(doc.Chapters), h, string(src[h.lineStart:end])))
			levels = append(levels, h.level)
		}
	}

	for i, ch := range doc.Chapters {
		if !ch.Visible {
			continue
		}
		doc.TOC = append(doc.TOC, book.TOCEntry{
			ChapterIndex: ch.Index,
			Title:        ch.Title,
			Level:        levels[i],
		})
	}
	return doc, nil
}

func parseDir(path string) (*book.Document, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read book dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !isMarkdown(e.Name()) {
			continue
		}
		files = append(files, e.Name())
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no markdown files in %s", path)
	}
	sort.Strings(files)

	doc := &book.Document{
		ID:    book.ID(path),
		Title: titleFromPath(path),
		Path:  path,
	}

	for _, name := range files {
		src, err := os.ReadFile(filepath.Join(path, name))
		if err != nil {
			return nil, fmt.Errorf("read chapter %s: %w", name, err)
		}

		title := titleFromPath(name)
		if hs, err := headings(src); err == nil && len(hs) > 0 {
			title = hs[0].title
		}

		ch := chapter(len(doc.Chapters), title, string(src))
		doc.Chapters = append(doc.Chapters, ch)
		if ch.Visible {
			doc.TOC = append(doc.TOC, book.TOCEntry{
				ChapterIndex: ch.Index,
				Title:        ch.Title,
				Level:        1,
			})
		}
	}

	return doc, nil
}

// chapter builds a chapter; bodies with no renderable content are hidden.
func chapter(index int, title, body string) book.Chapter {
	return book.Chapter{
		Index:   index,
		Title:   title,
		Body:    body,
		Visible: strings.TrimSpace(body) != "",
	}
}

// chapterWithHeading builds a chapter whose body starts with its heading
// line. A bare part-divider heading with nothing under it is hidden.
func chapterWithHeading(index int, h heading, body string) book.Chapter {
	content := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(body), strings.Repeat("#", h.level)+" "+h.title))
	return book.Chapter{
		Index:   index,
		Title:   h.title,
		Body:    body,
		Visible: content != "",
	}
}

func titleFromPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ReplaceAll(base, "_", " ")
	base = strings.ReplaceAll(base, "-", " ")
	return strings.TrimSpace(base)
}

func isMarkdown(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return true
	default:
		return false
	}
}
