package parse

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/rifters/RiftedReader-sub002/internal/core/book"
)

// BookRef is a discovered library entry.
type BookRef struct {
	ID    string
	Path  string
	Title string
}

// Scan walks the configured library paths and returns the Markdown books
// found under them, sorted by title. Unreadable paths are skipped rather
// than failing the whole scan.
func Scan(paths []string) ([]BookRef, error) {
	seen := make(map[string]struct{})
	var refs []BookRef

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			continue
		}

		matches, err := doublestar.FilepathGlob(root + "/**/*.{md,markdown}")
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", root, err)
		}

		for _, m := range matches {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			refs = append(refs, BookRef{
				ID:    book.ID(m),
				Path:  m,
				Title: scanTitle(m),
			})
		}
	}

	sort.Slice(refs, func(i, j int) bool {
		return strings.ToLower(refs[i].Title) < strings.ToLower(refs[j].Title)
	})
	return refs, nil
}

// scanTitle pulls a display title without parsing the whole book: the first
// level-1 heading if one is near the top, else the filename.
func scanTitle(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return titleFromPath(path)
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, 4096)
	n, _ := f.Read(head)
	for _, line := range strings.Split(string(head[:n]), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return titleFromPath(path)
}
