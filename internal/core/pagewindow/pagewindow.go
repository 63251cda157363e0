// Package pagewindow maps chapters onto fixed-size pagination windows.
//
// A window groups a constant number of consecutive visible chapters; the
// final window may be short. All functions are pure and validate their
// inputs, so callers can rely on the identities
//
//	Count(n, k) == ceil(n/k)
//	ForChapter(i, k) == i/k
//	Range(w, k, n) == [w*k, min((w+1)*k, n))
package pagewindow

import "fmt"

// Count returns the number of windows needed to hold visibleChapters
// chapters at perWindow chapters each. Zero chapters yield zero windows.
func Count(visibleChapters, perWindow int) (int, error) {
	if visibleChapters < 0 {
		return 0, fmt.Errorf("visible chapter count must be >= 0, got %d", visibleChapters)
	}
	if perWindow < 1 {
		return 0, fmt.Errorf("chapters per window must be >= 1, got %d", perWindow)
	}
	return (visibleChapters + perWindow - 1) / perWindow, nil
}

// ForChapter returns the window id holding the given visible chapter index.
func ForChapter(chapterIndex, perWindow int) (int, error) {
	if chapterIndex < 0 {
		return 0, fmt.Errorf("chapter index must be >= 0, got %d", chapterIndex)
	}
	if perWindow < 1 {
		return 0, fmt.Errorf("chapters per window must be >= 1, got %d", perWindow)
	}
	return chapterIndex / perWindow, nil
}

// Range returns the half-open visible-chapter range [start, end) covered by
// a window. The final window is clamped to the chapter count.
func Range(windowID, perWindow, visibleChapters int) (start, end int, err error) {
	count, err := Count(visibleChapters, perWindow)
	if err != nil {
		return 0, 0, err
	}
	if windowID < 0 || windowID >= count {
		return 0, 0, fmt.Errorf("window %d out of range [0, %d)", windowID, count)
	}

	start = windowID * perWindow
	end = start + perWindow
	if end > visibleChapters {
		end = visibleChapters
	}
	return start, end, nil
}
