package render

import (
	"github.com/rifters/RiftedReader-sub002/pkg/kv"
)

// segmentCache holds rendered chapter segments for one surface. Rendering a
// chapter through glamour is the expensive step of pagination, so segments
// are kept across reflows; under memory pressure the segment farthest from
// the chapter being read is dropped and re-rendered on demand.
type segmentCache struct {
	max     int
	width   int
	store   *kv.Store[int, string]
	onEvict func(chapterIdx int)
}

func newSegmentCache(max int, onEvict func(int)) *segmentCache {
	if max < 1 {
		max = 1
	}
	return &segmentCache{
		max:     max,
		store:   kv.New[int, string](),
		onEvict: onEvict,
	}
}

// get returns the cached rendering of a chapter, if present.
func (c *segmentCache) get(chapterIdx int) (string, bool) {
	return c.store.Get(chapterIdx)
}

// put caches a rendered segment, evicting the segment farthest from the
// current chapter when over capacity.
func (c *segmentCache) put(chapterIdx int, rendered string, currentChapter int) {
	c.store.Set(chapterIdx, rendered)

	for c.store.Len() > c.max {
		victim, ok := c.farthest(currentChapter)
		if !ok || victim == chapterIdx {
			return
		}
		c.store.Delete(victim)
		if c.onEvict != nil {
			c.onEvict(victim)
		}
	}
}

// setWidth clears the cache when the render width changes; cached segments
// are only valid for the width they were rendered at.
func (c *segmentCache) setWidth(width int) {
	if width == c.width {
		return
	}
	c.width = width
	c.store.Clear()
}

func (c *segmentCache) farthest(current int) (int, bool) {
	best, bestDist, found := 0, -1, false
	for _, k := range c.store.Keys() {
		dist := k - current
		if dist < 0 {
			dist = -dist
		}
		if dist > bestDist {
			best, bestDist, found = k, dist, true
		}
	}
	return best, found
}
