package surface

import (
	"fmt"
	"slices"
	"sort"

	"github.com/rs/zerolog"
)

// Pool owns the live render surfaces for the buffered windows. It caches one
// surface per window id, binds each to a host slot, and destroys surfaces
// when their window leaves the buffer.
//
// The pool is owned by the control goroutine; it is not safe for concurrent
// use. Acquire revalidates its inputs instead of trusting them, because an
// acquire request may have been scheduled before a buffer shift landed.
type Pool struct {
	capacity int
	factory  Factory

	byWindow map[int]Surface
	bySlot   map[int]int // slot index -> bound window id

	log zerolog.Logger
}

// NewPool creates a pool that will hold at most capacity live surfaces.
func NewPool(capacity int, factory Factory, log zerolog.Logger) (*Pool, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("surface pool: capacity must be >= 1, got %d", capacity)
	}
	if factory == nil {
		return nil, fmt.Errorf("surface pool: factory is required")
	}
	return &Pool{
		capacity: capacity,
		factory:  factory,
		byWindow: make(map[int]Surface),
		bySlot:   make(map[int]int),
		log:      log,
	}, nil
}

// Acquire returns the surface for a window id, constructing one on first
// use. The created flag reports whether a new surface was built, so the
// caller can wire its event stream exactly once.
//
// The acquire is aborted with an error when the request is stale: the window
// id has left the buffer, the slot is out of range, or the slot is bound to
// a different live window. Stale acquires are expected during shifts and are
// logged at debug level.
func (p *Pool) Acquire(windowID, slot int, buffer []int) (Surface, bool, error) {
	if !slices.Contains(buffer, windowID) {
		p.log.Debug().Int("window", windowID).Ints("buffer", buffer).Msg("stale acquire: window left buffer")
		return nil, false, fmt.Errorf("surface pool: window %d not in buffer", windowID)
	}
	if slot < 0 || slot >= p.capacity {
		return nil, false, fmt.Errorf("surface pool: slot %d out of range [0, %d)", slot, p.capacity)
	}
	if bound, ok := p.bySlot[slot]; ok && bound != windowID {
		if _, live := p.byWindow[bound]; live {
			p.log.Debug().
				Int("window", windowID).
				Int("slot", slot).
				Int("bound", bound).
				Msg("stale acquire: slot bound to another live window")
			return nil, false, fmt.Errorf("surface pool: slot %d bound to window %d", slot, bound)
		}
	}

	// Cache hit: one live surface per window id.
	if s, ok := p.byWindow[windowID]; ok {
		p.bySlot[slot] = windowID
		return s, false, nil
	}

	if len(p.byWindow) >= p.capacity {
		return nil, false, fmt.Errorf("surface pool: capacity %d exhausted", p.capacity)
	}

	s := p.factory.New(windowID)
	p.byWindow[windowID] = s
	p.bySlot[slot] = windowID

	p.log.Debug().Int("window", windowID).Int("slot", slot).Msg("surface created")
	return s, true, nil
}

// Get returns the live surface for a window id without creating one.
func (p *Pool) Get(windowID int) (Surface, bool) {
	s, ok := p.byWindow[windowID]
	return s, ok
}

// Release destroys the surface for a window id and unbinds its slot.
// Returns true when a live surface was released. A release for a window
// that never materialized is a no-op; evicted never-visited windows take
// this path routinely when prewarm is off.
func (p *Pool) Release(windowID int) bool {
	s, ok := p.byWindow[windowID]
	if !ok {
		p.log.Debug().Int("window", windowID).Msg("release of window with no live surface")
		return false
	}

	delete(p.byWindow, windowID)
	for slot, bound := range p.bySlot {
		if bound == windowID {
			delete(p.bySlot, slot)
		}
	}

	s.Destroy()
	p.log.Debug().Int("window", windowID).Msg("surface released")
	return true
}

// ReleaseAll destroys every live surface. Used at session teardown.
func (p *Pool) ReleaseAll() {
	for id := range p.byWindow {
		p.Release(id)
	}
}

// Live returns the window ids with live surfaces in ascending order.
func (p *Pool) Live() []int {
	ids := make([]int, 0, len(p.byWindow))
	for id := range p.byWindow {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Len returns the number of live surfaces.
func (p *Pool) Len() int { return len(p.byWindow) }
