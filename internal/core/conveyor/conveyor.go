// Package conveyor maintains the sliding window buffer for continuous
// pagination: a contiguous ascending run of window ids kept near the active
// window, advanced in small shifts as reading progresses.
//
// A Conveyor is owned by a single control goroutine and is not safe for
// concurrent use. Eviction and buffer hooks run synchronously on that
// goroutine, which is what guarantees each dropped window id is released
// exactly once.
package conveyor

import (
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
)

// Phase describes the conveyor lifecycle.
type Phase int

const (
	PhaseInitializing Phase = iota
	PhaseLoading
	PhaseSteady
	PhaseShifting
)

// String returns the lowercase phase name.
func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseLoading:
		return "loading"
	case PhaseSteady:
		return "steady"
	case PhaseShifting:
		return "shifting"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Advice is a shift recommendation derived from the active window's slot.
type Advice int

const (
	AdviceNone Advice = iota
	AdviceForward
	AdviceBackward
)

var (
	// ErrNotSteady is returned when a shift is requested outside PhaseSteady.
	ErrNotSteady = errors.New("conveyor: not in steady phase")
	// ErrNotInitialized is returned when an operation requires a built buffer.
	ErrNotInitialized = errors.New("conveyor: not initialized")
)

// Config configures a Conveyor.
type Config struct {
	// Capacity is the maximum buffer length. Must be >= 1.
	Capacity int
	// WindowCount is the total number of windows in the document. Must be >= 1;
	// documents with no windows cannot be buffered.
	WindowCount int
	// LowWatermark is the slot index at or below which a backward shift is
	// advised. HighWatermark is the slot index at or above which a forward
	// shift is advised. Both are clamped to [0, Capacity-1]; advice is
	// disabled entirely when Capacity < 3.
	LowWatermark  int
	HighWatermark int
	// OnEvict fires exactly once for every window id dropped from the buffer.
	OnEvict func(windowID int)
	// OnBuffer fires after every buffer change with a copy of the new buffer.
	// Consecutive identical buffers are not re-published.
	OnBuffer func(buffer []int)

	Logger zerolog.Logger
}

// Conveyor is the sliding buffer manager.
type Conveyor struct {
	capacity    int
	windowCount int
	lowWater    int
	highWater   int

	phase       Phase
	buffer      []int
	initialized bool

	onEvict  func(int)
	onBuffer func([]int)
	last     []int

	log zerolog.Logger
}

// New validates cfg and returns a Conveyor in PhaseInitializing.
func New(cfg Config) (*Conveyor, error) {
	if cfg.Capacity < 1 {
		return nil, fmt.Errorf("conveyor: capacity must be >= 1, got %d", cfg.Capacity)
	}
	if cfg.WindowCount < 1 {
		return nil, fmt.Errorf("conveyor: window count must be >= 1, got %d", cfg.WindowCount)
	}

	low, high := cfg.LowWatermark, cfg.HighWatermark
	if low < 0 {
		low = 0
	}
	if high > cfg.Capacity-1 {
		high = cfg.Capacity - 1
	}

	return &Conveyor{
		capacity:    cfg.Capacity,
		windowCount: cfg.WindowCount,
		lowWater:    low,
		highWater:   high,
		phase:       PhaseInitializing,
		onEvict:     cfg.OnEvict,
		onBuffer:    cfg.OnBuffer,
		log:         cfg.Logger,
	}, nil
}

// Phase returns the current lifecycle phase.
func (c *Conveyor) Phase() Phase { return c.phase }

// Initialized reports whether the first buffer has been built.
func (c *Conveyor) Initialized() bool { return c.initialized }

// WindowCount returns the total number of document windows.
func (c *Conveyor) WindowCount() int { return c.windowCount }

// Capacity returns the configured maximum buffer length.
func (c *Conveyor) Capacity() int { return c.capacity }

// Buffer returns a copy of the current buffer.
func (c *Conveyor) Buffer() []int {
	return slices.Clone(c.buffer)
}

// Contains reports whether a window id is currently buffered.
func (c *Conveyor) Contains(windowID int) bool {
	_, ok := c.SlotOf(windowID)
	return ok
}

// SlotOf returns the buffer slot index of a window id.
func (c *Conveyor) SlotOf(windowID int) (int, bool) {
	for i, id := range c.buffer {
		if id == windowID {
			return i, true
		}
	}
	return 0, false
}

// Initialize builds the first buffer centered on the active window, clamped
// to the document edges. The conveyor enters PhaseLoading; the host calls
// Commit once the initial buffer has settled.
func (c *Conveyor) Initialize(activeWindow int) error {
	if c.initialized {
		return fmt.Errorf("conveyor: already initialized")
	}
	if c.phase != PhaseInitializing {
		return fmt.Errorf("conveyor: initialize in phase %s", c.phase)
	}
	if activeWindow < 0 || activeWindow >= c.windowCount {
		return fmt.Errorf("conveyor: active window %d out of range [0, %d)", activeWindow, c.windowCount)
	}

	c.buffer = c.centeredRun(activeWindow)
	c.initialized = true
	c.phase = PhaseLoading

	c.log.Debug().
		Ints("buffer", c.buffer).
		Int("active", activeWindow).
		Msg("initial buffer built")

	c.publish()
	return nil
}

// Commit moves the conveyor from PhaseLoading to PhaseSteady once the
// initial buffer has settled.
func (c *Conveyor) Commit() error {
	if c.phase != PhaseLoading {
		return fmt.Errorf("conveyor: commit in phase %s", c.phase)
	}
	c.phase = PhaseSteady
	return nil
}

// ShiftResult describes a completed buffer mutation.
type ShiftResult struct {
	Added   []int
	Dropped []int
	Buffer  []int
}

// changed reports whether the shift mutated the buffer.
func (r ShiftResult) changed() bool {
	return len(r.Added) > 0 || len(r.Dropped) > 0
}

// ShiftForward advances the buffer by up to n windows: the n lowest ids are
// dropped and n new ids appended after the current highest, clamped at the
// document edge. At the edge this degenerates to a smaller shift or a no-op.
func (c *Conveyor) ShiftForward(n int) (ShiftResult, error) {
	return c.shift(n, true)
}

// ShiftBackward is the mirror of ShiftForward toward lower window ids.
func (c *Conveyor) ShiftBackward(n int) (ShiftResult, error) {
	return c.shift(n, false)
}

func (c *Conveyor) shift(n int, forward bool) (ShiftResult, error) {
	if !c.initialized {
		return ShiftResult{}, ErrNotInitialized
	}
	if c.phase != PhaseSteady {
		return ShiftResult{}, fmt.Errorf("%w (phase %s)", ErrNotSteady, c.phase)
	}
	if n < 1 {
		return ShiftResult{}, fmt.Errorf("conveyor: shift count must be >= 1, got %d", n)
	}

	var m int
	if forward {
		m = min(n, c.windowCount-1-c.buffer[len(c.buffer)-1])
	} else {
		m = min(n, c.buffer[0])
	}
	if m == 0 {
		return ShiftResult{Buffer: c.Buffer()}, nil
	}

	first := c.buffer[0] + m
	if !forward {
		first = c.buffer[0] - m
	}

	return c.apply(ascendingRun(first, len(c.buffer))), nil
}

// Recenter rebuilds the buffer centered on the given window in a single
// shifting bracket. Used for long-distance jumps where an incremental shift
// would churn through intermediate windows.
func (c *Conveyor) Recenter(activeWindow int) (ShiftResult, error) {
	if !c.initialized {
		return ShiftResult{}, ErrNotInitialized
	}
	if c.phase != PhaseSteady {
		return ShiftResult{}, fmt.Errorf("%w (phase %s)", ErrNotSteady, c.phase)
	}
	if activeWindow < 0 || activeWindow >= c.windowCount {
		return ShiftResult{}, fmt.Errorf("conveyor: window %d out of range [0, %d)", activeWindow, c.windowCount)
	}

	next := c.centeredRun(activeWindow)
	if slices.Equal(next, c.buffer) {
		return ShiftResult{Buffer: c.Buffer()}, nil
	}

	return c.apply(next), nil
}

// apply commits a new buffer: evicts departed ids exactly once, installs the
// new run, and publishes. The shifting phase brackets the whole mutation.
func (c *Conveyor) apply(next []int) ShiftResult {
	c.phase = PhaseShifting

	res := ShiftResult{Buffer: slices.Clone(next)}
	for _, id := range c.buffer {
		if !slices.Contains(next, id) {
			res.Dropped = append(res.Dropped, id)
		}
	}
	for _, id := range next {
		if !slices.Contains(c.buffer, id) {
			res.Added = append(res.Added, id)
		}
	}

	for _, id := range res.Dropped {
		if c.onEvict != nil {
			c.onEvict(id)
		}
	}

	c.buffer = next
	if res.changed() {
		c.publish()
	}

	c.phase = PhaseSteady

	c.log.Debug().
		Ints("buffer", c.buffer).
		Ints("added", res.Added).
		Ints("dropped", res.Dropped).
		Msg("buffer shifted")

	return res
}

// Advise recommends a shift based on the active window's slot position
// against the configured watermarks. Advice is positional only; the caller
// decides whether a shift is currently appropriate.
func (c *Conveyor) Advise(activeWindow int) Advice {
	if !c.initialized || c.capacity < 3 {
		return AdviceNone
	}

	slot, ok := c.SlotOf(activeWindow)
	if !ok {
		return AdviceNone
	}

	if slot >= c.highWater && c.buffer[len(c.buffer)-1] < c.windowCount-1 {
		return AdviceForward
	}
	if slot <= c.lowWater && c.buffer[0] > 0 {
		return AdviceBackward
	}
	return AdviceNone
}

// centeredRun computes the buffer run of length min(capacity, windowCount)
// centered on active, clamped to [0, windowCount-1]. With an even capacity
// the extra slot falls after the active window.
func (c *Conveyor) centeredRun(active int) []int {
	length := min(c.capacity, c.windowCount)
	start := active - (length-1)/2
	if start < 0 {
		start = 0
	}
	if start+length > c.windowCount {
		start = c.windowCount - length
	}
	return ascendingRun(start, length)
}

func ascendingRun(start, length int) []int {
	run := make([]int, length)
	for i := range run {
		run[i] = start + i
	}
	return run
}

// publish invokes OnBuffer unless the buffer is unchanged since the last
// publication.
func (c *Conveyor) publish() {
	if c.onBuffer == nil {
		return
	}
	if slices.Equal(c.buffer, c.last) {
		return
	}
	c.last = slices.Clone(c.buffer)
	c.onBuffer(slices.Clone(c.buffer))
}
