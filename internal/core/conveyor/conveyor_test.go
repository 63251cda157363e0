package conveyor_test

import (
	"testing"

	"github.com/rifters/RiftedReader-sub002/internal/core/conveyor"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder captures eviction and buffer publications for assertions.
type recorder struct {
	evicted []int
	buffers [][]int
}

func (r *recorder) evict(id int)     { r.evicted = append(r.evicted, id) }
func (r *recorder) buffer(buf []int) { r.buffers = append(r.buffers, buf) }

func (r *recorder) evictCount(id int) int {
	n := 0
	for _, e := range r.evicted {
		if e == id {
			n++
		}
	}
	return n
}

func newSteady(t *testing.T, capacity, windows, active int, rec *recorder) *conveyor.Conveyor {
	t.Helper()

	cfg := conveyor.Config{
		Capacity:      capacity,
		WindowCount:   windows,
		LowWatermark:  1,
		HighWatermark: capacity - 2,
		Logger:        zerolog.Nop(),
	}
	if rec != nil {
		cfg.OnEvict = rec.evict
		cfg.OnBuffer = rec.buffer
	}

	c, err := conveyor.New(cfg)
	require.NoError(t, err)
	require.NoError(t, c.Initialize(active))
	require.NoError(t, c.Commit())
	return c
}

func TestNew_rejectsInvalidConfig(t *testing.T) {
	_, err := conveyor.New(conveyor.Config{Capacity: 0, WindowCount: 5})
	assert.Error(t, err)

	_, err = conveyor.New(conveyor.Config{Capacity: 5, WindowCount: 0})
	assert.Error(t, err, "a document with no windows cannot be buffered")
}

func TestInitialize_opensAtStart(t *testing.T) {
	c := newSteady(t, 5, 5, 0, nil)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, c.Buffer())
	assert.Equal(t, conveyor.PhaseSteady, c.Phase())
}

func TestInitialize_centersOnActive(t *testing.T) {
	c := newSteady(t, 5, 10, 5, nil)
	assert.Equal(t, []int{3, 4, 5, 6, 7}, c.Buffer())
}

func TestInitialize_clampsAtTrailingEdge(t *testing.T) {
	c := newSteady(t, 5, 10, 9, nil)
	assert.Equal(t, []int{5, 6, 7, 8, 9}, c.Buffer())
}

func TestInitialize_shortDocument(t *testing.T) {
	c := newSteady(t, 5, 3, 1, nil)
	assert.Equal(t, []int{0, 1, 2}, c.Buffer(), "buffer length is min(capacity, windowCount)")
}

func TestInitialize_evenCapacityBiasesAfterActive(t *testing.T) {
	c := newSteady(t, 4, 10, 5, nil)
	assert.Equal(t, []int{4, 5, 6, 7}, c.Buffer())
}

func TestInitialize_phaseTransitions(t *testing.T) {
	c, err := conveyor.New(conveyor.Config{Capacity: 5, WindowCount: 10, Logger: zerolog.Nop()})
	require.NoError(t, err)
	assert.Equal(t, conveyor.PhaseInitializing, c.Phase())
	assert.False(t, c.Initialized())

	require.NoError(t, c.Initialize(0))
	assert.Equal(t, conveyor.PhaseLoading, c.Phase())
	assert.True(t, c.Initialized())

	require.NoError(t, c.Commit())
	assert.Equal(t, conveyor.PhaseSteady, c.Phase())
}

func TestInitialize_rejectsReinitialize(t *testing.T) {
	c := newSteady(t, 5, 10, 0, nil)
	assert.Error(t, c.Initialize(3))
}

func TestInitialize_rejectsOutOfRangeActive(t *testing.T) {
	c, err := conveyor.New(conveyor.Config{Capacity: 5, WindowCount: 10, Logger: zerolog.Nop()})
	require.NoError(t, err)
	assert.Error(t, c.Initialize(10))
	assert.Error(t, c.Initialize(-1))
}

func TestShiftForward(t *testing.T) {
	rec := &recorder{}
	c := newSteady(t, 5, 10, 2, rec)
	require.Equal(t, []int{0, 1, 2, 3, 4}, c.Buffer())

	res, err := c.ShiftForward(1)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3, 4, 5}, c.Buffer())
	assert.Equal(t, []int{0}, res.Dropped)
	assert.Equal(t, []int{5}, res.Added)
	assert.Equal(t, []int{0}, rec.evicted)
	assert.Equal(t, conveyor.PhaseSteady, c.Phase())
}

func TestShiftForward_clampsAtDocumentEnd(t *testing.T) {
	rec := &recorder{}
	c := newSteady(t, 5, 10, 9, rec)
	require.Equal(t, []int{5, 6, 7, 8, 9}, c.Buffer())

	res, err := c.ShiftForward(1)
	require.NoError(t, err)

	assert.Empty(t, res.Added, "shift at the edge degenerates to a no-op")
	assert.Empty(t, res.Dropped)
	assert.Equal(t, []int{5, 6, 7, 8, 9}, c.Buffer())
	assert.Empty(t, rec.evicted, "a no-op shift must not evict")
}

func TestShiftForward_partialAtEdge(t *testing.T) {
	rec := &recorder{}
	c := newSteady(t, 5, 10, 7, rec)
	require.Equal(t, []int{5, 6, 7, 8, 9}, c.Buffer())

	// Move back first so a 2-wide forward shift only has room for 0.
	_, err := c.ShiftBackward(1)
	require.NoError(t, err)
	require.Equal(t, []int{4, 5, 6, 7, 8}, c.Buffer())

	res, err := c.ShiftForward(3)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 6, 7, 8, 9}, c.Buffer(), "shift shrinks to the available room")
	assert.Equal(t, []int{4}, res.Dropped)
	assert.Equal(t, []int{9}, res.Added)
}

func TestShiftBackward(t *testing.T) {
	rec := &recorder{}
	c := newSteady(t, 5, 10, 5, rec)
	require.Equal(t, []int{3, 4, 5, 6, 7}, c.Buffer())

	res, err := c.ShiftBackward(1)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 3, 4, 5, 6}, c.Buffer())
	assert.Equal(t, []int{7}, res.Dropped)
	assert.Equal(t, []int{2}, res.Added)
	assert.Equal(t, []int{7}, rec.evicted)
}

func TestShiftBackward_noopAtStart(t *testing.T) {
	rec := &recorder{}
	c := newSteady(t, 5, 10, 0, rec)

	res, err := c.ShiftBackward(1)
	require.NoError(t, err)
	assert.Empty(t, res.Added)
	assert.Empty(t, res.Dropped)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, c.Buffer())
}

func TestShift_requiresSteadyPhase(t *testing.T) {
	c, err := conveyor.New(conveyor.Config{Capacity: 5, WindowCount: 10, Logger: zerolog.Nop()})
	require.NoError(t, err)
	require.NoError(t, c.Initialize(0))

	// Still in loading: the initial buffer has not settled.
	_, err = c.ShiftForward(1)
	assert.ErrorIs(t, err, conveyor.ErrNotSteady)
}

func TestShift_requiresInitialized(t *testing.T) {
	c, err := conveyor.New(conveyor.Config{Capacity: 5, WindowCount: 10, Logger: zerolog.Nop()})
	require.NoError(t, err)

	_, err = c.ShiftForward(1)
	assert.ErrorIs(t, err, conveyor.ErrNotInitialized)
}

func TestShift_evictsExactlyOncePerDroppedID(t *testing.T) {
	rec := &recorder{}
	c := newSteady(t, 5, 20, 2, rec)

	for i := 0; i < 10; i++ {
		_, err := c.ShiftForward(1)
		require.NoError(t, err)
	}

	assert.Equal(t, []int{10, 11, 12, 13, 14}, c.Buffer())
	for id := 0; id < 10; id++ {
		assert.Equal(t, 1, rec.evictCount(id), "window %d must be released exactly once", id)
	}
}

func TestRecenter_longJump(t *testing.T) {
	rec := &recorder{}
	c := newSteady(t, 5, 30, 0, rec)
	require.Equal(t, []int{0, 1, 2, 3, 4}, c.Buffer())

	res, err := c.Recenter(20)
	require.NoError(t, err)

	assert.Equal(t, []int{18, 19, 20, 21, 22}, c.Buffer())
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4}, res.Dropped)
	assert.ElementsMatch(t, []int{18, 19, 20, 21, 22}, res.Added)
	for id := 0; id < 5; id++ {
		assert.Equal(t, 1, rec.evictCount(id))
	}
}

func TestRecenter_overlappingJump(t *testing.T) {
	rec := &recorder{}
	c := newSteady(t, 5, 30, 10, rec)
	require.Equal(t, []int{8, 9, 10, 11, 12}, c.Buffer())

	res, err := c.Recenter(13)
	require.NoError(t, err)

	assert.Equal(t, []int{11, 12, 13, 14, 15}, c.Buffer())
	assert.ElementsMatch(t, []int{8, 9, 10}, res.Dropped)
	assert.ElementsMatch(t, []int{13, 14, 15}, res.Added)
}

func TestRecenter_noopWhenBufferUnchanged(t *testing.T) {
	rec := &recorder{}
	c := newSteady(t, 5, 10, 5, rec)
	before := c.Buffer()

	res, err := c.Recenter(5)
	require.NoError(t, err)
	assert.Empty(t, res.Added)
	assert.Empty(t, res.Dropped)
	assert.Equal(t, before, c.Buffer())
	assert.Empty(t, rec.evicted)
}

func TestAdvise(t *testing.T) {
	c := newSteady(t, 5, 20, 7, nil)
	require.Equal(t, []int{5, 6, 7, 8, 9}, c.Buffer())

	assert.Equal(t, conveyor.AdviceNone, c.Advise(7), "centered active needs no shift")
	assert.Equal(t, conveyor.AdviceForward, c.Advise(8), "slot capacity-2 advises forward")
	assert.Equal(t, conveyor.AdviceForward, c.Advise(9))
	assert.Equal(t, conveyor.AdviceBackward, c.Advise(6), "slot 1 advises backward")
	assert.Equal(t, conveyor.AdviceBackward, c.Advise(5))
	assert.Equal(t, conveyor.AdviceNone, c.Advise(99), "unbuffered window yields no advice")
}

func TestAdvise_suppressedAtDocumentEdges(t *testing.T) {
	c := newSteady(t, 5, 10, 0, nil)
	require.Equal(t, []int{0, 1, 2, 3, 4}, c.Buffer())
	assert.Equal(t, conveyor.AdviceNone, c.Advise(0), "nothing before window 0")
	assert.Equal(t, conveyor.AdviceNone, c.Advise(1))

	c2 := newSteady(t, 5, 10, 9, nil)
	require.Equal(t, []int{5, 6, 7, 8, 9}, c2.Buffer())
	assert.Equal(t, conveyor.AdviceNone, c2.Advise(9), "nothing after the last window")
}

func TestAdvise_disabledForTinyBuffers(t *testing.T) {
	c := newSteady(t, 2, 10, 5, nil)
	for id := range 10 {
		assert.Equal(t, conveyor.AdviceNone, c.Advise(id))
	}
}

func TestBufferPublication_deduplicates(t *testing.T) {
	rec := &recorder{}
	c := newSteady(t, 5, 10, 9, rec)
	require.Len(t, rec.buffers, 1, "initialize publishes once")

	// Edge no-op: buffer unchanged, nothing published.
	_, err := c.ShiftForward(1)
	require.NoError(t, err)
	assert.Len(t, rec.buffers, 1)

	_, err = c.ShiftBackward(1)
	require.NoError(t, err)
	require.Len(t, rec.buffers, 2)
	assert.Equal(t, []int{4, 5, 6, 7, 8}, rec.buffers[1])
}

func TestBuffer_returnsCopy(t *testing.T) {
	c := newSteady(t, 5, 10, 0, nil)
	buf := c.Buffer()
	buf[0] = 99
	assert.Equal(t, []int{0, 1, 2, 3, 4}, c.Buffer())
}
