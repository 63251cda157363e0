package surface_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rifters/RiftedReader-sub002/internal/core/surface"
	"github.com/rifters/RiftedReader-sub002/internal/core/surface/surfacetest"
)

func newPool(t *testing.T, capacity int, factory *surfacetest.Factory) *surface.Pool {
	t.Helper()
	pool, err := surface.NewPool(capacity, factory, zerolog.Nop())
	require.NoError(t, err)
	return pool
}

func TestNewPool_InvalidArgs(t *testing.T) {
	_, err := surface.NewPool(0, surfacetest.NewFactory(), zerolog.Nop())
	require.Error(t, err)

	_, err = surface.NewPool(3, nil, zerolog.Nop())
	require.Error(t, err)
}

func TestPool_AcquireCreatesOnce(t *testing.T) {
	factory := surfacetest.NewFactory()
	pool := newPool(t, 3, factory)
	buffer := []int{0, 1, 2}

	s, created, err := pool.Acquire(1, 1, buffer)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 1, s.WindowID())

	// Second acquire for the same window is a cache hit.
	again, created, err := pool.Acquire(1, 1, buffer)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, s, again)
	assert.Equal(t, 1, factory.CreatedCount(1))
}

func TestPool_AcquireStaleWindowRejected(t *testing.T) {
	pool := newPool(t, 3, surfacetest.NewFactory())

	// Window 7 is not in the buffer anymore; the acquire was scheduled
	// before a shift landed.
	_, _, err := pool.Acquire(7, 0, []int{0, 1, 2})
	require.Error(t, err)
	assert.Equal(t, 0, pool.Len())
}

func TestPool_AcquireSlotOutOfRange(t *testing.T) {
	pool := newPool(t, 3, surfacetest.NewFactory())

	_, _, err := pool.Acquire(0, 3, []int{0, 1, 2})
	require.Error(t, err)

	_, _, err = pool.Acquire(0, -1, []int{0, 1, 2})
	require.Error(t, err)
}

func TestPool_AcquireSlotBoundToLiveWindow(t *testing.T) {
	pool := newPool(t, 3, surfacetest.NewFactory())
	buffer := []int{0, 1, 2}

	_, _, err := pool.Acquire(0, 0, buffer)
	require.NoError(t, err)

	_, _, err = pool.Acquire(1, 0, buffer)
	require.Error(t, err)

	// Releasing the bound window frees the slot for rebinding.
	assert.True(t, pool.Release(0))
	_, created, err := pool.Acquire(1, 0, buffer)
	require.NoError(t, err)
	assert.True(t, created)
}

func TestPool_ReleaseDestroysExactlyOnce(t *testing.T) {
	factory := surfacetest.NewFactory()
	pool := newPool(t, 3, factory)

	_, _, err := pool.Acquire(2, 2, []int{0, 1, 2})
	require.NoError(t, err)

	assert.True(t, pool.Release(2))
	fake, ok := factory.Surface(2)
	require.True(t, ok)
	assert.True(t, fake.Destroyed())

	// A second release for the same id is a no-op.
	assert.False(t, pool.Release(2))
}

func TestPool_ReleaseNeverMaterializedWindow(t *testing.T) {
	pool := newPool(t, 3, surfacetest.NewFactory())

	// Evicted windows that were never visited have no surface to destroy.
	assert.False(t, pool.Release(5))
	assert.Equal(t, 0, pool.Len())
}

func TestPool_ReleaseAll(t *testing.T) {
	factory := surfacetest.NewFactory()
	pool := newPool(t, 3, factory)
	buffer := []int{0, 1, 2}

	for i, id := range buffer {
		_, _, err := pool.Acquire(id, i, buffer)
		require.NoError(t, err)
	}
	assert.Equal(t, []int{0, 1, 2}, pool.Live())

	pool.ReleaseAll()
	assert.Equal(t, 0, pool.Len())
	for _, id := range buffer {
		fake, ok := factory.Surface(id)
		require.True(t, ok)
		assert.True(t, fake.Destroyed(), "window %d", id)
	}
}
