package kv

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_GetSet(t *testing.T) {
	// Keyed like the segment cache: page index to rendered text.
	s := New[int, string]()

	s.Set(3, "rendered page")
	val, ok := s.Get(3)
	assert.True(t, ok)
	assert.Equal(t, "rendered page", val)

	// Get non-existent
	_, ok = s.Get(4)
	assert.False(t, ok)
}

func TestStore_Delete(t *testing.T) {
	s := New[string, string]()
	s.Set("key", "value")

	s.Delete("key")

	_, ok := s.Get("key")
	assert.False(t, ok)
}

func TestStore_Clear(t *testing.T) {
	s := New[string, int]()
	s.Set("a", 1)
	s.Set("b", 2)

	s.Clear()

	assert.Equal(t, 0, s.Len())
}

func TestStore_Keys(t *testing.T) {
	s := New[string, int]()
	s.Set("a", 1)
	s.Set("b", 2)

	keys := s.Keys()
	assert.Len(t, keys, 2)
	assert.Contains(t, keys, "a")
	assert.Contains(t, keys, "b")
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := New[int, int]()
	var wg sync.WaitGroup

	// Concurrent writes
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.Set(n, n*2)
		}(i)
	}

	// Concurrent reads
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.Get(n)
		}(i)
	}

	wg.Wait()

	assert.Equal(t, 100, s.Len())
}
