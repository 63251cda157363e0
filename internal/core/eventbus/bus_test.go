package eventbus_test

import (
	"sync"
	"testing"
	"time"

	"github.com/rifters/RiftedReader-sub002/internal/core/eventbus"
	"github.com/rifters/RiftedReader-sub002/internal/core/eventbus/testbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_PublishReachesSubscriber(t *testing.T) {
	tb := testbus.New(t)

	tb.PublishWindowActivated(eventbus.WindowActivatedPayload{WindowID: 3, Page: 1})
	tb.AssertPublished(t, eventbus.EventWindowActivated)

	events := tb.Events()
	require.Len(t, events, 1)
	p, ok := events[0].Payload.(eventbus.WindowActivatedPayload)
	require.True(t, ok)
	assert.Equal(t, 3, p.WindowID)
}

func TestEventBus_SubscriberPanic_isRecovered(t *testing.T) {
	tb := testbus.New(t)

	var (
		mu        sync.Mutex
		panicked  bool
		recovered any
	)
	tb.OnPanic(func(_ eventbus.Event, _ any, r any) {
		mu.Lock()
		panicked = true
		recovered = r
		mu.Unlock()
	})

	tb.SubscribeSegmentEvicted(func(eventbus.SegmentEvictedPayload) {
		panic("subscriber exploded")
	})

	tb.PublishSegmentEvicted(eventbus.SegmentEvictedPayload{WindowID: 1, ChapterIndex: 4})

	// The recording subscriber still runs despite the panic.
	tb.AssertPublished(t, eventbus.EventSegmentEvicted)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return panicked
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.Equal(t, "subscriber exploded", recovered)
	mu.Unlock()
}

func TestEventBus_FullBuffer_dropsWithHook(t *testing.T) {
	// Unstarted bus with a single-slot buffer: the second publish must drop.
	bus := eventbus.New(1)

	var (
		mu      sync.Mutex
		dropped []eventbus.Event
	)
	bus.OnDrop(func(e eventbus.Event, _ any) {
		mu.Lock()
		dropped = append(dropped, e)
		mu.Unlock()
	})

	bus.PublishBufferShifted(eventbus.BufferShiftedPayload{Buffer: []int{0}})
	bus.PublishBufferShifted(eventbus.BufferShiftedPayload{Buffer: []int{1}})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, dropped, 1)
	assert.Equal(t, eventbus.EventBufferShifted, dropped[0])
}

func TestEventBus_OnPublishHookFires(t *testing.T) {
	tb := testbus.New(t)

	var (
		mu    sync.Mutex
		names []eventbus.Event
	)
	tb.OnPublish(func(e eventbus.Event, _ any) {
		mu.Lock()
		names = append(names, e)
		mu.Unlock()
	})

	tb.PublishReadingStarted(eventbus.ReadingStartedPayload{BookID: "b"})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, names, 1)
	assert.Equal(t, eventbus.EventReadingStarted, names[0])
}
