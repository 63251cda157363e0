package eventbus_test

import (
	"testing"

	"github.com/rifters/RiftedReader-sub002/internal/core/eventbus"
	"github.com/rifters/RiftedReader-sub002/internal/core/eventbus/testbus"
	"github.com/rs/zerolog"
)

func TestRegisterDebugLogger(t *testing.T) {
	tb := testbus.New(t)

	// Register with a nop logger; verifies no panic.
	eventbus.RegisterDebugLogger(tb.EventBus, zerolog.Nop())

	// Publish a few events to exercise all subscriber paths.
	tb.PublishReadingStarted(eventbus.ReadingStartedPayload{
		BookID: "test", Title: "test", WindowCount: 3,
	})
	tb.PublishBufferShifted(eventbus.BufferShiftedPayload{Buffer: []int{0, 1, 2}})
	tb.PublishWindowActivated(eventbus.WindowActivatedPayload{WindowID: 1})

	// Wait for last event to confirm all dispatched without panic.
	tb.AssertPublished(t, eventbus.EventWindowActivated)
}
