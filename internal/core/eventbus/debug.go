package eventbus

import (
	"fmt"

	"github.com/rs/zerolog"
)

// RegisterDebugLogger wires bus hooks that trace session events at debug
// level. The read command registers it when debug logging is on, so buffer
// shifts, window activations, and position saves show up in the log with the
// rest of the session trace. Drops and subscriber panics log at warn and
// error regardless, since those indicate a stuck notice channel or a broken
// subscriber.
func RegisterDebugLogger(bus *EventBus, logger zerolog.Logger) {
	bus.OnPublish(func(event Event, _ any) {
		logger.Debug().Str("event", string(event)).Msg("event fired")
	})

	bus.OnDrop(func(event Event, _ any) {
		logger.Warn().Str("event", string(event)).Msg("event dropped: buffer full")
	})

	bus.OnPanic(func(event Event, _ any, recovered any) {
		logger.Error().
			Str("event", string(event)).
			Str("panic", fmt.Sprint(recovered)).
			Msg("subscriber panicked")
	})
}
