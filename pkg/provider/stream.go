package provider

import (
	"context"

	"github.com/blazorly/aisdk-go/pkg/api"
)

// EventBuffer is the channel capacity every adapter uses for its event
// stream. It absorbs decode bursts while still exerting backpressure on
// the network read when the consumer falls behind.
const EventBuffer = 16

// Send delivers one event, honoring context cancellation. It reports false
// when the context ended before the consumer accepted the event; producers
// stop decoding at that point.
func Send(ctx context.Context, ch chan<- api.Event, ev api.Event) bool {
	select {
	case ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
