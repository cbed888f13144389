package observability

import (
	"context"

	"github.com/rs/zerolog"
)

// ZerologObserver emits events to a zerolog.Logger. The event type becomes
// the message and Data keys become fields.
type ZerologObserver struct {
	logger zerolog.Logger
}

// NewZerologObserver creates a ZerologObserver that emits to logger.
func NewZerologObserver(logger zerolog.Logger) *ZerologObserver {
	return &ZerologObserver{logger: logger}
}

func (o *ZerologObserver) OnEvent(ctx context.Context, event Event) {
	e := o.logger.WithLevel(event.Level.ZerologLevel())
	if e == nil {
		return
	}
	if !event.Timestamp.IsZero() {
		e = e.Time("event_time", event.Timestamp)
	}
	e.Str("source", event.Source).
		Fields(event.Data).
		Ctx(ctx).
		Msg(string(event.Type))
}
