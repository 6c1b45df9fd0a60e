package outbox

import "context"

// Store persists events. Save is an upsert keyed by event id and must join
// the unit of work carried by ctx.
type Store interface {
	Save(ctx context.Context, event Event) error
	UnpublishedEvents(ctx context.Context) ([]Event, error)
	FailedEvents(ctx context.Context) ([]Event, error)
}

// Saver is the write side used by services recording events.
type Saver interface {
	Save(ctx context.Context, event Event) error
}
