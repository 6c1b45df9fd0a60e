// Package adapters maps other modules' stores to the admin read models.
package adapters

import (
	"context"

	"immersionfacile/internal/outbox"
)

// FailedEventStore is implemented by outbox stores.
type FailedEventStore interface {
	FailedEvents(ctx context.Context) ([]outbox.Event, error)
}

// FailedEventsAdapter exposes failing events as their debug view.
type FailedEventsAdapter struct {
	store FailedEventStore
}

func NewFailedEventsAdapter(store FailedEventStore) *FailedEventsAdapter {
	return &FailedEventsAdapter{store: store}
}

func (a *FailedEventsAdapter) FailedEvents(ctx context.Context) ([]outbox.DebugInfo, error) {
	events, err := a.store.FailedEvents(ctx)
	if err != nil {
		return nil, err
	}
	return outbox.ToDebugInfos(events), nil
}
