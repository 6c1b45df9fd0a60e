package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"immersionfacile/pkg/requestcontext"
)

// Factory creates new events. Events on quarantined topics are stored
// already quarantined and never delivered.
type Factory struct {
	newID       func() string
	quarantined map[Topic]struct{}
}

type FactoryOption func(*Factory)

func WithIDGenerator(fn func() string) FactoryOption {
	return func(f *Factory) {
		f.newID = fn
	}
}

func WithQuarantinedTopics(topics ...Topic) FactoryOption {
	return func(f *Factory) {
		for _, t := range topics {
			f.quarantined[t] = struct{}{}
		}
	}
}

func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{
		newID:       uuid.NewString,
		quarantined: make(map[Topic]struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// New builds an unpublished event. occurredAt comes from the request clock.
func (f *Factory) New(ctx context.Context, topic Topic, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", topic, err)
	}
	_, quarantined := f.quarantined[topic]
	return Event{
		ID:             f.newID(),
		OccurredAt:     requestcontext.Now(ctx),
		Topic:          topic,
		Payload:        raw,
		Publications:   []Publication{},
		WasQuarantined: quarantined,
	}, nil
}
