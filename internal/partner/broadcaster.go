// Package partner broadcasts convention lifecycle changes to partner systems
// over Kafka.
package partner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	conventionmodels "immersionfacile/internal/convention/models"
	"immersionfacile/internal/outbox"
)

// SubscriptionID is shared by every broadcast subscription.
const SubscriptionID outbox.SubscriptionID = "BroadcastToPartners"

// Producer writes one keyed message.
type Producer interface {
	Produce(ctx context.Context, key, value []byte) error
}

type Subscriber interface {
	Subscribe(topic outbox.Topic, id outbox.SubscriptionID, callback outbox.Callback)
}

// Message is the document partners receive.
type Message struct {
	ID             conventionmodels.ID     `json:"id"`
	ExternalID     int64                   `json:"externalId"`
	Status         conventionmodels.Status `json:"status"`
	Topic          outbox.Topic            `json:"topic"`
	AgencyID       string                  `json:"agencyId"`
	Siret          string                  `json:"siret"`
	DateSubmission string                  `json:"dateSubmission"`
	DateStart      string                  `json:"dateStart"`
	DateEnd        string                  `json:"dateEnd"`
}

// Broadcaster produces a message for each convention event.
type Broadcaster struct {
	producer Producer
	logger   *slog.Logger
}

func NewBroadcaster(producer Producer, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{producer: producer, logger: logger}
}

var conventionTopics = []outbox.Topic{
	outbox.TopicSubmittedByBeneficiary,
	outbox.TopicPartiallySigned,
	outbox.TopicFullySigned,
	outbox.TopicAcceptedByCounsellor,
	outbox.TopicAcceptedByValidator,
	outbox.TopicFinalValidation,
	outbox.TopicRejected,
	outbox.TopicCancelled,
}

// Subscribe registers the broadcaster on every convention lifecycle topic.
func (b *Broadcaster) Subscribe(bus Subscriber) {
	for _, topic := range conventionTopics {
		bus.Subscribe(topic, SubscriptionID, func(ctx context.Context, e outbox.Event) error {
			c, err := outbox.Decode[conventionmodels.Convention](e)
			if err != nil {
				return err
			}
			return b.BroadcastToPartners(ctx, e.Topic, c)
		})
	}
	bus.Subscribe(outbox.TopicRequiresModification, SubscriptionID, func(ctx context.Context, e outbox.Event) error {
		p, err := outbox.Decode[conventionmodels.RequiresModificationPayload](e)
		if err != nil {
			return err
		}
		return b.BroadcastToPartners(ctx, e.Topic, p.Convention)
	})
}

// BroadcastToPartners produces c keyed by its id.
func (b *Broadcaster) BroadcastToPartners(ctx context.Context, topic outbox.Topic, c conventionmodels.Convention) error {
	value, err := json.Marshal(Message{
		ID:             c.ID,
		ExternalID:     c.ExternalID,
		Status:         c.Status,
		Topic:          topic,
		AgencyID:       c.AgencyID,
		Siret:          c.Siret,
		DateSubmission: c.DateSubmission,
		DateStart:      c.DateStart,
		DateEnd:        c.DateEnd,
	})
	if err != nil {
		return fmt.Errorf("marshal partner message: %w", err)
	}
	if err := b.producer.Produce(ctx, []byte(c.ID), value); err != nil {
		return fmt.Errorf("broadcast convention %s: %w", c.ID, err)
	}
	b.logger.DebugContext(ctx, "convention broadcast to partners",
		"convention_id", c.ID,
		"topic", topic,
		"status", c.Status,
	)
	return nil
}
