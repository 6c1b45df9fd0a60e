package outbox

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"immersionfacile/internal/platform/alerting"
	"immersionfacile/pkg/requestcontext"
)

// DefaultMaxPublications is the number of delivery attempts after which an
// event still failing is quarantined.
const DefaultMaxPublications = 3

type subscription struct {
	id       SubscriptionID
	callback Callback
}

// Bus delivers events to topic subscribers and records each publication.
// Delivery is at-least-once: a subscriber that failed is called again on the
// next publication of the same event, subscribers that succeeded are not.
type Bus struct {
	saver           Saver
	logger          *slog.Logger
	metrics         *Metrics
	tracer          trace.Tracer
	alerter         alerting.Notifier
	maxPublications int

	mu            sync.RWMutex
	subscriptions map[Topic][]subscription
}

type BusOption func(*Bus)

func WithLogger(logger *slog.Logger) BusOption {
	return func(b *Bus) {
		b.logger = logger
	}
}

func WithMetrics(m *Metrics) BusOption {
	return func(b *Bus) {
		b.metrics = m
	}
}

func WithTracer(t trace.Tracer) BusOption {
	return func(b *Bus) {
		b.tracer = t
	}
}

func WithAlerter(n alerting.Notifier) BusOption {
	return func(b *Bus) {
		b.alerter = n
	}
}

func WithMaxPublications(n int) BusOption {
	return func(b *Bus) {
		if n > 0 {
			b.maxPublications = n
		}
	}
}

func NewBus(saver Saver, opts ...BusOption) *Bus {
	b := &Bus{
		saver:           saver,
		logger:          slog.Default(),
		tracer:          otel.Tracer("immersionfacile/outbox"),
		maxPublications: DefaultMaxPublications,
		subscriptions:   make(map[Topic][]subscription),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers callback under id for topic. Subscription ids must be
// unique per topic; they key retries across publications.
func (b *Bus) Subscribe(topic Topic, id SubscriptionID, callback Callback) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.subscriptions[topic] {
		if s.id == id {
			panic(fmt.Sprintf("outbox: duplicate subscription %q on topic %s", id, topic))
		}
	}
	b.subscriptions[topic] = append(b.subscriptions[topic], subscription{id: id, callback: callback})
}

// Publish calls the subscribers owed this event, appends the publication and
// saves the event. The returned error only reports persistence failures;
// subscriber errors are recorded on the event.
func (b *Bus) Publish(ctx context.Context, event *Event) error {
	ctx, span := b.tracer.Start(ctx, "outbox.publish", trace.WithAttributes(
		attribute.String("event.id", event.ID),
		attribute.String("event.topic", string(event.Topic)),
		attribute.Int("event.publish_count", len(event.Publications)),
	))
	defer span.End()

	start := time.Now()
	targets := b.targets(*event)
	if len(targets) == 0 {
		b.logger.WarnContext(ctx, "no subscriber for topic",
			"topic", event.Topic,
			"event_id", event.ID,
		)
	}

	failures := []Failure{}
	for _, sub := range targets {
		if err := b.call(ctx, sub, *event); err != nil {
			b.logger.ErrorContext(ctx, "subscriber failed",
				"topic", event.Topic,
				"event_id", event.ID,
				"subscription_id", sub.id,
				"error", err,
			)
			failures = append(failures, Failure{SubscriptionID: sub.id, ErrorMessage: err.Error()})
		}
	}

	event.Publications = append(event.Publications, Publication{
		PublishedAt: requestcontext.Now(ctx),
		Failures:    failures,
	})
	b.metrics.ObservePublication(event.Topic, len(failures) > 0, time.Since(start).Seconds())
	span.SetAttributes(attribute.Int("event.failures", len(failures)))

	if len(failures) > 0 && len(event.Publications) >= b.maxPublications {
		event.WasQuarantined = true
		b.quarantine(ctx, *event)
	}

	if err := b.saver.Save(ctx, *event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save event")
		return fmt.Errorf("save event %s after publication: %w", event.ID, err)
	}
	return nil
}

// targets returns every subscriber on first publication, and only the
// subscribers that failed last time on a retry.
func (b *Bus) targets(event Event) []subscription {
	b.mu.RLock()
	subs := append([]subscription(nil), b.subscriptions[event.Topic]...)
	b.mu.RUnlock()

	last, ok := event.LastPublication()
	if !ok {
		return subs
	}
	failed := make(map[SubscriptionID]struct{}, len(last.Failures))
	for _, f := range last.Failures {
		failed[f.SubscriptionID] = struct{}{}
	}
	out := subs[:0]
	for _, s := range subs {
		if _, ok := failed[s.id]; ok {
			out = append(out, s)
		}
	}
	return out
}

func (b *Bus) call(ctx context.Context, sub subscription, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber panicked: %v", r)
		}
	}()
	return sub.callback(ctx, event)
}

func (b *Bus) quarantine(ctx context.Context, event Event) {
	b.metrics.IncQuarantined(event.Topic)
	b.logger.ErrorContext(ctx, "event quarantined after repeated failures",
		"topic", event.Topic,
		"event_id", event.ID,
		"publish_count", len(event.Publications),
	)
	if b.alerter == nil {
		return
	}
	info := ToDebugInfo(event)
	msg := fmt.Sprintf("Event %s (%s) quarantined after %d publications. Failed subscribers: %v",
		info.EventID, info.Topic, info.PublishCount, info.FailedSubscribers)
	if err := b.alerter.Notify(ctx, msg); err != nil {
		b.logger.WarnContext(ctx, "failed to send quarantine alert", "error", err)
	}
}
