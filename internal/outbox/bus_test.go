package outbox_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"immersionfacile/internal/outbox"
	"immersionfacile/internal/outbox/store"
	"immersionfacile/pkg/requestcontext"
)

type recordingAlerter struct {
	mu       sync.Mutex
	messages []string
}

func (a *recordingAlerter) Notify(_ context.Context, msg string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages = append(a.messages, msg)
	return nil
}

type failingSaver struct{}

func (failingSaver) Save(context.Context, outbox.Event) error { return errors.New("db down") }

type BusSuite struct {
	suite.Suite
	ctx     context.Context
	now     time.Time
	store   *store.InMemory
	alerter *recordingAlerter
	bus     *outbox.Bus
	factory *outbox.Factory
}

func TestBusSuite(t *testing.T) {
	suite.Run(t, new(BusSuite))
}

func (s *BusSuite) SetupTest() {
	s.now = time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.store = store.NewInMemory()
	s.alerter = &recordingAlerter{}
	s.bus = outbox.NewBus(s.store,
		outbox.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		outbox.WithMetrics(outbox.NewMetrics(prometheus.NewRegistry())),
		outbox.WithAlerter(s.alerter),
	)
	ids := []string{"evt-1", "evt-2", "evt-3"}
	s.factory = outbox.NewFactory(outbox.WithIDGenerator(func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}))
}

func (s *BusSuite) newEvent(topic outbox.Topic) *outbox.Event {
	e, err := s.factory.New(s.ctx, topic, map[string]string{"id": "conv-1"})
	s.Require().NoError(err)
	return &e
}

func (s *BusSuite) TestPublishCallsEverySubscriber() {
	var calls []string
	s.bus.Subscribe(outbox.TopicFullySigned, "notify-agency", func(context.Context, outbox.Event) error {
		calls = append(calls, "notify-agency")
		return nil
	})
	s.bus.Subscribe(outbox.TopicFullySigned, "broadcast", func(context.Context, outbox.Event) error {
		calls = append(calls, "broadcast")
		return nil
	})
	event := s.newEvent(outbox.TopicFullySigned)

	s.Require().NoError(s.bus.Publish(s.ctx, event))

	s.Equal([]string{"notify-agency", "broadcast"}, calls)
	s.Require().Len(event.Publications, 1)
	s.Equal(s.now, event.Publications[0].PublishedAt)
	s.Empty(event.Publications[0].Failures)

	unpublished, err := s.store.UnpublishedEvents(s.ctx)
	s.Require().NoError(err)
	s.Empty(unpublished)
}

func (s *BusSuite) TestFailingSubscriberDoesNotStopOthers() {
	called := false
	s.bus.Subscribe(outbox.TopicRejected, "email", func(context.Context, outbox.Event) error {
		return errors.New("smtp refused")
	})
	s.bus.Subscribe(outbox.TopicRejected, "broadcast", func(context.Context, outbox.Event) error {
		called = true
		return nil
	})
	event := s.newEvent(outbox.TopicRejected)

	s.Require().NoError(s.bus.Publish(s.ctx, event))

	s.True(called)
	s.Equal([]outbox.Failure{{SubscriptionID: "email", ErrorMessage: "smtp refused"}}, event.Publications[0].Failures)

	failed, err := s.store.FailedEvents(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(failed, 1)
	s.Equal("evt-1", failed[0].ID)
}

func (s *BusSuite) TestRetryOnlyCallsFailedSubscribers() {
	emailCalls, broadcastCalls := 0, 0
	s.bus.Subscribe(outbox.TopicRejected, "email", func(context.Context, outbox.Event) error {
		emailCalls++
		if emailCalls == 1 {
			return errors.New("timeout")
		}
		return nil
	})
	s.bus.Subscribe(outbox.TopicRejected, "broadcast", func(context.Context, outbox.Event) error {
		broadcastCalls++
		return nil
	})
	event := s.newEvent(outbox.TopicRejected)

	s.Require().NoError(s.bus.Publish(s.ctx, event))
	s.Require().NoError(s.bus.Publish(s.ctx, event))

	s.Equal(2, emailCalls)
	s.Equal(1, broadcastCalls)
	s.Len(event.Publications, 2)
	s.Empty(event.Publications[1].Failures)
	s.False(event.WasQuarantined)
}

func (s *BusSuite) TestPanicIsRecordedAsFailure() {
	s.bus.Subscribe(outbox.TopicNewAgencyAdded, "explodes", func(context.Context, outbox.Event) error {
		panic("nil agency")
	})
	event := s.newEvent(outbox.TopicNewAgencyAdded)

	s.Require().NoError(s.bus.Publish(s.ctx, event))

	s.Require().Len(event.Publications[0].Failures, 1)
	s.Contains(event.Publications[0].Failures[0].ErrorMessage, "nil agency")
}

func (s *BusSuite) TestQuarantineAfterMaxPublications() {
	s.bus.Subscribe(outbox.TopicAgencyActivated, "email", func(context.Context, outbox.Event) error {
		return errors.New("always failing")
	})
	event := s.newEvent(outbox.TopicAgencyActivated)

	for range outbox.DefaultMaxPublications {
		s.Require().NoError(s.bus.Publish(s.ctx, event))
	}

	s.True(event.WasQuarantined)
	s.Len(event.Publications, outbox.DefaultMaxPublications)
	s.Require().Len(s.alerter.messages, 1)
	s.Contains(s.alerter.messages[0], "evt-1")

	failed, err := s.store.FailedEvents(s.ctx)
	s.Require().NoError(err)
	s.Empty(failed, "quarantined events are not retried")
}

func (s *BusSuite) TestNoSubscriberRecordsCleanPublication() {
	event := s.newEvent(outbox.TopicAssessmentLinkSent)

	s.Require().NoError(s.bus.Publish(s.ctx, event))

	s.Require().Len(event.Publications, 1)
	s.Empty(event.Publications[0].Failures)
}

func (s *BusSuite) TestSaveErrorIsReturned() {
	bus := outbox.NewBus(failingSaver{}, outbox.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	event := s.newEvent(outbox.TopicFullySigned)

	err := bus.Publish(s.ctx, event)

	s.Require().Error(err)
	s.Contains(err.Error(), "db down")
}

func (s *BusSuite) TestDuplicateSubscriptionPanics() {
	noop := func(context.Context, outbox.Event) error { return nil }
	s.bus.Subscribe(outbox.TopicFullySigned, "a", noop)
	s.Panics(func() { s.bus.Subscribe(outbox.TopicFullySigned, "a", noop) })
}
