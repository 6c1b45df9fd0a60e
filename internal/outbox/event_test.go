package outbox

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"immersionfacile/pkg/requestcontext"
)

type conventionRef struct {
	ID string `json:"id"`
}

func TestFactory(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	f := NewFactory(
		WithIDGenerator(func() string { return "fixed-id" }),
		WithQuarantinedTopics(TopicNewAgencyAdded),
	)

	t.Run("builds an unpublished event", func(t *testing.T) {
		e, err := f.New(ctx, TopicFullySigned, conventionRef{ID: "c-1"})
		require.NoError(t, err)
		assert.Equal(t, "fixed-id", e.ID)
		assert.Equal(t, now, e.OccurredAt)
		assert.JSONEq(t, `{"id":"c-1"}`, string(e.Payload))
		assert.True(t, e.IsUnpublished())
	})

	t.Run("quarantined topics are born quarantined", func(t *testing.T) {
		e, err := f.New(ctx, TopicNewAgencyAdded, conventionRef{ID: "a-1"})
		require.NoError(t, err)
		assert.True(t, e.WasQuarantined)
		assert.False(t, e.IsUnpublished())
	})

	t.Run("unmarshalable payload", func(t *testing.T) {
		_, err := f.New(ctx, TopicFullySigned, make(chan int))
		assert.Error(t, err)
	})
}

func TestHandleDecodesPayload(t *testing.T) {
	var got conventionRef
	cb := Handle(func(_ context.Context, p conventionRef) error {
		got = p
		return nil
	})

	err := cb(context.Background(), Event{Topic: TopicFullySigned, Payload: []byte(`{"id":"c-9"}`)})
	require.NoError(t, err)
	assert.Equal(t, "c-9", got.ID)

	err = cb(context.Background(), Event{Topic: TopicFullySigned, Payload: []byte(`[`)})
	assert.Error(t, err)
}

func TestDebugInfo(t *testing.T) {
	at := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	e := Event{
		ID:    "e-1",
		Topic: TopicRejected,
		Publications: []Publication{
			{PublishedAt: at.Add(-time.Hour), Failures: []Failure{}},
			{PublishedAt: at, Failures: []Failure{{SubscriptionID: "email", ErrorMessage: "boom"}}},
		},
	}

	info := ToDebugInfo(e)
	assert.Equal(t, 2, info.PublishCount)
	require.NotNil(t, info.LastPublishedAt)
	assert.Equal(t, at, *info.LastPublishedAt)
	assert.Equal(t, SubscriptionID("email"), info.FailedSubscribers[0].SubscriptionID)
	assert.True(t, e.HasFailed())

	assert.Nil(t, ToDebugInfo(Event{ID: "fresh"}).LastPublishedAt)
}

func TestCloneDoesNotAlias(t *testing.T) {
	e := Event{Publications: []Publication{{Failures: []Failure{{SubscriptionID: "a"}}}}}
	c := e.Clone()
	c.Publications[0].Failures[0].SubscriptionID = "b"
	assert.Equal(t, SubscriptionID("a"), e.Publications[0].Failures[0].SubscriptionID)
}
