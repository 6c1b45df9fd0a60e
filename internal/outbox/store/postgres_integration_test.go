//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"immersionfacile/internal/outbox"
	"immersionfacile/internal/outbox/store"
	"immersionfacile/pkg/testutil/containers"
)

type PostgresIntegrationSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresIntegrationSuite))
}

func (s *PostgresIntegrationSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresIntegrationSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "outbox"))
}

func (s *PostgresIntegrationSuite) TestLifecycle() {
	ctx := context.Background()
	at := time.Now().UTC().Truncate(time.Millisecond)
	e := outbox.Event{
		ID:           uuid.NewString(),
		OccurredAt:   at,
		Topic:        outbox.TopicFullySigned,
		Payload:      []byte(`{"id":"conv-1"}`),
		Publications: []outbox.Publication{},
	}
	s.Require().NoError(s.store.Save(ctx, e))

	unpublished, err := s.store.UnpublishedEvents(ctx)
	s.Require().NoError(err)
	s.Require().Len(unpublished, 1)

	e.Publications = append(e.Publications, outbox.Publication{
		PublishedAt: at,
		Failures:    []outbox.Failure{{SubscriptionID: "email", ErrorMessage: "boom"}},
	})
	s.Require().NoError(s.store.Save(ctx, e))

	unpublished, err = s.store.UnpublishedEvents(ctx)
	s.Require().NoError(err)
	s.Empty(unpublished)

	failed, err := s.store.FailedEvents(ctx)
	s.Require().NoError(err)
	s.Require().Len(failed, 1)
	s.Equal("email", string(failed[0].Publications[0].Failures[0].SubscriptionID))

	e.WasQuarantined = true
	s.Require().NoError(s.store.Save(ctx, e))
	failed, err = s.store.FailedEvents(ctx)
	s.Require().NoError(err)
	s.Empty(failed)

	ids, err := s.store.PayloadIDs(ctx, outbox.TopicFullySigned)
	s.Require().NoError(err)
	s.Equal([]string{"conv-1"}, ids)
}
