package store

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/suite"

	"immersionfacile/internal/outbox"
	txcontext "immersionfacile/pkg/platform/tx"
)

type PostgresSuite struct {
	suite.Suite
	db    *sql.DB
	mock  sqlmock.Sqlmock
	store *Postgres
}

func TestPostgresSuite(t *testing.T) {
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupTest() {
	db, mock, err := sqlmock.New()
	s.Require().NoError(err)
	s.db, s.mock = db, mock
	s.store = NewPostgres(db)
}

func (s *PostgresSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	_ = s.db.Close()
}

func (s *PostgresSuite) TestSaveUpsertsInsideTransaction() {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	e := outbox.Event{ID: "e-1", OccurredAt: at, Topic: outbox.TopicFullySigned, Payload: []byte(`{"id":"c"}`)}

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox")).
		WithArgs("e-1", at, "ImmersionApplicationFullySigned", []byte(`{"id":"c"}`), []byte(`[]`), false).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	tx, err := s.db.Begin()
	s.Require().NoError(err)
	ctx := txcontext.WithTx(context.Background(), tx)
	s.Require().NoError(s.store.Save(ctx, e))
	s.Require().NoError(tx.Commit())
}

func (s *PostgresSuite) TestUnpublishedEvents() {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "occurred_at", "topic", "payload", "publications", "was_quarantined"}).
		AddRow("e-1", at, "ImmersionApplicationFullySigned", []byte(`{"id":"c"}`), []byte(`[]`), false)
	s.mock.ExpectQuery(regexp.QuoteMeta("WHERE jsonb_array_length(publications) = 0 AND NOT was_quarantined")).
		WillReturnRows(rows)

	events, err := s.store.UnpublishedEvents(context.Background())
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(outbox.TopicFullySigned, events[0].Topic)
	s.Empty(events[0].Publications)
}

func (s *PostgresSuite) TestFailedEventsDecodesPublications() {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	pubs := `[{"publishedAt":"2024-01-01T00:00:00Z","failures":[{"subscriptionId":"email","errorMessage":"boom"}]}]`
	rows := sqlmock.NewRows([]string{"id", "occurred_at", "topic", "payload", "publications", "was_quarantined"}).
		AddRow("e-2", at, "ImmersionApplicationRejected", []byte(`{}`), []byte(pubs), false)
	s.mock.ExpectQuery(regexp.QuoteMeta("publications -> -1 -> 'failures'")).WillReturnRows(rows)

	events, err := s.store.FailedEvents(context.Background())
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.True(events[0].HasFailed())
	s.Equal(outbox.SubscriptionID("email"), events[0].Publications[0].Failures[0].SubscriptionID)
}

func (s *PostgresSuite) TestPayloadIDs() {
	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT payload ->> 'id' FROM outbox")).
		WithArgs("EmailWithLinkToCreateAssessmentSent").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("c-1").AddRow("c-2"))

	ids, err := s.store.PayloadIDs(context.Background(), outbox.TopicAssessmentLinkSent)
	s.Require().NoError(err)
	s.Equal([]string{"c-1", "c-2"}, ids)
}

func (s *PostgresSuite) TestQueryErrorIsWrapped() {
	s.mock.ExpectQuery("SELECT").WillReturnError(sql.ErrConnDone)

	_, err := s.store.All(context.Background())
	s.ErrorIs(err, sql.ErrConnDone)
}
