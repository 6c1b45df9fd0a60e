package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/suite"

	"immersionfacile/internal/agency/models"
	"immersionfacile/pkg/platform/sentinel"
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

var columns = []string{
	"id", "name", "status", "kind", "counsellor_emails", "validator_emails", "admin_emails",
	"questionnaire_url", "email_signature", "street_number_and_address", "postcode",
	"department_code", "city", "lat", "lon", "logo_url",
}

func (s *PostgresSuite) TestInsertMapsUniqueViolationToConflict() {
	s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO agencies")).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := s.store.Insert(context.Background(), TestAgencies()[0])
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresSuite) TestInsertWrapsOtherErrors() {
	s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO agencies")).
		WillReturnError(errors.New("connection reset"))

	err := s.store.Insert(context.Background(), TestAgencies()[0])
	s.ErrorContains(err, "insert agency")
	s.NotErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresSuite) TestUpdateMissingAgency() {
	s.mock.ExpectExec(regexp.QuoteMeta("UPDATE agencies SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.store.Update(context.Background(), TestAgencies()[0])
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresSuite) TestGetByIDScansArrays() {
	rows := sqlmock.NewRows(columns).AddRow(
		"a-1", "Agency", "active", "mission-locale", "{}", "{v1@mail.fr,v2@mail.fr}", "{admin@mail.fr}",
		"", "sig", "1 rue", "75001", "75", "Paris", 48.86, 2.34, "",
	)
	s.mock.ExpectQuery(regexp.QuoteMeta("FROM agencies WHERE id = $1")).
		WithArgs("a-1").
		WillReturnRows(rows)

	got, err := s.store.GetByID(context.Background(), "a-1")
	s.Require().NoError(err)
	s.Equal(models.StatusActive, got.Status)
	s.Equal([]string{"v1@mail.fr", "v2@mail.fr"}, got.ValidatorEmails)
	s.Empty(got.CounsellorEmails)
	s.Equal("75", got.Address.DepartmentCode)
}

func (s *PostgresSuite) TestGetByIDNotFound() {
	s.mock.ExpectQuery(regexp.QuoteMeta("FROM agencies WHERE id = $1")).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(columns))

	_, err := s.store.GetByID(context.Background(), "nope")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresSuite) TestListBuildsWhereClause() {
	s.mock.ExpectQuery(regexp.QuoteMeta("WHERE department_code = $1 AND kind <> $2 AND status = ANY($3)")).
		WithArgs("75", "pole-emploi", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(columns))

	got, err := s.store.List(context.Background(), models.Filters{
		DepartmentCode: "75",
		Kind:           models.KindFilterPEExcluded,
		Statuses:       models.PublicStatuses,
	})
	s.Require().NoError(err)
	s.Empty(got)
}
