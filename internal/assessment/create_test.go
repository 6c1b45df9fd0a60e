package assessment

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"immersionfacile/internal/convention/conventiontest"
	conventionmodels "immersionfacile/internal/convention/models"
	"immersionfacile/internal/outbox"
	dErrors "immersionfacile/pkg/domain-errors"
	"immersionfacile/pkg/platform/sentinel"
	"immersionfacile/pkg/requestcontext"
	"immersionfacile/pkg/testutil"
)

func asEstablishment(ctx context.Context, id string) context.Context {
	return requestcontext.WithConventionActor(ctx, requestcontext.Actor{
		ConventionID: id,
		Role:         string(conventionmodels.RoleEstablishment),
	})
}

func feedback(id string) *Assessment {
	return &Assessment{ConventionID: id, Status: StatusFinished, EstablishmentFeedback: "Très bon stage"}
}

func (s *AssessmentSuite) TestCreateAssessmentSavesEvent() {
	svc := s.service(s.emails)
	ctx := requestcontext.WithTime(asEstablishment(s.ctx, "conv-a"), s.now)

	s.Require().NoError(svc.CreateAssessment(ctx, feedback("conv-a")))

	events, err := s.events.All(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(outbox.TopicAssessmentCreated, events[0].Topic)
	var payload Assessment
	s.Require().NoError(json.Unmarshal(events[0].Payload, &payload))
	s.Equal("conv-a", payload.ConventionID)
	s.Equal(StatusFinished, payload.Status)
	s.True(payload.CreatedAt.Equal(s.now))

	err = svc.CreateAssessment(ctx, feedback("conv-a"))
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *AssessmentSuite) TestCreateAssessmentGuards() {
	s.conventions.byDate["2024-02-01"] = []*conventionmodels.Convention{
		conventiontest.New().WithID("conv-pending").WithStatus(conventionmodels.StatusAcceptedByValidator).BuildPtr(),
	}
	svc := s.service(s.emails)

	err := svc.CreateAssessment(s.ctx, feedback("conv-a"))
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden), "no magic link")

	beneficiary := requestcontext.WithConventionActor(s.ctx, requestcontext.Actor{
		ConventionID: "conv-a",
		Role:         string(conventionmodels.RoleBeneficiary),
	})
	err = svc.CreateAssessment(beneficiary, feedback("conv-a"))
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden), "wrong role")

	err = svc.CreateAssessment(asEstablishment(s.ctx, "conv-b"), feedback("conv-a"))
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden), "other convention")

	err = svc.CreateAssessment(asEstablishment(s.ctx, "conv-pending"), feedback("conv-pending"))
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest), "not validated")

	err = svc.CreateAssessment(asEstablishment(s.ctx, "conv-x"), feedback("conv-x"))
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound), "unknown convention")

	invalid := feedback("conv-a")
	invalid.Status = "MAYBE"
	err = svc.CreateAssessment(asEstablishment(s.ctx, "conv-a"), invalid)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation), "bad status")

	events, err := s.events.All(s.ctx)
	s.Require().NoError(err)
	s.Empty(events)
}

func (s *AssessmentSuite) TestCreateAssessmentRoute() {
	r := chi.NewRouter()
	NewHandler(s.service(s.emails), slog.New(slog.NewTextHandler(io.Discard, nil))).RegisterMagicLink(r)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/immersion-assessment", feedback("conv-a"))
	rr := testutil.DoRequest(r, req.WithContext(asEstablishment(req.Context(), "conv-a")))
	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "conventionId", "conv-a")

	req = testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/immersion-assessment",
		map[string]string{"conventionId": "conv-a", "status": "FINISHED"})
	rr = testutil.DoRequest(r, req.WithContext(asEstablishment(req.Context(), "conv-a")))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
}

func TestPostgresStoreCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	store := NewPostgresStore(db)
	a := feedback("7f3e2d2c-6a8b-4e55-9f0b-2d2c6a8b4e55")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO immersion_assessments")).
		WithArgs(a.ConventionID, "FINISHED", "Très bon stage", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO immersion_assessments")).
		WithArgs(a.ConventionID, "FINISHED", "Très bon stage", sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO immersion_assessments")).
		WillReturnError(sql.ErrConnDone)

	require.NoError(t, store.Create(context.Background(), a))
	assert.ErrorIs(t, store.Create(context.Background(), a), sentinel.ErrConflict)
	err = store.Create(context.Background(), a)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}
