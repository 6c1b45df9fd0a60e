package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"immersionfacile/internal/convention/conventiontest"
	"immersionfacile/internal/convention/models"
	"immersionfacile/pkg/platform/sentinel"
)

type InMemorySuite struct {
	suite.Suite
	ctx   context.Context
	store *InMemory
}

func TestInMemorySuite(t *testing.T) {
	suite.Run(t, new(InMemorySuite))
}

func (s *InMemorySuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemory()
}

func (s *InMemorySuite) TestCreateAssignsMonotonicExternalIDs() {
	first := conventiontest.New().WithID("11111111-1111-4111-8111-111111111111").BuildPtr()
	second := conventiontest.New().WithID("22222222-2222-4222-8222-222222222222").BuildPtr()

	s.Require().NoError(s.store.Create(s.ctx, first))
	s.Require().NoError(s.store.Create(s.ctx, second))

	s.Equal(int64(1), first.ExternalID)
	s.Equal(int64(2), second.ExternalID)
	s.ErrorIs(s.store.Create(s.ctx, conventiontest.New().WithID(first.ID).BuildPtr()), sentinel.ErrConflict)
}

func (s *InMemorySuite) TestUpdateKeepsExternalID() {
	c := conventiontest.New().BuildPtr()
	s.Require().NoError(s.store.Create(s.ctx, c))

	changed := conventiontest.New().WithStatus(models.StatusInReview).BuildPtr()
	s.Require().NoError(s.store.Update(s.ctx, changed))

	got, err := s.store.FindByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusInReview, got.Status)
	s.Equal(c.ExternalID, got.ExternalID)
}

func (s *InMemorySuite) TestUpdateMissing() {
	s.ErrorIs(s.store.Update(s.ctx, conventiontest.New().BuildPtr()), sentinel.ErrNotFound)
}

func (s *InMemorySuite) TestStoredCopiesAreIsolated() {
	at := time.Date(2024, 1, 4, 10, 0, 0, 0, time.UTC)
	c := conventiontest.New().SignedBy(models.RoleBeneficiary, at).BuildPtr()
	s.Require().NoError(s.store.Create(s.ctx, c))

	*c.BeneficiarySignedAt = at.Add(time.Hour)

	got, err := s.store.FindByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(at, *got.BeneficiarySignedAt)
}

func (s *InMemorySuite) TestListFiltersCombine() {
	a := conventiontest.New().WithID("11111111-1111-4111-8111-111111111111").WithStatus(models.StatusValidated).WithAgencyID("a").BuildPtr()
	b := conventiontest.New().WithID("22222222-2222-4222-8222-222222222222").WithStatus(models.StatusValidated).WithAgencyID("b").BuildPtr()
	c := conventiontest.New().WithID("33333333-3333-4333-8333-333333333333").WithStatus(models.StatusDraft).WithAgencyID("a").BuildPtr()
	for _, conv := range []*models.Convention{a, b, c} {
		s.Require().NoError(s.store.Create(s.ctx, conv))
	}

	got, err := s.store.List(s.ctx, models.ListFilter{Status: models.StatusValidated, AgencyID: "a"})
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(a.ID, got[0].ID)

	all, err := s.store.List(s.ctx, models.ListFilter{})
	s.Require().NoError(err)
	s.Len(all, 3)
}

func (s *InMemorySuite) TestListEndingOn() {
	ending := conventiontest.New().WithID("11111111-1111-4111-8111-111111111111").
		WithStatus(models.StatusValidated).WithDates("2024-01-04", "2024-01-08", "2024-01-15").BuildPtr()
	other := conventiontest.New().WithID("22222222-2222-4222-8222-222222222222").
		WithStatus(models.StatusValidated).WithDates("2024-01-04", "2024-01-08", "2024-01-16").BuildPtr()
	notValidated := conventiontest.New().WithID("33333333-3333-4333-8333-333333333333").
		WithStatus(models.StatusInReview).WithDates("2024-01-04", "2024-01-08", "2024-01-15").BuildPtr()
	for _, conv := range []*models.Convention{ending, other, notValidated} {
		s.Require().NoError(s.store.Create(s.ctx, conv))
	}

	got, err := s.store.ListEndingOn(s.ctx, "2024-01-15", models.StatusValidated)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(ending.ID, got[0].ID)
}
