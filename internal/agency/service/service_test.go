package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"immersionfacile/internal/agency/models"
	agencystore "immersionfacile/internal/agency/store"
	"immersionfacile/internal/outbox"
	outboxstore "immersionfacile/internal/outbox/store"
	dErrors "immersionfacile/pkg/domain-errors"
	"immersionfacile/pkg/geo"
	"immersionfacile/pkg/platform/tx"
	"immersionfacile/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	agencies *agencystore.InMemory
	events   *outboxstore.InMemory
	service  *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	s.agencies = agencystore.NewInMemory(agencystore.TestAgencies()...)
	s.events = outboxstore.NewInMemory()
	s.service = New(s.agencies, s.events, outbox.NewFactory(), tx.NewMemoryRunner(),
		WithIDGenerator(func() string { return "generated-id" }),
	)
}

func newAgency() *models.Agency {
	return &models.Agency{
		Name:            "Mission locale de Lyon",
		Kind:            models.KindMissionLocale,
		Status:          models.StatusActive,
		ValidatorEmails: []string{"validator@ml-lyon.fr"},
		Address: models.Address{
			StreetNumberAndAddress: "3 place Bellecour",
			Postcode:               "69002",
			DepartmentCode:         "69",
			City:                   "Lyon",
		},
		Position: geo.Position{Lat: 45.7578, Lon: 4.8320},
	}
}

func (s *ServiceSuite) topics() []outbox.Topic {
	all, err := s.events.All(s.ctx)
	s.Require().NoError(err)
	topics := make([]outbox.Topic, len(all))
	for i, e := range all {
		topics[i] = e.Topic
	}
	return topics
}

func (s *ServiceSuite) TestAddAgencyForcesNeedsReview() {
	id, err := s.service.AddAgency(s.ctx, newAgency())
	s.Require().NoError(err)
	s.Equal("generated-id", id)

	saved, err := s.agencies.GetByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(models.StatusNeedsReview, saved.Status)
	s.Equal([]outbox.Topic{outbox.TopicNewAgencyAdded}, s.topics())
}

func (s *ServiceSuite) TestAddAgencyRequiresValidator() {
	a := newAgency()
	a.ValidatorEmails = nil
	_, err := s.service.AddAgency(s.ctx, a)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Empty(s.topics())
}

func (s *ServiceSuite) TestAddAgencyConflict() {
	a := newAgency()
	a.ID = "test-agency-1-back"
	_, err := s.service.AddAgency(s.ctx, a)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ServiceSuite) TestActivationRecordsEventOnce() {
	id, err := s.service.AddAgency(s.ctx, newAgency())
	s.Require().NoError(err)

	s.Require().NoError(s.service.UpdateAgency(s.ctx, id, models.StatusActive))
	s.Require().NoError(s.service.UpdateAgency(s.ctx, id, models.StatusActive))

	s.Equal([]outbox.Topic{outbox.TopicNewAgencyAdded, outbox.TopicAgencyActivated}, s.topics())
}

func (s *ServiceSuite) TestUpdateUnknownAgency() {
	err := s.service.UpdateAgency(s.ctx, "missing", models.StatusActive)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestPublicListingHidesNonPublicStatuses() {
	_, err := s.service.AddAgency(s.ctx, newAgency())
	s.Require().NoError(err)

	got, err := s.service.ListAgencies(s.ctx, models.Filters{
		DepartmentCode: "69",
		Statuses:       []models.Status{models.StatusNeedsReview},
	})
	s.Require().NoError(err)
	s.Empty(got)

	review, err := s.service.PrivateListAgencies(s.ctx, models.StatusNeedsReview)
	s.Require().NoError(err)
	s.Require().Len(review, 1)
	s.Equal("generated-id", review[0].ID)
}

func (s *ServiceSuite) TestPublicInfo() {
	info, err := s.service.GetAgencyPublicInfo(s.ctx, "test-agency-3-back")
	s.Require().NoError(err)
	s.Equal("Bayonne", info.Address.City)
	s.Equal("Signature of Test Agency 3", info.Signature)

	_, err = s.service.GetAgencyPublicInfo(s.ctx, "missing")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestImmersionFacileAgencyIsSeeded() {
	a, err := s.service.GetAgency(s.ctx, s.service.ImmersionFacileAgencyID())
	s.Require().NoError(err)
	s.Equal(models.KindImmersionFacile, a.Kind)
}
