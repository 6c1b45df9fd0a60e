package service

import (
	"time"

	establishmentmodels "immersionfacile/internal/establishment/models"
	offermodels "immersionfacile/internal/immersionoffer/models"
	"immersionfacile/internal/notification/models"
	"immersionfacile/internal/outbox"
	outboxstore "immersionfacile/internal/outbox/store"
)

func contactRequested(mode establishmentmodels.ContactMethod) offermodels.ContactRequestedPayload {
	return offermodels.ContactRequestedPayload{
		Request: offermodels.ContactRequest{
			Siret:                         "12345678901234",
			Rome:                          "D1102",
			ContactMode:                   mode,
			PotentialBeneficiaryFirstName: "Paul",
			PotentialBeneficiaryLastName:  "Durand",
			PotentialBeneficiaryEmail:     "paul@mail.com",
			Message:                       "Bonjour",
		},
		BusinessName:    "Boulangerie Dupont",
		BusinessAddress: "1 rue du Pain, 75001 Paris",
		RomeLabel:       "Boulanger",
		Contact: offermodels.Contact{
			FirstName:     "Jean",
			LastName:      "Dupont",
			Email:         "jean@boulangerie.fr",
			Phone:         "0102030405",
			ContactMethod: mode,
			CopyEmails:    []string{"marie@boulangerie.fr"},
		},
	}
}

func (s *ServiceSuite) TestSendEditFormEstablishmentLink() {
	err := s.service.SendEditFormEstablishmentLink(s.ctx, establishmentmodels.EditLinkSentPayload{
		Siret:        "12345678901234",
		IssuedAt:     s.now,
		BusinessName: "Boulangerie Dupont",
		ContactEmail: "jean@boulangerie.fr",
		CopyEmails:   []string{"marie@boulangerie.fr"},
	})
	s.Require().NoError(err)

	sent := s.sent()
	s.Require().Len(sent, 1)
	s.Equal(models.EmailEditFormEstablishmentLink, sent[0].Type)
	s.Equal([]string{"jean@boulangerie.fr"}, sent[0].Recipients)
	s.Equal([]string{"marie@boulangerie.fr"}, sent[0].CC)
	s.Equal("edition-etablissement:12345678901234", sent[0].Params.(models.EditFormEstablishmentLinkParams).EditFrontURL)
}

func (s *ServiceSuite) TestContactByEmailReachesEstablishment() {
	s.Require().NoError(s.service.NotifyContactRequest(s.ctx, contactRequested(establishmentmodels.ContactByEmail)))

	sent := s.sent()
	s.Require().Len(sent, 1)
	s.Equal(models.EmailContactByEmailRequest, sent[0].Type)
	s.Equal([]string{"jean@boulangerie.fr"}, sent[0].Recipients)
	s.Equal([]string{"marie@boulangerie.fr"}, sent[0].CC)
	params := sent[0].Params.(models.ContactByEmailRequestParams)
	s.Equal("Bonjour", params.Message)
	s.Equal("paul@mail.com", params.PotentialBeneficiaryEmail)
	s.Equal("Boulanger", params.JobLabel)
}

func (s *ServiceSuite) TestContactByPhoneSendsInstructionsToCandidate() {
	s.Require().NoError(s.service.NotifyContactRequest(s.ctx, contactRequested(establishmentmodels.ContactByPhone)))

	sent := s.sent()
	s.Require().Len(sent, 1)
	s.Equal(models.EmailContactByPhoneInstructions, sent[0].Type)
	s.Equal([]string{"paul@mail.com"}, sent[0].Recipients)
	params := sent[0].Params.(models.ContactInstructionsParams)
	s.Equal("0102030405", params.ContactPhone)
	s.Empty(params.BusinessAddress)
}

func (s *ServiceSuite) TestContactInPersonSendsAddressToCandidate() {
	s.Require().NoError(s.service.NotifyContactRequest(s.ctx, contactRequested(establishmentmodels.ContactInPerson)))

	sent := s.sent()
	s.Require().Len(sent, 1)
	s.Equal(models.EmailContactInPersonInstructions, sent[0].Type)
	s.Equal([]string{"paul@mail.com"}, sent[0].Recipients)
	s.Equal("1 rue du Pain, 75001 Paris", sent[0].Params.(models.ContactInstructionsParams).BusinessAddress)
}

func (s *ServiceSuite) TestContactRequestSubscribedThroughBus() {
	bus := outbox.NewBus(outboxstore.NewInMemory())
	s.service.Subscribe(bus)

	event, err := outbox.NewFactory().New(s.ctx, outbox.TopicContactRequestedByBeneficiary, contactRequested(establishmentmodels.ContactByPhone))
	s.Require().NoError(err)
	s.Require().NoError(bus.Publish(s.ctx, &event))

	last, ok := event.LastPublication()
	s.Require().True(ok)
	s.Empty(last.Failures)
	s.Require().Len(s.sent(), 1)
	s.Equal(models.EmailContactByPhoneInstructions, s.sent()[0].Type)

	editEvent, err := outbox.NewFactory().New(s.ctx, outbox.TopicFormEstablishmentEditLinkSent,
		establishmentmodels.EditLinkSentPayload{Siret: "12345678901234", IssuedAt: s.now.Add(-time.Minute), ContactEmail: "jean@boulangerie.fr"})
	s.Require().NoError(err)
	s.Require().NoError(bus.Publish(s.ctx, &editEvent))
	s.Len(s.sent(), 2)
}
