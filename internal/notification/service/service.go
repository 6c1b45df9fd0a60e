// Package service turns domain events into transactional emails.
package service

import (
	"context"
	"fmt"
	"log/slog"

	agencymodels "immersionfacile/internal/agency/models"
	conventionmodels "immersionfacile/internal/convention/models"
	"immersionfacile/internal/notification/models"
	"immersionfacile/internal/outbox"
	"immersionfacile/internal/platform/metrics"
	dErrors "immersionfacile/pkg/domain-errors"
)

// Sender delivers one templated email.
type Sender interface {
	Send(ctx context.Context, email models.TemplatedEmail) error
}

type AgencyReader interface {
	GetByID(ctx context.Context, id string) (*agencymodels.Agency, error)
}

// MagicLinks mints authenticated front-end links.
type MagicLinks interface {
	GenerateMagicLink(ctx context.Context, id conventionmodels.ID, role conventionmodels.Role, targetRoute, email string) (string, error)
	GenerateEstablishmentEditLink(ctx context.Context, siret string) (string, error)
}

// Subscriber registers event callbacks.
type Subscriber interface {
	Subscribe(topic outbox.Topic, id outbox.SubscriptionID, callback outbox.Callback)
}

// Service holds the email use cases run by the event bus.
type Service struct {
	sender   Sender
	agencies AgencyReader
	links    MagicLinks
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(sender Sender, agencies AgencyReader, links MagicLinks, opts ...Option) *Service {
	s := &Service{
		sender:   sender,
		agencies: agencies,
		links:    links,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe wires every email use case to its topic.
func (s *Service) Subscribe(bus Subscriber) {
	bus.Subscribe(outbox.TopicSubmittedByBeneficiary, "ConfirmToBeneficiaryThatConventionNeedsSignature",
		outbox.Handle(s.ConfirmToBeneficiary))
	bus.Subscribe(outbox.TopicSubmittedByBeneficiary, "ConfirmToMentorThatConventionNeedsSignature",
		outbox.Handle(s.ConfirmToMentor))
	bus.Subscribe(outbox.TopicPartiallySigned, "NotifySignedByOtherParty",
		outbox.Handle(s.NotifySignedByOtherParty))
	bus.Subscribe(outbox.TopicFullySigned, "NotifyToAgencyApplicationSubmitted",
		outbox.Handle(s.NotifyToAgencyApplicationSubmitted))
	bus.Subscribe(outbox.TopicAcceptedByCounsellor, "NotifyNewApplicationNeedsReview",
		outbox.Handle(s.NotifyValidatorsNeedsReview))
	bus.Subscribe(outbox.TopicAcceptedByValidator, "NotifyNewApplicationNeedsReview",
		outbox.Handle(s.NotifyAdminsNeedsReview))
	bus.Subscribe(outbox.TopicFinalValidation, "NotifyAllActorsOfFinalValidation",
		outbox.Handle(s.NotifyAllActorsOfFinalValidation))
	bus.Subscribe(outbox.TopicRejected, "NotifyBeneficiaryAndEnterpriseThatApplicationIsRejected",
		outbox.Handle(s.NotifyRejected))
	bus.Subscribe(outbox.TopicRequiresModification, "NotifyBeneficiaryAndEnterpriseThatApplicationNeedsModification",
		outbox.Handle(s.NotifyNeedsModification))
	bus.Subscribe(outbox.TopicMagicLinkRenewal, "DeliverRenewedMagicLink",
		outbox.Handle(s.DeliverRenewedMagicLink))
	bus.Subscribe(outbox.TopicAgencyActivated, "SendEmailWhenAgencyIsActivated",
		outbox.Handle(s.SendEmailWhenAgencyIsActivated))
	bus.Subscribe(outbox.TopicFormEstablishmentAdded, "NotifyConfirmationEstablishmentCreated",
		outbox.Handle(s.NotifyConfirmationEstablishmentCreated))
	bus.Subscribe(outbox.TopicFormEstablishmentEditLinkSent, "SendEditFormEstablishmentLink",
		outbox.Handle(s.SendEditFormEstablishmentLink))
	bus.Subscribe(outbox.TopicContactRequestedByBeneficiary, "NotifyContactRequest",
		outbox.Handle(s.NotifyContactRequest))
}

func (s *Service) send(ctx context.Context, email models.TemplatedEmail) error {
	if err := s.sender.Send(ctx, email); err != nil {
		s.metrics.IncEmailSent(string(email.Type), "failure")
		return fmt.Errorf("send %s: %w", email.Type, err)
	}
	s.metrics.IncEmailSent(string(email.Type), "success")
	s.logger.InfoContext(ctx, "email sent",
		"email_type", email.Type,
		"recipients", len(email.Recipients),
	)
	return nil
}

func (s *Service) agency(ctx context.Context, id string) (*agencymodels.Agency, error) {
	a, err := s.agencies.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("unable to send mail, no agency %s: %w", id, err)
	}
	return a, nil
}

func (s *Service) magicLink(ctx context.Context, c conventionmodels.Convention, role conventionmodels.Role, route, email string) (string, error) {
	link, err := s.links.GenerateMagicLink(ctx, c.ID, role, route, email)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint magic link")
	}
	return link, nil
}
