package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"immersionfacile/internal/agency/models"
	"immersionfacile/internal/outbox"
	"immersionfacile/internal/platform/metrics"
	dErrors "immersionfacile/pkg/domain-errors"
	"immersionfacile/pkg/platform/sentinel"
	"immersionfacile/pkg/platform/tx"
)

type Store interface {
	Insert(ctx context.Context, a *models.Agency) error
	Update(ctx context.Context, a *models.Agency) error
	GetByID(ctx context.Context, id string) (*models.Agency, error)
	List(ctx context.Context, filters models.Filters) ([]*models.Agency, error)
}

type EventFactory interface {
	New(ctx context.Context, topic outbox.Topic, payload any) (outbox.Event, error)
}

// ActivatedPayload is the AgencyActivated event body.
type ActivatedPayload struct {
	Agency models.Agency `json:"agency"`
}

// Service manages agencies and records their lifecycle events.
type Service struct {
	agencies Store
	events   outbox.Saver
	factory  EventFactory
	tx       tx.Runner
	logger   *slog.Logger
	metrics  *metrics.Metrics
	newID    func() string
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

func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		s.newID = fn
	}
}

func New(agencies Store, events outbox.Saver, factory EventFactory, runner tx.Runner, opts ...Option) *Service {
	s := &Service{
		agencies: agencies,
		events:   events,
		factory:  factory,
		tx:       runner,
		logger:   slog.Default(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddAgency registers an agency awaiting review.
func (s *Service) AddAgency(ctx context.Context, a *models.Agency) (string, error) {
	if a.ID == "" {
		a.ID = s.newID()
	}
	a.Status = models.StatusNeedsReview
	if err := a.Validate(); err != nil {
		return "", err
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.agencies.Insert(ctx, a); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.Newf(dErrors.CodeConflict, "agency %s already exists", a.ID)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save agency")
		}
		return s.record(ctx, outbox.TopicNewAgencyAdded, a)
	})
	if err != nil {
		return "", err
	}
	s.metrics.IncAgenciesAdded()
	s.logger.InfoContext(ctx, "agency added", "agency_id", a.ID, "kind", a.Kind)
	return a.ID, nil
}

// UpdateAgency changes an agency status. Activation notifies validators.
func (s *Service) UpdateAgency(ctx context.Context, id string, status models.Status) error {
	if !status.IsValid() {
		return dErrors.Newf(dErrors.CodeBadRequest, "unknown agency status %q", status)
	}
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		a, err := s.get(ctx, id)
		if err != nil {
			return err
		}
		previous := a.Status
		a.Status = status
		if err := s.agencies.Update(ctx, a); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.Newf(dErrors.CodeNotFound, "agency %s not found", id)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update agency")
		}
		s.logger.InfoContext(ctx, "agency status updated",
			"agency_id", id,
			"from", previous,
			"to", status,
		)
		if status == models.StatusActive && previous != models.StatusActive {
			return s.record(ctx, outbox.TopicAgencyActivated, ActivatedPayload{Agency: *a})
		}
		return nil
	})
}

func (s *Service) GetAgency(ctx context.Context, id string) (*models.Agency, error) {
	return s.get(ctx, id)
}

func (s *Service) GetAgencyPublicInfo(ctx context.Context, id string) (models.PublicInfo, error) {
	a, err := s.get(ctx, id)
	if err != nil {
		return models.PublicInfo{}, err
	}
	return a.PublicInfo(), nil
}

// ListAgencies is the public listing. Only active and from-api-PE agencies
// are returned whatever the requested statuses.
func (s *Service) ListAgencies(ctx context.Context, filters models.Filters) ([]models.IDAndName, error) {
	filters.Statuses = models.PublicStatuses
	if filters.Limit <= 0 {
		filters.Limit = models.DefaultListLimit
	}
	if filters.Position != nil && !filters.Position.Position.Valid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "position is out of bounds")
	}
	agencies, err := s.agencies.List(ctx, filters)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list agencies")
	}
	out := make([]models.IDAndName, len(agencies))
	for i, a := range agencies {
		out[i] = models.IDAndName{ID: a.ID, Name: a.Name}
	}
	return out, nil
}

// PrivateListAgencies lists agencies of any status for back-office review.
func (s *Service) PrivateListAgencies(ctx context.Context, status models.Status) ([]*models.Agency, error) {
	var filters models.Filters
	if status != "" {
		if !status.IsValid() {
			return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown agency status %q", status)
		}
		filters.Statuses = []models.Status{status}
	}
	agencies, err := s.agencies.List(ctx, filters)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list agencies")
	}
	return agencies, nil
}

func (s *Service) ImmersionFacileAgencyID() string {
	return models.ImmersionFacileAgencyID
}

func (s *Service) get(ctx context.Context, id string) (*models.Agency, error) {
	a, err := s.agencies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "agency %s not found", id)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load agency")
	}
	return a, nil
}

func (s *Service) record(ctx context.Context, topic outbox.Topic, payload any) error {
	event, err := s.factory.New(ctx, topic, payload)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to build event")
	}
	if err := s.events.Save(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save event")
	}
	return nil
}
