package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	agencymodels "immersionfacile/internal/agency/models"
	"immersionfacile/internal/auth/magiclink"
	"immersionfacile/internal/convention/models"
	"immersionfacile/internal/outbox"
	"immersionfacile/internal/platform/metrics"
	dErrors "immersionfacile/pkg/domain-errors"
	"immersionfacile/pkg/platform/sentinel"
	"immersionfacile/pkg/platform/tx"
)

type Store interface {
	Create(ctx context.Context, c *models.Convention) error
	Update(ctx context.Context, c *models.Convention) error
	FindByID(ctx context.Context, id models.ID) (*models.Convention, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.Convention, error)
	ListEndingOn(ctx context.Context, dateEnd string, status models.Status) ([]*models.Convention, error)
}

type AgencyReader interface {
	GetByID(ctx context.Context, id string) (*agencymodels.Agency, error)
}

type EventFactory interface {
	New(ctx context.Context, topic outbox.Topic, payload any) (outbox.Event, error)
}

// MagicLinks mints and reads actor tokens.
type MagicLinks interface {
	GenerateToken(ctx context.Context, id models.ID, role models.Role, email string) (string, error)
	ParseExpired(ctx context.Context, token string) (*magiclink.Claims, error)
	FrontBaseURL() string
}

// EventQueries reads back recorded events.
type EventQueries interface {
	PayloadIDs(ctx context.Context, topic outbox.Topic) ([]string, error)
}

// Service runs the convention workflow. Every mutation and its event are
// saved in one unit of work.
type Service struct {
	conventions Store
	agencies    AgencyReader
	events      outbox.Saver
	factory     EventFactory
	tx          tx.Runner
	magicLinks  MagicLinks
	queries     EventQueries
	logger      *slog.Logger
	metrics     *metrics.Metrics
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

func WithMagicLinks(m MagicLinks) Option {
	return func(s *Service) {
		s.magicLinks = m
	}
}

func WithEventQueries(q EventQueries) Option {
	return func(s *Service) {
		s.queries = q
	}
}

func New(conventions Store, agencies AgencyReader, events outbox.Saver, factory EventFactory, runner tx.Runner, opts ...Option) *Service {
	s := &Service{
		conventions: conventions,
		agencies:    agencies,
		events:      events,
		factory:     factory,
		tx:          runner,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddConvention saves a new convention submitted by a beneficiary.
func (s *Service) AddConvention(ctx context.Context, c *models.Convention) (models.ID, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	if c.Status != models.StatusDraft && c.Status != models.StatusReadyToSign {
		return "", dErrors.Newf(dErrors.CodeBadRequest, "a convention cannot be created with status %s", c.Status)
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.agencies.GetByID(ctx, c.AgencyID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.Newf(dErrors.CodeBadRequest, "agency %s does not exist", c.AgencyID)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load agency")
		}
		if err := s.conventions.Create(ctx, c); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.Newf(dErrors.CodeConflict, "convention %s already exists", c.ID)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save convention")
		}
		if c.Status == models.StatusReadyToSign {
			return s.record(ctx, outbox.TopicSubmittedByBeneficiary, c)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	s.metrics.IncConventionsAdded()
	s.logger.InfoContext(ctx, "convention added",
		"convention_id", c.ID,
		"external_id", c.ExternalID,
		"status", c.Status,
	)
	return c.ID, nil
}

// GetConvention returns the convention joined with its agency name.
func (s *Service) GetConvention(ctx context.Context, id models.ID) (*models.ConventionRead, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.ConventionRead{Convention: *c, AgencyName: s.agencyName(ctx, c.AgencyID)}, nil
}

// UpdateConvention replaces a draft. Signatures never survive an edit.
func (s *Service) UpdateConvention(ctx context.Context, id models.ID, c *models.Convention) error {
	if c.ID != id {
		return dErrors.New(dErrors.CodeBadRequest, "convention id does not match the url")
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Status != models.StatusDraft && c.Status != models.StatusReadyToSign {
		return dErrors.Newf(dErrors.CodeBadRequest, "status %s cannot be set by an edit", c.Status)
	}

	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		existing, err := s.find(ctx, id)
		if err != nil {
			return err
		}
		if existing.Status != models.StatusDraft {
			return dErrors.Newf(dErrors.CodeBadRequest, "convention %s is %s and can no longer be edited", id, existing.Status)
		}
		c.ExternalID = existing.ExternalID
		c.ClearSignatures()
		if err := s.update(ctx, c); err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "convention updated", "convention_id", id, "status", c.Status)
		if c.Status == models.StatusReadyToSign {
			return s.record(ctx, outbox.TopicSubmittedByBeneficiary, c)
		}
		return nil
	})
}

// ListAdminConventions lists conventions newest validation first, then
// newest submission first.
func (s *Service) ListAdminConventions(ctx context.Context, filter models.ListFilter) ([]*models.ConventionRead, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown status %q", filter.Status)
	}
	conventions, err := s.conventions.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list conventions")
	}
	sort.SliceStable(conventions, func(i, j int) bool {
		a, b := conventions[i], conventions[j]
		switch {
		case a.DateValidation != nil && b.DateValidation != nil:
			if !a.DateValidation.Equal(*b.DateValidation) {
				return a.DateValidation.After(*b.DateValidation)
			}
		case a.DateValidation != nil:
			return true
		case b.DateValidation != nil:
			return false
		}
		return a.DateSubmission > b.DateSubmission
	})

	out := make([]*models.ConventionRead, 0, len(conventions))
	names := make(map[string]string)
	for _, c := range conventions {
		name, ok := names[c.AgencyID]
		if !ok {
			name = s.agencyName(ctx, c.AgencyID)
			names[c.AgencyID] = name
		}
		out = append(out, &models.ConventionRead{Convention: *c, AgencyName: name})
	}
	return out, nil
}

// ConventionsEndingOn returns validated conventions ending on dateEnd whose
// assessment link was not sent yet.
func (s *Service) ConventionsEndingOn(ctx context.Context, dateEnd string) ([]*models.Convention, error) {
	if _, err := models.ParseDate(dateEnd); err != nil {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "invalid date %q", dateEnd)
	}
	conventions, err := s.conventions.ListEndingOn(ctx, dateEnd, models.StatusValidated)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list conventions ending on date")
	}
	if s.queries == nil || len(conventions) == 0 {
		return conventions, nil
	}
	sent, err := s.queries.PayloadIDs(ctx, outbox.TopicAssessmentLinkSent)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read sent assessment links")
	}
	already := make(map[string]struct{}, len(sent))
	for _, id := range sent {
		already[id] = struct{}{}
	}
	out := conventions[:0]
	for _, c := range conventions {
		if _, ok := already[c.ID]; !ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Service) find(ctx context.Context, id models.ID) (*models.Convention, error) {
	c, err := s.conventions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "convention %s not found", id)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load convention")
	}
	return c, nil
}

func (s *Service) update(ctx context.Context, c *models.Convention) error {
	if err := s.conventions.Update(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Newf(dErrors.CodeNotFound, "convention %s not found", c.ID)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save convention")
	}
	return nil
}

func (s *Service) agencyName(ctx context.Context, id string) string {
	a, err := s.agencies.GetByID(ctx, id)
	if err != nil {
		s.logger.WarnContext(ctx, "agency of convention not found", "agency_id", id, "error", err)
		return ""
	}
	return a.Name
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
