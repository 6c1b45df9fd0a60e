package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sort"

	"github.com/google/uuid"

	establishmentmodels "immersionfacile/internal/establishment/models"
	"immersionfacile/internal/immersionoffer/models"
	"immersionfacile/internal/outbox"
	dErrors "immersionfacile/pkg/domain-errors"
	"immersionfacile/pkg/geo"
	"immersionfacile/pkg/platform/sentinel"
	"immersionfacile/pkg/platform/tx"
	"immersionfacile/pkg/requestcontext"
)

type Store interface {
	ReplaceBySiret(ctx context.Context, a *models.Aggregate) error
	GetBySiret(ctx context.Context, siret string) (*models.Aggregate, error)
	Search(ctx context.Context, filter models.SearchFilter) ([]models.Aggregate, error)
}

// Geocoder returns sentinel.ErrNotFound for addresses it cannot place.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (geo.Position, error)
}

type EventFactory interface {
	New(ctx context.Context, topic outbox.Topic, payload any) (outbox.Event, error)
}

type Subscriber interface {
	Subscribe(topic outbox.Topic, id outbox.SubscriptionID, callback outbox.Callback)
}

type Service struct {
	aggregates Store
	geocoder   Geocoder
	events     outbox.Saver
	factory    EventFactory
	tx         tx.Runner
	newID      func() string
	logger     *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithIDGenerator overrides uuid.NewString for offer and contact ids.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		s.newID = newID
	}
}

func New(aggregates Store, geocoder Geocoder, events outbox.Saver, factory EventFactory, runner tx.Runner, opts ...Option) *Service {
	s := &Service{
		aggregates: aggregates,
		geocoder:   geocoder,
		events:     events,
		factory:    factory,
		tx:         runner,
		newID:      uuid.NewString,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe keeps aggregates in step with form establishments.
func (s *Service) Subscribe(bus Subscriber) {
	bus.Subscribe(outbox.TopicFormEstablishmentAdded, "InsertEstablishmentAggregateFromForm",
		outbox.Handle(s.InsertFromForm))
	bus.Subscribe(outbox.TopicFormEstablishmentEdited, "UpdateEstablishmentAggregateFromForm",
		outbox.Handle(s.InsertFromForm))
}

// InsertFromForm replaces the aggregate of the form's siret. Forms whose
// address cannot be placed are skipped.
func (s *Service) InsertFromForm(ctx context.Context, f establishmentmodels.FormEstablishment) error {
	pos, err := s.geocoder.Geocode(ctx, f.BusinessAddress)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "establishment address not found, no offer indexed",
				"siret", f.Siret,
			)
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to geocode establishment address")
	}

	a := models.FromForm(f, pos, requestcontext.Now(ctx), s.newID)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.aggregates.ReplaceBySiret(ctx, &a); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save establishment aggregate")
		}
		event, err := s.factory.New(ctx, outbox.TopicEstablishmentAggregateInserted, a)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to build event")
		}
		if err := s.events.Save(ctx, event); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save event")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "establishment aggregate indexed",
		"siret", f.Siret,
		"offers", len(a.Offers),
	)
	return nil
}

// SearchImmersion lists offers within req.DistanceKm of req.Location,
// nearest first.
func (s *Service) SearchImmersion(ctx context.Context, req *models.SearchRequest) ([]models.SearchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	candidates, err := s.aggregates.Search(ctx, models.SearchFilter{
		Rome:                 req.Rome,
		Box:                  geo.BoundingBox(req.Location, req.DistanceKm),
		VoluntaryToImmersion: req.VoluntaryToImmersion,
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to search establishments")
	}

	withContact := authorizedConsumer(ctx)
	results := []models.SearchResult{}
	for _, a := range candidates {
		km := geo.DistanceKm(req.Location, a.Establishment.Position)
		if km > req.DistanceKm {
			continue
		}
		meters := int(math.Round(km * 1000))
		for _, o := range a.Offers {
			if req.Rome != "" && o.Rome != req.Rome {
				continue
			}
			r := models.NewSearchResult(a, o, withContact)
			d := meters
			r.DistanceM = &d
			results = append(results, r)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if *a.DistanceM != *b.DistanceM {
			return *a.DistanceM < *b.DistanceM
		}
		if a.Siret != b.Siret {
			return a.Siret < b.Siret
		}
		return a.Rome < b.Rome
	})
	s.logger.InfoContext(ctx, "immersion search",
		"rome", req.Rome,
		"distance_km", req.DistanceKm,
		"results", len(results),
	)
	return results, nil
}

// GetImmersionOfferBySiretAndRome returns a single offer. Contact details
// are included for authorized API consumers.
func (s *Service) GetImmersionOfferBySiretAndRome(ctx context.Context, siret, rome string) (*models.SearchResult, error) {
	if !establishmentmodels.IsValidSiret(siret) {
		return nil, dErrors.New(dErrors.CodeValidation, "siret must be 14 digits")
	}
	if !establishmentmodels.IsValidRome(rome) {
		return nil, dErrors.Newf(dErrors.CodeValidation, "rome %q is invalid", rome)
	}
	a, o, err := s.findOffer(ctx, siret, rome)
	if err != nil {
		return nil, err
	}
	r := models.NewSearchResult(*a, o, authorizedConsumer(ctx))
	return &r, nil
}

// ContactEstablishment records a candidate's request. The notification
// subscriber forwards it according to the establishment's contact mode.
func (s *Service) ContactEstablishment(ctx context.Context, req *models.ContactRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	a, o, err := s.findOffer(ctx, req.Siret, req.Rome)
	if err != nil {
		return err
	}
	if a.Contact == nil {
		return dErrors.Newf(dErrors.CodeBadRequest, "establishment %s has no contact", req.Siret)
	}
	if a.Contact.ContactMethod != req.ContactMode {
		return dErrors.Newf(dErrors.CodeBadRequest,
			"establishment %s is contacted by %s, not %s", req.Siret, a.Contact.ContactMethod, req.ContactMode)
	}

	payload := models.ContactRequestedPayload{
		Request:         *req,
		BusinessName:    a.Establishment.Name,
		BusinessAddress: a.Establishment.Address,
		RomeLabel:       o.Label,
		Contact:         *a.Contact,
	}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		event, err := s.factory.New(ctx, outbox.TopicContactRequestedByBeneficiary, payload)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to build event")
		}
		if err := s.events.Save(ctx, event); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save event")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "establishment contact requested",
		"siret", req.Siret,
		"rome", req.Rome,
		"contact_mode", req.ContactMode,
	)
	return nil
}

func (s *Service) findOffer(ctx context.Context, siret, rome string) (*models.Aggregate, models.Offer, error) {
	a, err := s.aggregates.GetBySiret(ctx, siret)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, models.Offer{}, dErrors.Newf(dErrors.CodeNotFound, "No offer found for siret %s and rome %s", siret, rome)
		}
		return nil, models.Offer{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load establishment")
	}
	o, ok := a.Offer(rome)
	if !ok {
		return nil, models.Offer{}, dErrors.Newf(dErrors.CodeNotFound, "No offer found for siret %s and rome %s", siret, rome)
	}
	return a, o, nil
}

func authorizedConsumer(ctx context.Context) bool {
	c, ok := requestcontext.APIConsumerFrom(ctx)
	return ok && c.IsAuthorized
}
