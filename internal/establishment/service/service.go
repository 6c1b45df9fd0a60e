package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"immersionfacile/internal/establishment/models"
	"immersionfacile/internal/outbox"
	dErrors "immersionfacile/pkg/domain-errors"
	"immersionfacile/pkg/platform/sentinel"
	"immersionfacile/pkg/platform/tx"
	"immersionfacile/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, f *models.FormEstablishment) error
	GetBySiret(ctx context.Context, siret string) (*models.FormEstablishment, error)
	Update(ctx context.Context, f *models.FormEstablishment) error
}

type EventFactory interface {
	New(ctx context.Context, topic outbox.Topic, payload any) (outbox.Event, error)
}

type Service struct {
	forms   Store
	events  outbox.Saver
	factory EventFactory
	tx      tx.Runner
	logger  *slog.Logger
}

func New(forms Store, events outbox.Saver, factory EventFactory, runner tx.Runner, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{forms: forms, events: events, factory: factory, tx: runner, logger: logger}
}

// AddFormEstablishment saves an establishment referencing itself.
func (s *Service) AddFormEstablishment(ctx context.Context, f *models.FormEstablishment) (string, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}
	f.CreatedAt = requestcontext.Now(ctx)

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.forms.Create(ctx, f); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.Newf(dErrors.CodeConflict, "establishment with siret %s already referenced", f.Siret)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save establishment")
		}
		event, err := s.factory.New(ctx, outbox.TopicFormEstablishmentAdded, f)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to build event")
		}
		if err := s.events.Save(ctx, event); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save event")
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	s.logger.InfoContext(ctx, "form establishment added",
		"siret", f.Siret,
		"source", f.Source,
	)
	return f.Siret, nil
}

func (s *Service) IsSiretAlreadySaved(ctx context.Context, siret string) (bool, error) {
	_, err := s.forms.GetBySiret(ctx, siret)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, sentinel.ErrNotFound):
		return false, nil
	default:
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up siret")
	}
}

// GetFormEstablishment returns the form of siret.
func (s *Service) GetFormEstablishment(ctx context.Context, siret string) (*models.FormEstablishment, error) {
	f, err := s.forms.GetBySiret(ctx, siret)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "no establishment with siret %s", siret)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load establishment")
	}
	return f, nil
}

// RequestEditLink records that the contact of siret asked for an edit link.
// A second request within EditLinkCooldown is refused.
func (s *Service) RequestEditLink(ctx context.Context, siret string) error {
	now := requestcontext.Now(ctx)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		f, err := s.GetFormEstablishment(ctx, siret)
		if err != nil {
			return err
		}
		if f.EditLinkSentAt != nil && now.Sub(*f.EditLinkSentAt) < models.EditLinkCooldown {
			return dErrors.Newf(dErrors.CodeBadRequest,
				"an edit link was already sent for siret %s on %s", siret, f.EditLinkSentAt.Format(time.RFC3339))
		}
		f.EditLinkSentAt = &now
		if err := s.forms.Update(ctx, f); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save establishment")
		}
		event, err := s.factory.New(ctx, outbox.TopicFormEstablishmentEditLinkSent, models.EditLinkSentPayload{
			Siret:        siret,
			IssuedAt:     now,
			BusinessName: f.BusinessName,
			ContactEmail: f.BusinessContact.Email,
			CopyEmails:   f.BusinessContact.CopyEmails,
		})
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
	s.logger.InfoContext(ctx, "establishment edit link requested", "siret", siret)
	return nil
}

// EditFormEstablishment replaces the form of siret. The siret itself cannot
// change.
func (s *Service) EditFormEstablishment(ctx context.Context, siret string, f *models.FormEstablishment) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if f.Siret != siret {
		return dErrors.New(dErrors.CodeForbidden, "siret does not match the edit link")
	}
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		prev, err := s.GetFormEstablishment(ctx, siret)
		if err != nil {
			return err
		}
		f.EditLinkSentAt = prev.EditLinkSentAt
		f.Source = prev.Source
		if err := s.forms.Update(ctx, f); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save establishment")
		}
		event, err := s.factory.New(ctx, outbox.TopicFormEstablishmentEdited, f)
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
	s.logger.InfoContext(ctx, "form establishment edited", "siret", siret)
	return nil
}
