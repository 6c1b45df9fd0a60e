package service

import (
	"context"
	"net/mail"
	"strings"

	agencyservice "immersionfacile/internal/agency/service"
	establishmentmodels "immersionfacile/internal/establishment/models"
	"immersionfacile/internal/notification/models"
	dErrors "immersionfacile/pkg/domain-errors"
)

// ShareLinkRequest asks to email a draft convention link to someone.
type ShareLinkRequest struct {
	Email          string `json:"email"`
	ConventionLink string `json:"conventionLink"`
	Details        string `json:"details,omitempty"`
}

func (r *ShareLinkRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return dErrors.New(dErrors.CodeValidation, "email is invalid")
	}
	if strings.TrimSpace(r.ConventionLink) == "" {
		return dErrors.New(dErrors.CodeValidation, "conventionLink is required")
	}
	return nil
}

// ShareConventionLinkByEmail sends a draft convention link to a third party.
func (s *Service) ShareConventionLinkByEmail(ctx context.Context, req ShareLinkRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	err := s.send(ctx, models.TemplatedEmail{
		Type:       models.EmailShareDraftConventionByLink,
		Recipients: []string{req.Email},
		Params: models.ShareConventionParams{
			AdditionalDetails: req.Details,
			ConventionLink:    req.ConventionLink,
		},
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to share convention link")
	}
	return nil
}

func (s *Service) SendEmailWhenAgencyIsActivated(ctx context.Context, p agencyservice.ActivatedPayload) error {
	return s.send(ctx, models.TemplatedEmail{
		Type:       models.EmailAgencyWasActivated,
		Recipients: p.Agency.ValidatorEmails,
		Params: models.AgencyActivatedParams{
			AgencyName:    p.Agency.Name,
			AgencyLogoURL: p.Agency.LogoURL,
		},
	})
}

func (s *Service) NotifyConfirmationEstablishmentCreated(ctx context.Context, f establishmentmodels.FormEstablishment) error {
	return s.send(ctx, models.TemplatedEmail{
		Type:       models.EmailNewEstablishmentCreatedContactConfirmation,
		Recipients: []string{f.BusinessContact.Email},
		CC:         f.BusinessContact.CopyEmails,
		Params: models.EstablishmentCreatedParams{
			BusinessName:     f.BusinessName,
			ContactFirstName: f.BusinessContact.FirstName,
			ContactLastName:  f.BusinessContact.LastName,
			BusinessAddress:  f.BusinessAddress,
		},
	})
}
