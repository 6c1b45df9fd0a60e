package service

import (
	"context"
	"fmt"

	establishmentmodels "immersionfacile/internal/establishment/models"
	offermodels "immersionfacile/internal/immersionoffer/models"
	"immersionfacile/internal/notification/models"
	dErrors "immersionfacile/pkg/domain-errors"
)

// SendEditFormEstablishmentLink mails the contact a link to edit its form.
func (s *Service) SendEditFormEstablishmentLink(ctx context.Context, p establishmentmodels.EditLinkSentPayload) error {
	link, err := s.links.GenerateEstablishmentEditLink(ctx, p.Siret)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint edit link")
	}
	return s.send(ctx, models.TemplatedEmail{
		Type:       models.EmailEditFormEstablishmentLink,
		Recipients: []string{p.ContactEmail},
		CC:         p.CopyEmails,
		Params: models.EditFormEstablishmentLinkParams{
			BusinessName: p.BusinessName,
			EditFrontURL: link,
		},
	})
}

// NotifyContactRequest forwards a candidate's message to the establishment
// when it is reached by email. Otherwise the candidate receives the phone
// number or the address to go to.
func (s *Service) NotifyContactRequest(ctx context.Context, p offermodels.ContactRequestedPayload) error {
	req := p.Request
	switch req.ContactMode {
	case establishmentmodels.ContactByEmail:
		return s.send(ctx, models.TemplatedEmail{
			Type:       models.EmailContactByEmailRequest,
			Recipients: []string{p.Contact.Email},
			CC:         p.Contact.CopyEmails,
			Params: models.ContactByEmailRequestParams{
				BusinessName:                  p.BusinessName,
				ContactFirstName:              p.Contact.FirstName,
				ContactLastName:               p.Contact.LastName,
				JobLabel:                      p.RomeLabel,
				PotentialBeneficiaryFirstName: req.PotentialBeneficiaryFirstName,
				PotentialBeneficiaryLastName:  req.PotentialBeneficiaryLastName,
				PotentialBeneficiaryEmail:     req.PotentialBeneficiaryEmail,
				Message:                       req.Message,
			},
		})
	case establishmentmodels.ContactByPhone:
		return s.send(ctx, models.TemplatedEmail{
			Type:       models.EmailContactByPhoneInstructions,
			Recipients: []string{req.PotentialBeneficiaryEmail},
			Params:     instructions(p, p.Contact.Phone, ""),
		})
	case establishmentmodels.ContactInPerson:
		return s.send(ctx, models.TemplatedEmail{
			Type:       models.EmailContactInPersonInstructions,
			Recipients: []string{req.PotentialBeneficiaryEmail},
			Params:     instructions(p, "", p.BusinessAddress),
		})
	default:
		return fmt.Errorf("unknown contact mode %q", req.ContactMode)
	}
}

func instructions(p offermodels.ContactRequestedPayload, phone, address string) models.ContactInstructionsParams {
	return models.ContactInstructionsParams{
		BusinessName:                  p.BusinessName,
		BusinessAddress:               address,
		ContactFirstName:              p.Contact.FirstName,
		ContactLastName:               p.Contact.LastName,
		ContactPhone:                  phone,
		PotentialBeneficiaryFirstName: p.Request.PotentialBeneficiaryFirstName,
		PotentialBeneficiaryLastName:  p.Request.PotentialBeneficiaryLastName,
	}
}
