package service

import (
	"context"

	"immersionfacile/internal/auth/magiclink"
	conventionmodels "immersionfacile/internal/convention/models"
	"immersionfacile/internal/notification/models"
)

func (s *Service) ConfirmToBeneficiary(ctx context.Context, c conventionmodels.Convention) error {
	link, err := s.magicLink(ctx, c, conventionmodels.RoleBeneficiary, magiclink.RouteConventionSign, c.Email)
	if err != nil {
		return err
	}
	return s.send(ctx, models.TemplatedEmail{
		Type:       models.EmailNewConventionBeneficiaryConfirmationRequestSignature,
		Recipients: []string{c.Email},
		Params:     signatureRequestParams(c, beneficiaryName(c), link),
	})
}

func (s *Service) ConfirmToMentor(ctx context.Context, c conventionmodels.Convention) error {
	link, err := s.magicLink(ctx, c, conventionmodels.RoleEstablishment, magiclink.RouteConventionSign, c.MentorEmail)
	if err != nil {
		return err
	}
	return s.send(ctx, models.TemplatedEmail{
		Type:       models.EmailNewConventionMentorConfirmationRequestSignature,
		Recipients: []string{c.MentorEmail},
		Params:     signatureRequestParams(c, c.Mentor, link),
	})
}

// NotifySignedByOtherParty tells the signatory still missing that the other
// party has signed.
func (s *Service) NotifySignedByOtherParty(ctx context.Context, c conventionmodels.Convention) error {
	var (
		missingRole  conventionmodels.Role
		missingEmail string
		existing     string
		missing      string
	)
	switch {
	case c.SignedBy(conventionmodels.RoleBeneficiary) && !c.SignedBy(conventionmodels.RoleEstablishment):
		missingRole, missingEmail = conventionmodels.RoleEstablishment, c.MentorEmail
		existing, missing = beneficiaryName(c), c.Mentor
	case c.SignedBy(conventionmodels.RoleEstablishment) && !c.SignedBy(conventionmodels.RoleBeneficiary):
		missingRole, missingEmail = conventionmodels.RoleBeneficiary, c.Email
		existing, missing = c.Mentor, beneficiaryName(c)
	default:
		s.logger.WarnContext(ctx, "partially signed convention without a single signature",
			"convention_id", c.ID,
		)
		return nil
	}

	link, err := s.magicLink(ctx, c, missingRole, magiclink.RouteConventionSign, missingEmail)
	if err != nil {
		return err
	}
	return s.send(ctx, models.TemplatedEmail{
		Type:       models.EmailBeneficiaryOrMentorAlreadySignedNotification,
		Recipients: []string{missingEmail},
		Params: models.AlreadySignedParams{
			ExistingSignatureName: existing,
			MissingSignatureName:  missing,
			BeneficiaryFirstName:  c.FirstName,
			BeneficiaryLastName:   c.LastName,
			MagicLink:             link,
		},
	})
}

// NotifyToAgencyApplicationSubmitted asks the agency to review a fully signed
// convention: counsellors when the agency has some, validators otherwise.
func (s *Service) NotifyToAgencyApplicationSubmitted(ctx context.Context, c conventionmodels.Convention) error {
	a, err := s.agency(ctx, c.AgencyID)
	if err != nil {
		return err
	}
	role, recipients := conventionmodels.RoleCounsellor, a.CounsellorEmails
	if len(recipients) == 0 {
		role, recipients = conventionmodels.RoleValidator, a.ValidatorEmails
	}
	for _, email := range recipients {
		link, err := s.magicLink(ctx, c, role, magiclink.RouteConventionValidate, email)
		if err != nil {
			return err
		}
		err = s.send(ctx, models.TemplatedEmail{
			Type:       models.EmailNewConventionAgencyNotification,
			Recipients: []string{email},
			Params: models.AgencyNotificationParams{
				AgencyName:           a.Name,
				BusinessName:         c.BusinessName,
				DateStart:            c.DateStart,
				DateEnd:              c.DateEnd,
				BeneficiaryFirstName: c.FirstName,
				BeneficiaryLastName:  c.LastName,
				MagicLink:            link,
			},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// NotifyValidatorsNeedsReview runs once a counsellor accepted a convention.
func (s *Service) NotifyValidatorsNeedsReview(ctx context.Context, c conventionmodels.Convention) error {
	a, err := s.agency(ctx, c.AgencyID)
	if err != nil {
		return err
	}
	return s.notifyNeedsReview(ctx, c, conventionmodels.RoleValidator, a.ValidatorEmails, "en considérer la validation")
}

// NotifyAdminsNeedsReview runs once a validator accepted a convention.
func (s *Service) NotifyAdminsNeedsReview(ctx context.Context, c conventionmodels.Convention) error {
	a, err := s.agency(ctx, c.AgencyID)
	if err != nil {
		return err
	}
	return s.notifyNeedsReview(ctx, c, conventionmodels.RoleAdmin, a.AdminEmails, "en considérer la validation finale")
}

func (s *Service) notifyNeedsReview(ctx context.Context, c conventionmodels.Convention, role conventionmodels.Role, recipients []string, action string) error {
	if len(recipients) == 0 {
		s.logger.WarnContext(ctx, "no recipient to review convention",
			"convention_id", c.ID,
			"role", role,
		)
		return nil
	}
	for _, email := range recipients {
		link, err := s.magicLink(ctx, c, role, magiclink.RouteConventionValidate, email)
		if err != nil {
			return err
		}
		err = s.send(ctx, models.TemplatedEmail{
			Type:       models.EmailNewConventionReviewForEligibilityOrValidation,
			Recipients: []string{email},
			Params: models.ReviewParams{
				BeneficiaryFirstName: c.FirstName,
				BeneficiaryLastName:  c.LastName,
				BusinessName:         c.BusinessName,
				PossibleRoleAction:   action,
				MagicLink:            link,
			},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) NotifyAllActorsOfFinalValidation(ctx context.Context, c conventionmodels.Convention) error {
	a, err := s.agency(ctx, c.AgencyID)
	if err != nil {
		return err
	}
	recipients := []string{c.Email, c.MentorEmail}
	recipients = append(recipients, a.CounsellorEmails...)
	recipients = append(recipients, a.ValidatorEmails...)
	return s.send(ctx, models.TemplatedEmail{
		Type:       models.EmailValidatedConventionFinalConfirmation,
		Recipients: recipients,
		Params: models.FinalValidationParams{
			BeneficiaryFirstName: c.FirstName,
			BeneficiaryLastName:  c.LastName,
			DateStart:            c.DateStart,
			DateEnd:              c.DateEnd,
			MentorName:           c.Mentor,
			Schedule:             c.Schedule,
			BusinessName:         c.BusinessName,
			ImmersionAddress:     c.ImmersionAddress,
			ImmersionProfession:  c.ImmersionProfession,
			Signature:            a.Signature,
			QuestionnaireURL:     a.QuestionnaireURL,
		},
	})
}

func (s *Service) NotifyRejected(ctx context.Context, c conventionmodels.Convention) error {
	a, err := s.agency(ctx, c.AgencyID)
	if err != nil {
		return err
	}
	recipients := append([]string{c.Email, c.MentorEmail}, a.CounsellorEmails...)
	return s.send(ctx, models.TemplatedEmail{
		Type:       models.EmailRejectedConventionNotification,
		Recipients: recipients,
		Params: models.RejectedParams{
			BeneficiaryFirstName: c.FirstName,
			BeneficiaryLastName:  c.LastName,
			BusinessName:         c.BusinessName,
			Reason:               c.RejectionJustification,
			Signature:            a.Signature,
			AgencyName:           a.Name,
			ImmersionProfession:  c.ImmersionProfession,
		},
	})
}

// NotifyNeedsModification sends each listed signatory a link to edit the draft.
func (s *Service) NotifyNeedsModification(ctx context.Context, p conventionmodels.RequiresModificationPayload) error {
	c := p.Convention
	a, err := s.agency(ctx, c.AgencyID)
	if err != nil {
		return err
	}
	for _, role := range p.Roles {
		var email string
		switch role {
		case conventionmodels.RoleBeneficiary:
			email = c.Email
		case conventionmodels.RoleEstablishment:
			email = c.MentorEmail
		default:
			s.logger.WarnContext(ctx, "modification request for a non signatory role",
				"convention_id", c.ID,
				"role", role,
			)
			continue
		}
		link, err := s.magicLink(ctx, c, role, magiclink.RouteConventionEdit, email)
		if err != nil {
			return err
		}
		err = s.send(ctx, models.TemplatedEmail{
			Type:       models.EmailConventionModificationRequestNotification,
			Recipients: []string{email},
			Params: models.ModificationRequestParams{
				BeneficiaryFirstName: c.FirstName,
				BeneficiaryLastName:  c.LastName,
				BusinessName:         c.BusinessName,
				Reason:               p.Reason,
				Signature:            a.Signature,
				AgencyName:           a.Name,
				ImmersionProfession:  c.ImmersionProfession,
				MagicLink:            link,
			},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) DeliverRenewedMagicLink(ctx context.Context, p conventionmodels.RenewMagicLinkPayload) error {
	return s.send(ctx, models.TemplatedEmail{
		Type:       models.EmailMagicLinkRenewal,
		Recipients: p.Emails,
		Params:     models.MagicLinkRenewalParams{MagicLink: p.MagicLink},
	})
}

func signatureRequestParams(c conventionmodels.Convention, signatory, link string) models.SignatureRequestParams {
	return models.SignatureRequestParams{
		BeneficiaryFirstName: c.FirstName,
		BeneficiaryLastName:  c.LastName,
		BusinessName:         c.BusinessName,
		MentorName:           c.Mentor,
		SignatoryName:        signatory,
		MagicLink:            link,
	}
}

func beneficiaryName(c conventionmodels.Convention) string {
	return c.FirstName + " " + c.LastName
}
