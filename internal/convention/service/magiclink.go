package service

import (
	"context"
	"strings"

	"immersionfacile/internal/convention/models"
	"immersionfacile/internal/outbox"
	dErrors "immersionfacile/pkg/domain-errors"
)

const jwtPlaceholder = "%jwt%"

// RenewMagicLink sends fresh links to the actors named by an expired token.
// linkFormat is a front URL holding the %jwt% placeholder.
func (s *Service) RenewMagicLink(ctx context.Context, expiredJWT, linkFormat string) error {
	if s.magicLinks == nil {
		return dErrors.New(dErrors.CodeInternal, "magic links are not configured")
	}
	if !strings.Contains(linkFormat, jwtPlaceholder) {
		return dErrors.New(dErrors.CodeBadRequest, "linkFormat must contain %jwt%")
	}
	if base := s.magicLinks.FrontBaseURL(); base != "" && !strings.HasPrefix(linkFormat, base+"/") {
		return dErrors.New(dErrors.CodeBadRequest, "linkFormat must target the front end")
	}
	claims, err := s.magicLinks.ParseExpired(ctx, expiredJWT)
	if err != nil {
		return err
	}

	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		c, err := s.find(ctx, claims.ApplicationID)
		if err != nil {
			return err
		}
		emails, err := s.emailsForRole(ctx, c, claims.Role)
		if err != nil {
			return err
		}
		for _, email := range emails {
			token, err := s.magicLinks.GenerateToken(ctx, c.ID, claims.Role, email)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint magic link")
			}
			payload := models.RenewMagicLinkPayload{
				Emails:    []string{email},
				MagicLink: strings.ReplaceAll(linkFormat, jwtPlaceholder, token),
			}
			if err := s.record(ctx, outbox.TopicMagicLinkRenewal, payload); err != nil {
				return err
			}
		}
		s.logger.InfoContext(ctx, "magic links renewed",
			"convention_id", c.ID,
			"role", claims.Role,
			"recipients", len(emails),
		)
		return nil
	})
}

func (s *Service) emailsForRole(ctx context.Context, c *models.Convention, role models.Role) ([]string, error) {
	switch role {
	case models.RoleBeneficiary:
		return []string{c.Email}, nil
	case models.RoleEstablishment:
		return []string{c.MentorEmail}, nil
	}
	agency, err := s.agencies.GetByID(ctx, c.AgencyID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load agency")
	}
	var emails []string
	switch role {
	case models.RoleCounsellor:
		emails = agency.CounsellorEmails
	case models.RoleValidator:
		emails = agency.ValidatorEmails
	case models.RoleAdmin:
		emails = agency.AdminEmails
	default:
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown role %s", role)
	}
	if len(emails) == 0 {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "agency %s has no %s email", agency.ID, role)
	}
	return emails, nil
}
