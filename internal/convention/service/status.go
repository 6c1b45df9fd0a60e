package service

import (
	"context"
	"strings"

	"immersionfacile/internal/convention/models"
	"immersionfacile/internal/outbox"
	dErrors "immersionfacile/pkg/domain-errors"
	"immersionfacile/pkg/requestcontext"
)

// UpdateConventionStatus moves a convention along the review workflow.
func (s *Service) UpdateConventionStatus(ctx context.Context, id models.ID, target models.Status, role models.Role, justification string) error {
	transition, ok := models.TransitionTo(target)
	if !ok {
		return dErrors.Newf(dErrors.CodeBadRequest, "status %s cannot be requested", target)
	}
	if !transition.AllowsRole(role) {
		return dErrors.Newf(dErrors.CodeForbidden, "role %s cannot move a convention to %s", role, target)
	}
	justification = strings.TrimSpace(justification)
	if (target == models.StatusRejected || target == models.StatusDraft) && justification == "" {
		return dErrors.Newf(dErrors.CodeBadRequest, "a justification is required to move a convention to %s", target)
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		c, err := s.find(ctx, id)
		if err != nil {
			return err
		}
		if !transition.AllowsFrom(c.Status) {
			return dErrors.Newf(dErrors.CodeBadRequest, "cannot go from %s to %s", c.Status, target)
		}
		from := c.Status
		c.Status = target

		var payload any = c
		switch target {
		case models.StatusValidated:
			now := requestcontext.Now(ctx)
			c.DateValidation = &now
		case models.StatusRejected:
			c.RejectionJustification = justification
		case models.StatusDraft:
			c.ClearSignatures()
			payload = models.RequiresModificationPayload{
				Convention: *c,
				Reason:     justification,
				Roles:      []models.Role{models.RoleBeneficiary, models.RoleEstablishment},
			}
		}
		if err := s.update(ctx, c); err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "convention status updated",
			"convention_id", id,
			"from", from,
			"to", target,
			"role", role,
		)
		return s.record(ctx, transition.Topic, payload)
	})
	if err != nil {
		return err
	}
	s.metrics.IncStatusTransition(string(target))
	return nil
}

// SignConvention records a signatory's signature. Signing twice is a no-op.
func (s *Service) SignConvention(ctx context.Context, id models.ID, role models.Role) (*models.Convention, error) {
	if !role.IsSignatory() {
		return nil, dErrors.Newf(dErrors.CodeForbidden, "role %s cannot sign a convention", role)
	}
	var signed *models.Convention
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		c, err := s.find(ctx, id)
		if err != nil {
			return err
		}
		if c.Status != models.StatusReadyToSign && c.Status != models.StatusPartiallySigned {
			return dErrors.Newf(dErrors.CodeBadRequest, "convention %s is %s and cannot be signed", id, c.Status)
		}
		signed = c
		if c.SignedBy(role) {
			return nil
		}

		now := requestcontext.Now(ctx)
		if role == models.RoleBeneficiary {
			c.BeneficiarySignedAt = &now
		} else {
			c.EstablishmentSignedAt = &now
		}
		topic := outbox.TopicPartiallySigned
		c.Status = models.StatusPartiallySigned
		if c.FullySigned() {
			topic = outbox.TopicFullySigned
			c.Status = models.StatusInReview
		}
		if err := s.update(ctx, c); err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "convention signed",
			"convention_id", id,
			"role", role,
			"status", c.Status,
		)
		return s.record(ctx, topic, c)
	})
	if err != nil {
		return nil, err
	}
	return signed, nil
}
