package assessment

import (
	"strings"
	"time"

	dErrors "immersionfacile/pkg/domain-errors"
)

// Status is how the immersion ended for the establishment.
type Status string

const (
	StatusFinished  Status = "FINISHED"
	StatusAbandoned Status = "ABANDONED"
)

// Assessment is the establishment's feedback on a validated immersion.
type Assessment struct {
	ConventionID          string    `json:"conventionId"`
	Status                Status    `json:"status"`
	EstablishmentFeedback string    `json:"establishmentFeedback"`
	CreatedAt             time.Time `json:"createdAt"`
}

func (a *Assessment) Validate() error {
	a.ConventionID = strings.TrimSpace(a.ConventionID)
	a.EstablishmentFeedback = strings.TrimSpace(a.EstablishmentFeedback)
	if a.ConventionID == "" {
		return dErrors.New(dErrors.CodeValidation, "conventionId is required")
	}
	switch a.Status {
	case StatusFinished, StatusAbandoned:
	default:
		return dErrors.Newf(dErrors.CodeValidation, "unknown assessment status %q", a.Status)
	}
	if a.EstablishmentFeedback == "" {
		return dErrors.New(dErrors.CodeValidation, "establishmentFeedback is required")
	}
	return nil
}
