package models

import (
	"time"

	"github.com/google/uuid"
)

// ID identifies a convention. It is a uuid chosen by the front end.
type ID = string

// IsValidID reports whether id parses as a uuid.
func IsValidID(id ID) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Status is a step of the convention lifecycle.
type Status string

const (
	StatusDraft                Status = "DRAFT"
	StatusReadyToSign          Status = "READY_TO_SIGN"
	StatusPartiallySigned      Status = "PARTIALLY_SIGNED"
	StatusInReview             Status = "IN_REVIEW"
	StatusAcceptedByCounsellor Status = "ACCEPTED_BY_COUNSELLOR"
	StatusAcceptedByValidator  Status = "ACCEPTED_BY_VALIDATOR"
	StatusValidated            Status = "VALIDATED"
	StatusRejected             Status = "REJECTED"
	StatusCancelled            Status = "CANCELLED"
)

var allStatuses = []Status{
	StatusDraft, StatusReadyToSign, StatusPartiallySigned, StatusInReview,
	StatusAcceptedByCounsellor, StatusAcceptedByValidator, StatusValidated,
	StatusRejected, StatusCancelled,
}

func (s Status) IsValid() bool {
	for _, known := range allStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Role is the capacity in which an actor acts on a convention.
type Role string

const (
	RoleBeneficiary   Role = "beneficiary"
	RoleEstablishment Role = "establishment"
	RoleCounsellor    Role = "counsellor"
	RoleValidator     Role = "validator"
	RoleAdmin         Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleBeneficiary, RoleEstablishment, RoleCounsellor, RoleValidator, RoleAdmin:
		return true
	}
	return false
}

// IsSignatory reports whether the role signs the convention.
func (r Role) IsSignatory() bool {
	return r == RoleBeneficiary || r == RoleEstablishment
}

// Convention is a work-immersion request. Dates without time are YYYY-MM-DD.
type Convention struct {
	ID                            ID         `json:"id"`
	ExternalID                    int64      `json:"externalId,omitempty"`
	Status                        Status     `json:"status"`
	AgencyID                      string     `json:"agencyId"`
	DateSubmission                string     `json:"dateSubmission"`
	DateStart                     string     `json:"dateStart"`
	DateEnd                       string     `json:"dateEnd"`
	DateValidation                *time.Time `json:"dateValidation,omitempty"`
	Siret                         string     `json:"siret"`
	BusinessName                  string     `json:"businessName"`
	Mentor                        string     `json:"mentor"`
	MentorPhone                   string     `json:"mentorPhone"`
	MentorEmail                   string     `json:"mentorEmail"`
	Email                         string     `json:"email"`
	FirstName                     string     `json:"firstName"`
	LastName                      string     `json:"lastName"`
	Phone                         string     `json:"phone,omitempty"`
	Schedule                      string     `json:"schedule"`
	WorkConditions                string     `json:"workConditions,omitempty"`
	ImmersionAddress              string     `json:"immersionAddress,omitempty"`
	ImmersionObjective            string     `json:"immersionObjective,omitempty"`
	ImmersionProfession           string     `json:"immersionProfession"`
	ImmersionActivities           string     `json:"immersionActivities"`
	ImmersionSkills               string     `json:"immersionSkills,omitempty"`
	IndividualProtection          bool       `json:"individualProtection"`
	SanitaryPrevention            bool       `json:"sanitaryPrevention"`
	SanitaryPreventionDescription string     `json:"sanitaryPreventionDescription,omitempty"`
	BeneficiarySignedAt           *time.Time `json:"beneficiarySignedAt,omitempty"`
	EstablishmentSignedAt         *time.Time `json:"establishmentSignedAt,omitempty"`
	RejectionJustification        string     `json:"rejectionJustification,omitempty"`
}

// ClearSignatures drops both signatures. Any edit invalidates them.
func (c *Convention) ClearSignatures() {
	c.BeneficiarySignedAt = nil
	c.EstablishmentSignedAt = nil
}

// SignedBy reports whether the signatory role has signed.
func (c *Convention) SignedBy(role Role) bool {
	switch role {
	case RoleBeneficiary:
		return c.BeneficiarySignedAt != nil
	case RoleEstablishment:
		return c.EstablishmentSignedAt != nil
	}
	return false
}

// FullySigned reports whether both signatories signed.
func (c *Convention) FullySigned() bool {
	return c.BeneficiarySignedAt != nil && c.EstablishmentSignedAt != nil
}

// ConventionRead is a convention joined with its agency name.
type ConventionRead struct {
	Convention
	AgencyName string `json:"agencyName"`
}

// ListFilter narrows the admin listing. Empty fields match everything.
type ListFilter struct {
	Status   Status
	AgencyID string
}

// RequiresModificationPayload is raised when an agent sends a convention back to draft.
type RequiresModificationPayload struct {
	Convention Convention `json:"convention"`
	Reason     string     `json:"reason"`
	Roles      []Role     `json:"roles"`
}

// RenewMagicLinkPayload carries a freshly minted link to its recipients.
type RenewMagicLinkPayload struct {
	Emails    []string `json:"emails"`
	MagicLink string   `json:"magicLink"`
}

// AssessmentLinkSentPayload marks a convention whose assessment email went out.
type AssessmentLinkSentPayload struct {
	ID ID `json:"id"`
}
