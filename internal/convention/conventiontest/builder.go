// Package conventiontest builds valid conventions for tests.
package conventiontest

import (
	"time"

	"immersionfacile/internal/convention/models"
)

const (
	DefaultID       = "40400404-9c0b-bbbb-bb6d-6bb9bd38bbbb"
	DefaultAgencyID = "agency-1"
)

// Builder produces a valid convention and lets tests override fields.
type Builder struct {
	c models.Convention
}

func New() *Builder {
	return &Builder{c: models.Convention{
		ID:                  DefaultID,
		Status:              models.StatusReadyToSign,
		AgencyID:            DefaultAgencyID,
		DateSubmission:      "2024-01-04",
		DateStart:           "2024-01-08",
		DateEnd:             "2024-01-15",
		Siret:               "12345678901234",
		BusinessName:        "Boulangerie Dupont",
		Mentor:              "Alain Prost",
		MentorPhone:         "0601010101",
		MentorEmail:         "establishment@example.com",
		Email:               "beneficiary@example.com",
		FirstName:           "Esteban",
		LastName:            "Ocon",
		Phone:               "0606060606",
		Schedule:            "Monday to Friday, 9h-17h",
		ImmersionAddress:    "169 boulevard de la Villette, 75010 Paris",
		ImmersionObjective:  "Confirmer un projet professionnel",
		ImmersionProfession: "Boulanger",
		ImmersionActivities: "Pétrir, cuire, vendre",
		ImmersionSkills:     "Rigueur",
	}}
}

func (b *Builder) WithID(id string) *Builder {
	b.c.ID = id
	return b
}

func (b *Builder) WithStatus(s models.Status) *Builder {
	b.c.Status = s
	return b
}

func (b *Builder) WithAgencyID(id string) *Builder {
	b.c.AgencyID = id
	return b
}

func (b *Builder) WithDates(submission, start, end string) *Builder {
	b.c.DateSubmission = submission
	b.c.DateStart = start
	b.c.DateEnd = end
	return b
}

func (b *Builder) WithEmails(beneficiary, mentor string) *Builder {
	b.c.Email = beneficiary
	b.c.MentorEmail = mentor
	return b
}

func (b *Builder) WithDateValidation(t time.Time) *Builder {
	b.c.DateValidation = &t
	return b
}

func (b *Builder) SignedBy(role models.Role, at time.Time) *Builder {
	switch role {
	case models.RoleBeneficiary:
		b.c.BeneficiarySignedAt = &at
	case models.RoleEstablishment:
		b.c.EstablishmentSignedAt = &at
	}
	return b
}

func (b *Builder) Build() models.Convention {
	return b.c
}

func (b *Builder) BuildPtr() *models.Convention {
	c := b.c
	return &c
}
