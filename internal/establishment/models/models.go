package models

import (
	"net/mail"
	"regexp"
	"strings"
	"time"

	dErrors "immersionfacile/pkg/domain-errors"
	platformstrings "immersionfacile/pkg/platform/strings"
)

var (
	siretRegexp = regexp.MustCompile(`^\d{14}$`)
	romeRegexp  = regexp.MustCompile(`^[A-N]\d{4}$`)
)

// IsValidSiret reports whether siret is 14 digits.
func IsValidSiret(siret string) bool {
	return siretRegexp.MatchString(siret)
}

// IsValidRome reports whether code is a ROME job code such as A1101.
func IsValidRome(code string) bool {
	return romeRegexp.MatchString(code)
}

type ContactMethod string

const (
	ContactByEmail  ContactMethod = "EMAIL"
	ContactByPhone  ContactMethod = "PHONE"
	ContactInPerson ContactMethod = "IN_PERSON"
)

// Source tells which partner form the establishment came through.
type Source string

const (
	SourceImmersionFacile    Source = "immersion-facile"
	SourceCCI                Source = "cci"
	SourceCMA                Source = "cma"
	SourceLesEntreprises     Source = "lesentreprises-sengagent"
	SourceUnJeuneUneSolution Source = "unJeuneUneSolution"
)

type Profession struct {
	RomeCodeMetier      string `json:"romeCodeMetier,omitempty"`
	RomeCodeAppellation string `json:"romeCodeAppellation,omitempty"`
	Description         string `json:"description"`
}

type NAF struct {
	Code         string `json:"code"`
	Nomenclature string `json:"nomenclature"`
}

type BusinessContact struct {
	FirstName     string        `json:"firstName"`
	LastName      string        `json:"lastName"`
	Job           string        `json:"job"`
	Phone         string        `json:"phone"`
	Email         string        `json:"email"`
	ContactMethod ContactMethod `json:"contactMethod"`
	CopyEmails    []string      `json:"copyEmails,omitempty"`
}

// FormEstablishment is an establishment offering immersions.
type FormEstablishment struct {
	Siret                  string          `json:"siret"`
	BusinessName           string          `json:"businessName"`
	BusinessNameCustomized string          `json:"businessNameCustomized,omitempty"`
	BusinessAddress        string          `json:"businessAddress"`
	NAF                    *NAF            `json:"naf,omitempty"`
	Professions            []Profession    `json:"professions"`
	BusinessContact        BusinessContact `json:"businessContact"`
	Source                 Source          `json:"source"`
	IsEngagedEnterprise    bool            `json:"isEngagedEnterprise"`
	EditLinkSentAt         *time.Time      `json:"editLinkSentAt,omitempty"`
	CreatedAt              time.Time       `json:"-"`
}

func (f *FormEstablishment) Validate() error {
	f.Siret = strings.TrimSpace(f.Siret)
	f.BusinessName = strings.TrimSpace(f.BusinessName)
	f.BusinessContact.Email = strings.TrimSpace(f.BusinessContact.Email)
	f.BusinessContact.CopyEmails = platformstrings.NormalizeEmails(f.BusinessContact.CopyEmails)

	if !IsValidSiret(f.Siret) {
		return dErrors.New(dErrors.CodeValidation, "siret must be 14 digits")
	}
	if f.BusinessName == "" {
		return dErrors.New(dErrors.CodeValidation, "businessName is required")
	}
	if strings.TrimSpace(f.BusinessAddress) == "" {
		return dErrors.New(dErrors.CodeValidation, "businessAddress is required")
	}
	if len(f.Professions) == 0 {
		return dErrors.New(dErrors.CodeValidation, "at least one profession is required")
	}
	for i, p := range f.Professions {
		if strings.TrimSpace(p.Description) == "" {
			return dErrors.New(dErrors.CodeValidation, "profession description is required")
		}
		f.Professions[i].RomeCodeMetier = strings.ToUpper(strings.TrimSpace(p.RomeCodeMetier))
		if code := f.Professions[i].RomeCodeMetier; code != "" && !IsValidRome(code) {
			return dErrors.Newf(dErrors.CodeValidation, "romeCodeMetier %q is invalid", code)
		}
	}
	c := f.BusinessContact
	if c.LastName == "" || c.FirstName == "" {
		return dErrors.New(dErrors.CodeValidation, "businessContact name is required")
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return dErrors.New(dErrors.CodeValidation, "businessContact email is invalid")
	}
	for _, cc := range c.CopyEmails {
		if _, err := mail.ParseAddress(cc); err != nil {
			return dErrors.Newf(dErrors.CodeValidation, "copy email %q is invalid", cc)
		}
	}
	switch c.ContactMethod {
	case ContactByEmail, ContactByPhone, ContactInPerson:
	default:
		return dErrors.Newf(dErrors.CodeValidation, "unknown contact method %q", c.ContactMethod)
	}
	if f.Source == "" {
		f.Source = SourceImmersionFacile
	}
	return nil
}

// EditLinkCooldown is the minimum delay between two edit links for a siret.
const EditLinkCooldown = 24 * time.Hour

// EditLinkSentPayload records that an edit link was requested for siret.
type EditLinkSentPayload struct {
	Siret        string    `json:"siret"`
	IssuedAt     time.Time `json:"iat"`
	BusinessName string    `json:"businessName"`
	ContactEmail string    `json:"contactEmail"`
	CopyEmails   []string  `json:"copyEmails,omitempty"`
}

// EditLinkRequest asks for an edit link to be emailed to the contact of Siret.
type EditLinkRequest struct {
	Siret string `json:"siret"`
}

func (r *EditLinkRequest) Validate() error {
	r.Siret = strings.TrimSpace(r.Siret)
	if !IsValidSiret(r.Siret) {
		return dErrors.New(dErrors.CodeValidation, "siret must be 14 digits")
	}
	return nil
}
