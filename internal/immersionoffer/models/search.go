package models

import (
	"net/mail"
	"strings"

	establishmentmodels "immersionfacile/internal/establishment/models"
	dErrors "immersionfacile/pkg/domain-errors"
	"immersionfacile/pkg/geo"
)

// MaxSearchDistanceKm caps the search radius.
const MaxSearchDistanceKm = 100

type SearchRequest struct {
	Rome                 string       `json:"rome,omitempty"`
	Location             geo.Position `json:"location"`
	DistanceKm           float64      `json:"distance_km"`
	VoluntaryToImmersion *bool        `json:"voluntaryToImmersion,omitempty"`
}

func (r *SearchRequest) Validate() error {
	r.Rome = strings.ToUpper(strings.TrimSpace(r.Rome))
	if r.Rome != "" && !establishmentmodels.IsValidRome(r.Rome) {
		return dErrors.Newf(dErrors.CodeValidation, "rome %q is invalid", r.Rome)
	}
	if !r.Location.Valid() {
		return dErrors.New(dErrors.CodeValidation, "location is out of bounds")
	}
	if r.DistanceKm <= 0 || r.DistanceKm > MaxSearchDistanceKm {
		return dErrors.Newf(dErrors.CodeValidation, "distance_km must be in ]0, %d]", MaxSearchDistanceKm)
	}
	return nil
}

// SearchFilter narrows the candidates a store returns. The box is coarse,
// exact distances are checked afterwards.
type SearchFilter struct {
	Rome                 string
	Box                  geo.Box
	VoluntaryToImmersion *bool
}

// ContactDetails are only disclosed to authorized API consumers.
type ContactDetails struct {
	ID        string `json:"id"`
	LastName  string `json:"lastName"`
	FirstName string `json:"firstName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Phone     string `json:"phone"`
}

// SearchResult is one offer of one establishment.
type SearchResult struct {
	ID                   string          `json:"id"`
	Rome                 string          `json:"rome"`
	RomeLabel            string          `json:"romeLabel"`
	NAF                  string          `json:"naf"`
	NAFLabel             string          `json:"nafLabel"`
	Siret                string          `json:"siret"`
	Name                 string          `json:"name"`
	VoluntaryToImmersion bool            `json:"voluntaryToImmersion"`
	Location             geo.Position    `json:"location"`
	Address              string          `json:"address"`
	ContactMode          ContactMethod   `json:"contactMode,omitempty"`
	DistanceM            *int            `json:"distance_m,omitempty"`
	ContactDetails       *ContactDetails `json:"contactDetails,omitempty"`
}

// NewSearchResult flattens offer o of a. Contact details are filled in when
// withContact is set.
func NewSearchResult(a Aggregate, o Offer, withContact bool) SearchResult {
	e := a.Establishment
	r := SearchResult{
		ID:                   o.ID,
		Rome:                 o.Rome,
		RomeLabel:            o.Label,
		NAF:                  e.NAF,
		NAFLabel:             e.NAFLabel,
		Siret:                e.Siret,
		Name:                 e.Name,
		VoluntaryToImmersion: e.VoluntaryToImmersion,
		Location:             e.Position,
		Address:              e.Address,
	}
	if a.Contact == nil {
		return r
	}
	r.ContactMode = a.Contact.ContactMethod
	if withContact {
		r.ContactDetails = &ContactDetails{
			ID:        a.Contact.ID,
			LastName:  a.Contact.LastName,
			FirstName: a.Contact.FirstName,
			Email:     a.Contact.Email,
			Role:      a.Contact.Job,
			Phone:     a.Contact.Phone,
		}
	}
	return r
}

// ContactRequest is a candidate asking an establishment about an offer.
type ContactRequest struct {
	Siret                         string        `json:"siret"`
	Rome                          string        `json:"rome"`
	ContactMode                   ContactMethod `json:"contactMode"`
	PotentialBeneficiaryFirstName string        `json:"potentialBeneficiaryFirstName"`
	PotentialBeneficiaryLastName  string        `json:"potentialBeneficiaryLastName"`
	PotentialBeneficiaryEmail     string        `json:"potentialBeneficiaryEmail"`
	Message                       string        `json:"message,omitempty"`
}

func (r *ContactRequest) Validate() error {
	r.Siret = strings.TrimSpace(r.Siret)
	r.Rome = strings.ToUpper(strings.TrimSpace(r.Rome))
	r.PotentialBeneficiaryEmail = strings.TrimSpace(r.PotentialBeneficiaryEmail)
	r.Message = strings.TrimSpace(r.Message)

	if !establishmentmodels.IsValidSiret(r.Siret) {
		return dErrors.New(dErrors.CodeValidation, "siret must be 14 digits")
	}
	if !establishmentmodels.IsValidRome(r.Rome) {
		return dErrors.Newf(dErrors.CodeValidation, "rome %q is invalid", r.Rome)
	}
	if strings.TrimSpace(r.PotentialBeneficiaryFirstName) == "" || strings.TrimSpace(r.PotentialBeneficiaryLastName) == "" {
		return dErrors.New(dErrors.CodeValidation, "potential beneficiary name is required")
	}
	if _, err := mail.ParseAddress(r.PotentialBeneficiaryEmail); err != nil {
		return dErrors.New(dErrors.CodeValidation, "potentialBeneficiaryEmail is invalid")
	}
	switch r.ContactMode {
	case establishmentmodels.ContactByEmail:
		if r.Message == "" {
			return dErrors.New(dErrors.CodeValidation, "message is required to contact by email")
		}
	case establishmentmodels.ContactByPhone, establishmentmodels.ContactInPerson:
	default:
		return dErrors.Newf(dErrors.CodeValidation, "unknown contact mode %q", r.ContactMode)
	}
	return nil
}

// ContactRequestedPayload carries everything the notification needs.
type ContactRequestedPayload struct {
	Request         ContactRequest `json:"request"`
	BusinessName    string         `json:"businessName"`
	BusinessAddress string         `json:"businessAddress"`
	RomeLabel       string         `json:"romeLabel"`
	Contact         Contact        `json:"contact"`
}
