// Package models holds establishment aggregates, the immersion offers they
// carry and the search documents built from them.
package models

import (
	"slices"
	"time"

	establishmentmodels "immersionfacile/internal/establishment/models"
	"immersionfacile/pkg/geo"
)

// DataSourceForm marks aggregates built from a submitted form.
const DataSourceForm = "form"

// FormOfferScore ranks offers declared by the establishment itself.
const FormOfferScore = 10

type ContactMethod = establishmentmodels.ContactMethod

// Offer is one job an establishment opens to immersion.
type Offer struct {
	ID              string    `json:"id"`
	Rome            string    `json:"romeCode"`
	AppellationCode string    `json:"appellationCode,omitempty"`
	Label           string    `json:"label"`
	Score           float64   `json:"score"`
	CreatedAt       time.Time `json:"createdAt"`
}

type Contact struct {
	ID            string        `json:"id"`
	FirstName     string        `json:"firstName"`
	LastName      string        `json:"lastName"`
	Email         string        `json:"email"`
	Job           string        `json:"job"`
	Phone         string        `json:"phone"`
	ContactMethod ContactMethod `json:"contactMethod"`
	CopyEmails    []string      `json:"copyEmails,omitempty"`
}

type Establishment struct {
	Siret                string       `json:"siret"`
	Name                 string       `json:"name"`
	Address              string       `json:"address"`
	Position             geo.Position `json:"position"`
	NAF                  string       `json:"naf"`
	NAFLabel             string       `json:"nafLabel"`
	VoluntaryToImmersion bool         `json:"voluntaryToImmersion"`
	DataSource           string       `json:"dataSource"`
	UpdatedAt            time.Time    `json:"updatedAt"`
}

// Aggregate is an establishment with its offers and contact. It is replaced
// as a whole, keyed by siret.
type Aggregate struct {
	Establishment Establishment `json:"establishment"`
	Offers        []Offer       `json:"immersionOffers"`
	Contact       *Contact      `json:"contact,omitempty"`
}

// Offer returns the offer for rome.
func (a Aggregate) Offer(rome string) (Offer, bool) {
	for _, o := range a.Offers {
		if o.Rome == rome {
			return o, true
		}
	}
	return Offer{}, false
}

// Romes lists the rome codes offered, in offer order.
func (a Aggregate) Romes() []string {
	out := make([]string, 0, len(a.Offers))
	for _, o := range a.Offers {
		out = append(out, o.Rome)
	}
	return out
}

// Clone returns a deep copy.
func (a Aggregate) Clone() Aggregate {
	out := a
	out.Offers = slices.Clone(a.Offers)
	if a.Contact != nil {
		c := *a.Contact
		c.CopyEmails = slices.Clone(a.Contact.CopyEmails)
		out.Contact = &c
	}
	return out
}

// FromForm builds the aggregate of a form establishment located at position.
// Professions without a rome code give no offer, and a rome declared twice
// gives a single offer.
func FromForm(f establishmentmodels.FormEstablishment, position geo.Position, now time.Time, newID func() string) Aggregate {
	name := f.BusinessName
	if f.BusinessNameCustomized != "" {
		name = f.BusinessNameCustomized
	}
	a := Aggregate{
		Establishment: Establishment{
			Siret:                f.Siret,
			Name:                 name,
			Address:              f.BusinessAddress,
			Position:             position,
			VoluntaryToImmersion: true,
			DataSource:           DataSourceForm,
			UpdatedAt:            now,
		},
		Offers: []Offer{},
		Contact: &Contact{
			ID:            newID(),
			FirstName:     f.BusinessContact.FirstName,
			LastName:      f.BusinessContact.LastName,
			Email:         f.BusinessContact.Email,
			Job:           f.BusinessContact.Job,
			Phone:         f.BusinessContact.Phone,
			ContactMethod: f.BusinessContact.ContactMethod,
			CopyEmails:    slices.Clone(f.BusinessContact.CopyEmails),
		},
	}
	if f.NAF != nil {
		a.Establishment.NAF = f.NAF.Code
		a.Establishment.NAFLabel = f.NAF.Nomenclature
	}
	for _, p := range f.Professions {
		if p.RomeCodeMetier == "" {
			continue
		}
		if _, dup := a.Offer(p.RomeCodeMetier); dup {
			continue
		}
		a.Offers = append(a.Offers, Offer{
			ID:              newID(),
			Rome:            p.RomeCodeMetier,
			AppellationCode: p.RomeCodeAppellation,
			Label:           p.Description,
			Score:           FormOfferScore,
			CreatedAt:       now,
		})
	}
	return a
}
