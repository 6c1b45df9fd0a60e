package models

import (
	"net/mail"
	"strings"

	dErrors "immersionfacile/pkg/domain-errors"
	"immersionfacile/pkg/geo"
	platformstrings "immersionfacile/pkg/platform/strings"
)

// ImmersionFacileAgencyID is the agency owning conventions created without
// a partner agency.
const ImmersionFacileAgencyID = "immersion-facile-agency"

// DefaultListLimit caps public agency listings.
const DefaultListLimit = 20

type Status string

const (
	StatusNeedsReview Status = "needsReview"
	StatusActive      Status = "active"
	StatusClosed      Status = "closed"
	StatusRejected    Status = "rejected"
	StatusFromAPIPE   Status = "from-api-PE"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusNeedsReview, StatusActive, StatusClosed, StatusRejected, StatusFromAPIPE:
		return true
	}
	return false
}

// PublicStatuses are the statuses visible to beneficiaries.
var PublicStatuses = []Status{StatusActive, StatusFromAPIPE}

type Kind string

const (
	KindPoleEmploi           Kind = "pole-emploi"
	KindMissionLocale        Kind = "mission-locale"
	KindCapEmploi            Kind = "cap-emploi"
	KindConseilDepartemental Kind = "conseil-departemental"
	KindStructureIAE         Kind = "structure-IAE"
	KindAutre                Kind = "autre"
	KindImmersionFacile      Kind = "immersion-facile"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindPoleEmploi, KindMissionLocale, KindCapEmploi, KindConseilDepartemental,
		KindStructureIAE, KindAutre, KindImmersionFacile:
		return true
	}
	return false
}

type Address struct {
	StreetNumberAndAddress string `json:"streetNumberAndAddress"`
	Postcode               string `json:"postcode"`
	DepartmentCode         string `json:"departmentCode"`
	City                   string `json:"city"`
}

// Agency sponsors and approves conventions.
type Agency struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Status           Status       `json:"status"`
	Kind             Kind         `json:"kind"`
	CounsellorEmails []string     `json:"counsellorEmails"`
	ValidatorEmails  []string     `json:"validatorEmails"`
	AdminEmails      []string     `json:"adminEmails"`
	QuestionnaireURL string       `json:"questionnaireUrl"`
	Signature        string       `json:"signature"`
	Address          Address      `json:"address"`
	Position         geo.Position `json:"position"`
	LogoURL          string       `json:"logoUrl,omitempty"`
}

// Validate checks a submitted agency.
func (a *Agency) Validate() error {
	a.Name = strings.TrimSpace(a.Name)
	if a.ID == "" {
		return dErrors.New(dErrors.CodeValidation, "id is required")
	}
	if a.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if !a.Kind.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown agency kind %q", a.Kind)
	}
	if a.Address.StreetNumberAndAddress == "" || a.Address.City == "" || a.Address.Postcode == "" {
		return dErrors.New(dErrors.CodeValidation, "address is incomplete")
	}
	if a.Address.DepartmentCode == "" {
		return dErrors.New(dErrors.CodeValidation, "departmentCode is required")
	}
	if !a.Position.Valid() {
		return dErrors.New(dErrors.CodeValidation, "position is out of bounds")
	}
	a.CounsellorEmails = platformstrings.NormalizeEmails(a.CounsellorEmails)
	a.ValidatorEmails = platformstrings.NormalizeEmails(a.ValidatorEmails)
	a.AdminEmails = platformstrings.NormalizeEmails(a.AdminEmails)
	if len(a.ValidatorEmails) == 0 {
		return dErrors.New(dErrors.CodeValidation, "at least one validator email is required")
	}
	for _, list := range [][]string{a.CounsellorEmails, a.ValidatorEmails, a.AdminEmails} {
		for _, email := range list {
			if _, err := mail.ParseAddress(email); err != nil {
				return dErrors.Newf(dErrors.CodeValidation, "invalid email %q", email)
			}
		}
	}
	return nil
}

// PublicInfo is the agency view exposed without authentication.
type PublicInfo struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Address   Address      `json:"address"`
	Position  geo.Position `json:"position"`
	Signature string       `json:"signature"`
	LogoURL   string       `json:"logoUrl,omitempty"`
}

func (a *Agency) PublicInfo() PublicInfo {
	return PublicInfo{
		ID:        a.ID,
		Name:      a.Name,
		Address:   a.Address,
		Position:  a.Position,
		Signature: a.Signature,
		LogoURL:   a.LogoURL,
	}
}

// IDAndName is a listing row.
type IDAndName struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// KindFilter narrows listings on the Pôle emploi network.
type KindFilter string

const (
	KindFilterPEOnly     KindFilter = "peOnly"
	KindFilterPEExcluded KindFilter = "peExcluded"
)

// PositionFilter keeps agencies within DistanceKm of Position.
type PositionFilter struct {
	Position   geo.Position
	DistanceKm float64
}

// Filters are combined with AND. Zero values match everything.
type Filters struct {
	DepartmentCode string
	Kind           KindFilter
	Position       *PositionFilter
	Statuses       []Status
	Limit          int
}
