// Package store holds the agency persistence adapters.
package store

import (
	"context"
	"slices"
	"sync"

	"immersionfacile/internal/agency/models"
	"immersionfacile/pkg/geo"
	"immersionfacile/pkg/platform/sentinel"
)

// InMemory keeps agencies in a map. Safe for concurrent use.
type InMemory struct {
	mu       sync.RWMutex
	agencies map[string]*models.Agency
}

func NewInMemory(seed ...*models.Agency) *InMemory {
	s := &InMemory{agencies: make(map[string]*models.Agency, len(seed))}
	for _, a := range seed {
		s.agencies[a.ID] = clone(a)
	}
	return s
}

func (s *InMemory) Insert(_ context.Context, a *models.Agency) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.agencies[a.ID]; ok {
		return sentinel.ErrConflict
	}
	s.agencies[a.ID] = clone(a)
	return nil
}

func (s *InMemory) Update(_ context.Context, a *models.Agency) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.agencies[a.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.agencies[a.ID] = clone(a)
	return nil
}

func (s *InMemory) GetByID(_ context.Context, id string) (*models.Agency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.agencies[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(a), nil
}

func (s *InMemory) List(_ context.Context, filters models.Filters) ([]*models.Agency, error) {
	s.mu.RLock()
	all := make([]*models.Agency, 0, len(s.agencies))
	for _, a := range s.agencies {
		all = append(all, clone(a))
	}
	s.mu.RUnlock()
	return filters.Apply(all), nil
}

func clone(a *models.Agency) *models.Agency {
	c := *a
	c.CounsellorEmails = slices.Clone(a.CounsellorEmails)
	c.ValidatorEmails = slices.Clone(a.ValidatorEmails)
	c.AdminEmails = slices.Clone(a.AdminEmails)
	return &c
}

// TestAgencies seeds the in-memory repository for local runs.
func TestAgencies() []*models.Agency {
	return []*models.Agency{
		{
			ID:               models.ImmersionFacileAgencyID,
			Name:             "Immersion Facile",
			Status:           models.StatusActive,
			Kind:             models.KindImmersionFacile,
			CounsellorEmails: []string{},
			ValidatorEmails:  []string{"contact@immersion-facile.beta.gouv.fr"},
			AdminEmails:      []string{"admin@immersion-facile.beta.gouv.fr"},
			Signature:        "L'équipe Immersion Facile",
			Address: models.Address{
				StreetNumberAndAddress: "20 avenue de Ségur",
				Postcode:               "75007",
				DepartmentCode:         "75",
				City:                   "Paris",
			},
			Position: geo.Position{Lat: 48.8496, Lon: 2.3076},
		},
		{
			ID:               "test-agency-1-back",
			Name:             "Test Agency 1 (back)",
			Status:           models.StatusActive,
			Kind:             models.KindPoleEmploi,
			CounsellorEmails: []string{},
			ValidatorEmails:  []string{"validator123@mail.com"},
			AdminEmails:      []string{"admin@mail.com"},
			QuestionnaireURL: "http://questionnaire.agency1.fr",
			Signature:        "Signature of Test Agency 1",
			Address: models.Address{
				StreetNumberAndAddress: "1 rue de la Paix",
				Postcode:               "75002",
				DepartmentCode:         "75",
				City:                   "Paris",
			},
			Position: geo.Position{Lat: 1, Lon: 2},
		},
		{
			ID:               "test-agency-2-back",
			Name:             "Test Agency 2 (back)",
			Status:           models.StatusActive,
			Kind:             models.KindMissionLocale,
			CounsellorEmails: []string{"counsellor1@agency2.fr", "counsellor2@agency2.fr"},
			ValidatorEmails:  []string{"validator1@agency2.fr", "validator2@agency2.fr"},
			AdminEmails:      []string{"admin1@agency2.fr", "admin2@agency2.fr"},
			QuestionnaireURL: "http://questionnaire.agency2.fr",
			Signature:        "Signature of Test Agency 2",
			Address: models.Address{
				StreetNumberAndAddress: "Avenue des champs Elysées",
				Postcode:               "68100",
				DepartmentCode:         "68",
				City:                   "Mulhouse",
			},
			Position: geo.Position{Lat: 40, Lon: 50},
		},
		{
			ID:               "test-agency-3-back",
			Name:             "Test Agency 3 (back)",
			Status:           models.StatusActive,
			Kind:             models.KindPoleEmploi,
			CounsellorEmails: []string{"counsellor@agency3.fr"},
			ValidatorEmails:  []string{"validator@agency3.fr"},
			AdminEmails:      []string{"admin@agency3.fr"},
			QuestionnaireURL: "http://questionnaire.agency3.fr",
			Signature:        "Signature of Test Agency 3",
			Address: models.Address{
				StreetNumberAndAddress: "Avenue des champs Elysées",
				Postcode:               "64100",
				DepartmentCode:         "64",
				City:                   "Bayonne",
			},
			Position: geo.Position{Lat: 88, Lon: 89.9999},
		},
	}
}
