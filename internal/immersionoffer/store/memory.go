// Package store holds the establishment aggregate persistence adapters.
package store

import (
	"context"
	"sort"
	"sync"

	"immersionfacile/internal/immersionoffer/models"
	"immersionfacile/pkg/platform/sentinel"
)

type InMemory struct {
	mu         sync.RWMutex
	aggregates map[string]models.Aggregate
}

func NewInMemory() *InMemory {
	return &InMemory{aggregates: make(map[string]models.Aggregate)}
}

// ReplaceBySiret drops any aggregate with the same siret and stores a.
func (s *InMemory) ReplaceBySiret(_ context.Context, a *models.Aggregate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aggregates[a.Establishment.Siret] = a.Clone()
	return nil
}

func (s *InMemory) GetBySiret(_ context.Context, siret string) (*models.Aggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.aggregates[siret]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := a.Clone()
	return &out, nil
}

func (s *InMemory) Search(_ context.Context, filter models.SearchFilter) ([]models.Aggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Aggregate{}
	for _, a := range s.aggregates {
		if !filter.Box.Contains(a.Establishment.Position) {
			continue
		}
		if filter.VoluntaryToImmersion != nil && a.Establishment.VoluntaryToImmersion != *filter.VoluntaryToImmersion {
			continue
		}
		if filter.Rome != "" {
			if _, ok := a.Offer(filter.Rome); !ok {
				continue
			}
		}
		out = append(out, a.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Establishment.Siret < out[j].Establishment.Siret
	})
	return out, nil
}
