// Package store holds the form establishment persistence adapters.
package store

import (
	"context"
	"slices"
	"sync"

	"immersionfacile/internal/establishment/models"
	"immersionfacile/pkg/platform/sentinel"
)

type InMemory struct {
	mu    sync.RWMutex
	forms map[string]models.FormEstablishment
}

func NewInMemory() *InMemory {
	return &InMemory{forms: make(map[string]models.FormEstablishment)}
}

func (s *InMemory) Create(_ context.Context, f *models.FormEstablishment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.forms[f.Siret]; ok {
		return sentinel.ErrConflict
	}
	cp := *f
	cp.Professions = slices.Clone(f.Professions)
	s.forms[f.Siret] = cp
	return nil
}

func (s *InMemory) GetBySiret(_ context.Context, siret string) (*models.FormEstablishment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.forms[siret]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	f.Professions = slices.Clone(f.Professions)
	return &f, nil
}

func (s *InMemory) Update(_ context.Context, f *models.FormEstablishment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.forms[f.Siret]
	if !ok {
		return sentinel.ErrNotFound
	}
	cp := *f
	cp.CreatedAt = prev.CreatedAt
	cp.Professions = slices.Clone(f.Professions)
	s.forms[f.Siret] = cp
	return nil
}
