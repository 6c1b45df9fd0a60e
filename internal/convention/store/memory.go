// Package store holds the convention persistence adapters.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"immersionfacile/internal/convention/models"
	"immersionfacile/pkg/platform/sentinel"
)

// InMemory keeps conventions in a map. Safe for concurrent use.
type InMemory struct {
	mu          sync.RWMutex
	conventions map[models.ID]*models.Convention
	lastExtID   int64
}

func NewInMemory() *InMemory {
	return &InMemory{conventions: make(map[models.ID]*models.Convention)}
}

// Create stores a new convention and assigns its external id.
func (s *InMemory) Create(_ context.Context, c *models.Convention) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conventions[c.ID]; ok {
		return sentinel.ErrConflict
	}
	s.lastExtID++
	c.ExternalID = s.lastExtID
	s.conventions[c.ID] = clone(c)
	return nil
}

func (s *InMemory) Update(_ context.Context, c *models.Convention) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.conventions[c.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	updated := clone(c)
	updated.ExternalID = existing.ExternalID
	s.conventions[c.ID] = updated
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id models.ID) (*models.Convention, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.conventions[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(c), nil
}

// List returns matching conventions ordered by external id.
func (s *InMemory) List(_ context.Context, filter models.ListFilter) ([]*models.Convention, error) {
	return s.collect(func(c *models.Convention) bool {
		if filter.Status != "" && c.Status != filter.Status {
			return false
		}
		if filter.AgencyID != "" && c.AgencyID != filter.AgencyID {
			return false
		}
		return true
	}), nil
}

// ListEndingOn returns conventions in status whose last day is dateEnd.
func (s *InMemory) ListEndingOn(_ context.Context, dateEnd string, status models.Status) ([]*models.Convention, error) {
	return s.collect(func(c *models.Convention) bool {
		return c.DateEnd == dateEnd && c.Status == status
	}), nil
}

func (s *InMemory) collect(keep func(*models.Convention) bool) []*models.Convention {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Convention, 0)
	for _, c := range s.conventions {
		if keep(c) {
			out = append(out, clone(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExternalID < out[j].ExternalID })
	return out
}

func clone(c *models.Convention) *models.Convention {
	cp := *c
	cp.DateValidation = cloneTime(c.DateValidation)
	cp.BeneficiarySignedAt = cloneTime(c.BeneficiarySignedAt)
	cp.EstablishmentSignedAt = cloneTime(c.EstablishmentSignedAt)
	return &cp
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
