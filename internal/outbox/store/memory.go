// Package store holds the outbox persistence adapters.
package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"immersionfacile/internal/outbox"
)

// InMemory keeps events in a map. Events sharing an occurrence time are
// returned in insertion order. Safe for concurrent use.
type InMemory struct {
	mu     sync.RWMutex
	events map[string]outbox.Event
	seq    map[string]uint64
	next   uint64
}

func NewInMemory() *InMemory {
	return &InMemory{
		events: make(map[string]outbox.Event),
		seq:    make(map[string]uint64),
	}
}

func (s *InMemory) Save(_ context.Context, event outbox.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seq[event.ID]; !ok {
		s.next++
		s.seq[event.ID] = s.next
	}
	s.events[event.ID] = event.Clone()
	return nil
}

func (s *InMemory) UnpublishedEvents(_ context.Context) ([]outbox.Event, error) {
	return s.filter(outbox.Event.IsUnpublished), nil
}

func (s *InMemory) FailedEvents(_ context.Context) ([]outbox.Event, error) {
	return s.filter(outbox.Event.HasFailed), nil
}

// All returns every stored event ordered by occurrence.
func (s *InMemory) All(_ context.Context) ([]outbox.Event, error) {
	return s.filter(func(outbox.Event) bool { return true }), nil
}

// PayloadIDs returns the "id" field of every payload stored under topic.
func (s *InMemory) PayloadIDs(_ context.Context, topic outbox.Topic) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for _, e := range s.events {
		if e.Topic != topic {
			continue
		}
		var ref struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(e.Payload, &ref); err == nil && ref.ID != "" {
			ids = append(ids, ref.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *InMemory) filter(keep func(outbox.Event) bool) []outbox.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]outbox.Event, 0)
	for _, e := range s.events {
		if keep(e) {
			out = append(out, e.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return s.seq[out[i].ID] < s.seq[out[j].ID]
		}
		return out[i].OccurredAt.Before(out[j].OccurredAt)
	})
	return out
}
