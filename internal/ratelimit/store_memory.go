package ratelimit

import (
	"context"
	"sync"
	"time"
)

const defaultSweepInterval = time.Minute

type memoryWindow struct {
	stamps []time.Time
	window time.Duration
}

// InMemory keeps one sliding window per key. It is process local, so each
// replica enforces its own limit. Keys whose window emptied are dropped,
// either when next seen or by the periodic sweep run from Allow.
type InMemory struct {
	mu            sync.Mutex
	windows       map[string]*memoryWindow
	now           func() time.Time
	sweepInterval time.Duration
	lastSweep     time.Time
}

type MemoryOption func(*InMemory)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *InMemory) {
		s.now = now
	}
}

// WithSweepInterval sets how often idle keys are evicted.
func WithSweepInterval(d time.Duration) MemoryOption {
	return func(s *InMemory) {
		if d > 0 {
			s.sweepInterval = d
		}
	}
}

func NewInMemory(opts ...MemoryOption) *InMemory {
	s := &InMemory{
		windows:       make(map[string]*memoryWindow),
		now:           time.Now,
		sweepInterval: defaultSweepInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemory) Allow(_ context.Context, key string, limit int, window time.Duration) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.maybeSweep(now)

	w, ok := s.windows[key]
	if !ok {
		w = &memoryWindow{}
		s.windows[key] = w
	}
	w.window = window
	w.stamps = prune(w.stamps, now.Add(-window))

	if len(w.stamps) >= limit {
		resetAt := now.Add(window)
		if len(w.stamps) > 0 {
			resetAt = w.stamps[0].Add(window)
		} else {
			delete(s.windows, key)
		}
		return Result{Allowed: false, Limit: limit, Remaining: 0, ResetAt: resetAt}, nil
	}

	w.stamps = append(w.stamps, now)
	return Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - len(w.stamps),
		ResetAt:   w.stamps[0].Add(window),
	}, nil
}

// Len returns the number of keys currently tracked.
func (s *InMemory) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

// Sweep evicts every key with no request left in its window.
func (s *InMemory) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep(s.now())
}

func (s *InMemory) maybeSweep(now time.Time) {
	if now.Sub(s.lastSweep) < s.sweepInterval {
		return
	}
	s.sweep(now)
}

func (s *InMemory) sweep(now time.Time) {
	for key, w := range s.windows {
		w.stamps = prune(w.stamps, now.Add(-w.window))
		if len(w.stamps) == 0 {
			delete(s.windows, key)
		}
	}
	s.lastSweep = now
}

// prune drops timestamps at or before cutoff.
func prune(stamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for ; i < len(stamps); i++ {
		if stamps[i].After(cutoff) {
			break
		}
	}
	if i == len(stamps) {
		return nil
	}
	return stamps[i:]
}
