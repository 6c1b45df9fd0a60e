// Package gateway holds the email delivery adapters.
package gateway

import (
	"context"
	"sync"

	"immersionfacile/internal/notification/models"
	"immersionfacile/pkg/requestcontext"
)

// DefaultKeptEmails is the history size of the in-memory gateway.
const DefaultKeptEmails = 15

// InMemory records sent emails in a bounded ring instead of delivering them.
// When full, the oldest entry is overwritten.
type InMemory struct {
	mu       sync.Mutex
	sent     []models.EmailSent
	head     int // next write position
	count    int
	capacity int
}

func NewInMemory(capacity int) *InMemory {
	if capacity <= 0 {
		capacity = DefaultKeptEmails
	}
	return &InMemory{
		sent:     make([]models.EmailSent, capacity),
		capacity: capacity,
	}
}

func (g *InMemory) Send(ctx context.Context, email models.TemplatedEmail) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	email.Recipients = append([]string(nil), email.Recipients...)
	email.CC = append([]string(nil), email.CC...)
	g.sent[g.head] = models.EmailSent{
		TemplatedEmail: email,
		SentAt:         requestcontext.Now(ctx),
	}
	g.head = (g.head + 1) % g.capacity
	if g.count < g.capacity {
		g.count++
	}
	return nil
}

// LastSent returns the kept emails, most recent first.
func (g *InMemory) LastSent(_ context.Context) ([]models.EmailSent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]models.EmailSent, 0, g.count)
	for i := 1; i <= g.count; i++ {
		idx := (g.head - i + g.capacity) % g.capacity
		out = append(out, g.sent[idx])
	}
	return out, nil
}
