package assessment

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"immersionfacile/internal/platform/postgres"
	"immersionfacile/pkg/platform/sentinel"
	txcontext "immersionfacile/pkg/platform/tx"
)

// Store keeps one assessment per convention. Create returns
// sentinel.ErrConflict for a second one.
type Store interface {
	Create(ctx context.Context, a *Assessment) error
}

type InMemoryStore struct {
	mu          sync.Mutex
	assessments map[string]Assessment
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{assessments: make(map[string]Assessment)}
}

func (s *InMemoryStore) Create(_ context.Context, a *Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assessments[a.ConventionID]; ok {
		return sentinel.ErrConflict
	}
	s.assessments[a.ConventionID] = *a
	return nil
}

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, a *Assessment) error {
	query := `
		INSERT INTO immersion_assessments (convention_id, status, establishment_feedback, created_at)
		VALUES ($1, $2, $3, $4)
	`
	var err error
	if tx, ok := txcontext.From(ctx); ok {
		_, err = tx.ExecContext(ctx, query, a.ConventionID, a.Status, a.EstablishmentFeedback, a.CreatedAt)
	} else {
		_, err = s.db.ExecContext(ctx, query, a.ConventionID, a.Status, a.EstablishmentFeedback, a.CreatedAt)
	}
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert immersion assessment: %w", err)
	}
	return nil
}
