package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"immersionfacile/internal/establishment/models"
	"immersionfacile/internal/platform/postgres"
	"immersionfacile/pkg/platform/sentinel"
	txcontext "immersionfacile/pkg/platform/tx"
)

// Postgres keeps each submitted form as a JSONB document keyed by siret.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Postgres) Create(ctx context.Context, f *models.FormEstablishment) error {
	payload, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal form establishment: %w", err)
	}
	_, err = s.execer(ctx).ExecContext(ctx,
		`INSERT INTO form_establishments (siret, payload, created_at) VALUES ($1, $2, $3)`,
		f.Siret, payload, f.CreatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert form establishment: %w", err)
	}
	return nil
}

func (s *Postgres) GetBySiret(ctx context.Context, siret string) (*models.FormEstablishment, error) {
	var payload []byte
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT payload FROM form_establishments WHERE siret = $1`, siret,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find form establishment: %w", err)
	}
	var f models.FormEstablishment
	if err := json.Unmarshal(payload, &f); err != nil {
		return nil, fmt.Errorf("decode form establishment: %w", err)
	}
	return &f, nil
}

func (s *Postgres) Update(ctx context.Context, f *models.FormEstablishment) error {
	payload, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal form establishment: %w", err)
	}
	res, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE form_establishments SET payload = $2 WHERE siret = $1`,
		f.Siret, payload,
	)
	if err != nil {
		return fmt.Errorf("update form establishment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update form establishment: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
