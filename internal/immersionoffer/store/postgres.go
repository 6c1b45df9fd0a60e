package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"immersionfacile/internal/immersionoffer/models"
	"immersionfacile/pkg/platform/sentinel"
	txcontext "immersionfacile/pkg/platform/tx"
)

// Postgres stores each aggregate as a JSONB document with the columns
// search filters on.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Postgres) ReplaceBySiret(ctx context.Context, a *models.Aggregate) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal establishment aggregate: %w", err)
	}
	e := a.Establishment
	query := `
		INSERT INTO establishment_aggregates
			(siret, latitude, longitude, voluntary_to_immersion, rome_codes, payload, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (siret) DO UPDATE SET
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			voluntary_to_immersion = EXCLUDED.voluntary_to_immersion,
			rome_codes = EXCLUDED.rome_codes,
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		e.Siret,
		e.Position.Lat,
		e.Position.Lon,
		e.VoluntaryToImmersion,
		pq.Array(a.Romes()),
		payload,
		e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert establishment aggregate: %w", err)
	}
	return nil
}

func (s *Postgres) GetBySiret(ctx context.Context, siret string) (*models.Aggregate, error) {
	var payload []byte
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT payload FROM establishment_aggregates WHERE siret = $1`, siret,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find establishment aggregate: %w", err)
	}
	return decode(payload)
}

func (s *Postgres) Search(ctx context.Context, filter models.SearchFilter) ([]models.Aggregate, error) {
	query := `
		SELECT payload FROM establishment_aggregates
		WHERE latitude BETWEEN $1 AND $2
			AND longitude BETWEEN $3 AND $4
			AND ($5 = '' OR $5 = ANY(rome_codes))
			AND ($6::boolean IS NULL OR voluntary_to_immersion = $6)
		ORDER BY siret
	`
	var voluntary sql.NullBool
	if filter.VoluntaryToImmersion != nil {
		voluntary = sql.NullBool{Bool: *filter.VoluntaryToImmersion, Valid: true}
	}
	rows, err := s.execer(ctx).QueryContext(ctx, query,
		filter.Box.MinLat, filter.Box.MaxLat,
		filter.Box.MinLon, filter.Box.MaxLon,
		filter.Rome,
		voluntary,
	)
	if err != nil {
		return nil, fmt.Errorf("search establishment aggregates: %w", err)
	}
	defer rows.Close()

	out := []models.Aggregate{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan establishment aggregate: %w", err)
		}
		a, err := decode(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate establishment aggregates: %w", err)
	}
	return out, nil
}

func decode(payload []byte) (*models.Aggregate, error) {
	var a models.Aggregate
	if err := json.Unmarshal(payload, &a); err != nil {
		return nil, fmt.Errorf("decode establishment aggregate: %w", err)
	}
	return &a, nil
}
