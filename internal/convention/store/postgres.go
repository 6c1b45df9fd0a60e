package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"immersionfacile/internal/convention/models"
	"immersionfacile/internal/platform/postgres"
	"immersionfacile/pkg/platform/sentinel"
	txcontext "immersionfacile/pkg/platform/tx"
)

// Postgres stores each convention as a JSONB document. Columns used for
// filtering are duplicated next to the payload.
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

func (s *Postgres) Create(ctx context.Context, c *models.Convention) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal convention: %w", err)
	}
	query := `
		INSERT INTO conventions (id, status, agency_id, date_submission, date_start, date_end, date_validation, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING external_id
	`
	err = s.execer(ctx).QueryRowContext(ctx, query,
		c.ID,
		string(c.Status),
		c.AgencyID,
		c.DateSubmission,
		c.DateStart,
		c.DateEnd,
		c.DateValidation,
		payload,
	).Scan(&c.ExternalID)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert convention: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, c *models.Convention) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal convention: %w", err)
	}
	if !models.IsValidID(c.ID) {
		return sentinel.ErrNotFound
	}
	query := `
		UPDATE conventions SET
			status = $2, agency_id = $3, date_submission = $4, date_start = $5,
			date_end = $6, date_validation = $7, payload = $8
		WHERE id = $1
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		c.ID,
		string(c.Status),
		c.AgencyID,
		c.DateSubmission,
		c.DateStart,
		c.DateEnd,
		c.DateValidation,
		payload,
	)
	if err != nil {
		return fmt.Errorf("update convention: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update convention rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// FindByID reports ids that are not uuids as not found, the column type
// would reject them.
func (s *Postgres) FindByID(ctx context.Context, id models.ID) (*models.Convention, error) {
	if !models.IsValidID(id) {
		return nil, sentinel.ErrNotFound
	}
	var (
		extID   int64
		payload []byte
	)
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT external_id, payload FROM conventions WHERE id = $1`, id,
	).Scan(&extID, &payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find convention: %w", err)
	}
	return decode(extID, payload)
}

func (s *Postgres) List(ctx context.Context, filter models.ListFilter) ([]*models.Convention, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.AgencyID != "" {
		args = append(args, filter.AgencyID)
		where = append(where, fmt.Sprintf("agency_id = $%d", len(args)))
	}
	query := `SELECT external_id, payload FROM conventions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	return s.query(ctx, query+` ORDER BY external_id`, args...)
}

func (s *Postgres) ListEndingOn(ctx context.Context, dateEnd string, status models.Status) ([]*models.Convention, error) {
	return s.query(ctx,
		`SELECT external_id, payload FROM conventions WHERE date_end = $1 AND status = $2 ORDER BY external_id`,
		dateEnd, string(status),
	)
}

func (s *Postgres) query(ctx context.Context, query string, args ...any) ([]*models.Convention, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query conventions: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Convention, 0)
	for rows.Next() {
		var (
			extID   int64
			payload []byte
		)
		if err := rows.Scan(&extID, &payload); err != nil {
			return nil, fmt.Errorf("scan convention: %w", err)
		}
		c, err := decode(extID, payload)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conventions: %w", err)
	}
	return out, nil
}

func decode(extID int64, payload []byte) (*models.Convention, error) {
	var c models.Convention
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, fmt.Errorf("decode convention payload: %w", err)
	}
	c.ExternalID = extID
	return &c, nil
}
