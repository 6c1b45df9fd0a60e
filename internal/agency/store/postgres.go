package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"immersionfacile/internal/agency/models"
	"immersionfacile/internal/platform/postgres"
	"immersionfacile/pkg/platform/sentinel"
	txcontext "immersionfacile/pkg/platform/tx"
)

// Postgres persists agencies in the agencies table. Distance filtering and
// nearest-first ordering are done in Go over the filtered rows.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Postgres) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const agencyColumns = `id, name, status, kind, counsellor_emails, validator_emails, admin_emails,
	questionnaire_url, email_signature, street_number_and_address, postcode, department_code,
	city, lat, lon, logo_url`

func (s *Postgres) Insert(ctx context.Context, a *models.Agency) error {
	query := `INSERT INTO agencies (` + agencyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := s.execer(ctx).ExecContext(ctx, query, args(a)...)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert agency: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, a *models.Agency) error {
	query := `UPDATE agencies SET
			name = $2, status = $3, kind = $4, counsellor_emails = $5, validator_emails = $6,
			admin_emails = $7, questionnaire_url = $8, email_signature = $9,
			street_number_and_address = $10, postcode = $11, department_code = $12,
			city = $13, lat = $14, lon = $15, logo_url = $16
		WHERE id = $1`
	res, err := s.execer(ctx).ExecContext(ctx, query, args(a)...)
	if err != nil {
		return fmt.Errorf("update agency: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update agency rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) GetByID(ctx context.Context, id string) (*models.Agency, error) {
	agencies, err := s.query(ctx, `SELECT `+agencyColumns+` FROM agencies WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(agencies) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return agencies[0], nil
}

// List pushes department, kind and status filters to SQL.
func (s *Postgres) List(ctx context.Context, filters models.Filters) ([]*models.Agency, error) {
	var (
		where []string
		vals  []any
	)
	if filters.DepartmentCode != "" {
		vals = append(vals, filters.DepartmentCode)
		where = append(where, fmt.Sprintf("department_code = $%d", len(vals)))
	}
	switch filters.Kind {
	case models.KindFilterPEOnly:
		vals = append(vals, string(models.KindPoleEmploi))
		where = append(where, fmt.Sprintf("kind = $%d", len(vals)))
	case models.KindFilterPEExcluded:
		vals = append(vals, string(models.KindPoleEmploi))
		where = append(where, fmt.Sprintf("kind <> $%d", len(vals)))
	}
	if len(filters.Statuses) > 0 {
		statuses := make([]string, len(filters.Statuses))
		for i, st := range filters.Statuses {
			statuses[i] = string(st)
		}
		vals = append(vals, pq.Array(statuses))
		where = append(where, fmt.Sprintf("status = ANY($%d)", len(vals)))
	}
	query := `SELECT ` + agencyColumns + ` FROM agencies`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	agencies, err := s.query(ctx, query, vals...)
	if err != nil {
		return nil, err
	}
	return filters.Apply(agencies), nil
}

func args(a *models.Agency) []any {
	return []any{
		a.ID,
		a.Name,
		string(a.Status),
		string(a.Kind),
		pq.Array(nonNil(a.CounsellorEmails)),
		pq.Array(nonNil(a.ValidatorEmails)),
		pq.Array(nonNil(a.AdminEmails)),
		a.QuestionnaireURL,
		a.Signature,
		a.Address.StreetNumberAndAddress,
		a.Address.Postcode,
		a.Address.DepartmentCode,
		a.Address.City,
		a.Position.Lat,
		a.Position.Lon,
		a.LogoURL,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (s *Postgres) query(ctx context.Context, query string, vals ...any) ([]*models.Agency, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, query, vals...)
	if err != nil {
		return nil, fmt.Errorf("query agencies: %w", err)
	}
	defer rows.Close()

	agencies := make([]*models.Agency, 0)
	for rows.Next() {
		var (
			a            models.Agency
			status, kind string
			counsellors  pq.StringArray
			validators   pq.StringArray
			admins       pq.StringArray
		)
		err := rows.Scan(
			&a.ID, &a.Name, &status, &kind, &counsellors, &validators, &admins,
			&a.QuestionnaireURL, &a.Signature, &a.Address.StreetNumberAndAddress,
			&a.Address.Postcode, &a.Address.DepartmentCode, &a.Address.City,
			&a.Position.Lat, &a.Position.Lon, &a.LogoURL,
		)
		if err != nil {
			return nil, fmt.Errorf("scan agency: %w", err)
		}
		a.Status = models.Status(status)
		a.Kind = models.Kind(kind)
		a.CounsellorEmails = []string(counsellors)
		a.ValidatorEmails = []string(validators)
		a.AdminEmails = []string(admins)
		agencies = append(agencies, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate agencies: %w", err)
	}
	return agencies, nil
}
