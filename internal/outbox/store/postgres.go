package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"immersionfacile/internal/outbox"
	txcontext "immersionfacile/pkg/platform/tx"
)

// Postgres stores events in the outbox table. Publications are kept as a
// JSONB array on the event row.
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

const selectEvents = `
	SELECT id, occurred_at, topic, payload, publications, was_quarantined
	FROM outbox
`

// Save upserts the event. Only publications and quarantine can change.
func (s *Postgres) Save(ctx context.Context, event outbox.Event) error {
	publications := event.Publications
	if publications == nil {
		publications = []outbox.Publication{}
	}
	pubJSON, err := json.Marshal(publications)
	if err != nil {
		return fmt.Errorf("marshal publications: %w", err)
	}
	query := `
		INSERT INTO outbox (id, occurred_at, topic, payload, publications, was_quarantined)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			publications = EXCLUDED.publications,
			was_quarantined = EXCLUDED.was_quarantined
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		event.ID,
		event.OccurredAt,
		string(event.Topic),
		[]byte(event.Payload),
		pubJSON,
		event.WasQuarantined,
	)
	if err != nil {
		return fmt.Errorf("upsert outbox event: %w", err)
	}
	return nil
}

func (s *Postgres) UnpublishedEvents(ctx context.Context) ([]outbox.Event, error) {
	query := selectEvents + `
		WHERE jsonb_array_length(publications) = 0 AND NOT was_quarantined
		ORDER BY occurred_at, id
	`
	return s.query(ctx, query)
}

func (s *Postgres) FailedEvents(ctx context.Context) ([]outbox.Event, error) {
	query := selectEvents + `
		WHERE NOT was_quarantined
		  AND jsonb_array_length(publications) > 0
		  AND jsonb_array_length(publications -> -1 -> 'failures') > 0
		ORDER BY occurred_at, id
	`
	return s.query(ctx, query)
}

func (s *Postgres) All(ctx context.Context) ([]outbox.Event, error) {
	return s.query(ctx, selectEvents+` ORDER BY occurred_at, id`)
}

func (s *Postgres) PayloadIDs(ctx context.Context, topic outbox.Topic) ([]string, error) {
	rows, err := s.execer(ctx).QueryContext(ctx,
		`SELECT payload ->> 'id' FROM outbox WHERE topic = $1 AND payload ? 'id' ORDER BY 1`,
		string(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("query payload ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan payload id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payload ids: %w", err)
	}
	return ids, nil
}

func (s *Postgres) query(ctx context.Context, query string, args ...any) ([]outbox.Event, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query outbox events: %w", err)
	}
	defer rows.Close()

	events := make([]outbox.Event, 0)
	for rows.Next() {
		var (
			event        outbox.Event
			topic        string
			payload      []byte
			publications []byte
		)
		if err := rows.Scan(&event.ID, &event.OccurredAt, &topic, &payload, &publications, &event.WasQuarantined); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		event.Topic = outbox.Topic(topic)
		event.Payload = payload
		if err := json.Unmarshal(publications, &event.Publications); err != nil {
			return nil, fmt.Errorf("decode publications of %s: %w", event.ID, err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox events: %w", err)
	}
	return events, nil
}
