package storage

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"camtrap/internal/model"
)

type postgresStore struct {
	baseStore
}

func NewPostgres(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "postgres://localhost:5432/camtrap?sslmode=disable"
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &postgresStore{baseStore{db: db}}, nil
}

func (s *postgresStore) Init(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
			event_id TEXT PRIMARY KEY,
			deployment_id TEXT NOT NULL,
			grouping_key TEXT NOT NULL,
			event_start TIMESTAMPTZ NOT NULL,
			event_end TIMESTAMPTZ,
			observations INTEGER NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_deployment ON events(deployment_id, grouping_key)`,
		`CREATE TABLE IF NOT EXISTS event_assignments (
			observation_id TEXT PRIMARY KEY,
			event_id TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_assignments_event ON event_assignments(event_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *postgresStore) UpsertEvents(ctx context.Context, events []model.EventSummary) error {
	if s.db == nil || len(events) == 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO events (event_id, deployment_id, grouping_key, event_start, event_end, observations, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (event_id) DO UPDATE SET
			deployment_id = EXCLUDED.deployment_id,
			grouping_key = EXCLUDED.grouping_key,
			event_start = EXCLUDED.event_start,
			event_end = EXCLUDED.event_end,
			observations = EXCLUDED.observations,
			updated_at = EXCLUDED.updated_at`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, ev := range events {
		if _, err := stmt.ExecContext(ctx,
			ev.EventID,
			ev.DeploymentID,
			ev.GroupingKey,
			ev.Start.UTC(),
			nullableTime(ev.End),
			ev.Observations,
			nowUTC(),
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *postgresStore) UpsertAssignments(ctx context.Context, assignments []model.Assignment) error {
	if s.db == nil || len(assignments) == 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO event_assignments (observation_id, event_id, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (observation_id) DO UPDATE SET
			event_id = EXCLUDED.event_id,
			updated_at = EXCLUDED.updated_at`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, a := range assignments {
		if _, err := stmt.ExecContext(ctx, a.ObservationID, a.EventID, nowUTC()); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
