package storage

import (
	"context"
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"

	"camtrap/internal/model"
)

type sqliteStore struct {
	baseStore
}

func NewSQLite(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "file:camtrap.db?_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	return &sqliteStore{baseStore{db: db}}, nil
}

func (s *sqliteStore) Init(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
			event_id TEXT PRIMARY KEY,
			deployment_id TEXT NOT NULL,
			grouping_key TEXT NOT NULL,
			event_start TEXT NOT NULL,
			event_end TEXT,
			observations INTEGER NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_deployment ON events(deployment_id, grouping_key)`,
		`CREATE TABLE IF NOT EXISTS event_assignments (
			observation_id TEXT PRIMARY KEY,
			event_id TEXT NOT NULL,
			updated_at TEXT NOT NULL
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

func (s *sqliteStore) UpsertEvents(ctx context.Context, events []model.EventSummary) error {
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
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(event_id) DO UPDATE SET
			deployment_id = excluded.deployment_id,
			grouping_key = excluded.grouping_key,
			event_start = excluded.event_start,
			event_end = excluded.event_end,
			observations = excluded.observations,
			updated_at = excluded.updated_at`)
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

func (s *sqliteStore) UpsertAssignments(ctx context.Context, assignments []model.Assignment) error {
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
		VALUES (?, ?, ?)
		ON CONFLICT(observation_id) DO UPDATE SET
			event_id = excluded.event_id,
			updated_at = excluded.updated_at`)
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
