package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"camtrap/internal/config"
	"camtrap/internal/model"
)

// Store is the optional persistence sink for run results. Both methods
// upsert so re-running on the same data is a no-op beyond refreshed
// timestamps.
type Store interface {
	Init(ctx context.Context) error
	Close() error
	UpsertEvents(ctx context.Context, events []model.EventSummary) error
	UpsertAssignments(ctx context.Context, assignments []model.Assignment) error
}

// NewStore returns nil without error when storage is disabled.
func NewStore(cfg config.StorageConfig) (Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	switch strings.ToLower(cfg.Driver) {
	case "sqlite":
		return NewSQLite(cfg.DSN)
	case "postgres", "postgresql":
		return NewPostgres(cfg.DSN)
	default:
		return nil, errors.New("unsupported storage driver")
	}
}

type baseStore struct {
	db *sql.DB
}

func (b *baseStore) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
