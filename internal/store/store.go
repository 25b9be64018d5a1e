package store

import (
	"context"
	"fmt"

	pgx "github.com/jackc/pgx/v5"
	"github.com/rajasatyajit/bousai/config"
	"github.com/rajasatyajit/bousai/internal/models"
)

// Store is the user registry: platform user id to last known location
type Store interface {
	// Get returns the record and whether it exists
	Get(ctx context.Context, userID string) (models.UserRecord, bool, error)
	// Put creates or overwrites the record
	Put(ctx context.Context, userID string, rec models.UserRecord) error
	Health(ctx context.Context) error
}

// Database interface for dependency injection
type Database interface {
	Exec(ctx context.Context, sql string, args ...any) error
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Health(ctx context.Context) error
	IsConfigured() bool
}

// New creates the registry selected by cfg.Registry.Backend. db is only
// consulted for the postgres backend.
func New(ctx context.Context, cfg *config.Config, db Database) (Store, error) {
	switch cfg.Registry.Backend {
	case config.BackendMemory:
		return NewMemoryStore(), nil
	case config.BackendRedis:
		return NewRedisStore(ctx, cfg.Redis.URL, cfg.Redis.Key)
	case config.BackendPostgres:
		if db == nil || !db.IsConfigured() {
			return nil, fmt.Errorf("postgres registry requires a configured database")
		}
		s := NewPostgresStore(db)
		if err := s.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendFile, "":
		return NewFileStore(cfg.Registry.UsersFile)
	default:
		return nil, fmt.Errorf("unknown registry backend: %q", cfg.Registry.Backend)
	}
}
