package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	apperrors "github.com/rajasatyajit/bousai/internal/errors"
	"github.com/rajasatyajit/bousai/internal/models"
)

const usersSchema = `
	CREATE TABLE IF NOT EXISTS bot_users (
		user_id    TEXT PRIMARY KEY,
		lat        DOUBLE PRECISION,
		lon        DOUBLE PRECISION,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// PostgresStore implements Store using PostgreSQL
type PostgresStore struct {
	db Database
}

// NewPostgresStore creates a new PostgreSQL store
func NewPostgresStore(db Database) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the users table if it does not exist
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if err := s.db.Exec(ctx, usersSchema); err != nil {
		return apperrors.StoreError{Backend: "postgres", Operation: "schema", Err: err}
	}
	return nil
}

// Get retrieves a single user by ID
func (s *PostgresStore) Get(ctx context.Context, userID string) (models.UserRecord, bool, error) {
	query := `SELECT lat, lon FROM bot_users WHERE user_id = $1`

	var rec models.UserRecord
	err := s.db.QueryRow(ctx, query, userID).Scan(&rec.Latitude, &rec.Longitude)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.UserRecord{}, false, nil
		}
		return models.UserRecord{}, false, apperrors.StoreError{
			Backend:   "postgres",
			Operation: "get",
			Err:       fmt.Errorf("scan user %s: %w", userID, err),
		}
	}

	return rec, true, nil
}

// Put inserts or overwrites the user's location
func (s *PostgresStore) Put(ctx context.Context, userID string, rec models.UserRecord) error {
	query := `
		INSERT INTO bot_users (user_id, lat, lon)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			lat = EXCLUDED.lat,
			lon = EXCLUDED.lon,
			updated_at = NOW()
	`

	if err := s.db.Exec(ctx, query, userID, rec.Latitude, rec.Longitude); err != nil {
		return apperrors.StoreError{
			Backend:   "postgres",
			Operation: "put",
			Err:       fmt.Errorf("upsert user %s: %w", userID, err),
		}
	}
	return nil
}

// Health checks the database connection
func (s *PostgresStore) Health(ctx context.Context) error {
	return s.db.Health(ctx)
}
