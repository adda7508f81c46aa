package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// KVSlotsSchema creates the table backing PostgresStorage
const KVSlotsSchema = `
CREATE TABLE IF NOT EXISTS kv_slots (
    key TEXT PRIMARY KEY,
    value JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresStorage implements BlobStore on a single Postgres table, one row per key
type PostgresStorage struct {
	db *pgxpool.Pool
}

// NewPostgresStorage connects to Postgres and returns a storage instance
func NewPostgresStorage(ctx context.Context, connString string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewPostgresStorageFromPool(pool), nil
}

// NewPostgresStorageFromPool wraps an existing pool
func NewPostgresStorageFromPool(db *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{db: db}
}

// Load retrieves the blob for key
func (s *PostgresStorage) Load(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT value FROM kv_slots WHERE key = $1`

	var data []byte
	err := s.db.QueryRow(ctx, query, key).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to query kv slot: %w", err)
	}

	return data, nil
}

// Save upserts the blob for key
func (s *PostgresStorage) Save(ctx context.Context, key string, data []byte) error {
	query := `
		INSERT INTO kv_slots (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = NOW()`

	if _, err := s.db.Exec(ctx, query, key, data); err != nil {
		return fmt.Errorf("failed to save kv slot: %w", err)
	}

	return nil
}

// Close closes the underlying pool
func (s *PostgresStorage) Close() {
	s.db.Close()
}
