package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/noah-isme/presensi-qr-api/pkg/config"
)

const snapshotSchema = `CREATE TABLE IF NOT EXISTS snapshots (
	key TEXT PRIMARY KEY,
	value JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresKV keeps slot snapshots in a single key/value table. The
// relational engine is used purely as durable storage; queries never
// look inside the JSON documents.
type PostgresKV struct {
	db *sqlx.DB
}

// NewPostgresKV connects, pings and ensures the snapshots table exists.
func NewPostgresKV(cfg config.DatabaseConfig) (*PostgresKV, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(snapshotSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure snapshots table: %w", err)
	}
	return &PostgresKV{db: db}, nil
}

// NewPostgresKVFromDB wraps an existing connection (used by tests).
func NewPostgresKVFromDB(db *sqlx.DB) *PostgresKV {
	return &PostgresKV{db: db}
}

// Get fetches a slot snapshot.
func (s *PostgresKV) Get(ctx context.Context, key Slot) ([]byte, bool, error) {
	var raw []byte
	err := s.db.GetContext(ctx, &raw, "SELECT value FROM snapshots WHERE key = $1", string(key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("select snapshot %s: %w", key, err)
	}
	return raw, true, nil
}

// Set upserts the slot snapshot.
func (s *PostgresKV) Set(ctx context.Context, key Slot, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (key, value, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		string(key), value)
	if err != nil {
		return fmt.Errorf("upsert snapshot %s: %w", key, err)
	}
	return nil
}

// Delete removes the slot snapshot.
func (s *PostgresKV) Delete(ctx context.Context, key Slot) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM snapshots WHERE key = $1", string(key)); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", key, err)
	}
	return nil
}

// Close releases the pool.
func (s *PostgresKV) Close() error {
	return s.db.Close()
}
