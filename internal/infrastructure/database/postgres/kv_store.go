package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/turtacn/casefolio/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/casefolio/pkg/errors"
)

const (
	kvSelectQuery = `SELECT value FROM kv_store WHERE key = $1`
	kvUpsertQuery = `INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, NOW())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	kvDeleteQuery = `DELETE FROM kv_store WHERE key = $1`
)

// KVStore keeps opaque blobs in the kv_store table, one row per key.
type KVStore struct {
	conn   *Connection
	logger logging.Logger
}

// NewKVStore returns a KVStore over conn. The schema must already exist;
// see RunMigrations.
func NewKVStore(conn *Connection, log logging.Logger) *KVStore {
	return &KVStore{conn: conn, logger: log}
}

func (s *KVStore) Name() string { return "postgres" }

// Get returns the blob stored under key, or an ErrCodeStorageKeyNotFound
// error when the row is absent.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.conn.DB().QueryRowContext(ctx, kvSelectQuery, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.New(apperrors.ErrCodeStorageKeyNotFound, "key not found").WithDetail(key)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "failed to read key").WithDetail(key)
	}
	return value, nil
}

// Put upserts the blob stored under key.
func (s *KVStore) Put(ctx context.Context, key string, data []byte) error {
	if _, err := s.conn.DB().ExecContext(ctx, kvUpsertQuery, key, data); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStorage, "failed to write key").WithDetail(key)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	if _, err := s.conn.DB().ExecContext(ctx, kvDeleteQuery, key); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStorage, "failed to delete key").WithDetail(key)
	}
	return nil
}

func (s *KVStore) Ping(ctx context.Context) error {
	return s.conn.HealthCheck(ctx)
}

func (s *KVStore) Close() error {
	return s.conn.Close()
}

//Personal.AI order the ending
