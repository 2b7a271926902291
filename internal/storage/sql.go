package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/existflow/semplan/internal/db"
)

// SQL stores keys in the kv table of a sqlite or postgres database
type SQL struct {
	db *db.DB
}

// NewSQL wraps an open database
func NewSQL(database *db.DB) *SQL {
	return &SQL{db: database}
}

// OpenSQL opens the database and wraps it
func OpenSQL(driver, dsn string) (*SQL, error) {
	database, err := db.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	return NewSQL(database), nil
}

func (s *SQL) Get(ctx context.Context, scope, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		s.db.Rebind(`SELECT value FROM kv WHERE scope = ? AND key = ?`),
		scope, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s/%s: %w", scope, key, err)
	}
	return []byte(value), nil
}

func (s *SQL) Put(ctx context.Context, scope, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO kv (scope, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (scope, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`),
		scope, key, string(value), time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to write %s/%s: %w", scope, key, err)
	}
	return nil
}

func (s *SQL) Delete(ctx context.Context, scope, key string) error {
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM kv WHERE scope = ? AND key = ?`), scope, key); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", scope, key, err)
	}
	return nil
}

func (s *SQL) Close() error {
	return s.db.Close()
}
