package db

import "fmt"

// migrate runs all database migrations
func (db *DB) migrate() error {
	migrations := []string{
		migrationCreateKV,
		migrationCreateKVScopeIndex,
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

// Both sqlite and postgres accept this DDL unchanged
const migrationCreateKV = `
CREATE TABLE IF NOT EXISTS kv (
    scope TEXT NOT NULL,
    key TEXT NOT NULL,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    PRIMARY KEY (scope, key)
);
`

const migrationCreateKVScopeIndex = `
CREATE INDEX IF NOT EXISTS idx_kv_scope ON kv(scope);
`
