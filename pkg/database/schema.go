package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
  id BIGSERIAL PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  display_name TEXT NOT NULL,
  tokens BIGINT NOT NULL DEFAULT 1000 CHECK (tokens >= 0),
  points BIGINT NOT NULL DEFAULT 0 CHECK (points >= 0),
  role TEXT NOT NULL DEFAULT 'player' CHECK (role IN ('player','muted','admin','banned','owner')),
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE TABLE IF NOT EXISTS game_results (
  id BIGSERIAL PRIMARY KEY,
  account_id BIGINT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
  game_kind TEXT NOT NULL,
  won BOOLEAN NOT NULL,
  points_earned BIGINT NOT NULL DEFAULT 0 CHECK (points_earned >= 0),
  elapsed_seconds DOUBLE PRECISION,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE INDEX IF NOT EXISTS idx_game_results_account ON game_results(account_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_accounts_points ON accounts(points DESC, created_at, id)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  username TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  display_name TEXT NOT NULL,
  tokens INTEGER NOT NULL DEFAULT 1000 CHECK (tokens >= 0),
  points INTEGER NOT NULL DEFAULT 0 CHECK (points >= 0),
  role TEXT NOT NULL DEFAULT 'player' CHECK (role IN ('player','muted','admin','banned','owner')),
  created_at TIMESTAMP NOT NULL,
  updated_at TIMESTAMP NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS game_results (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  account_id INTEGER NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
  game_kind TEXT NOT NULL,
  won BOOLEAN NOT NULL,
  points_earned INTEGER NOT NULL DEFAULT 0 CHECK (points_earned >= 0),
  elapsed_seconds REAL,
  created_at TIMESTAMP NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_game_results_account ON game_results(account_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_accounts_points ON accounts(points DESC, created_at, id)`,
}

// EnsureSchema creates the accounts and game_results tables if they do not
// exist (idempotent). The DDL is picked by driver name.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	stmts := postgresSchema
	if db.DriverName() == DriverSQLite {
		stmts = sqliteSchema
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
