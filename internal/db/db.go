// internal/db/db.go
package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/wb-go/wbf/zlog"

	"github.com/unclebandit/donorlink-backend/internal/config"
)

// Open connects to the configured database and makes sure the schema exists.
func Open(ctx context.Context, cfg config.Database) (*sql.DB, error) {
	var (
		conn *sql.DB
		err  error
	)

	switch cfg.Driver {
	case "sqlite":
		conn, err = sql.Open("sqlite3", cfg.SQLitePath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
		if err == nil {
			// a single writer avoids SQLITE_BUSY during the audit batch insert
			conn.SetMaxOpenConns(1)
		}
	default:
		zlog.Logger.Info().Str("host", cfg.Host).Str("name", cfg.Name).Msg("connecting to postgres")
		conn, err = sql.Open("postgres", cfg.DSN())
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	if err = conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}

	if err = Migrate(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}

	zlog.Logger.Info().Str("driver", cfg.Driver).Msg("connected to database")
	return conn, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS donors (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		blood_group TEXT NOT NULL,
		city TEXT NOT NULL,
		phone TEXT NOT NULL,
		email TEXT NOT NULL,
		donation_count INTEGER NOT NULL DEFAULT 0 CHECK (donation_count >= 0),
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		donor_id TEXT NOT NULL REFERENCES donors(id) ON DELETE CASCADE,
		message_text TEXT NOT NULL,
		message_type TEXT NOT NULL DEFAULT 'whatsapp',
		status TEXT NOT NULL DEFAULT 'pending',
		sent_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_donor_id ON messages (donor_id)`,
	`CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		whatsapp_number TEXT,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS secrets (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		secret TEXT NOT NULL
	)`,
}

// Migrate creates the tables if they are missing. The DDL is valid for both
// postgres and sqlite.
func Migrate(ctx context.Context, conn *sql.DB) error {
	for _, stmt := range schema {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
