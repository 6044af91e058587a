package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/terminal-bench/reliefops/internal/config"
)

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database url is empty")
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS sos_tickets (
		id          UUID PRIMARY KEY,
		external_id TEXT NOT NULL DEFAULT '',
		status      TEXT NOT NULL,
		priority    SMALLINT NOT NULL CHECK (priority BETWEEN 1 AND 5),
		people      INTEGER NOT NULL DEFAULT 0 CHECK (people >= 0),
		latitude    DOUBLE PRECISION NOT NULL CHECK (latitude BETWEEN -90 AND 90),
		longitude   DOUBLE PRECISION NOT NULL CHECK (longitude BETWEEN -180 AND 180),
		region      TEXT NOT NULL,
		category    TEXT NOT NULL DEFAULT '',
		text        TEXT NOT NULL DEFAULT '',
		place       TEXT NOT NULL DEFAULT '',
		assigned_to TEXT,
		notes       TEXT,
		reported_at TIMESTAMPTZ,
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sos_tickets_external_id ON sos_tickets (external_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sos_tickets_status_priority ON sos_tickets (status, priority DESC)`,
	`CREATE TABLE IF NOT EXISTS ticket_updates (
		id          UUID PRIMARY KEY,
		ticket_id   UUID NOT NULL REFERENCES sos_tickets (id),
		updated_by  TEXT NOT NULL DEFAULT '',
		field_name  TEXT NOT NULL,
		old_value   TEXT NOT NULL DEFAULT '',
		new_value   TEXT NOT NULL DEFAULT '',
		notes       TEXT NOT NULL DEFAULT '',
		update_time TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ticket_updates_ticket ON ticket_updates (ticket_id, update_time)`,
	`CREATE TABLE IF NOT EXISTS shelters (
		id                UUID PRIMARY KEY,
		name              TEXT NOT NULL,
		address           TEXT NOT NULL DEFAULT '',
		latitude          DOUBLE PRECISION NOT NULL,
		longitude         DOUBLE PRECISION NOT NULL,
		type              TEXT NOT NULL DEFAULT '',
		capacity          INTEGER NOT NULL CHECK (capacity > 0),
		current_occupancy INTEGER NOT NULL DEFAULT 0 CHECK (current_occupancy >= 0 AND current_occupancy <= capacity),
		status            TEXT NOT NULL DEFAULT 'Available',
		contact_person    TEXT NOT NULL DEFAULT '',
		contact_phone     TEXT NOT NULL DEFAULT '',
		created_at        TIMESTAMPTZ NOT NULL,
		updated_at        TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS hospitals (
		id             UUID PRIMARY KEY,
		name           TEXT NOT NULL,
		address        TEXT NOT NULL DEFAULT '',
		latitude       DOUBLE PRECISION NOT NULL,
		longitude      DOUBLE PRECISION NOT NULL,
		total_beds     INTEGER NOT NULL DEFAULT 0 CHECK (total_beds >= 0),
		available_beds INTEGER NOT NULL DEFAULT 0 CHECK (available_beds >= 0 AND available_beds <= total_beds),
		icu_beds       INTEGER NOT NULL DEFAULT 0 CHECK (icu_beds >= 0),
		available_icu  INTEGER NOT NULL DEFAULT 0 CHECK (available_icu >= 0 AND available_icu <= icu_beds),
		contact_phone  TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMPTZ NOT NULL,
		updated_at     TIMESTAMPTZ NOT NULL
	)`,
}

// Migrate creates missing tables and indexes. It is safe to run repeatedly.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
