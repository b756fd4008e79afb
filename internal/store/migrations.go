package store

import (
	"fmt"
	"time"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "doses: append-ordered dose ledger",
		SQL: `
CREATE TABLE doses (
    seq          INTEGER PRIMARY KEY AUTOINCREMENT,
    id           TEXT NOT NULL UNIQUE,
    compound_id  TEXT NOT NULL CHECK (compound_id <> ''),
    amount_mg    REAL NOT NULL CHECK (amount_mg > 0),
    taken_at     INTEGER NOT NULL,
    notes        TEXT NOT NULL DEFAULT '',
    created_at   INTEGER NOT NULL
);

CREATE INDEX idx_doses_compound ON doses(compound_id);
CREATE INDEX idx_doses_taken_at ON doses(taken_at);
`,
	},
	{
		Version:     2,
		Description: "thresholds: per-compound alert bounds",
		SQL: `
CREATE TABLE thresholds (
    compound_id    TEXT PRIMARY KEY,
    min_mg         REAL NOT NULL CHECK (min_mg >= 0),
    max_mg         REAL CHECK (max_mg IS NULL OR max_mg > 0),
    alert_enabled  INTEGER NOT NULL DEFAULT 1,
    updated_at     INTEGER NOT NULL
);
`,
	},
	{
		Version:     3,
		Description: "sleep_schedule: single-row sleep window",
		SQL: `
CREATE TABLE sleep_schedule (
    id          INTEGER PRIMARY KEY CHECK (id = 1),
    start_time  TEXT NOT NULL,
    end_time    TEXT NOT NULL,
    updated_at  INTEGER NOT NULL
);
`,
	},
}

const schemaVersionsDDL = `
CREATE TABLE IF NOT EXISTS schema_versions (
    version     INTEGER PRIMARY KEY,
    description TEXT NOT NULL,
    applied_at  INTEGER NOT NULL
)`

// migrate applies every migration newer than the recorded schema version,
// each in its own transaction, and returns the versions it applied.
func (db *DB) migrate() ([]int, error) {
	if _, err := db.Exec(schemaVersionsDDL); err != nil {
		return nil, fmt.Errorf("create schema_versions: %w", err)
	}
	current, err := db.SchemaVersion()
	if err != nil {
		return nil, fmt.Errorf("read schema version: %w", err)
	}

	var applied []int
	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := db.apply(m); err != nil {
			return applied, fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}
		applied = append(applied, m.Version)
	}
	return applied, nil
}

func (db *DB) apply(m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.SQL); err != nil {
		return err
	}
	if _, err := tx.Exec(
		"INSERT INTO schema_versions (version, description, applied_at) VALUES (?, ?, ?)",
		m.Version, m.Description, time.Now().UnixMilli(),
	); err != nil {
		return fmt.Errorf("record: %w", err)
	}
	return tx.Commit()
}

// SchemaVersion returns the highest applied migration, or 0 on a fresh
// database.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
