// Package sqlite persists plan runs, their decoded tasks, and unmet demand
// using modernc.org/sqlite — a pure-Go driver, so the binary stays
// cgo-free. Schema changes ship as ordered, idempotent migration
// statements rather than a migration framework.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a *sql.DB opened against one SQLite file.
type DB struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and applies
// every pending migration.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB.SetMaxOpenConns(1) // modernc.org/sqlite serializes writers anyway

	db := &DB{db: sqlDB}
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return db, nil
}

// Close releases the underlying connection.
func (db *DB) Close() error {
	return db.db.Close()
}

func (db *DB) migrate() error {
	for _, stmt := range PlanMigrations() {
		if _, err := db.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec migration %q: %w", stmt, err)
		}
	}
	return nil
}

// PlanMigrations returns the schema migration statements for plan
// persistence. Each string is one SQL statement, safe to re-run.
func PlanMigrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS plan_runs (
			id           TEXT PRIMARY KEY,
			status       TEXT NOT NULL DEFAULT 'PENDING',
			request_json TEXT NOT NULL,
			score        REAL,
			error        TEXT,
			created_at   TEXT NOT NULL DEFAULT (datetime('now')),
			completed_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_plan_runs_status ON plan_runs(status)`,

		`CREATE TABLE IF NOT EXISTS plan_tasks (
			plan_id         TEXT NOT NULL,
			seq             INTEGER NOT NULL,
			day             INTEGER NOT NULL,
			machine_id      TEXT NOT NULL,
			machine_name    TEXT NOT NULL,
			sequence_in_day INTEGER NOT NULL,
			task_type       TEXT NOT NULL,
			used_hours      REAL NOT NULL,
			start_hour      REAL NOT NULL,
			end_hour        REAL NOT NULL,
			utilization     REAL NOT NULL,
			mold_id         TEXT,
			component_id    TEXT,
			component_name  TEXT,
			color           TEXT,
			produced_qty    INTEGER,
			from_mold_id    TEXT,
			to_mold_id      TEXT,
			from_color      TEXT,
			to_color        TEXT,
			PRIMARY KEY (plan_id, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_plan_tasks_plan ON plan_tasks(plan_id, day, machine_id)`,

		`CREATE TABLE IF NOT EXISTS plan_unmet (
			plan_id      TEXT NOT NULL,
			component_id TEXT NOT NULL,
			quantity     INTEGER NOT NULL,
			PRIMARY KEY (plan_id, component_id)
		)`,
	}
}
