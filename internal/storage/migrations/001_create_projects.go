package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateProjects, downCreateProjects)
}

func upCreateProjects(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS projects (
			name TEXT PRIMARY KEY,
			path TEXT NOT NULL,
			saved_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS notes (
			project TEXT NOT NULL REFERENCES projects(name) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			id TEXT NOT NULL,
			text TEXT NOT NULL,
			created_at TEXT NOT NULL,
			PRIMARY KEY (project, seq)
		);

		CREATE TABLE IF NOT EXISTS days (
			project TEXT NOT NULL REFERENCES projects(name) ON DELETE CASCADE,
			date TEXT NOT NULL,
			PRIMARY KEY (project, date)
		);

		CREATE TABLE IF NOT EXISTS events (
			project TEXT NOT NULL,
			date TEXT NOT NULL,
			seq INTEGER NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			what TEXT NOT NULL,
			tags TEXT NOT NULL DEFAULT '[]',
			PRIMARY KEY (project, date, seq),
			FOREIGN KEY (project, date) REFERENCES days(project, date) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_events_what ON events(project, what);

		CREATE TABLE IF NOT EXISTS silent_events (
			project TEXT NOT NULL REFERENCES projects(name) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			date TEXT NOT NULL,
			at_time TEXT NOT NULL,
			what TEXT NOT NULL,
			tags TEXT NOT NULL DEFAULT '[]',
			PRIMARY KEY (project, seq)
		);
	`)
	return err
}

func downCreateProjects(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		DROP TABLE IF EXISTS silent_events;
		DROP TABLE IF EXISTS events;
		DROP TABLE IF EXISTS days;
		DROP TABLE IF EXISTS notes;
		DROP TABLE IF EXISTS projects;
	`)
	return err
}
