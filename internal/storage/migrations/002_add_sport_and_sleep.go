package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upAddSportAndSleep, downAddSportAndSleep)
}

func upAddSportAndSleep(ctx context.Context, tx *sql.Tx) error {
	// Check if column already exists (idempotent)
	var count int
	err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM pragma_table_info('days') WHERE name='sleep_start'
	`).Scan(&count)
	if err != nil {
		return err
	}
	if count == 0 {
		queries := []string{
			`ALTER TABLE days ADD COLUMN sleep_start TEXT`,
			`ALTER TABLE days ADD COLUMN sleep_end TEXT`,
			`ALTER TABLE days ADD COLUMN sleep_phases TEXT NOT NULL DEFAULT ''`,
		}
		for _, q := range queries {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				return err
			}
		}
	}

	// payload holds the kind-specific JSON record
	_, err = tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS sport (
			project TEXT NOT NULL,
			date TEXT NOT NULL,
			kind TEXT NOT NULL,
			seq INTEGER NOT NULL,
			payload TEXT NOT NULL,
			PRIMARY KEY (project, date, kind, seq),
			FOREIGN KEY (project, date) REFERENCES days(project, date) ON DELETE CASCADE
		)
	`)
	return err
}

func downAddSportAndSleep(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS sport`)
	return err
}
