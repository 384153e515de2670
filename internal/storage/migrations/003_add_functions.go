package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upAddFunctions, downAddFunctions)
}

func upAddFunctions(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS functions (
			project TEXT NOT NULL,
			date TEXT NOT NULL,
			name TEXT NOT NULL,
			value REAL NOT NULL,
			PRIMARY KEY (project, date, name),
			FOREIGN KEY (project, date) REFERENCES days(project, date) ON DELETE CASCADE
		)
	`)
	return err
}

func downAddFunctions(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS functions`)
	return err
}
