package journal

import "database/sql"

var migrations = []migration{
	{
		version: 1,
		up: []string{
			`CREATE TABLE schema_version (
				version INTEGER NOT NULL
			)`,

			`CREATE TABLE batches (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				show TEXT NOT NULL DEFAULT '',
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				undone_at DATETIME
			)`,

			`CREATE TABLE moves (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				batch_id INTEGER NOT NULL REFERENCES batches(id),
				seq INTEGER NOT NULL,
				source_path TEXT NOT NULL,
				dest_path TEXT NOT NULL
			)`,

			`CREATE INDEX idx_moves_batch ON moves(batch_id)`,

			`INSERT INTO schema_version (version) VALUES (1)`,
		},
	},
}

type migration struct {
	version int
	up      []string
}

func (j *Journal) migrate() error {
	return applyMigrations(j.db)
}

// applyMigrations applies any pending schema migrations
func applyMigrations(db *sql.DB) error {
	var currentVersion int
	err := db.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&currentVersion)
	if err != nil {
		// schema_version doesn't exist yet - this is a fresh database
		currentVersion = 0
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}

		for _, stmt := range m.up {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return err
			}
		}

		// Each migration inserts its own schema_version row.

		if err := tx.Commit(); err != nil {
			return err
		}
	}

	return nil
}
