package store

import (
	"database/sql"
	"embed"
	"fmt"
	"strings"
)

//go:embed migrations/*.sql
var schemaFS embed.FS

// MigrateUp brings the schema to the latest revision. OpenSQLite calls it
// on every open; the scripts are idempotent.
func MigrateUp(db *sql.DB) error {
	return runScripts(db, ".up.sql")
}

// MigrateDown tears the schema back down, newest revision first.
func MigrateDown(db *sql.DB) error {
	return runScripts(db, ".down.sql")
}

// runScripts executes every embedded migration script with the given
// suffix, each inside its own transaction. Up scripts run in lexical
// order, down scripts in reverse.
func runScripts(db *sql.DB, suffix string) error {
	entries, err := schemaFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	if suffix == ".down.sql" {
		for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
			entries[i], entries[j] = entries[j], entries[i]
		}
	}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, suffix) {
			continue
		}
		script, err := schemaFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin %s: %w", name, err)
		}
		if _, err := tx.Exec(string(script)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", name, err)
		}
	}
	return nil
}
