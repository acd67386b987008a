package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/jdlive/kteval/internal/db"
	"github.com/jdlive/kteval/internal/store"
)

// needsMigration reports whether the sqlite database does not exist yet while
// legacy JSON documents do. Checked before db.Open creates the database file.
func needsMigration(dataDir, sqlitePath string) bool {
	if _, err := os.Stat(sqlitePath); err == nil {
		return false
	}
	for _, name := range []string{"evaluations.json", "submissions.json"} {
		if _, err := os.Stat(filepath.Join(dataDir, name)); err == nil {
			return true
		}
	}
	return false
}

// migrateFromJSON performs a one-time copy of the JSON document collections
// into the freshly created sqlite database. The JSON files are left in place.
func migrateFromJSON(dataDir string, dst *db.SQLiteStore) error {
	src := store.NewFilePersistence(dataDir)
	evals, err := src.LoadEvaluations()
	if err != nil {
		return fmt.Errorf("load evaluations: %w", err)
	}
	subs, err := src.LoadSubmissions()
	if err != nil {
		return fmt.Errorf("load submissions: %w", err)
	}
	log.Printf("first run with sqlite backend, migrating %d evaluations and %d submissions from %s", len(evals), len(subs), dataDir)
	for _, e := range evals {
		if err := dst.ImportEvaluation(e); err != nil {
			return fmt.Errorf("import evaluation: %w", err)
		}
	}
	for _, s := range subs {
		if err := dst.ImportSubmission(s); err != nil {
			return fmt.Errorf("import submission: %w", err)
		}
	}
	log.Printf("data migration completed")
	return nil
}
