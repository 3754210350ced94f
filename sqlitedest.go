package main

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// openSQLiteDest opens (creating if missing) the destination SQLite file at
// path, using a single connection: the destination is an exclusive writer
// for the whole run, per the single-threaded/synchronous concurrency model.
func openSQLiteDest(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &EngineError{Kind: Destination, Cause: fmt.Errorf("open sqlite destination %s: %w", path, err)}
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		return nil, &EngineError{Kind: Destination, Cause: fmt.Errorf("open sqlite destination %s: %w", path, err)}
	}
	return db, nil
}

// disableForeignKeys and enableForeignKeys implement the scoped-acquisition
// model of spec §9: foreign-key enforcement is disabled for the whole run on
// entry and restoration is guaranteed on every exit path by the caller's
// defer.
func disableForeignKeys(db *sql.DB) error {
	_, err := db.Exec("PRAGMA foreign_keys = OFF")
	return err
}

func enableForeignKeys(db *sql.DB) error {
	_, err := db.Exec("PRAGMA foreign_keys = ON")
	return err
}

func vacuumDest(db *sql.DB) error {
	_, err := db.Exec("VACUUM")
	return err
}
