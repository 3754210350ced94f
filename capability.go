package main

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// DestCapabilities records what the destination SQLite build supports. It is a
// pure function of the connection, computed once by the orchestrator before
// any DDL is emitted.
type DestCapabilities struct {
	JSON1Available        bool
	StrictTablesAvailable bool
	sqliteVersion         string
}

// probeDestCapabilities inspects PRAGMA compile_options and the library version,
// mirroring the original project's _check_sqlite_json1_extension_enabled check.
func probeDestCapabilities(db *sql.DB) (DestCapabilities, error) {
	var caps DestCapabilities

	rows, err := db.Query("PRAGMA compile_options")
	if err != nil {
		return caps, fmt.Errorf("probe sqlite compile options: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var opt string
		if err := rows.Scan(&opt); err != nil {
			return caps, fmt.Errorf("scan compile option: %w", err)
		}
		if strings.Contains(strings.ToUpper(opt), "ENABLE_JSON1") {
			caps.JSON1Available = true
		}
	}
	if err := rows.Err(); err != nil {
		return caps, fmt.Errorf("iterate compile options: %w", err)
	}

	var version string
	if err := db.QueryRow("SELECT sqlite_version()").Scan(&version); err != nil {
		return caps, fmt.Errorf("query sqlite_version: %w", err)
	}
	caps.sqliteVersion = version
	caps.StrictTablesAvailable = versionAtLeast(version, 3, 37)

	return caps, nil
}

// versionAtLeast compares a dotted "X.Y.Z" SQLite version string against major.minor.
func versionAtLeast(version string, wantMajor, wantMinor int) bool {
	parts := strings.SplitN(version, ".", 3)
	if len(parts) < 2 {
		return false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return false
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return false
	}
	if major != wantMajor {
		return major > wantMajor
	}
	return minor >= wantMinor
}
