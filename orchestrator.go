package main

import (
	"context"
	"database/sql"
	"fmt"
)

// tableState is the per-table state machine of spec §4.8:
// Pending -> DDL-Created -> Data-Streaming -> Data-Done | Failed.
type tableState int

const (
	statePending tableState = iota
	stateDDLCreated
	stateDataStreaming
	stateDataDone
	stateFailed
)

// RunConfig is the fully-resolved connection and behavior configuration for
// one engine run, separate from TransferPlan so the plan stays a pure data
// descriptor the DDL emitter and streamer consume.
type RunConfig struct {
	MySQLDSN     string
	MySQLDBName  string
	SQLitePath   string
	Plan         TransferPlan
	Sink         Sink
}

// Run drives the full pipeline: probe -> connect -> introspect -> (per table:
// DDL -> data) -> optional VACUUM, per spec §4.8. Foreign-key enforcement is
// disabled on entry and its restoration is guaranteed on every exit path by
// the deferred enableForeignKeys call, regardless of how Run returns.
func Run(ctx context.Context, cfg RunConfig) error {
	mysqlDB, err := openMySQLSource(cfg.MySQLDSN)
	if err != nil {
		return err
	}
	defer mysqlDB.Close()

	sqliteDB, err := openSQLiteDest(cfg.SQLitePath)
	if err != nil {
		return err
	}
	defer sqliteDB.Close()

	if err := disableForeignKeys(sqliteDB); err != nil {
		return &EngineError{Kind: Destination, Cause: fmt.Errorf("disable foreign keys: %w", err)}
	}
	defer func() {
		if reErr := enableForeignKeys(sqliteDB); reErr != nil && cfg.Sink != nil {
			cfg.Sink.Error(fmt.Sprintf("failed to re-enable foreign keys: %v", reErr))
		}
	}()

	caps, err := probeDestCapabilities(sqliteDB)
	if err != nil {
		return err
	}
	if cfg.Plan.Strict && !caps.StrictTablesAvailable && cfg.Sink != nil {
		cfg.Sink.Warning("destination SQLite predates 3.37; STRICT tables unavailable, proceeding without STRICT")
	}

	plan := cfg.Plan
	if !plan.SuppressDDL || !plan.SuppressData {
		if err := introspectPlan(mysqlDB, cfg.MySQLDBName, &plan, cfg.Sink); err != nil {
			return err
		}
	}
	if !plan.EmitsForeignKeys() && cfg.Sink != nil {
		cfg.Sink.Warning("table subset selected: foreign key emission suppressed for all tables")
	}

	tableNames := make([]string, len(plan.Tables))
	for i, t := range plan.Tables {
		tableNames[i] = t.Name
	}
	namer := newIndexNamer(tableNames, plan.PrefixIndexNames)

	warn := func(table, column, message string) {
		if cfg.Sink != nil {
			cfg.Sink.Warning(fmt.Sprintf("table %s, column %s: %s", table, column, message))
		}
	}

	currentMySQLDB := mysqlDB
	for _, td := range plan.Tables {
		sqliteTypes, err := runTableDDLPhase(sqliteDB, td, caps, &plan, namer, warn)
		if err != nil {
			return err // Pending -> Failed
		}
		// Pending -> DDL-Created

		if plan.SuppressData {
			continue // DDL-Created -> Data-Done, no rows requested
		}

		if cfg.Sink != nil {
			cfg.Sink.TableStarted(td.Name, rowCountEstimate(currentMySQLDB, td.Name))
		}

		reopen := func() (*sql.DB, error) {
			newDB, err := openMySQLSource(cfg.MySQLDSN)
			if err != nil {
				return nil, err
			}
			_ = currentMySQLDB.Close()
			return newDB, nil
		}

		// DDL-Created -> Data-Streaming
		newDB, err := streamTableData(ctx, currentMySQLDB, sqliteDB, reopen, td, sqliteTypes, &plan, cfg.Sink)
		currentMySQLDB = newDB
		if err != nil {
			return err // Data-Streaming -> Failed
		}
		// Data-Streaming -> Data-Done
	}

	if plan.Vacuum {
		if err := vacuumDest(sqliteDB); err != nil {
			return &EngineError{Kind: Destination, Cause: fmt.Errorf("vacuum: %w", err)}
		}
	}

	return nil
}

func runTableDDLPhase(sqliteDB *sql.DB, td TableDescriptor, caps DestCapabilities, plan *TransferPlan, namer *indexNamer, warn defaultWarningFunc) (map[string]string, error) {
	if plan.SuppressDDL {
		return estimateSQLiteTypes(td, caps, plan), nil
	}

	if td.Kind == SourceView && !plan.ViewsAsTables {
		viewSQL := buildCreateViewSQL(td.Name, td.ViewQuery)
		if _, err := sqliteDB.Exec(viewSQL); err != nil {
			return nil, &EngineError{Kind: SchemaTranslation, Table: td.Name, Row: -1, Cause: fmt.Errorf("create view: %w", err)}
		}
		return nil, nil
	}

	ddl, sqliteTypes, err := buildTableDDL(td, caps, plan, namer, warn)
	if err != nil {
		return nil, err
	}
	if _, err := sqliteDB.Exec(ddl.CreateTable); err != nil {
		return nil, &EngineError{Kind: SchemaTranslation, Table: td.Name, Row: -1, Cause: fmt.Errorf("create table: %w", err)}
	}
	for _, idxSQL := range ddl.CreateIndex {
		if _, err := sqliteDB.Exec(idxSQL); err != nil {
			return nil, &EngineError{Kind: SchemaTranslation, Table: td.Name, Row: -1, Cause: fmt.Errorf("create index: %w", err)}
		}
	}
	return sqliteTypes, nil
}

// estimateSQLiteTypes recomputes the column->type map without emitting DDL,
// used when --without-tables is set but data still needs to be streamed.
func estimateSQLiteTypes(td TableDescriptor, caps DestCapabilities, plan *TransferPlan) map[string]string {
	out := make(map[string]string, len(td.Columns))
	for _, col := range td.Columns {
		if t, err := translateType(col, caps, plan); err == nil {
			out[col.Name] = t
		}
	}
	return out
}
