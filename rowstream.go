package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

const unchunkedFlushSize = 500

// streamTableData moves one table's rows from MySQL to SQLite, per spec
// §4.7: unchunked (single cursor, small fixed-size flush batches) or chunked
// (--chunk N, fetchmany(N)/executemany(N), commit per batch). A single
// reconnect is attempted per table on transient connection loss; a second
// loss in the same table is fatal. Generated columns are never streamed.
func streamTableData(ctx context.Context, mysqlDB, sqliteDB *sql.DB, reopenMySQL func() (*sql.DB, error), td TableDescriptor, sqliteTypes map[string]string, plan *TransferPlan, sink Sink) (mysqlDBOut *sql.DB, err error) {
	mysqlDBOut = mysqlDB

	if td.Kind == SourceView && !plan.ViewsAsTables {
		return mysqlDBOut, nil // materialized as a SQLite VIEW, not populated with INSERTs
	}

	cols := streamableColumns(td)
	if len(cols) == 0 {
		return mysqlDBOut, nil
	}

	selectSQL := buildSelectSQL(td.Name, cols, plan.RowCap)
	if td.Kind == SourceView && plan.ViewsAsTables {
		selectSQL = buildMaterializeAsTableSelectSQL(td.Name, plan.RowCap) // spec §4.5: read a materialized view with SELECT *
	}
	insertSQL := buildInsertSQL(td.Name, cols)

	reconnected := false
	for {
		rowsStreamed, streamErr := runStream(ctx, mysqlDBOut, sqliteDB, selectSQL, insertSQL, cols, sqliteTypes, plan.ChunkSize, td.Name, sink)
		if streamErr == nil {
			if sink != nil {
				sink.TableDone(td.Name, rowsStreamed)
			}
			return mysqlDBOut, nil
		}
		if !isTransientLossError(streamErr) || reconnected {
			return mysqlDBOut, &EngineError{Kind: classifyStreamError(streamErr), Table: td.Name, Row: -1, Cause: streamErr}
		}
		if sink != nil {
			sink.Warning(fmt.Sprintf("table %s: connection to MySQL lost, attempting one reconnect", td.Name))
		}
		reconnected = true
		newDB, reopenErr := reopenMySQL()
		if reopenErr != nil {
			return mysqlDBOut, &EngineError{Kind: TransientLoss, Table: td.Name, Row: -1, Cause: reopenErr}
		}
		mysqlDBOut = newDB
	}
}

func classifyStreamError(err error) Kind {
	msg := err.Error()
	if strings.Contains(msg, "insert into") || strings.Contains(msg, "commit") || strings.Contains(msg, "begin sqlite") {
		return Destination
	}
	return DataConversion
}

func streamableColumns(td TableDescriptor) []ColumnDescriptor {
	var out []ColumnDescriptor
	for _, c := range td.Columns {
		if c.Generated {
			continue
		}
		out = append(out, c)
	}
	return out
}

func buildSelectSQL(table string, cols []ColumnDescriptor, rowCap int64) string {
	var names []string
	for _, c := range cols {
		names = append(names, "`"+strings.ReplaceAll(c.Name, "`", "``")+"`")
	}
	sql := fmt.Sprintf("SELECT %s FROM `%s`", strings.Join(names, ", "), strings.ReplaceAll(table, "`", "``"))
	if rowCap > 0 {
		sql += fmt.Sprintf(" LIMIT %d", rowCap)
	}
	return sql
}

func buildInsertSQL(table string, cols []ColumnDescriptor) string {
	var names []string
	placeholders := make([]string, len(cols))
	for i, c := range cols {
		names = append(names, quoteIdentifier(c.Name))
		placeholders[i] = "?"
	}
	return fmt.Sprintf("INSERT OR IGNORE INTO %s (%s) VALUES (%s)",
		quoteIdentifier(table), strings.Join(names, ", "), strings.Join(placeholders, ", "))
}

func runStream(ctx context.Context, mysqlDB, sqliteDB *sql.DB, selectSQL, insertSQL string, cols []ColumnDescriptor, sqliteTypes map[string]string, chunkSize int, tableName string, sink Sink) (int64, error) {
	rows, err := mysqlDB.QueryContext(ctx, selectSQL)
	if err != nil {
		return 0, fmt.Errorf("select from %s: %w", tableName, err)
	}
	defer rows.Close()

	flushSize := chunkSize
	if flushSize <= 0 {
		flushSize = unchunkedFlushSize
	}

	var total int64
	batch := make([][]any, 0, flushSize)
	scanDest := make([]any, len(cols))
	scanPtrs := make([]any, len(cols))
	for i := range scanDest {
		scanPtrs[i] = &scanDest[i]
	}

	columnFamilies := make([]string, len(cols))
	for i, c := range cols {
		if parsed, err := parseColumnType(c.ColumnType); err == nil {
			columnFamilies[i] = parsed.Family
		}
	}

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		tx, err := sqliteDB.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin sqlite tx: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, insertSQL)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("prepare insert: %w", err)
		}
		for _, row := range batch {
			if _, err := stmt.ExecContext(ctx, row...); err != nil {
				stmt.Close()
				tx.Rollback()
				return fmt.Errorf("insert into %s: %w", tableName, err)
			}
		}
		stmt.Close()
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", tableName, err)
		}
		if sink != nil {
			sink.ChunkCommitted(tableName, int64(len(batch)))
		}
		batch = batch[:0]
		return nil
	}

	for rows.Next() {
		if err := rows.Scan(scanPtrs...); err != nil {
			return total, fmt.Errorf("scan row from %s: %w", tableName, err)
		}
		bound := make([]any, len(cols))
		for i, c := range cols {
			v, err := adaptValue(scanDest[i], sqliteTypes[c.Name], columnFamilies[i])
			if err != nil {
				return total, &EngineError{Kind: DataConversion, Table: tableName, Column: c.Name, Row: total, Cause: err}
			}
			bound[i] = v
		}
		batch = append(batch, bound)
		total++
		if len(batch) >= flushSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if err := rows.Err(); err != nil {
		return total, fmt.Errorf("iterate %s: %w", tableName, err)
	}
	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}
