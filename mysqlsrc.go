package main

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// openMySQLSource opens a MySQL connection configured for introspection and
// streaming: ParseTime so DATE/DATETIME/TIMESTAMP columns arrive as time.Time,
// InterpolateParams to avoid a prepared-statement round trip per row, and a
// fixed UTC location so readback is deterministic.
func openMySQLSource(dsn string) (*sql.DB, error) {
	dsn, err := mysqlDSNWithReadOptions(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, &EngineError{Kind: ConnectionError, Cause: fmt.Errorf("open mysql: %w", err)}
	}
	if err := db.Ping(); err != nil {
		return nil, &EngineError{Kind: ConnectionError, Cause: fmt.Errorf("ping mysql: %w", err)}
	}
	return db, nil
}

// isTransientLossError reports whether err is MySQL's "server has gone away" /
// "lost connection" class, the only condition eligible for the single
// reconnect attempt.
func isTransientLossError(err error) bool {
	var myErr *mysql.MySQLError
	if ok := asMySQLError(err, &myErr); ok {
		switch myErr.Number {
		case 2006, 2013: // CR_SERVER_GONE_ERROR, CR_SERVER_LOST
			return true
		}
	}
	return strings.Contains(err.Error(), "invalid connection") || strings.Contains(err.Error(), "driver: bad connection")
}

func asMySQLError(err error, target **mysql.MySQLError) bool {
	for err != nil {
		if me, ok := err.(*mysql.MySQLError); ok {
			*target = me
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// introspectPlan fills in the ordered TableDescriptor list of a TransferPlan
// by querying INFORMATION_SCHEMA, honoring the three-way table-selection mode
// and --mysql-views-as-tables.
func introspectPlan(db *sql.DB, dbName string, plan *TransferPlan, sink Sink) error {
	baseTables, err := introspectTableNames(db, dbName, "BASE TABLE")
	if err != nil {
		return fmt.Errorf("introspect tables: %w", err)
	}
	baseTables = filterSelectedTables(baseTables, plan)

	var views []string
	if plan.ViewsAsTables {
		views, err = introspectTableNames(db, dbName, "VIEW")
		if err != nil {
			return fmt.Errorf("introspect views: %w", err)
		}
		views = filterSelectedTables(views, plan)
	}

	for _, name := range baseTables {
		td, err := introspectOneTable(db, dbName, name, SourceBaseTable, sink)
		if err != nil {
			return fmt.Errorf("introspect table %s: %w", name, err)
		}
		plan.Tables = append(plan.Tables, *td)
	}
	for _, name := range views {
		td, err := introspectOneTable(db, dbName, name, SourceView, sink)
		if err != nil {
			return fmt.Errorf("introspect view %s: %w", name, err)
		}
		plan.Tables = append(plan.Tables, *td)
	}

	return nil
}

func filterSelectedTables(names []string, plan *TransferPlan) []string {
	switch plan.Selection {
	case SelectAllTables:
		return names
	case SelectIncludeList:
		want := make(map[string]bool, len(plan.IncludeOrExclude))
		for _, n := range plan.IncludeOrExclude {
			want[n] = true
		}
		var out []string
		for _, n := range names {
			if want[n] {
				out = append(out, n)
			}
		}
		return out
	case SelectExcludeList:
		exclude := make(map[string]bool, len(plan.IncludeOrExclude))
		for _, n := range plan.IncludeOrExclude {
			exclude[n] = true
		}
		var out []string
		for _, n := range names {
			if !exclude[n] {
				out = append(out, n)
			}
		}
		return out
	default:
		return names
	}
}

func introspectTableNames(db *sql.DB, dbName, tableType string) ([]string, error) {
	rows, err := db.Query(
		`SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES
		 WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = ?
		 ORDER BY TABLE_NAME`,
		dbName, tableType,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func introspectOneTable(db *sql.DB, dbName, tableName string, kind SourceKind, sink Sink) (*TableDescriptor, error) {
	td := &TableDescriptor{Name: tableName, Kind: kind}

	cols, err := introspectColumns(db, dbName, tableName)
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	td.Columns = cols

	for _, c := range cols {
		if c.Generated && sink != nil {
			sink.Warning(fmt.Sprintf("table %s: column %s is a generated column; data will not be transferred", tableName, c.Name))
		}
	}

	indexes, err := introspectIndexes(db, dbName, tableName)
	if err != nil {
		return nil, fmt.Errorf("indexes: %w", err)
	}
	for _, idx := range indexes {
		if idx.Kind == IndexPrimary {
			pk := idx
			td.PrimaryKey = &pk
			continue
		}
		if idx.Kind == IndexFullText || idx.Kind == IndexSpatial {
			if sink != nil {
				sink.Warning(fmt.Sprintf("table %s: dropping unsupported %s index %q", tableName, indexKindName(idx.Kind), idx.SourceName))
			}
			continue
		}
		td.Indexes = append(td.Indexes, idx)
	}

	fks, err := introspectForeignKeys(db, dbName, tableName)
	if err != nil {
		return nil, fmt.Errorf("foreign keys: %w", err)
	}
	td.ForeignKeys = fks

	if kind == SourceView {
		viewQuery, err := introspectViewDefinition(db, dbName, tableName)
		if err != nil {
			return nil, fmt.Errorf("view definition: %w", err)
		}
		td.ViewQuery = viewQuery
	}

	return td, nil
}

func indexKindName(k IndexKind) string {
	switch k {
	case IndexFullText:
		return "FULLTEXT"
	case IndexSpatial:
		return "SPATIAL"
	default:
		return "unknown"
	}
}

func introspectColumns(db *sql.DB, dbName, tableName string) ([]ColumnDescriptor, error) {
	rows, err := db.Query(
		`SELECT COLUMN_NAME, COLUMN_TYPE, IS_NULLABLE, COLUMN_DEFAULT, EXTRA,
		        CHARACTER_SET_NAME, COLLATION_NAME, ORDINAL_POSITION
		 FROM INFORMATION_SCHEMA.COLUMNS
		 WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		 ORDER BY ORDINAL_POSITION`,
		dbName, tableName,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []ColumnDescriptor
	for rows.Next() {
		var c ColumnDescriptor
		var nullable, extra string
		var dflt, charset, collation sql.NullString
		if err := rows.Scan(&c.Name, &c.ColumnType, &nullable, &dflt, &extra, &charset, &collation, &c.OrdinalPos); err != nil {
			return nil, err
		}
		c.Nullable = nullable == "YES"
		if dflt.Valid {
			c.Default = &dflt.String
		}
		c.Charset = charset.String
		c.Collation = collation.String
		c.AutoIncr = strings.Contains(extra, "auto_increment")
		c.Generated = strings.Contains(extra, "VIRTUAL GENERATED") || strings.Contains(extra, "STORED GENERATED") ||
			strings.Contains(strings.ToUpper(extra), "GENERATED")
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

func introspectIndexes(db *sql.DB, dbName, tableName string) ([]IndexDescriptor, error) {
	rows, err := db.Query(
		`SELECT INDEX_NAME, COLUMN_NAME, NON_UNIQUE, SEQ_IN_INDEX, INDEX_TYPE, SUB_PART
		 FROM INFORMATION_SCHEMA.STATISTICS
		 WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		 ORDER BY INDEX_NAME, SEQ_IN_INDEX`,
		dbName, tableName,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	indexMap := make(map[string]*IndexDescriptor)
	var order []string

	for rows.Next() {
		var idxName, indexType string
		var colName sql.NullString
		var subPart sql.NullInt64
		var nonUnique, seq int
		if err := rows.Scan(&idxName, &colName, &nonUnique, &seq, &indexType, &subPart); err != nil {
			return nil, err
		}

		idx, ok := indexMap[idxName]
		if !ok {
			idx = &IndexDescriptor{SourceName: idxName, Kind: classifyIndex(idxName, nonUnique == 0, indexType)}
			indexMap[idxName] = idx
			order = append(order, idxName)
		}

		if !colName.Valid {
			idx.HasExpression = true
			continue
		}
		idx.Columns = append(idx.Columns, colName.String)
		prefix := 0
		if subPart.Valid {
			prefix = int(subPart.Int64)
		}
		idx.PrefixLens = append(idx.PrefixLens, prefix)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var indexes []IndexDescriptor
	for _, name := range order {
		indexes = append(indexes, *indexMap[name])
	}
	return indexes, nil
}

func classifyIndex(name string, unique bool, indexType string) IndexKind {
	switch strings.ToUpper(indexType) {
	case "FULLTEXT":
		return IndexFullText
	case "SPATIAL":
		return IndexSpatial
	}
	if name == "PRIMARY" {
		return IndexPrimary
	}
	if unique {
		return IndexUnique
	}
	return IndexNonUnique
}

func introspectForeignKeys(db *sql.DB, dbName, tableName string) ([]ForeignKeyDescriptor, error) {
	rows, err := db.Query(
		`SELECT kcu.CONSTRAINT_NAME, kcu.COLUMN_NAME,
		        kcu.REFERENCED_TABLE_NAME, kcu.REFERENCED_COLUMN_NAME,
		        rc.UPDATE_RULE, rc.DELETE_RULE
		 FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
		 JOIN INFORMATION_SCHEMA.REFERENTIAL_CONSTRAINTS rc
		   ON kcu.CONSTRAINT_NAME = rc.CONSTRAINT_NAME
		   AND kcu.TABLE_SCHEMA = rc.CONSTRAINT_SCHEMA
		 WHERE kcu.TABLE_SCHEMA = ? AND kcu.TABLE_NAME = ?
		   AND kcu.REFERENCED_TABLE_NAME IS NOT NULL
		 ORDER BY kcu.CONSTRAINT_NAME, kcu.ORDINAL_POSITION`,
		dbName, tableName,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fkMap := make(map[string]*ForeignKeyDescriptor)
	var order []string

	for rows.Next() {
		var fkName, colName, refTable, refCol, updateRule, deleteRule string
		if err := rows.Scan(&fkName, &colName, &refTable, &refCol, &updateRule, &deleteRule); err != nil {
			return nil, err
		}
		fk, ok := fkMap[fkName]
		if !ok {
			fk = &ForeignKeyDescriptor{Name: fkName, RefTable: refTable, OnUpdate: updateRule, OnDelete: deleteRule}
			fkMap[fkName] = fk
			order = append(order, fkName)
		}
		fk.Columns = append(fk.Columns, colName)
		fk.RefColumns = append(fk.RefColumns, refCol)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var fks []ForeignKeyDescriptor
	for _, name := range order {
		fks = append(fks, *fkMap[name])
	}
	return fks, nil
}

func introspectViewDefinition(db *sql.DB, dbName, viewName string) (string, error) {
	var definition string
	err := db.QueryRow(
		`SELECT VIEW_DEFINITION FROM INFORMATION_SCHEMA.VIEWS
		 WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?`,
		dbName, viewName,
	).Scan(&definition)
	if err != nil {
		return "", err
	}
	return definition, nil
}

// rowCountEstimate is used only for progress-bar sizing; an inaccurate count
// never affects correctness. tableName is backtick-quoted for MySQL, not
// double-quoted as buildTableDDL does for the SQLite side - under MySQL's
// default sql_mode a double-quoted identifier is a string literal, not a
// table name.
func rowCountEstimate(db *sql.DB, tableName string) int64 {
	var n sql.NullInt64
	_ = db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM `%s`", strings.ReplaceAll(tableName, "`", "``"))).Scan(&n)
	if n.Valid {
		return n.Int64
	}
	return 0
}
