package main

import (
	"fmt"
	"strings"
)

// quoteIdentifier double-quotes a SQLite identifier, escaping internal
// double-quotes, per spec §4.6.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// emittedDDL is the DDL emitter's output for one table: exactly one
// CREATE TABLE statement followed by zero or more CREATE INDEX statements.
type emittedDDL struct {
	CreateTable string
	CreateIndex []string
}

// buildTableDDL composes the CREATE TABLE / CREATE INDEX statements for one
// table, applying the type and default translators and the naming policy,
// per spec §4.6's ordering rules.
func buildTableDDL(td TableDescriptor, caps DestCapabilities, plan *TransferPlan, namer *indexNamer, warn defaultWarningFunc) (emittedDDL, map[string]string, error) {
	var out emittedDDL
	sqliteTypes := make(map[string]string, len(td.Columns))

	collapsedCol, collapsible := autoincrementCollapseTarget(td)

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (", quoteIdentifier(td.Name))

	var colClauses []string
	for _, col := range td.Columns {
		sqliteType, err := translateType(col, caps, plan)
		if err != nil {
			return out, nil, err
		}
		sqliteTypes[col.Name] = sqliteType

		if collapsible && col.Name == collapsedCol {
			colClauses = append(colClauses, fmt.Sprintf("%s INTEGER PRIMARY KEY AUTOINCREMENT", quoteIdentifier(col.Name)))
			continue
		}

		notnull := "NULL"
		if !col.Nullable {
			notnull = "NOT NULL"
		}
		def, err := translateDefault(col, sqliteType, td.Name, warn)
		if err != nil {
			return out, nil, err
		}
		collate := collationClause(sqliteType, plan.Collation)

		parts := []string{quoteIdentifier(col.Name), sqliteType, notnull}
		if def != "" {
			parts = append(parts, def)
		}
		if collate != "" {
			parts = append(parts, collate)
		}
		colClauses = append(colClauses, strings.Join(parts, " "))
	}

	if td.PrimaryKey != nil && !collapsible {
		var quoted []string
		for _, c := range td.PrimaryKey.Columns {
			quoted = append(quoted, quoteIdentifier(c))
		}
		if len(quoted) > 0 {
			colClauses = append(colClauses, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(quoted, ", ")))
		}
	}

	for _, idx := range td.Indexes {
		if len(idx.Columns) == 1 && idx.Kind == IndexUnique {
			var quoted []string
			for _, c := range idx.Columns {
				quoted = append(quoted, quoteIdentifier(c))
			}
			colClauses = append(colClauses, fmt.Sprintf("UNIQUE (%s)", strings.Join(quoted, ", ")))
		}
	}

	if plan.EmitsForeignKeys() {
		for _, fk := range td.ForeignKeys {
			colClauses = append(colClauses, foreignKeyClause(fk))
		}
	}

	b.WriteString("\n\t")
	b.WriteString(strings.Join(colClauses, ",\n\t"))
	b.WriteString("\n)")
	if plan.Strict && caps.StrictTablesAvailable {
		b.WriteString(" STRICT")
	}
	b.WriteString(";")
	out.CreateTable = b.String()

	for _, idx := range td.Indexes {
		if len(idx.Columns) > 1 && idx.Kind == IndexUnique {
			out.CreateIndex = append(out.CreateIndex, buildIndexDDL(td.Name, idx, namer))
			continue
		}
		if idx.Kind == IndexNonUnique {
			out.CreateIndex = append(out.CreateIndex, buildIndexDDL(td.Name, idx, namer))
		}
	}

	return out, sqliteTypes, nil
}

func buildIndexDDL(table string, idx IndexDescriptor, namer *indexNamer) string {
	name := namer.resolve(table, idx.SourceName, idx.Columns)
	var quoted []string
	for _, c := range idx.Columns {
		quoted = append(quoted, quoteIdentifier(c))
	}
	uniqueKw := ""
	if idx.Kind == IndexUnique {
		uniqueKw = "UNIQUE "
	}
	return fmt.Sprintf("CREATE %sINDEX IF NOT EXISTS %s ON %s (%s);",
		uniqueKw, quoteIdentifier(name), quoteIdentifier(table), strings.Join(quoted, ", "))
}

func foreignKeyClause(fk ForeignKeyDescriptor) string {
	var local, ref []string
	for _, c := range fk.Columns {
		local = append(local, quoteIdentifier(c))
	}
	for _, c := range fk.RefColumns {
		ref = append(ref, quoteIdentifier(c))
	}
	onUpdate := normalizeFKAction(fk.OnUpdate)
	onDelete := normalizeFKAction(fk.OnDelete)
	return fmt.Sprintf("FOREIGN KEY(%s) REFERENCES %s (%s) ON UPDATE %s ON DELETE %s",
		strings.Join(local, ", "), quoteIdentifier(fk.RefTable), strings.Join(ref, ", "), onUpdate, onDelete)
}

func normalizeFKAction(action string) string {
	if action == "" {
		return "NO ACTION"
	}
	return strings.ToUpper(action)
}

// autoincrementCollapseTarget implements the collapse invariant in spec §3:
// a single-column integer-affine primary key marked auto_increment collapses
// into INTEGER PRIMARY KEY AUTOINCREMENT, dropping the table-level PRIMARY
// KEY(...) clause for that column. Composite primary keys are never collapsed.
func autoincrementCollapseTarget(td TableDescriptor) (string, bool) {
	if td.PrimaryKey == nil || len(td.PrimaryKey.Columns) != 1 {
		return "", false
	}
	colName := td.PrimaryKey.Columns[0]
	for _, c := range td.Columns {
		if c.Name == colName {
			if !c.AutoIncr {
				return "", false
			}
			parsed, err := parseColumnType(c.ColumnType)
			if err != nil {
				return "", false
			}
			return colName, integerFamilies[parsed.Family]
		}
	}
	return "", false
}
