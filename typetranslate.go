package main

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	columnFamilyPattern = regexp.MustCompile(`^[^(]+`)
	columnParamsPattern = regexp.MustCompile(`\(([^)]*)\)`)
)

// parsedColumnType is the decomposed form of a MySQL declared-type string
// such as "decimal(10,2) unsigned" or "bit(4)".
type parsedColumnType struct {
	Family   string // upper-cased, e.g. "DECIMAL", "INT", "BIT"
	Unsigned bool
	Params   []string // raw comma-split parenthesized parameters, e.g. ["10", "2"]
}

func parseColumnType(columnType string) (parsedColumnType, error) {
	trimmed := strings.TrimSpace(columnType)
	match := columnFamilyPattern.FindString(trimmed)
	if match == "" {
		return parsedColumnType{}, fmt.Errorf("%q is not a valid column type", columnType)
	}
	family := strings.ToUpper(strings.TrimSpace(match))

	unsigned := false
	if strings.Contains(strings.ToUpper(trimmed), "UNSIGNED") {
		unsigned = true
		family = strings.TrimSpace(strings.TrimSuffix(family, " UNSIGNED"))
	}

	var params []string
	if m := columnParamsPattern.FindStringSubmatch(trimmed); m != nil && m[1] != "" {
		for _, p := range strings.Split(m[1], ",") {
			params = append(params, strings.TrimSpace(p))
		}
	}

	return parsedColumnType{Family: family, Unsigned: unsigned, Params: params}, nil
}

// integerFamilies are the MySQL integer type families, per spec §4.3 row 1,
// mapped unconditionally (signed or unsigned) to SQLite INTEGER.
var integerFamilies = map[string]bool{
	"TINYINT": true, "SMALLINT": true, "MEDIUMINT": true,
	"INT": true, "INTEGER": true, "BIGINT": true, "YEAR": true,
}

// translateType maps a ColumnDescriptor's declared type to a SQLite column
// type string, per the authoritative mapping table. Unknown types are a
// SchemaTranslation error naming the column (testable property 1).
func translateType(col ColumnDescriptor, caps DestCapabilities, plan *TransferPlan) (string, error) {
	parsed, err := parseColumnType(col.ColumnType)
	if err != nil {
		return "", &EngineError{Kind: SchemaTranslation, Column: col.Name, Cause: err}
	}

	sqliteType, err := baseSQLiteType(parsed, caps, plan)
	if err != nil {
		return "", &EngineError{Kind: SchemaTranslation, Column: col.Name, Cause: err}
	}

	if plan.Strict && caps.StrictTablesAvailable {
		sqliteType = downgradeForStrict(sqliteType)
	}
	return sqliteType, nil
}

func baseSQLiteType(parsed parsedColumnType, caps DestCapabilities, plan *TransferPlan) (string, error) {
	switch {
	case integerFamilies[parsed.Family]:
		return "INTEGER", nil
	case parsed.Family == "BIT":
		size := 1
		if len(parsed.Params) == 1 {
			if n, err := strconv.Atoi(parsed.Params[0]); err == nil {
				size = n
			}
		}
		if size <= 8 {
			return "INTEGER", nil
		}
		return "BLOB", nil
	case parsed.Family == "FLOAT" || parsed.Family == "DOUBLE" || parsed.Family == "REAL":
		return "REAL", nil
	case parsed.Family == "DECIMAL" || parsed.Family == "NUMERIC" || parsed.Family == "FIXED":
		if len(parsed.Params) == 2 {
			return fmt.Sprintf("DECIMAL(%s,%s)", parsed.Params[0], parsed.Params[1]), nil
		}
		return "DECIMAL", nil
	case parsed.Family == "CHAR" || parsed.Family == "VARCHAR" || parsed.Family == "TINYTEXT" ||
		parsed.Family == "TEXT" || parsed.Family == "MEDIUMTEXT" || parsed.Family == "LONGTEXT" ||
		parsed.Family == "ENUM" || parsed.Family == "SET":
		return "TEXT", nil
	case parsed.Family == "DATE":
		return "DATE", nil
	case parsed.Family == "DATETIME" || parsed.Family == "TIMESTAMP":
		return "DATETIME", nil
	case parsed.Family == "TIME":
		return "TIME", nil
	case parsed.Family == "BINARY" || parsed.Family == "VARBINARY" || parsed.Family == "TINYBLOB" ||
		parsed.Family == "BLOB" || parsed.Family == "MEDIUMBLOB" || parsed.Family == "LONGBLOB":
		return "BLOB", nil
	case parsed.Family == "JSON":
		if caps.JSON1Available && !plan.JSONAsText {
			return "JSON", nil
		}
		return "TEXT", nil
	case isSpatialFamily(parsed.Family):
		return "BLOB", nil
	default:
		return "", fmt.Errorf("%q is not a recognized column type", parsed.Family)
	}
}

func isSpatialFamily(family string) bool {
	switch family {
	case "GEOMETRY", "POINT", "LINESTRING", "POLYGON", "MULTIPOINT",
		"MULTILINESTRING", "MULTIPOLYGON", "GEOMETRYCOLLECTION":
		return true
	}
	return false
}

// downgradeForStrict narrows a type to the five STRICT-compatible storage
// classes (INTEGER, REAL, TEXT, BLOB, ANY) per spec §4.3.
func downgradeForStrict(sqliteType string) string {
	switch {
	case sqliteType == "DATE", sqliteType == "DATETIME", sqliteType == "TIME", sqliteType == "JSON":
		return "TEXT"
	case strings.HasPrefix(sqliteType, "DECIMAL"):
		return "TEXT"
	default:
		return sqliteType
	}
}

// isTextAffine reports whether a translated SQLite type takes a COLLATE clause.
func isTextAffine(sqliteType string) bool {
	return sqliteType == "TEXT"
}

// collationClause returns the COLLATE clause to append to a TEXT-affine
// column, empty for the SQLite default (BINARY) and for non-text types.
func collationClause(sqliteType string, collation string) string {
	if !isTextAffine(sqliteType) {
		return ""
	}
	c := CollatingSequence(strings.ToUpper(collation))
	if c == "" || c == CollationBinary {
		return ""
	}
	return fmt.Sprintf("COLLATE %s", c)
}
