package main

import (
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

var (
	charsetIntroducerPattern = regexp.MustCompile(`(?i)^_[a-z0-9]+\s*`)
	numericLiteralPattern    = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	bitLiteralPattern        = regexp.MustCompile(`(?i)^b'([01]+)'$`)
	hexLiteralPattern        = regexp.MustCompile(`(?i)^x'([0-9a-f]+)'$`)
	currentTimeFuncPattern   = regexp.MustCompile(`(?i)^(current_timestamp|now|current_date|current_time)(\(\d*\))?$`)
	parenExprPattern         = regexp.MustCompile(`^\(.*\)$`)
)

// defaultWarningFunc receives the warning text produced when an expression
// default is dropped (rule 6). The orchestrator wires this to the sink.
type defaultWarningFunc func(table, column, message string)

// translateDefault maps a ColumnDescriptor's raw default expression to a
// SQLite-legal DEFAULT clause, applying the seven rules of the default
// translator in order. Returns "" when no clause should be emitted.
func translateDefault(col ColumnDescriptor, sqliteType string, table string, warn defaultWarningFunc) (string, error) {
	if col.Default == nil {
		return "", nil
	}
	raw := strings.TrimSpace(*col.Default)

	// Rule 1: NULL.
	if strings.EqualFold(raw, "NULL") {
		if col.Nullable {
			return "DEFAULT NULL", nil
		}
		return "", nil
	}

	// Rule 4: bit-literal, checked before the generic string-literal rule
	// since b'...' also matches the quoted-string shape.
	if m := bitLiteralPattern.FindStringSubmatch(raw); m != nil {
		n := new(big.Int)
		n.SetString(m[1], 2)
		return fmt.Sprintf("DEFAULT %s", n.String()), nil
	}

	// Extended: hex-literal default for BLOB-affine columns (supplemented
	// feature #3), e.g. x'deadbeef'.
	if m := hexLiteralPattern.FindStringSubmatch(raw); m != nil && sqliteType == "BLOB" {
		return fmt.Sprintf("DEFAULT x'%s'", strings.ToLower(m[1])), nil
	}

	// Rule 2: numeric literal, passed through verbatim.
	if numericLiteralPattern.MatchString(raw) {
		return fmt.Sprintf("DEFAULT %s", raw), nil
	}

	// Rule 5: CURRENT_TIMESTAMP / NOW() / CURRENT_DATE / CURRENT_TIME, with or
	// without parens and fractional-seconds specifier.
	if m := currentTimeFuncPattern.FindStringSubmatch(raw); m != nil {
		return fmt.Sprintf("DEFAULT %s", mapTimeFunc(strings.ToLower(m[1]))), nil
	}

	// Rule 3: string literal, possibly charset-introduced.
	stripped := charsetIntroducerPattern.ReplaceAllString(raw, "")
	if strings.HasPrefix(stripped, "'") && strings.HasSuffix(stripped, "'") {
		return fmt.Sprintf("DEFAULT %s", normalizeStringLiteral(stripped)), nil
	}

	// Rule 6: parenthesized expression default (MySQL 8 "expression default").
	if parenExprPattern.MatchString(raw) {
		if warn != nil {
			warn(table, col.Name, fmt.Sprintf("dropped unrepresentable expression default %q", raw))
		}
		return "", nil
	}

	// Rule 7: opaque text literal, single-quoted.
	return fmt.Sprintf("DEFAULT '%s'", escapeSingleQuotes(raw)), nil
}

func mapTimeFunc(lower string) string {
	switch lower {
	case "now":
		return "CURRENT_TIMESTAMP"
	case "current_timestamp":
		return "CURRENT_TIMESTAMP"
	case "current_date":
		return "CURRENT_DATE"
	case "current_time":
		return "CURRENT_TIME"
	default:
		return "CURRENT_TIMESTAMP"
	}
}

func normalizeStringLiteral(quoted string) string {
	inner := quoted[1 : len(quoted)-1]
	inner = strings.ReplaceAll(inner, `\'`, "'")
	return "'" + escapeSingleQuotes(inner) + "'"
}

func escapeSingleQuotes(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// parseBitLiteral converts a raw b'...' token (without surrounding quotes)
// into its integer value, used by the default translator and by BIT-typed
// default columns encountered without the quote wrapper.
func parseBitLiteral(bits string) (int64, error) {
	n, err := strconv.ParseInt(bits, 2, 64)
	if err != nil {
		return 0, fmt.Errorf("parse bit literal %q: %w", bits, err)
	}
	return n, nil
}
