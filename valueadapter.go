package main

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CollatingSequence names the SQLite collations the engine can apply to TEXT
// columns via -C. Taken from https://www.sqlite.org/datatype3.html#collating_sequences.
type CollatingSequence string

const (
	CollationBinary CollatingSequence = "BINARY"
	CollationNocase CollatingSequence = "NOCASE"
	CollationRtrim  CollatingSequence = "RTRIM"
)

// ValidCollation reports whether name is one of the three recognized collations.
func ValidCollation(name string) bool {
	switch CollatingSequence(strings.ToUpper(name)) {
	case CollationBinary, CollationNocase, CollationRtrim:
		return true
	}
	return false
}

// adaptValue normalizes a value read from the MySQL driver into the Go value
// that should be bound to the SQLite insert statement, per the storage-class
// mapping in the type translator. It never rejects on data content; type
// mismatches are expected to have been prevented upstream by the translator.
// sourceFamily is the MySQL column family (e.g. "INT", "BIT") the value came
// from: the text protocol returns every non-NULL value as an ASCII []byte,
// so adaptBytes needs it to tell an ordinary integer literal like "42" apart
// from a BIT column's raw big-endian byte string.
func adaptValue(val any, sqliteType string, sourceFamily string) (any, error) {
	if val == nil {
		return nil, nil
	}

	switch v := val.(type) {
	case []byte:
		return adaptBytes(v, sqliteType, sourceFamily)
	case string:
		return v, nil
	case time.Time:
		switch sqliteType {
		case "DATE":
			return v.Format("2006-01-02"), nil
		case "TIME":
			return v.Format("15:04:05"), nil
		default:
			return v.Format("2006-01-02 15:04:05"), nil
		}
	default:
		return v, nil
	}
}

// adaptBytes decides, for a raw MySQL byte-string value, whether it should be
// bound as SQLite TEXT or passed through as BLOB, mirroring
// encode_data_for_sqlite's decode-or-Binary fallback.
func adaptBytes(b []byte, sqliteType string, sourceFamily string) (any, error) {
	switch sqliteType {
	case "BLOB":
		return b, nil
	case "INTEGER":
		if sourceFamily == "BIT" {
			return bitLiteralToInt(b), nil
		}
		n, err := strconv.ParseInt(strings.TrimSpace(string(b)), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("adapt integer value %q: %w", b, err)
		}
		return n, nil
	case "DECIMAL":
		d, err := decimal.NewFromString(string(b))
		if err != nil {
			return nil, fmt.Errorf("adapt decimal value %q: %w", b, err)
		}
		return adaptDecimal(d), nil
	default:
		return string(b), nil
	}
}

// adaptDecimal converts a decimal.Decimal into the exact-digit string SQLite
// stores it as, the Go equivalent of adapt_decimal(value) -> str(value).
func adaptDecimal(d decimal.Decimal) string {
	return d.String()
}

// convertDecimal is the readback counterpart used by identity checks and
// tests, the equivalent of convert_decimal(value) -> Decimal(value).
func convertDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// bitLiteralToInt converts a raw MySQL BIT column byte value into its integer
// value, most-significant byte first.
func bitLiteralToInt(b []byte) int64 {
	n := new(big.Int).SetBytes(b)
	return n.Int64()
}

// parseDateLenient parses a SQLite DATE/DATETIME TEXT value read back from
// the destination: ISO-8601 first, then a permissive fallback. Malformed
// values return a DataConversion-kind error naming the offending text.
func parseDateLenient(s string) (time.Time, error) {
	layouts := []string{
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	var lastErr error
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, &EngineError{Kind: DataConversion, Cause: fmt.Errorf("parse date %q: %w", s, lastErr)}
}

// convertTimedelta parses a "%H:%M:%S" SQLite TIME value back into a
// duration, the equivalent of convert_timedelta's pytimeparse2-backed parse.
func convertTimedelta(s string) (time.Duration, error) {
	var h, m, sec int
	n, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec)
	if err != nil || n != 3 {
		return 0, &EngineError{Kind: DataConversion, Cause: fmt.Errorf("parse time %q", s)}
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second, nil
}

// adaptTimedelta formats a duration as "%H:%M:%S", the equivalent of
// adapt_timedelta.
func adaptTimedelta(d time.Duration) string {
	total := int64(d.Seconds())
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
