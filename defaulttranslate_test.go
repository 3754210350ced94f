package main

import "testing"

func TestTranslateDefault(t *testing.T) {
	cases := []struct {
		name       string
		raw        string
		sqliteType string
		nullable   bool
		want       string
	}{
		{"null on nullable column", "NULL", "TEXT", true, "DEFAULT NULL"},
		{"numeric literal", "42", "INTEGER", false, "DEFAULT 42"},
		{"negative numeric literal", "-3.5", "REAL", false, "DEFAULT -3.5"},
		{"current_timestamp", "CURRENT_TIMESTAMP", "DATETIME", false, "DEFAULT CURRENT_TIMESTAMP"},
		{"now with precision", "now(3)", "DATETIME", false, "DEFAULT CURRENT_TIMESTAMP"},
		{"current_date", "CURRENT_DATE", "DATE", false, "DEFAULT CURRENT_DATE"},
		{"bit literal", "b'101'", "INTEGER", false, "DEFAULT 5"},
		{"opaque text literal", "hello", "TEXT", false, "DEFAULT 'hello'"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			raw := c.raw
			col := ColumnDescriptor{Name: "col", Default: &raw, Nullable: c.nullable}
			got, err := translateDefault(col, c.sqliteType, "t", nil)
			if err != nil {
				t.Fatalf("translateDefault: %v", err)
			}
			if got != c.want {
				t.Errorf("translateDefault(%q) = %q, want %q", c.raw, got, c.want)
			}
		})
	}
}

func TestTranslateDefault_NullOnNotNullColumnIsDropped(t *testing.T) {
	raw := "NULL"
	col := ColumnDescriptor{Name: "col", Default: &raw, Nullable: false}
	got, err := translateDefault(col, "TEXT", "t", nil)
	if err != nil {
		t.Fatalf("translateDefault: %v", err)
	}
	if got != "" {
		t.Errorf("translateDefault(NULL on NOT NULL col) = %q, want empty", got)
	}
}

func TestTranslateDefault_CharsetIntroducedStringLiteral(t *testing.T) {
	raw := "_utf8mb4'hello'"
	col := ColumnDescriptor{Name: "col", Default: &raw, Nullable: false}
	got, err := translateDefault(col, "TEXT", "t", nil)
	if err != nil {
		t.Fatalf("translateDefault: %v", err)
	}
	if got != "DEFAULT 'hello'" {
		t.Errorf("translateDefault(charset-introduced) = %q, want DEFAULT 'hello'", got)
	}
}

func TestTranslateDefault_HexLiteralForBLOB(t *testing.T) {
	raw := "x'deadbeef'"
	col := ColumnDescriptor{Name: "payload", Default: &raw, Nullable: false}
	got, err := translateDefault(col, "BLOB", "t", nil)
	if err != nil {
		t.Fatalf("translateDefault: %v", err)
	}
	if got != "DEFAULT x'deadbeef'" {
		t.Errorf("translateDefault(hex literal) = %q, want DEFAULT x'deadbeef'", got)
	}
}

func TestTranslateDefault_ParenExpressionDroppedWithWarning(t *testing.T) {
	raw := "(`a` + `b`)"
	col := ColumnDescriptor{Name: "computed", Default: &raw, Nullable: true}
	var warned string
	warn := func(table, column, message string) { warned = message }
	got, err := translateDefault(col, "INTEGER", "mytable", warn)
	if err != nil {
		t.Fatalf("translateDefault: %v", err)
	}
	if got != "" {
		t.Errorf("translateDefault(paren expr) = %q, want empty", got)
	}
	if warned == "" {
		t.Error("expected a warning for dropped expression default")
	}
}

func TestTranslateDefault_NilDefaultReturnsEmpty(t *testing.T) {
	col := ColumnDescriptor{Name: "col", Default: nil}
	got, err := translateDefault(col, "TEXT", "t", nil)
	if err != nil {
		t.Fatalf("translateDefault: %v", err)
	}
	if got != "" {
		t.Errorf("translateDefault(nil default) = %q, want empty", got)
	}
}

func TestParseBitLiteral(t *testing.T) {
	n, err := parseBitLiteral("101")
	if err != nil {
		t.Fatalf("parseBitLiteral: %v", err)
	}
	if n != 5 {
		t.Errorf("parseBitLiteral(101) = %d, want 5", n)
	}
}
