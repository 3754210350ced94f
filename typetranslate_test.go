package main

import "testing"

func TestParseColumnType(t *testing.T) {
	cases := []struct {
		in     string
		family string
		unsign bool
		params []string
	}{
		{"int(11) unsigned", "INT", true, []string{"11"}},
		{"decimal(10,2)", "DECIMAL", false, []string{"10", "2"}},
		{"varchar(255)", "VARCHAR", false, []string{"255"}},
		{"bigint", "BIGINT", false, nil},
		{"tinyint(1) unsigned", "TINYINT", true, []string{"1"}},
	}
	for _, c := range cases {
		got, err := parseColumnType(c.in)
		if err != nil {
			t.Fatalf("parseColumnType(%q): %v", c.in, err)
		}
		if got.Family != c.family || got.Unsigned != c.unsign {
			t.Errorf("parseColumnType(%q) = %+v, want family=%s unsigned=%v", c.in, got, c.family, c.unsign)
		}
		if len(got.Params) != len(c.params) {
			t.Errorf("parseColumnType(%q) params = %v, want %v", c.in, got.Params, c.params)
		}
	}
}

func TestTranslateType(t *testing.T) {
	caps := DestCapabilities{JSON1Available: true, StrictTablesAvailable: true}
	plan := &TransferPlan{}

	cases := []struct {
		columnType string
		want       string
	}{
		{"int(11)", "INTEGER"},
		{"tinyint(1)", "INTEGER"},
		{"bigint unsigned", "INTEGER"},
		{"varchar(255)", "TEXT"},
		{"decimal(10,2)", "DECIMAL(10,2)"},
		{"float", "REAL"},
		{"double", "REAL"},
		{"datetime", "DATETIME"},
		{"date", "DATE"},
		{"blob", "BLOB"},
		{"json", "JSON"},
		{"enum('a','b')", "TEXT"},
		{"set('a','b')", "TEXT"},
		{"point", "BLOB"},
		{"bit(1)", "INTEGER"},
		{"bit(32)", "BLOB"},
	}
	for _, c := range cases {
		col := ColumnDescriptor{Name: "col", ColumnType: c.columnType}
		got, err := translateType(col, caps, plan)
		if err != nil {
			t.Fatalf("translateType(%q): %v", c.columnType, err)
		}
		if got != c.want {
			t.Errorf("translateType(%q) = %q, want %q", c.columnType, got, c.want)
		}
	}
}

func TestTranslateType_JSONAsTextWhenUnavailable(t *testing.T) {
	caps := DestCapabilities{JSON1Available: false}
	plan := &TransferPlan{}
	col := ColumnDescriptor{Name: "payload", ColumnType: "json"}
	got, err := translateType(col, caps, plan)
	if err != nil {
		t.Fatalf("translateType: %v", err)
	}
	if got != "TEXT" {
		t.Errorf("translateType(json, no JSON1) = %q, want TEXT", got)
	}
}

func TestTranslateType_StrictDowngradesDateAndDecimal(t *testing.T) {
	caps := DestCapabilities{StrictTablesAvailable: true}
	plan := &TransferPlan{Strict: true}

	col := ColumnDescriptor{Name: "dt", ColumnType: "datetime"}
	got, err := translateType(col, caps, plan)
	if err != nil {
		t.Fatalf("translateType: %v", err)
	}
	if got != "TEXT" {
		t.Errorf("STRICT datetime = %q, want TEXT", got)
	}

	col2 := ColumnDescriptor{Name: "amt", ColumnType: "decimal(10,2)"}
	got2, err := translateType(col2, caps, plan)
	if err != nil {
		t.Fatalf("translateType: %v", err)
	}
	if got2 != "TEXT" {
		t.Errorf("STRICT decimal = %q, want TEXT", got2)
	}
}

func TestTranslateType_UnknownFamilyErrors(t *testing.T) {
	caps := DestCapabilities{}
	plan := &TransferPlan{}
	col := ColumnDescriptor{Name: "weird", ColumnType: "nonsense_type(9)"}
	if _, err := translateType(col, caps, plan); err == nil {
		t.Fatal("expected error for unrecognized column type")
	} else {
		var ee *EngineError
		if ee, _ = err.(*EngineError); ee == nil || ee.Kind != SchemaTranslation {
			t.Errorf("expected SchemaTranslation EngineError, got %v", err)
		}
	}
}

func TestAutoincrementCollapseTarget(t *testing.T) {
	td := TableDescriptor{
		Name: "users",
		Columns: []ColumnDescriptor{
			{Name: "id", ColumnType: "int(11)", AutoIncr: true},
			{Name: "name", ColumnType: "varchar(100)"},
		},
		PrimaryKey: &IndexDescriptor{SourceName: "PRIMARY", Columns: []string{"id"}},
	}
	col, ok := autoincrementCollapseTarget(td)
	if !ok || col != "id" {
		t.Fatalf("autoincrementCollapseTarget() = (%q, %v), want (id, true)", col, ok)
	}
}

func TestAutoincrementCollapseTarget_CompositeKeyNeverCollapses(t *testing.T) {
	td := TableDescriptor{
		Name: "film_actor",
		Columns: []ColumnDescriptor{
			{Name: "actor_id", ColumnType: "int(11)", AutoIncr: true},
			{Name: "film_id", ColumnType: "int(11)"},
		},
		PrimaryKey: &IndexDescriptor{SourceName: "PRIMARY", Columns: []string{"actor_id", "film_id"}},
	}
	if _, ok := autoincrementCollapseTarget(td); ok {
		t.Fatal("expected composite primary key to never collapse")
	}
}
