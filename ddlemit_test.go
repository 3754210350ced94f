package main

import (
	"strings"
	"testing"
)

func TestQuoteIdentifier(t *testing.T) {
	if got := quoteIdentifier(`my"table`); got != `"my""table"` {
		t.Errorf("quoteIdentifier = %q, want %q", got, `"my""table"`)
	}
}

func TestBuildTableDDL_CollapsesAutoIncrementPrimaryKey(t *testing.T) {
	td := TableDescriptor{
		Name: "users",
		Columns: []ColumnDescriptor{
			{Name: "id", ColumnType: "int(11)", AutoIncr: true},
			{Name: "name", ColumnType: "varchar(100)", Nullable: false},
		},
		PrimaryKey: &IndexDescriptor{SourceName: "PRIMARY", Columns: []string{"id"}},
	}
	plan := &TransferPlan{Selection: SelectAllTables, Collation: "BINARY"}
	caps := DestCapabilities{}
	namer := newIndexNamer([]string{"users"}, false)

	ddl, types, err := buildTableDDL(td, caps, plan, namer, nil)
	if err != nil {
		t.Fatalf("buildTableDDL: %v", err)
	}
	if !strings.Contains(ddl.CreateTable, `"id" INTEGER PRIMARY KEY AUTOINCREMENT`) {
		t.Errorf("expected collapsed autoincrement clause, got: %s", ddl.CreateTable)
	}
	if strings.Contains(ddl.CreateTable, "PRIMARY KEY (") {
		t.Errorf("expected no table-level PRIMARY KEY clause after collapse, got: %s", ddl.CreateTable)
	}
	if types["name"] != "TEXT" {
		t.Errorf("types[name] = %q, want TEXT", types["name"])
	}
}

func TestBuildTableDDL_CompositePrimaryKeyNotCollapsed(t *testing.T) {
	td := TableDescriptor{
		Name: "film_actor",
		Columns: []ColumnDescriptor{
			{Name: "actor_id", ColumnType: "int(11)"},
			{Name: "film_id", ColumnType: "int(11)"},
		},
		PrimaryKey: &IndexDescriptor{SourceName: "PRIMARY", Columns: []string{"actor_id", "film_id"}},
	}
	plan := &TransferPlan{Selection: SelectAllTables, Collation: "BINARY"}
	namer := newIndexNamer([]string{"film_actor"}, false)

	ddl, _, err := buildTableDDL(td, DestCapabilities{}, plan, namer, nil)
	if err != nil {
		t.Fatalf("buildTableDDL: %v", err)
	}
	if !strings.Contains(ddl.CreateTable, `PRIMARY KEY ("actor_id", "film_id")`) {
		t.Errorf("expected composite PRIMARY KEY clause, got: %s", ddl.CreateTable)
	}
}

func TestBuildTableDDL_ForeignKeysSuppressedOnTableSubset(t *testing.T) {
	td := TableDescriptor{
		Name: "posts",
		Columns: []ColumnDescriptor{
			{Name: "id", ColumnType: "int(11)", AutoIncr: true},
			{Name: "user_id", ColumnType: "int(11)"},
		},
		PrimaryKey:  &IndexDescriptor{SourceName: "PRIMARY", Columns: []string{"id"}},
		ForeignKeys: []ForeignKeyDescriptor{{Name: "fk_posts_user", Columns: []string{"user_id"}, RefTable: "users", RefColumns: []string{"id"}}},
	}
	plan := &TransferPlan{Selection: SelectIncludeList, IncludeOrExclude: []string{"posts"}, SuppressForeignKeys: true, Collation: "BINARY"}
	namer := newIndexNamer([]string{"posts"}, false)

	ddl, _, err := buildTableDDL(td, DestCapabilities{}, plan, namer, nil)
	if err != nil {
		t.Fatalf("buildTableDDL: %v", err)
	}
	if strings.Contains(ddl.CreateTable, "FOREIGN KEY") {
		t.Errorf("expected no FOREIGN KEY clause for a table subset, got: %s", ddl.CreateTable)
	}
}

func TestBuildTableDDL_StrictAppendsKeyword(t *testing.T) {
	td := TableDescriptor{
		Name:    "t",
		Columns: []ColumnDescriptor{{Name: "x", ColumnType: "int(11)", Nullable: true}},
	}
	plan := &TransferPlan{Selection: SelectAllTables, Strict: true, Collation: "BINARY"}
	caps := DestCapabilities{StrictTablesAvailable: true}
	namer := newIndexNamer([]string{"t"}, false)

	ddl, _, err := buildTableDDL(td, caps, plan, namer, nil)
	if err != nil {
		t.Fatalf("buildTableDDL: %v", err)
	}
	if !strings.HasSuffix(strings.TrimSpace(ddl.CreateTable), ") STRICT;") {
		t.Errorf("expected STRICT suffix, got: %s", ddl.CreateTable)
	}
}

func TestBuildTableDDL_SingleColumnUniqueInlined(t *testing.T) {
	td := TableDescriptor{
		Name:    "users",
		Columns: []ColumnDescriptor{{Name: "email", ColumnType: "varchar(255)"}},
		Indexes: []IndexDescriptor{{SourceName: "idx_email", Columns: []string{"email"}, Kind: IndexUnique}},
	}
	plan := &TransferPlan{Selection: SelectAllTables, Collation: "BINARY"}
	namer := newIndexNamer([]string{"users"}, false)

	ddl, _, err := buildTableDDL(td, DestCapabilities{}, plan, namer, nil)
	if err != nil {
		t.Fatalf("buildTableDDL: %v", err)
	}
	if !strings.Contains(ddl.CreateTable, `UNIQUE ("email")`) {
		t.Errorf("expected inline UNIQUE clause for a single-column unique, got: %s", ddl.CreateTable)
	}
	if len(ddl.CreateIndex) != 0 {
		t.Errorf("expected no CREATE INDEX statements for a single-column unique, got: %v", ddl.CreateIndex)
	}
}

func TestBuildTableDDL_MultiColumnUniqueBecomesCreateIndex(t *testing.T) {
	td := TableDescriptor{
		Name:    "memberships",
		Columns: []ColumnDescriptor{{Name: "org_id", ColumnType: "int(11)"}, {Name: "user_id", ColumnType: "int(11)"}},
		Indexes: []IndexDescriptor{{SourceName: "idx_org_user", Columns: []string{"org_id", "user_id"}, Kind: IndexUnique}},
	}
	plan := &TransferPlan{Selection: SelectAllTables, Collation: "BINARY"}
	namer := newIndexNamer([]string{"memberships"}, false)

	ddl, _, err := buildTableDDL(td, DestCapabilities{}, plan, namer, nil)
	if err != nil {
		t.Fatalf("buildTableDDL: %v", err)
	}
	if strings.Contains(ddl.CreateTable, "UNIQUE (") {
		t.Errorf("expected no inline UNIQUE clause for a multi-column unique, got: %s", ddl.CreateTable)
	}
	if len(ddl.CreateIndex) != 1 || !strings.Contains(ddl.CreateIndex[0], "CREATE UNIQUE INDEX") {
		t.Errorf("expected one CREATE UNIQUE INDEX statement, got: %v", ddl.CreateIndex)
	}
}

func TestBuildIndexDDL_UniqueKeyword(t *testing.T) {
	namer := newIndexNamer([]string{"users"}, false)
	idx := IndexDescriptor{SourceName: "idx_email", Columns: []string{"email"}, Kind: IndexUnique}
	got := buildIndexDDL("users", idx, namer)
	if !strings.Contains(got, "CREATE UNIQUE INDEX") {
		t.Errorf("expected UNIQUE keyword in: %s", got)
	}
}

func TestForeignKeyClause_DefaultsToNoAction(t *testing.T) {
	fk := ForeignKeyDescriptor{Columns: []string{"user_id"}, RefTable: "users", RefColumns: []string{"id"}}
	got := foreignKeyClause(fk)
	if !strings.Contains(got, "ON UPDATE NO ACTION") || !strings.Contains(got, "ON DELETE NO ACTION") {
		t.Errorf("expected NO ACTION defaults, got: %s", got)
	}
}
