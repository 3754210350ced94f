package main

// ColumnDescriptor is a single column as reported by the source catalog.
type ColumnDescriptor struct {
	Name       string
	ColumnType string // full declared type, e.g. "int(11) unsigned", "decimal(10,2)", "enum('a','b')"
	Nullable   bool
	Default    *string // raw source default expression, nil when absent
	AutoIncr   bool
	Charset    string
	Collation  string
	OrdinalPos int
	Generated  bool // MySQL GENERATED ALWAYS AS (...) column; data is never streamed for these
}

// IndexKind classifies an IndexDescriptor.
type IndexKind int

const (
	IndexPrimary IndexKind = iota
	IndexUnique
	IndexNonUnique
	IndexFullText
	IndexSpatial
)

// IndexDescriptor is a MySQL index (may span multiple columns).
type IndexDescriptor struct {
	SourceName    string // empty for an unnamed/primary index; "PRIMARY" denotes the primary key
	Columns       []string
	PrefixLens    []int // parallel to Columns; 0 means no prefix
	Kind          IndexKind
	HasExpression bool // key part not representable as a plain column reference
}

// ForeignKeyDescriptor is a MySQL foreign key constraint.
type ForeignKeyDescriptor struct {
	Name       string
	Columns    []string
	RefTable   string
	RefColumns []string
	OnUpdate   string // RESTRICT, CASCADE, SET NULL, NO ACTION, SET DEFAULT
	OnDelete   string
}

// SourceKind distinguishes base tables from views materialized as tables.
type SourceKind int

const (
	SourceBaseTable SourceKind = iota
	SourceView
)

// TableDescriptor holds the full introspected definition of one source table or view.
type TableDescriptor struct {
	Name        string
	Columns     []ColumnDescriptor
	PrimaryKey  *IndexDescriptor
	Indexes     []IndexDescriptor
	ForeignKeys []ForeignKeyDescriptor
	Kind        SourceKind
	ViewQuery   string // SELECT body, only set when Kind == SourceView
}

// TableSelection is the three-way exclusive table-selection mode resolved at plan validation.
type TableSelection int

const (
	SelectAllTables TableSelection = iota
	SelectIncludeList
	SelectExcludeList
)

// TransferPlan is the fully-resolved, validated set of options driving one run.
type TransferPlan struct {
	Tables          []TableDescriptor
	Selection       TableSelection
	IncludeOrExclude []string // the table names named by -t or -e, per Selection

	ViewsAsTables      bool
	RowCap             int64 // 0 means unlimited
	Collation          string // BINARY, NOCASE, RTRIM
	PrefixIndexNames   bool
	SuppressForeignKeys bool
	SuppressDDL        bool
	SuppressData       bool
	Strict             bool
	ChunkSize          int // 0 means unchunked streaming
	JSONAsText         bool
	Vacuum             bool
	BufferedCursors    bool
}

// EmitsForeignKeys reports whether the plan permits FK clause emission, per the
// "full database only" invariant: any table subset suppresses all FK emission.
func (p *TransferPlan) EmitsForeignKeys() bool {
	if p.SuppressForeignKeys {
		return false
	}
	return p.Selection == SelectAllTables
}
