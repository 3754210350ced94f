package main

import "fmt"

// indexNamer resolves source index names to the globally-unique names SQLite
// requires, per the table-collision prefixing rule in spec §3 and the
// cross-table numeric-suffix dedup rule of supplemented feature #2.
type indexNamer struct {
	tableNames map[string]bool
	emitted    map[string]bool
	prefixAll  bool
}

func newIndexNamer(tableNames []string, prefixAll bool) *indexNamer {
	names := make(map[string]bool, len(tableNames))
	for _, n := range tableNames {
		names[n] = true
	}
	return &indexNamer{tableNames: names, emitted: make(map[string]bool), prefixAll: prefixAll}
}

// resolve returns the emitted index name for one index of one table, given
// its source name (possibly empty for an unnamed/expression index) and the
// columns it covers.
func (n *indexNamer) resolve(table, sourceName string, columns []string) string {
	base := sourceName
	if base == "" {
		base = table + "_" + joinUnderscore(columns)
	} else if n.prefixAll || n.tableNames[base] {
		base = table + "_" + base
	}

	name := base
	suffix := 2
	for n.emitted[name] {
		name = fmt.Sprintf("%s_%d", base, suffix)
		suffix++
	}
	n.emitted[name] = true
	return name
}

func joinUnderscore(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "_"
		}
		out += p
	}
	return out
}
