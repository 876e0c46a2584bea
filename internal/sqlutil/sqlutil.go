// Package sqlutil provides SQL text helpers shared by the database and
// schema packages. Identifiers are always quoted before interpolation so
// arbitrary table, column, and index names are safe to use. Raw SQL
// fragments (type names, constraint clauses, value expressions) are the
// caller's responsibility and pass through verbatim.
package sqlutil

import "strings"

// QuoteIdent escapes a SQL identifier by wrapping it in double quotes and
// doubling any embedded double quotes.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteIdents escapes each identifier in names.
func QuoteIdents(names []string) []string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = QuoteIdent(name)
	}
	return quoted
}

// JoinIdents escapes each identifier and joins them with ", ".
func JoinIdents(names []string) string {
	return strings.Join(QuoteIdents(names), ", ")
}
