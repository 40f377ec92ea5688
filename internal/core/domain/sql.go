package domain

import "strings"

// QuoteIdent quotes a SQL identifier so names containing reserved words,
// punctuation or quotes are safe inside synthesized DDL. SQLite does not
// accept parameter placeholders for identifiers, so quoting is the mechanism.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteLiteral quotes a SQL string literal, doubling embedded single quotes.
func QuoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
