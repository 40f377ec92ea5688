package domain

import (
	"fmt"
	"strings"
)

// RowImageExpr builds a json_object(...) expression serializing the row
// visible through ref. Keys are the column names in schema order; values are
// hex-encoded when the stored value is a blob, since JSON text cannot carry
// raw binary. The blob check is on the stored value, not the declared column
// type, because a SQLite column can hold values of any type.
func RowImageExpr(ref RowRef, cols []Column) string {
	pairs := make([]string, 0, len(cols))
	for _, col := range cols {
		val := string(ref) + "." + QuoteIdent(col.Name)
		safe := fmt.Sprintf("CASE WHEN typeof(%s) = 'blob' THEN hex(%s) ELSE %s END", val, val, val)
		pairs = append(pairs, QuoteLiteral(col.Name)+", "+safe)
	}
	return "json_object(" + strings.Join(pairs, ", ") + ")"
}

// PayloadExpr wraps row images for the audit row's payload column: inserts
// carry a post-image under 'new', deletes a pre-image under 'old', updates
// carry both in one document.
func PayloadExpr(kind EventKind, cols []Column) (string, error) {
	switch kind {
	case EventInsert:
		return fmt.Sprintf("json_object('new', %s)", RowImageExpr(RefNew, cols)), nil
	case EventUpdate:
		return fmt.Sprintf("json_object('new', %s, 'old', %s)",
			RowImageExpr(RefNew, cols), RowImageExpr(RefOld, cols)), nil
	case EventDelete:
		return fmt.Sprintf("json_object('old', %s)", RowImageExpr(RefOld, cols)), nil
	}
	return "", fmt.Errorf("%w: %q is not one of INSERT, UPDATE, or DELETE", ErrUnsupportedEventKind, string(kind))
}
