package domain

import "strings"

// SubjectExpr builds the expression producing the stable identifier of the
// affected row: the primary-key columns referenced through ref, in key
// declaration order. A single-column key yields the bare column reference
// (coerced to text on insert into the TEXT subject column); a composite key
// concatenates each part separated by ':', so (1,) becomes '1' and
// (1, 'abc') becomes '1:abc'. Returns ErrNoPrimaryKey when the table
// declares no key, since no stable subject can be derived.
func SubjectExpr(ref RowRef, cols []Column) (string, error) {
	keys := primaryKeyColumns(cols)
	if len(keys) == 0 {
		return "", ErrNoPrimaryKey
	}
	refs := make([]string, len(keys))
	for i, c := range keys {
		refs[i] = string(ref) + "." + QuoteIdent(c.Name)
	}
	return strings.Join(refs, " || ':' || "), nil
}
