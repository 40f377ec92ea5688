package domain

import "sort"

// Column is one column of an audited table as reported by the schema
// inspector. PrimaryKey is the column's 1-based position within the table's
// primary key, or 0 for non-key columns.
type Column struct {
	Name       string
	PrimaryKey int
}

// primaryKeyColumns returns the key columns sorted by their position in the
// primary key declaration. The sort is stable so the result is deterministic
// even if the inspector ever reported duplicate positions.
func primaryKeyColumns(cols []Column) []Column {
	var keys []Column
	for _, c := range cols {
		if c.PrimaryKey > 0 {
			keys = append(keys, c)
		}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return keys[i].PrimaryKey < keys[j].PrimaryKey
	})
	return keys
}
