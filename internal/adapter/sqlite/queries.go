package sqlite

// queryTableColumns returns one row per column of the named table in
// declaration (cid) order. pk is the column's 1-based position within the
// primary key, 0 for non-key columns. ? is the table name.
const queryTableColumns = `
	SELECT name, pk
	FROM pragma_table_info(?)
	ORDER BY cid`

// queryListTables enumerates user tables, skipping SQLite internals and the
// changefeed's own objects. ? is the feed's name-prefix LIKE pattern.
const queryListTables = `
	SELECT tbl_name
	FROM sqlite_master
	WHERE type = 'table'
	  AND tbl_name NOT LIKE 'sqlite_%'
	  AND tbl_name NOT LIKE ?
	ORDER BY tbl_name`
