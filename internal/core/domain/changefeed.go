package domain

import (
	"fmt"
	"strings"
)

// DefaultLogTable is the audit log table name used when the caller does not
// configure one.
const DefaultLogTable = "chronicle_changefeed"

// Changefeed is the configuration value for one audit log. Every synthesized
// object name (view, indexes, triggers) derives from Table, so independently
// configured feeds can coexist in one process and even in one database.
type Changefeed struct {
	Table string
}

// ViewName returns the name of the cloudevent projection view.
func (f Changefeed) ViewName() string {
	return f.Table + "_cloudevent"
}

// TriggerName returns the trigger identity for one (table, event) pair.
func (f Changefeed) TriggerName(table string, kind EventKind) string {
	return f.Table + "_" + table + "_" + strings.ToLower(string(kind)) + "_trigger"
}

// TableDDL returns the idempotent CREATE TABLE statement for the log table.
// position uses AUTOINCREMENT so values are never reused and reflect commit
// order; occurred_at defaults to unix seconds at insert time.
func (f Changefeed) TableDDL() string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	position    INTEGER PRIMARY KEY AUTOINCREMENT,
	source      TEXT NOT NULL,
	subject     TEXT NOT NULL,
	type        TEXT NOT NULL,
	occurred_at INTEGER NOT NULL DEFAULT (strftime('%%s')),
	payload     JSON
)`, QuoteIdent(f.Table))
}

// ViewDDL returns the read-only projection reshaping each audit row into a
// CloudEvents envelope: id is the position as text, sequence a zero-padded
// sortable form, time an ISO-8601 rendering of occurred_at.
func (f Changefeed) ViewDDL() string {
	return fmt.Sprintf(`CREATE VIEW IF NOT EXISTS %s AS
SELECT *, json_object(
	'id', CAST(position AS TEXT),
	'sequence', printf('%%020d', position),
	'source', source,
	'subject', subject,
	'type', type,
	'time', strftime('%%Y-%%m-%%dT%%H:%%M:%%S+00:00', datetime(occurred_at, 'unixepoch')),
	'specversion', '1.0',
	'datacontenttype', 'application/json',
	'data', json(payload)
) cloudevent
FROM %s`, QuoteIdent(f.ViewName()), QuoteIdent(f.Table))
}

// IndexDDL returns the statements for the two query-support indexes.
func (f Changefeed) IndexDDL() []string {
	return []string{
		// Supports reading the history of one subject:
		// SELECT * FROM feed WHERE (source, subject) = ('post', '123')
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (source, subject, position)`,
			QuoteIdent(f.Table+"_source_subject_position_idx"), QuoteIdent(f.Table)),
		// Supports reading by timestamp:
		// SELECT * FROM feed WHERE occurred_at > 1668982601
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (occurred_at, position)`,
			QuoteIdent(f.Table+"_occurred_at_position_idx"), QuoteIdent(f.Table)),
	}
}

// DropTriggerDDL returns the statement removing any previously installed
// trigger for the (table, event) identity. The name is quoted so punctuated
// table names drop as reliably as they create.
func (f Changefeed) DropTriggerDDL(table string, kind EventKind) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("%w: %q is not one of INSERT, UPDATE, or DELETE", ErrUnsupportedEventKind, string(kind))
	}
	return "DROP TRIGGER IF EXISTS " + QuoteIdent(f.TriggerName(table, kind)), nil
}

// TriggerDDL synthesizes the CREATE TRIGGER statement for one (table, event)
// pair. The trigger fires after the event, once per affected row, inside the
// same transaction as the mutation, and appends exactly one audit row with
// source, subject, type and payload per the column snapshot in cols. Output
// is byte-identical for identical inputs.
func (f Changefeed) TriggerDDL(table string, kind EventKind, cols []Column) (string, error) {
	payload, err := PayloadExpr(kind, cols)
	if err != nil {
		return "", err
	}
	subject, err := SubjectExpr(kind.Ref(), cols)
	if err != nil {
		return "", fmt.Errorf("table %q: %w", table, err)
	}

	return fmt.Sprintf(`CREATE TRIGGER %s AFTER %s ON %s
BEGIN
	INSERT INTO %s ("source", "subject", "type", "payload")
	VALUES (%s, %s, %s, %s);
END`,
		QuoteIdent(f.TriggerName(table, kind)), string(kind), QuoteIdent(table),
		QuoteIdent(f.Table),
		QuoteLiteral(table), subject, QuoteLiteral(table+"."+kind.Verb()), payload), nil
}
