package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFeed = Changefeed{Table: DefaultLogTable}

func TestChangefeed_Names(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "chronicle_changefeed_cloudevent", testFeed.ViewName())
	assert.Equal(t, "chronicle_changefeed_post_insert_trigger", testFeed.TriggerName("post", EventInsert))
	assert.Equal(t, "chronicle_changefeed_post_delete_trigger", testFeed.TriggerName("post", EventDelete))

	custom := Changefeed{Table: "audit_log"}
	assert.Equal(t, "audit_log_cloudevent", custom.ViewName())
	assert.Equal(t, "audit_log_post_update_trigger", custom.TriggerName("post", EventUpdate))
}

func TestChangefeed_TableDDL(t *testing.T) {
	t.Parallel()
	want := `CREATE TABLE IF NOT EXISTS "chronicle_changefeed" (
	position    INTEGER PRIMARY KEY AUTOINCREMENT,
	source      TEXT NOT NULL,
	subject     TEXT NOT NULL,
	type        TEXT NOT NULL,
	occurred_at INTEGER NOT NULL DEFAULT (strftime('%s')),
	payload     JSON
)`
	assert.Equal(t, want, testFeed.TableDDL())
}

func TestChangefeed_ViewDDL(t *testing.T) {
	t.Parallel()
	want := `CREATE VIEW IF NOT EXISTS "chronicle_changefeed_cloudevent" AS
SELECT *, json_object(
	'id', CAST(position AS TEXT),
	'sequence', printf('%020d', position),
	'source', source,
	'subject', subject,
	'type', type,
	'time', strftime('%Y-%m-%dT%H:%M:%S+00:00', datetime(occurred_at, 'unixepoch')),
	'specversion', '1.0',
	'datacontenttype', 'application/json',
	'data', json(payload)
) cloudevent
FROM "chronicle_changefeed"`
	assert.Equal(t, want, testFeed.ViewDDL())
}

func TestChangefeed_IndexDDL(t *testing.T) {
	t.Parallel()
	want := []string{
		`CREATE INDEX IF NOT EXISTS "chronicle_changefeed_source_subject_position_idx" ON "chronicle_changefeed" (source, subject, position)`,
		`CREATE INDEX IF NOT EXISTS "chronicle_changefeed_occurred_at_position_idx" ON "chronicle_changefeed" (occurred_at, position)`,
	}
	assert.Equal(t, want, testFeed.IndexDDL())
}

func TestChangefeed_DropTriggerDDL(t *testing.T) {
	t.Parallel()
	got, err := testFeed.DropTriggerDDL("post", EventInsert)
	require.NoError(t, err)
	assert.Equal(t, `DROP TRIGGER IF EXISTS "chronicle_changefeed_post_insert_trigger"`, got)

	// Punctuated table names stay droppable because the name is quoted.
	got, err = testFeed.DropTriggerDDL("namespace.with_pk", EventUpdate)
	require.NoError(t, err)
	assert.Equal(t, `DROP TRIGGER IF EXISTS "chronicle_changefeed_namespace.with_pk_update_trigger"`, got)

	_, err = testFeed.DropTriggerDDL("post", "TRUNCATE")
	require.ErrorIs(t, err, ErrUnsupportedEventKind)
}

func TestChangefeed_TriggerDDL_Insert(t *testing.T) {
	t.Parallel()
	cols := []Column{{Name: "id", PrimaryKey: 1}, {Name: "content"}}

	got, err := testFeed.TriggerDDL("post", EventInsert, cols)
	require.NoError(t, err)

	want := `CREATE TRIGGER "chronicle_changefeed_post_insert_trigger" AFTER INSERT ON "post"
BEGIN
	INSERT INTO "chronicle_changefeed" ("source", "subject", "type", "payload")
	VALUES ('post', NEW."id", 'post.created', json_object('new', json_object('id', CASE WHEN typeof(NEW."id") = 'blob' THEN hex(NEW."id") ELSE NEW."id" END, 'content', CASE WHEN typeof(NEW."content") = 'blob' THEN hex(NEW."content") ELSE NEW."content" END)));
END`
	assert.Equal(t, want, got)
}

func TestChangefeed_TriggerDDL_Update(t *testing.T) {
	t.Parallel()
	cols := []Column{{Name: "id", PrimaryKey: 1}, {Name: "content"}}

	got, err := testFeed.TriggerDDL("post", EventUpdate, cols)
	require.NoError(t, err)

	want := `CREATE TRIGGER "chronicle_changefeed_post_update_trigger" AFTER UPDATE ON "post"
BEGIN
	INSERT INTO "chronicle_changefeed" ("source", "subject", "type", "payload")
	VALUES ('post', NEW."id", 'post.updated', json_object('new', json_object('id', CASE WHEN typeof(NEW."id") = 'blob' THEN hex(NEW."id") ELSE NEW."id" END, 'content', CASE WHEN typeof(NEW."content") = 'blob' THEN hex(NEW."content") ELSE NEW."content" END), 'old', json_object('id', CASE WHEN typeof(OLD."id") = 'blob' THEN hex(OLD."id") ELSE OLD."id" END, 'content', CASE WHEN typeof(OLD."content") = 'blob' THEN hex(OLD."content") ELSE OLD."content" END)));
END`
	assert.Equal(t, want, got)
}

func TestChangefeed_TriggerDDL_Delete(t *testing.T) {
	t.Parallel()
	cols := []Column{{Name: "id", PrimaryKey: 1}, {Name: "content"}}

	got, err := testFeed.TriggerDDL("post", EventDelete, cols)
	require.NoError(t, err)

	want := `CREATE TRIGGER "chronicle_changefeed_post_delete_trigger" AFTER DELETE ON "post"
BEGIN
	INSERT INTO "chronicle_changefeed" ("source", "subject", "type", "payload")
	VALUES ('post', OLD."id", 'post.deleted', json_object('old', json_object('id', CASE WHEN typeof(OLD."id") = 'blob' THEN hex(OLD."id") ELSE OLD."id" END, 'content', CASE WHEN typeof(OLD."content") = 'blob' THEN hex(OLD."content") ELSE OLD."content" END)));
END`
	assert.Equal(t, want, got)
}

func TestChangefeed_TriggerDDL_Deterministic(t *testing.T) {
	t.Parallel()
	cols := []Column{
		{Name: "this", PrimaryKey: 1},
		{Name: "that", PrimaryKey: 2},
		{Name: "other", PrimaryKey: 3},
		{Name: "etc", PrimaryKey: 4},
	}

	first, err := testFeed.TriggerDDL("namespace.with_compound_pk", EventUpdate, cols)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := testFeed.TriggerDDL("namespace.with_compound_pk", EventUpdate, cols)
		require.NoError(t, err)
		assert.Equal(t, first, again, "identical inputs must synthesize byte-identical DDL")
	}
}

func TestChangefeed_TriggerDDL_NoPrimaryKey(t *testing.T) {
	t.Parallel()
	_, err := testFeed.TriggerDDL("notes", EventInsert, []Column{{Name: "body"}})
	require.ErrorIs(t, err, ErrNoPrimaryKey)
	assert.Contains(t, err.Error(), `"notes"`)
}

func TestChangefeed_TriggerDDL_UnsupportedKind(t *testing.T) {
	t.Parallel()
	_, err := testFeed.TriggerDDL("post", "VACUUM", []Column{{Name: "id", PrimaryKey: 1}})
	require.ErrorIs(t, err, ErrUnsupportedEventKind)
}

func TestChangefeed_TriggerDDL_ReservedWordTable(t *testing.T) {
	t.Parallel()
	cols := []Column{{Name: "value", PrimaryKey: 1}}

	got, err := testFeed.TriggerDDL("order", EventInsert, cols)
	require.NoError(t, err)
	assert.Contains(t, got, `ON "order"`)
	assert.Contains(t, got, `'order', NEW."value", 'order.created'`)
}
