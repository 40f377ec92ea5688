package chronicle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedAfterCursor(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDB(t)
	mustExec(t, db, `CREATE TABLE post (id INTEGER PRIMARY KEY, content TEXT)`)
	require.NoError(t, Enable(ctx, db))

	for _, content := range []string{"a", "b", "c", "d", "e"} {
		mustExec(t, db, `INSERT INTO post (content) VALUES (?)`, content)
	}

	feed := NewFeed(db)

	// Paging by the last seen position walks the feed exactly once.
	page, err := feed.After(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(1), page[0].Position)
	assert.Equal(t, int64(2), page[1].Position)

	page, err = feed.After(ctx, page[1].Position, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(3), page[0].Position)
	assert.Equal(t, int64(4), page[1].Position)

	page, err = feed.After(ctx, page[1].Position, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, int64(5), page[0].Position)

	page, err = feed.After(ctx, page[0].Position, 2)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestFeedAfterUnlimited(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDB(t)
	mustExec(t, db, `CREATE TABLE post (id INTEGER PRIMARY KEY, content TEXT)`)
	require.NoError(t, Enable(ctx, db))

	for _, content := range []string{"a", "b", "c"} {
		mustExec(t, db, `INSERT INTO post (content) VALUES (?)`, content)
	}

	events, err := NewFeed(db).After(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestFeedHistory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDB(t)
	mustExec(t, db, `CREATE TABLE post (id INTEGER PRIMARY KEY, content TEXT)`)
	require.NoError(t, Enable(ctx, db))

	mustExec(t, db, `INSERT INTO post (content) VALUES ('mine')`)
	mustExec(t, db, `INSERT INTO post (content) VALUES ('other')`)
	mustExec(t, db, `UPDATE post SET content = 'mine, edited' WHERE id = 1`)
	mustExec(t, db, `DELETE FROM post WHERE id = 1`)

	history, err := NewFeed(db).History(ctx, "post", "1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "post.created", history[0].Type)
	assert.Equal(t, "post.updated", history[1].Type)
	assert.Equal(t, "post.deleted", history[2].Type)
	for _, event := range history {
		assert.Equal(t, "1", event.Subject)
	}

	// The other row's lone event is untouched by row 1's history.
	other, err := NewFeed(db).History(ctx, "post", "2")
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, "post.created", other[0].Type)
}
