package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/guillermoBallester/chronicle/internal/core/domain"
)

// Querier is the subset of database/sql used for schema reads. Both *sql.DB
// and *sql.Conn satisfy it; the installer passes its pinned connection so the
// reads happen inside the install transaction.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Inspector reads table schemas from the SQLite catalog.
type Inspector struct {
	q    Querier
	feed domain.Changefeed
}

// NewInspector builds an Inspector that skips the feed's own objects when
// listing tables.
func NewInspector(q Querier, feed domain.Changefeed) *Inspector {
	return &Inspector{q: q, feed: feed}
}

// Columns returns the columns of table in schema order, with primary key
// positions taken from the catalog.
func (i *Inspector) Columns(ctx context.Context, table string) ([]domain.Column, error) {
	rows, err := i.q.QueryContext(ctx, queryTableColumns, table)
	if err != nil {
		return nil, fmt.Errorf("reading columns of %q: %w", table, err)
	}
	defer rows.Close()

	var cols []domain.Column
	for rows.Next() {
		var col domain.Column
		if err := rows.Scan(&col.Name, &col.PrimaryKey); err != nil {
			return nil, fmt.Errorf("scanning column of %q: %w", table, err)
		}
		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading columns of %q: %w", table, err)
	}

	// pragma_table_info returns no rows for a name it does not know.
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %q: %w", table, domain.ErrSchemaNotFound)
	}
	return cols, nil
}

// ListTables returns the user tables of the database in name order, leaving
// out SQLite internals and anything belonging to the changefeed itself.
func (i *Inspector) ListTables(ctx context.Context) ([]string, error) {
	rows, err := i.q.QueryContext(ctx, queryListTables, i.feed.Table+"%")
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	return tables, nil
}
