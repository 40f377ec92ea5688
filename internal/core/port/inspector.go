package port

import (
	"context"

	"github.com/guillermoBallester/chronicle/internal/core/domain"
)

// SchemaInspector reads live schema facts from the target database. Both
// methods must reflect the catalog at call time, never a cached snapshot,
// so re-running installation after an ALTER TABLE sees the current columns.
type SchemaInspector interface {
	// Columns returns the table's columns in declaration order, with each
	// column's 1-based primary-key position (0 for non-key columns). A
	// missing table yields an error wrapping domain.ErrSchemaNotFound.
	Columns(ctx context.Context, table string) ([]domain.Column, error)

	// ListTables enumerates user tables eligible for auditing, excluding
	// engine internals and the changefeed's own objects, ordered by name.
	ListTables(ctx context.Context) ([]string, error)
}
