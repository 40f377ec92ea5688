// Package chronicle turns a SQLite database into its own audit log. Enable
// installs triggers that append a record to an append-only changefeed table
// for every row inserted, updated, or deleted in the audited tables, plus a
// view exposing each record as a CloudEvent.
package chronicle

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/guillermoBallester/chronicle/internal/adapter/sqlite"
	"github.com/guillermoBallester/chronicle/internal/core/domain"
	"github.com/guillermoBallester/chronicle/internal/core/port"
	"github.com/guillermoBallester/chronicle/internal/core/service"
	"go.opentelemetry.io/otel/trace"
)

// DefaultLogTable is the changefeed table name used when WithLogTable is not
// given. Every other installed object (view, triggers, indexes) derives its
// name from the log table, so two configurations with distinct log tables can
// coexist in one database.
const DefaultLogTable = domain.DefaultLogTable

type options struct {
	logTable string
	tables   []string
	excludes []string
	indexes  bool
	logger   *slog.Logger
	reporter port.InstallReporter
	tracer   trace.Tracer
	inst     port.Instrumentation
}

func defaultOptions() options {
	return options{
		logTable: DefaultLogTable,
		indexes:  true,
	}
}

// Option customizes Enable and EnableConn.
type Option func(*options)

// WithLogTable changes the name of the changefeed table. The view, trigger,
// and index names follow it.
func WithLogTable(name string) Option {
	return func(o *options) { o.logTable = name }
}

// WithTables audits exactly the named tables instead of discovering them.
// Tables are taken verbatim; a name that does not exist fails the install.
func WithTables(tables ...string) Option {
	return func(o *options) { o.tables = append(o.tables, tables...) }
}

// WithExcludeTables removes tables from the discovered set. It has no effect
// when WithTables is used.
func WithExcludeTables(tables ...string) Option {
	return func(o *options) { o.excludes = append(o.excludes, tables...) }
}

// WithoutIndexes skips creating the changefeed's query indexes.
func WithoutIndexes() Option {
	return func(o *options) { o.indexes = false }
}

// WithLogger sets the logger for install progress. Logging is off by default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithReporter records per-table install outcomes and a run summary to the
// given reporter.
func WithReporter(r port.InstallReporter) Option {
	return func(o *options) { o.reporter = r }
}

// WithTracer traces the install as a span.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) { o.tracer = tracer }
}

// WithInstrumentation emits install metrics through the given instruments.
func WithInstrumentation(inst port.Instrumentation) Option {
	return func(o *options) { o.inst = inst }
}

// Enable installs change auditing on db. It pins a connection from the pool,
// runs the whole installation inside one transaction on it, and releases the
// connection afterwards. Enabling is idempotent: triggers are recreated from
// the current table schemas, and the changefeed table keeps its rows.
func Enable(ctx context.Context, db *sql.DB, opts ...Option) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Close()

	return EnableConn(ctx, conn, opts...)
}

// EnableConn is Enable on a caller-owned connection. Use it to audit a
// database opened outside this package, or to observe the in-transaction
// guard: enabling fails with ErrAlreadyInTransaction if conn has an open
// transaction.
func EnableConn(ctx context.Context, conn *sql.Conn, opts ...Option) error {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	feed := domain.Changefeed{Table: o.logTable}
	installer := service.NewInstaller(
		sqlite.NewSession(conn),
		sqlite.NewInspector(conn, feed),
		feed,
		service.Options{
			Tables:          o.tables,
			ExcludeTables:   o.excludes,
			SkipIndexes:     !o.indexes,
			Logger:          o.logger,
			Reporter:        o.reporter,
			Tracer:          o.tracer,
			Instrumentation: o.inst,
		},
	)

	return installer.Install(ctx)
}
