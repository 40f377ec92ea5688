package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/guillermoBallester/chronicle/internal/core/domain"
	"github.com/guillermoBallester/chronicle/internal/core/port"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Options configures an Installer beyond its required ports. The zero value
// means: discover all tables, create indexes, log nowhere, report nowhere.
type Options struct {
	Tables          []string // explicit audit list; empty means discover
	ExcludeTables   []string // dropped from discovery; explicit lists are taken verbatim
	SkipIndexes     bool
	Logger          *slog.Logger
	Reporter        port.InstallReporter
	Tracer          trace.Tracer
	Instrumentation port.Instrumentation
}

// Installer orchestrates one enable-auditing run: validate that the session
// owns no transaction, ensure the log table and view, enumerate targets,
// replace each table's triggers, create the support indexes, commit. All DDL
// from one run commits atomically or not at all.
type Installer struct {
	session  port.Session
	schema   port.SchemaInspector
	feed     domain.Changefeed
	tables   []string
	excludes []string
	indexes  bool
	logger   *slog.Logger
	reporter port.InstallReporter
	tracer   trace.Tracer
	inst     port.Instrumentation
}

func NewInstaller(session port.Session, schema port.SchemaInspector, feed domain.Changefeed, opts Options) *Installer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = port.NoopReporter{}
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("noop")
	}
	inst := opts.Instrumentation
	if inst == nil {
		inst = port.NoopInstrumentation{}
	}
	return &Installer{
		session:  session,
		schema:   schema,
		feed:     feed,
		tables:   opts.Tables,
		excludes: opts.ExcludeTables,
		indexes:  !opts.SkipIndexes,
		logger:   logger,
		reporter: reporter,
		tracer:   tracer,
		inst:     inst,
	}
}

// Install runs the whole installation sequence on the configured session.
func (i *Installer) Install(ctx context.Context) error {
	ctx, span := i.tracer.Start(ctx, "Installer.Install",
		trace.WithAttributes(
			attribute.String("db.system", "sqlite"),
			attribute.String("db.operation.name", "enable_auditing"),
			attribute.String("chronicle.log_table", i.feed.Table),
		),
	)
	defer span.End()

	start := time.Now()
	tables, triggers, err := i.install(ctx)
	durationMS := time.Since(start).Milliseconds()
	i.inst.RecordInstallDuration(ctx, float64(durationMS))
	i.reporter.Summarize(ctx, port.InstallSummary{
		Tables:     tables,
		Triggers:   triggers,
		DurationMS: durationMS,
		Err:        err,
	})

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		i.inst.IncrementInstallErrors(ctx)
		return err
	}

	i.inst.AddTablesAudited(ctx, int64(tables))
	i.inst.AddTriggersInstalled(ctx, int64(triggers))
	span.SetAttributes(
		attribute.Int("chronicle.tables", tables),
		attribute.Int("chronicle.triggers", triggers),
	)
	i.logger.InfoContext(ctx, "auditing enabled",
		slog.String("log_table", i.feed.Table),
		slog.Int("tables", tables),
		slog.Int("triggers", triggers),
		slog.Int64("duration_ms", durationMS),
	)
	return nil
}

// install owns the transaction boundary around run.
func (i *Installer) install(ctx context.Context) (tables, triggers int, err error) {
	inTx, err := i.session.InTransaction(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("checking transaction state: %w", err)
	}
	if inTx {
		return 0, 0, fmt.Errorf("cannot enable auditing: %w (COMMIT or ROLLBACK and try again)", domain.ErrAlreadyInTransaction)
	}

	if err := i.session.Begin(ctx); err != nil {
		return 0, 0, fmt.Errorf("beginning transaction: %w", err)
	}

	tables, triggers, err = i.run(ctx)
	if err != nil {
		if rbErr := i.session.Rollback(ctx); rbErr != nil {
			i.logger.ErrorContext(ctx, "rollback failed", slog.String("error", rbErr.Error()))
		}
		return 0, 0, err
	}

	if err := i.session.Commit(ctx); err != nil {
		if rbErr := i.session.Rollback(ctx); rbErr != nil {
			i.logger.ErrorContext(ctx, "rollback failed", slog.String("error", rbErr.Error()))
		}
		return 0, 0, fmt.Errorf("committing installation: %w", err)
	}
	return tables, triggers, nil
}

func (i *Installer) run(ctx context.Context) (int, int, error) {
	if err := i.session.Exec(ctx, i.feed.TableDDL()); err != nil {
		return 0, 0, fmt.Errorf("creating log table %q: %w", i.feed.Table, err)
	}
	if err := i.session.Exec(ctx, i.feed.ViewDDL()); err != nil {
		return 0, 0, fmt.Errorf("creating cloudevent view: %w", err)
	}

	tables := i.tables
	if len(tables) == 0 {
		discovered, err := i.schema.ListTables(ctx)
		if err != nil {
			return 0, 0, fmt.Errorf("discovering tables: %w", err)
		}
		tables = exclude(discovered, i.excludes)
	}

	total := 0
	for _, table := range tables {
		n, err := i.installTriggers(ctx, table)
		if err != nil {
			return 0, 0, err
		}
		total += n
	}

	if i.indexes {
		for _, stmt := range i.feed.IndexDDL() {
			if err := i.session.Exec(ctx, stmt); err != nil {
				return 0, 0, fmt.Errorf("creating feed index: %w", err)
			}
		}
	}
	return len(tables), total, nil
}

// installTriggers replaces the three event triggers of one table, reading the
// live schema first so added or renamed columns are always reflected.
func (i *Installer) installTriggers(ctx context.Context, table string) (int, error) {
	start := time.Now()

	cols, err := i.schema.Columns(ctx, table)
	if err == nil {
		err = i.replaceTriggers(ctx, table, cols)
	}

	installed := len(domain.EventKinds)
	if err != nil {
		installed = 0
	}
	i.reporter.Record(ctx, port.InstallRecord{
		Table:      table,
		Triggers:   installed,
		DurationMS: time.Since(start).Milliseconds(),
		Err:        err,
	})

	if err != nil {
		return 0, err
	}
	i.logger.DebugContext(ctx, "table audited",
		slog.String("table", table),
		slog.Int("columns", len(cols)),
	)
	return installed, nil
}

func (i *Installer) replaceTriggers(ctx context.Context, table string, cols []domain.Column) error {
	for _, kind := range domain.EventKinds {
		event := strings.ToLower(string(kind))

		drop, err := i.feed.DropTriggerDDL(table, kind)
		if err != nil {
			return err
		}
		if err := i.session.Exec(ctx, drop); err != nil {
			return fmt.Errorf("dropping %s trigger on %q: %w", event, table, err)
		}

		create, err := i.feed.TriggerDDL(table, kind, cols)
		if err != nil {
			return err
		}
		if err := i.session.Exec(ctx, create); err != nil {
			return fmt.Errorf("creating %s trigger on %q: %w", event, table, err)
		}
	}
	return nil
}

// exclude filters discovered tables, preserving discovery order.
func exclude(tables, excludes []string) []string {
	if len(excludes) == 0 {
		return tables
	}
	kept := make([]string, 0, len(tables))
	for _, t := range tables {
		if !slices.Contains(excludes, t) {
			kept = append(kept, t)
		}
	}
	return kept
}
