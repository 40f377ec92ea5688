package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/guillermoBallester/chronicle"
	"github.com/guillermoBallester/chronicle/internal/adapter/sqlite"
	"github.com/guillermoBallester/chronicle/internal/config"
	"github.com/guillermoBallester/chronicle/internal/report"
	"github.com/guillermoBallester/chronicle/internal/telemetry"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A .env file is optional; absence is the normal case.
	_ = godotenv.Load()

	overrides, showVersion, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if showVersion {
		fmt.Printf("chronicle %s\n", version)
		return nil
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Logs go to stderr; stdout carries only the final confirmation.
	logger := newLogger(cfg)

	logger.Info("starting chronicle",
		slog.String("version", version),
		slog.String("database", cfg.DatabasePath),
		slog.String("log_table", cfg.LogTable),
		slog.Bool("indexes", cfg.WithIndexes),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	tracer := telemetry.NoopTracer()
	instruments := telemetry.NoopInstruments()
	if cfg.TelemetryEnabled {
		provider, err := telemetry.Init(ctx, version)
		if err != nil {
			return fmt.Errorf("initializing telemetry: %w", err)
		}
		defer func() {
			if err := provider.Shutdown(context.Background()); err != nil {
				logger.Warn("telemetry shutdown failed", slog.Any("error", err))
			}
		}()
		tracer = otel.Tracer("chronicle")
		instruments = telemetry.NewInstruments()
	}

	db, err := sqlite.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	logger.Info("database opened", slog.String("db.system", "sqlite"))

	opts := []chronicle.Option{
		chronicle.WithLogTable(cfg.LogTable),
		chronicle.WithLogger(logger),
		chronicle.WithTracer(tracer),
		chronicle.WithInstrumentation(instruments),
	}
	if len(cfg.Tables) > 0 {
		opts = append(opts, chronicle.WithTables(cfg.Tables...))
	}
	if len(cfg.ExcludeTables) > 0 {
		opts = append(opts, chronicle.WithExcludeTables(cfg.ExcludeTables...))
	}
	if !cfg.WithIndexes {
		opts = append(opts, chronicle.WithoutIndexes())
	}
	if cfg.ReportFile != "" {
		reporter, err := report.NewFileReporter(cfg.ReportFile)
		if err != nil {
			return fmt.Errorf("opening report file: %w", err)
		}
		defer func() {
			if err := reporter.Close(); err != nil {
				logger.Warn("closing report file failed", slog.Any("error", err))
			}
		}()
		opts = append(opts, chronicle.WithReporter(reporter))
	}

	if err := chronicle.Enable(ctx, db, opts...); err != nil {
		return fmt.Errorf("enabling auditing: %w", err)
	}

	fmt.Printf("auditing enabled for %s\n", cfg.DatabasePath)
	return nil
}

// stringList collects repeated flag values.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func parseFlags(args []string) (config.Overrides, bool, error) {
	fs := flag.NewFlagSet("chronicle", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: chronicle [flags] <database>\n\nFlags:\n")
		fs.PrintDefaults()
	}

	var (
		tables           stringList
		excludes         stringList
		logTable         = fs.String("log-table", "", "changefeed table name")
		noIndexes        = fs.Bool("no-indexes", false, "skip creating the changefeed indexes")
		policyFile       = fs.String("policy", "", "path to an audit policy YAML file")
		reportFile       = fs.String("report", "", "path to an NDJSON install report file")
		logLevel         = fs.String("log-level", "", "log level: debug, info, warn, error")
		logFormat        = fs.String("log-format", "", `log format: "json" or "text"`)
		telemetryEnabled = fs.Bool("telemetry", false, "enable OpenTelemetry tracing and metrics")
		showVersion      = fs.Bool("version", false, "print version and exit")
	)
	fs.Var(&tables, "t", "audit only this table (repeatable)")
	fs.Var(&tables, "table", "audit only this table (repeatable)")
	fs.Var(&excludes, "exclude", "leave this table out of discovery (repeatable)")

	if err := fs.Parse(args); err != nil {
		return config.Overrides{}, false, err
	}
	if fs.NArg() > 1 {
		return config.Overrides{}, false, fmt.Errorf("unexpected argument %q", fs.Arg(1))
	}

	o := config.Overrides{
		Tables:           tables,
		Exclude:          excludes,
		NoIndexes:        *noIndexes,
		TelemetryEnabled: *telemetryEnabled,
	}
	if fs.NArg() == 1 {
		path := fs.Arg(0)
		o.DatabasePath = &path
	}
	if *logTable != "" {
		o.LogTable = logTable
	}
	if *policyFile != "" {
		o.PolicyFile = policyFile
	}
	if *reportFile != "" {
		o.ReportFile = reportFile
	}
	if *logLevel != "" {
		o.LogLevel = logLevel
	}
	if *logFormat != "" {
		o.LogFormat = logFormat
	}

	return o, *showVersion, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
