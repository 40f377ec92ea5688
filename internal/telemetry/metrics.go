package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/guillermoBallester/chronicle"

// Instruments holds pre-created OTel metric instruments.
type Instruments struct {
	InstallDuration   metric.Float64Histogram
	TablesAudited     metric.Int64Counter
	TriggersInstalled metric.Int64Counter
	InstallErrors     metric.Int64Counter
}

// NewInstruments creates metric instruments from the global MeterProvider.
// Returns nil-safe instruments: if creation fails, noop instruments are used.
func NewInstruments() *Instruments {
	meter := otel.Meter(meterName)
	return newInstrumentsFromMeter(meter)
}

// NoopInstruments returns instruments that record nothing.
func NoopInstruments() *Instruments {
	meter := noop.NewMeterProvider().Meter(meterName)
	return newInstrumentsFromMeter(meter)
}

func newInstrumentsFromMeter(meter metric.Meter) *Instruments {
	// OTel SDK returns noop instruments on error; safe to discard.
	installDuration, _ := meter.Float64Histogram("chronicle.install.duration",
		metric.WithDescription("Auditing install duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	tablesAudited, _ := meter.Int64Counter("chronicle.install.tables",
		metric.WithDescription("Total number of tables put under audit"),
	)
	triggersInstalled, _ := meter.Int64Counter("chronicle.install.triggers",
		metric.WithDescription("Total number of triggers created"),
	)
	installErrors, _ := meter.Int64Counter("chronicle.install.errors",
		metric.WithDescription("Total number of failed installs"),
	)

	return &Instruments{
		InstallDuration:   installDuration,
		TablesAudited:     tablesAudited,
		TriggersInstalled: triggersInstalled,
		InstallErrors:     installErrors,
	}
}

func (i *Instruments) RecordInstallDuration(ctx context.Context, ms float64) {
	i.InstallDuration.Record(ctx, ms)
}

func (i *Instruments) AddTablesAudited(ctx context.Context, n int64) {
	i.TablesAudited.Add(ctx, n)
}

func (i *Instruments) AddTriggersInstalled(ctx context.Context, n int64) {
	i.TriggersInstalled.Add(ctx, n)
}

func (i *Instruments) IncrementInstallErrors(ctx context.Context) {
	i.InstallErrors.Add(ctx, 1)
}
