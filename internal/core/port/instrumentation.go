package port

import "context"

// Instrumentation records application-level metrics.
type Instrumentation interface {
	RecordInstallDuration(ctx context.Context, ms float64)
	AddTablesAudited(ctx context.Context, n int64)
	AddTriggersInstalled(ctx context.Context, n int64)
	IncrementInstallErrors(ctx context.Context)
}

// NoopInstrumentation discards all metrics.
type NoopInstrumentation struct{}

func (NoopInstrumentation) RecordInstallDuration(context.Context, float64) {}
func (NoopInstrumentation) AddTablesAudited(context.Context, int64)        {}
func (NoopInstrumentation) AddTriggersInstalled(context.Context, int64)    {}
func (NoopInstrumentation) IncrementInstallErrors(context.Context)         {}
