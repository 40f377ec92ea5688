package port

import "context"

// InstallRecord describes the outcome of auditing one table during an
// installation run.
type InstallRecord struct {
	Table      string
	Triggers   int
	DurationMS int64
	Err        error
}

// InstallSummary describes the outcome of a whole installation run.
type InstallSummary struct {
	Tables     int
	Triggers   int
	DurationMS int64
	Err        error
}

// InstallReporter records per-table installation outcomes and one closing
// run summary, e.g. to an operator-readable report file. Recording is
// best-effort: implementations must not fail the installation over report
// I/O.
type InstallReporter interface {
	Record(ctx context.Context, rec InstallRecord)
	Summarize(ctx context.Context, sum InstallSummary)
	Close() error
}

// NoopReporter discards all install records.
type NoopReporter struct{}

func (NoopReporter) Record(context.Context, InstallRecord)     {}
func (NoopReporter) Summarize(context.Context, InstallSummary) {}
func (NoopReporter) Close() error                              { return nil }
