package report

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/guillermoBallester/chronicle/internal/core/port"
)

// fileEntry is the NDJSON-serializable form of an install record.
type fileEntry struct {
	Timestamp  string  `json:"ts"`
	Table      string  `json:"table"`
	Triggers   int     `json:"triggers"`
	DurationMS int64   `json:"duration_ms"`
	Error      *string `json:"error"`
}

// summaryEntry is the NDJSON-serializable form of a run summary. It carries
// run totals where fileEntry carries a table name.
type summaryEntry struct {
	Timestamp  string  `json:"ts"`
	Tables     int     `json:"tables"`
	Triggers   int     `json:"triggers"`
	DurationMS int64   `json:"duration_ms"`
	Error      *string `json:"error"`
}

// FileReporter writes install records as NDJSON (one JSON object per line) to a file.
type FileReporter struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewFileReporter opens (or creates) the file at path for append-only writing.
func NewFileReporter(path string) (*FileReporter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return &FileReporter{
		file: f,
		enc:  json.NewEncoder(f),
	}, nil
}

func (r *FileReporter) Record(_ context.Context, rec port.InstallRecord) {
	fe := fileEntry{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Table:      rec.Table,
		Triggers:   rec.Triggers,
		DurationMS: rec.DurationMS,
	}
	if rec.Err != nil {
		s := rec.Err.Error()
		fe.Error = &s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	_ = r.enc.Encode(fe) // best-effort; don't fail the install for report I/O
}

func (r *FileReporter) Summarize(_ context.Context, sum port.InstallSummary) {
	se := summaryEntry{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Tables:     sum.Tables,
		Triggers:   sum.Triggers,
		DurationMS: sum.DurationMS,
	}
	if sum.Err != nil {
		s := sum.Err.Error()
		se.Error = &s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	_ = r.enc.Encode(se)
}

func (r *FileReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.file.Close()
}
