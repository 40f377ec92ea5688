package chronicle

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/guillermoBallester/chronicle/internal/core/domain"
)

// Event is one recorded row change.
type Event struct {
	// Position is the event's place in the feed. Positions are unique and
	// strictly increasing in commit order.
	Position int64

	// Source is the audited table the change came from.
	Source string

	// Subject identifies the changed row: the primary key values at the time
	// of the change, joined with ':' in key order.
	Subject string

	// Type is "<table>.created", "<table>.updated", or "<table>.deleted".
	Type string

	// OccurredAt is when the change was recorded, at second precision.
	OccurredAt time.Time

	// Payload holds the row images: {"new": {...}} for creates,
	// {"old": {...}} for deletes, and both for updates. BLOB values appear
	// hex-encoded.
	Payload json.RawMessage
}

// Feed reads recorded events back from the changefeed table.
type Feed struct {
	db    *sql.DB
	table string
}

// NewFeed returns a reader over db's changefeed. Pass WithLogTable when the
// feed was enabled under a custom table name; other options are ignored.
func NewFeed(db *sql.DB, opts ...Option) *Feed {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Feed{db: db, table: o.logTable}
}

// After returns up to limit events with positions strictly greater than
// position, oldest first. A limit of zero or less means no limit. Polling
// with the last seen position as the cursor yields every event exactly once.
func (f *Feed) After(ctx context.Context, position int64, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unlimited.
	}

	query := fmt.Sprintf(`
	SELECT position, source, subject, type, occurred_at, payload
	FROM %s
	WHERE position > ?
	ORDER BY position
	LIMIT ?`, domain.QuoteIdent(f.table))

	rows, err := f.db.QueryContext(ctx, query, position, limit)
	if err != nil {
		return nil, fmt.Errorf("reading feed: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// History returns every recorded change of one row, oldest first. Source and
// subject together name the row the way its events do.
func (f *Feed) History(ctx context.Context, source, subject string) ([]Event, error) {
	query := fmt.Sprintf(`
	SELECT position, source, subject, type, occurred_at, payload
	FROM %s
	WHERE source = ? AND subject = ?
	ORDER BY position`, domain.QuoteIdent(f.table))

	rows, err := f.db.QueryContext(ctx, query, source, subject)
	if err != nil {
		return nil, fmt.Errorf("reading row history: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

func collectEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var (
			event    Event
			occurred int64
			payload  sql.NullString
		)
		if err := rows.Scan(&event.Position, &event.Source, &event.Subject,
			&event.Type, &occurred, &payload); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		event.OccurredAt = time.Unix(occurred, 0).UTC()
		if payload.Valid {
			event.Payload = json.RawMessage(payload.String)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading events: %w", err)
	}
	return events, nil
}
