package domain

import "errors"

var (
	ErrAlreadyInTransaction = errors.New("connection already has a transaction in progress")
	ErrSchemaNotFound       = errors.New("table does not exist")
	ErrNoPrimaryKey         = errors.New("table has no primary key")
	ErrUnsupportedEventKind = errors.New("unsupported event kind")
)

// EventKind is a row-level trigger event. The value is the SQL keyword used
// in the CREATE TRIGGER clause.
type EventKind string

const (
	EventInsert EventKind = "INSERT"
	EventUpdate EventKind = "UPDATE"
	EventDelete EventKind = "DELETE"
)

// EventKinds lists the trigger events in installation order. The order is
// fixed so installation always emits DDL in the same sequence.
var EventKinds = []EventKind{EventInsert, EventUpdate, EventDelete}

// Valid returns true if the EventKind is one of the three row events.
func (k EventKind) Valid() bool {
	switch k {
	case EventInsert, EventUpdate, EventDelete:
		return true
	}
	return false
}

// Verb maps the event to its past-tense CRUD verb, used in the audit row's
// type field (insert -> created, update -> updated, delete -> deleted).
func (k EventKind) Verb() string {
	switch k {
	case EventInsert:
		return "created"
	case EventUpdate:
		return "updated"
	case EventDelete:
		return "deleted"
	}
	return ""
}

// Ref returns the row reference that identifies the affected row inside a
// trigger body for this event: OLD for deletes, NEW otherwise.
func (k EventKind) Ref() RowRef {
	if k == EventDelete {
		return RefOld
	}
	return RefNew
}

// RowRef is a trigger-body row reference, either NEW or OLD.
type RowRef string

const (
	RefNew RowRef = "NEW"
	RefOld RowRef = "OLD"
)
