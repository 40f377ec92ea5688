package chronicle

import "github.com/guillermoBallester/chronicle/internal/core/domain"

// Sentinel errors returned by Enable and EnableConn. Match with errors.Is;
// the returned errors carry context around these values.
var (
	// ErrAlreadyInTransaction means the connection has an open transaction.
	// Enabling needs to own its transaction, so commit or roll back first.
	ErrAlreadyInTransaction = domain.ErrAlreadyInTransaction

	// ErrSchemaNotFound means an explicitly requested table does not exist.
	ErrSchemaNotFound = domain.ErrSchemaNotFound

	// ErrNoPrimaryKey means a table has no primary key to build change
	// subjects from. Exclude the table or give it a key.
	ErrNoPrimaryKey = domain.ErrNoPrimaryKey

	// ErrUnsupportedEventKind means an event kind outside INSERT, UPDATE,
	// and DELETE reached trigger synthesis.
	ErrUnsupportedEventKind = domain.ErrUnsupportedEventKind
)
