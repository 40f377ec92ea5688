package port

import "context"

// Session is a single database session with caller-controlled transaction
// boundaries. The Installer runs every statement of one installation through
// one Session so the whole run commits or rolls back as a unit.
type Session interface {
	// InTransaction reports whether the session already has an open
	// transaction. The Installer refuses to run inside one.
	InTransaction(ctx context.Context) (bool, error)

	Begin(ctx context.Context) error
	Exec(ctx context.Context, stmt string) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
