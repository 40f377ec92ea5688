package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// Session runs installation statements on a single pinned connection. SQLite
// triggers are session-scoped during creation, so every statement of one
// install must travel over the same underlying connection.
type Session struct {
	conn *sql.Conn
}

// NewSession wraps a pinned connection.
func NewSession(conn *sql.Conn) *Session {
	return &Session{conn: conn}
}

// InTransaction reports whether the connection already has a transaction in
// progress. It asks the driver directly rather than tracking state, so
// transactions opened by raw SQL are seen too.
func (s *Session) InTransaction(ctx context.Context) (bool, error) {
	var inTx bool
	err := s.conn.Raw(func(driverConn any) error {
		c, ok := driverConn.(*sqlite3.SQLiteConn)
		if !ok {
			return fmt.Errorf("unexpected driver connection %T", driverConn)
		}
		inTx = !c.AutoCommit()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("inspecting connection state: %w", err)
	}
	return inTx, nil
}

// Begin opens an immediate transaction. Taking the write lock up front means
// the schema read inside the transaction cannot be invalidated by a concurrent
// writer before the triggers are created.
func (s *Session) Begin(ctx context.Context) error {
	_, err := s.conn.ExecContext(ctx, "BEGIN IMMEDIATE")
	return err
}

// Exec runs a single DDL or DML statement.
func (s *Session) Exec(ctx context.Context, stmt string) error {
	_, err := s.conn.ExecContext(ctx, stmt)
	return err
}

// Commit commits the open transaction.
func (s *Session) Commit(ctx context.Context) error {
	_, err := s.conn.ExecContext(ctx, "COMMIT")
	return err
}

// Rollback aborts the open transaction.
func (s *Session) Rollback(ctx context.Context) error {
	_, err := s.conn.ExecContext(ctx, "ROLLBACK")
	return err
}
