package history

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"sync"
)

// PostgresLocker serialises identifiers with session advisory locks. Each
// held lock pins one pooled connection until release.
type PostgresLocker struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewPostgresLocker(db *sql.DB, logger *slog.Logger) *PostgresLocker {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresLocker{db: db, logger: logger}
}

// Lock blocks on pg_advisory_lock until identifier is free or ctx is done.
func (l *PostgresLocker) Lock(ctx context.Context, identifier string) (func(), error) {
	conn, err := l.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire lock connection: %w", err)
	}
	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock(hashtextextended($1, 0))`, identifier); err != nil {
		// a cancelled wait may leave the session in an unknown state
		discard(conn)
		return nil, fmt.Errorf("lock identifier: %w", err)
	}

	return sync.OnceFunc(func() {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()
		if _, err := conn.ExecContext(rctx, `SELECT pg_advisory_unlock(hashtextextended($1, 0))`, identifier); err != nil {
			l.logger.WarnContext(rctx, "identifier lock release failed", "error", err)
			discard(conn)
			return
		}
		_ = conn.Close()
	}), nil
}

// discard closes conn's session so the server drops any lock it holds.
func discard(conn *sql.Conn) {
	_ = conn.Raw(func(any) error { return driver.ErrBadConn })
	_ = conn.Close()
}
