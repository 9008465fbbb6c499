package repo

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLite provides access to a local SQLite database.
type SQLite struct {
	*queries
	db *sql.DB
}

// NewSQLite opens a new connection to the SQLite database.
func NewSQLite(ctx context.Context, databasePath string, logger *slog.Logger) (*SQLite, error) {
	path := strings.TrimSpace(databasePath)
	path = strings.TrimPrefix(path, "sqlite://")
	if path == "" || path == "file:" {
		return nil, fmt.Errorf("sqlite database path is empty")
	}
	dsn := path
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	dsn = fmt.Sprintf("%s%s_pragma=busy_timeout=10000&_pragma=journal_mode=WAL&_pragma=foreign_keys=ON", dsn, sep)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLite{
		queries: newQueries(sqlConn{db: db}, logger.With("component", "repo", "backend", "sqlite")),
		db:      db,
	}, nil
}

// Close releases the database connection.
func (r *SQLite) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

// Ping ensures the database is reachable.
func (r *SQLite) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Backend names the storage engine.
func (r *SQLite) Backend() string { return "sqlite" }

// RunMigrations applies the sqlite/ migrations on the connected database.
func (r *SQLite) RunMigrations(ctx context.Context, filesystem fs.FS) error {
	sub, err := fs.Sub(filesystem, "sqlite")
	if err != nil {
		return fmt.Errorf("open sqlite migrations: %w", err)
	}
	return applySQLMigrations(ctx, r.db, sub)
}

// SyncAdmins ensures every listed email is on the admin allow-list.
func (r *SQLite) SyncAdmins(ctx context.Context, emails []string) error {
	if len(emails) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin sync admins: %w", err)
	}
	defer tx.Rollback()

	for _, email := range emails {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO admins (email, created_at)
VALUES (?, ?)
ON CONFLICT (email) DO NOTHING;
`, normaliseEmail(email), now()); err != nil {
			return classify(fmt.Sprintf("sync admin %q", email), err)
		}
	}
	return tx.Commit()
}
