package repo

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres provides typed access to a Postgres database.
type Postgres struct {
	*queries
	pool   *pgxpool.Pool
	schema string
}

// Open picks a backend from the database URL: postgres:// and postgresql://
// URLs use Postgres, everything else is treated as a SQLite path.
func Open(ctx context.Context, databaseURL, schema string, logger *slog.Logger) (Repository, error) {
	lower := strings.ToLower(strings.TrimSpace(databaseURL))
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return NewPostgres(ctx, databaseURL, schema, logger)
	}
	return NewSQLite(ctx, databaseURL, logger)
}

// NewPostgres opens a new connection pool to the database with the desired search_path.
func NewPostgres(ctx context.Context, databaseURL, schema string, logger *slog.Logger) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	if cfg.ConnConfig.RuntimeParams == nil {
		cfg.ConnConfig.RuntimeParams = map[string]string{}
	}
	if schema != "" {
		cfg.ConnConfig.RuntimeParams["search_path"] = schema
	}
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	r := &Postgres{
		queries: newQueries(pgConn{pool: pool}, logger.With("component", "repo", "backend", "postgres")),
		pool:    pool,
		schema:  schema,
	}

	if err := r.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

// Close releases the connection pool.
func (r *Postgres) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

// Ping ensures the database is reachable.
func (r *Postgres) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Backend names the storage engine.
func (r *Postgres) Backend() string { return "postgres" }

// RunMigrations applies the postgres/ migrations on the connected database.
func (r *Postgres) RunMigrations(ctx context.Context, filesystem fs.FS) error {
	sub, err := fs.Sub(filesystem, "postgres")
	if err != nil {
		return fmt.Errorf("open postgres migrations: %w", err)
	}
	return ApplyMigrations(ctx, r.pool, sub)
}

// SyncAdmins ensures every listed email is on the admin allow-list.
func (r *Postgres) SyncAdmins(ctx context.Context, emails []string) error {
	if len(emails) == 0 {
		return nil
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, email := range emails {
			if _, err := tx.Exec(ctx, `
INSERT INTO admins (email, created_at)
VALUES ($1, NOW())
ON CONFLICT (email) DO NOTHING;
`, normaliseEmail(email)); err != nil {
				return classify(fmt.Sprintf("sync admin %q", email), err)
			}
		}
		return nil
	})
}
