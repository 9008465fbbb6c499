package repo

import (
	"log/slog"
	"strings"
)

// queries holds the entity SQL shared by both backends.
type queries struct {
	db     conn
	logger *slog.Logger
}

func newQueries(db conn, logger *slog.Logger) *queries {
	return &queries{db: db, logger: logger}
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// limitClause appends a LIMIT placeholder when limit is positive.
func limitClause(q string, args []any, limit int) (string, []any) {
	if limit <= 0 {
		return q, args
	}
	return q + " LIMIT ?", append(args, limit)
}
