package repo

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound reports a missing record.
	ErrNotFound = errors.New("record not found")
	// ErrPermissionDenied reports a write or read rejected by the backend's
	// access rules.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrConflict reports a unique key collision such as a duplicate slug.
	ErrConflict = errors.New("record already exists")
	// ErrInvalidReference reports a foreign key pointing at a missing record.
	ErrInvalidReference = errors.New("referenced record does not exist")
)

// classify wraps err with the action and, where recognised, one of the
// package sentinels so callers can branch with errors.Is.
func classify(action string, err error) error {
	if err == nil {
		return nil
	}
	if sentinel := sentinelFor(err); sentinel != nil {
		return fmt.Errorf("%s: %w: %w", action, sentinel, err)
	}
	return fmt.Errorf("%s: %w", action, err)
}

func sentinelFor(err error) error {
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42501":
			return ErrPermissionDenied
		case "23505":
			return ErrConflict
		case "23503":
			return ErrInvalidReference
		}
		return nil
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		switch code {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return ErrConflict
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return ErrInvalidReference
		}
		switch code & 0xff {
		case sqlite3.SQLITE_READONLY, sqlite3.SQLITE_PERM, sqlite3.SQLITE_AUTH:
			return ErrPermissionDenied
		case sqlite3.SQLITE_CONSTRAINT:
			// Primary result codes only carry the constraint kind in the message.
			msg := liteErr.Error()
			switch {
			case strings.Contains(msg, "FOREIGN KEY"):
				return ErrInvalidReference
			case strings.Contains(msg, "UNIQUE"), strings.Contains(msg, "PRIMARY KEY"):
				return ErrConflict
			}
		}
	}
	return nil
}

// notFoundIfNone turns a zero-row update or delete into ErrNotFound.
func notFoundIfNone(action string, affected int64) error {
	if affected == 0 {
		return fmt.Errorf("%s: %w", action, ErrNotFound)
	}
	return nil
}
