package repo

import (
	"context"
	"errors"
)

// GetAccount loads a login by email.
func (q *queries) GetAccount(ctx context.Context, email string) (*Account, error) {
	var a Account
	err := q.db.queryRow(ctx, `SELECT email, password_hash, created_at, updated_at FROM accounts WHERE email = ?`, normaliseEmail(email)).
		Scan(&a.Email, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, classify("get account", err)
	}
	return &a, nil
}

// UpsertAccount creates a login or replaces its password hash.
func (q *queries) UpsertAccount(ctx context.Context, email, passwordHash string) error {
	ts := now()
	_, err := q.db.exec(ctx, `
INSERT INTO accounts (email, password_hash, created_at, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (email) DO UPDATE SET
    password_hash = excluded.password_hash,
    updated_at = excluded.updated_at`,
		normaliseEmail(email), passwordHash, ts, ts)
	if err != nil {
		return classify("upsert account", err)
	}
	return nil
}

// IsAdmin reports whether the email is on the allow-list. Matching is exact
// after lower-casing and trimming.
func (q *queries) IsAdmin(ctx context.Context, email string) (bool, error) {
	email = normaliseEmail(email)
	if email == "" {
		return false, nil
	}
	var found string
	err := q.db.queryRow(ctx, `SELECT email FROM admins WHERE email = ?`, email).Scan(&found)
	if err != nil {
		err = classify("check admin", err)
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return found == email, nil
}
