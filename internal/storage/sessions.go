package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"finance-tracker/internal/models"
)

// ErrSessionNotFound is returned for unknown or expired sessions.
var ErrSessionNotFound = errors.New("session not found")

// SessionInfo holds session validation data.
type SessionInfo struct {
	User         *models.User
	LastActivity time.Time
	ExpiresAt    time.Time
}

// CreateSession stores a session keyed by the digest of its token. now is
// recorded as the last activity.
func (q *Queries) CreateSession(ctx context.Context, tokenHash string, userID int64, expiresAt, now time.Time) error {
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO sessions (token_hash, user_id, expires_at, last_activity) VALUES (?, ?, ?, ?)",
		tokenHash, userID, expiresAt.UTC(), now.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// ValidateSession returns the session details if it is still live at now.
func (q *Queries) ValidateSession(ctx context.Context, tokenHash string, now time.Time) (*SessionInfo, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT u.id, u.name, u.email, u.password_hash, u.created_at, s.last_activity, s.expires_at
		FROM sessions s
		JOIN users u ON s.user_id = u.id
		WHERE s.token_hash = ? AND s.expires_at > ?
	`, tokenHash, now.UTC())

	var u models.User
	var info SessionInfo
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &info.LastActivity, &info.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	info.User = &u
	return &info, nil
}

// RenewSession updates the last_activity and expires_at for a session.
func (q *Queries) RenewSession(ctx context.Context, tokenHash string, newExpiresAt, now time.Time) error {
	_, err := q.db.ExecContext(ctx,
		"UPDATE sessions SET last_activity = ?, expires_at = ? WHERE token_hash = ?",
		now.UTC(), newExpiresAt.UTC(), tokenHash,
	)
	if err != nil {
		return fmt.Errorf("renew session: %w", err)
	}
	return nil
}

// DeleteSession removes a session.
func (q *Queries) DeleteSession(ctx context.Context, tokenHash string) error {
	if _, err := q.db.ExecContext(ctx, "DELETE FROM sessions WHERE token_hash = ?", tokenHash); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// CleanExpiredSessions removes sessions expired at now and reports how many went.
func (q *Queries) CleanExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= ?", now.UTC())
	if err != nil {
		return 0, fmt.Errorf("clean expired sessions: %w", err)
	}
	return result.RowsAffected()
}
