// Package session stores the logged-in identity in the local SQLite
// database so a restarted console can decide whether it already expired.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
	"github.com/dmitrijs2005/rentkeeper/internal/dbx"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Load(ctx context.Context) (*models.Session, error) {
	var (
		s            models.Session
		role         string
		lastActivity int64
		expiresAt    int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT username, role, token, last_activity, expires_at FROM session WHERE id = 1`,
	).Scan(&s.Username, &role, &s.Token, &lastActivity, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	s.Role = models.Role(role)
	s.LastActivity = time.UnixMilli(lastActivity)
	if expiresAt > 0 {
		s.ExpiresAt = time.UnixMilli(expiresAt)
	}
	return &s, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, s models.Session) error {
	var expiresAt int64
	if !s.ExpiresAt.IsZero() {
		expiresAt = s.ExpiresAt.UnixMilli()
	}

	// The table holds at most one row.
	err := dbx.WithTx(ctx, r.db, func(tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM session`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO session (id, username, role, token, last_activity, expires_at)
			VALUES (1, ?, ?, ?, ?, ?)
		`, s.Username, string(s.Role), s.Token, s.LastActivity.UnixMilli(), expiresAt)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to save session[%s]: %w", s.Username, err)
	}
	return nil
}

func (r *SQLiteRepository) Touch(ctx context.Context, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE session SET last_activity = ? WHERE id = 1`, at.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM session`)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
