package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"graphichelper/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository persists server sessions, including the state machine's
// current page. One row per browser session; only that session's own
// requests ever mutate its row.
type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Create(ctx context.Context, session models.ServerSession) error {
	const query = `
		INSERT INTO user_sessions (
			id, user_id, refresh_token_hash, current_page, ip_address, created_at, last_seen_at, expires_at
		) VALUES (
			$1, $2, $3, $4, $5, NOW(), NOW(), $6
		)
	`

	_, err := r.pool.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.RefreshTokenHash,
		session.CurrentPage,
		session.IPAddress,
		session.ExpiresAt,
	)
	return err
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (models.ServerSession, error) {
	const query = `
		SELECT id, user_id, refresh_token_hash, current_page, ip_address, created_at, last_seen_at, expires_at
		FROM user_sessions
		WHERE id = $1
	`

	row := r.pool.QueryRow(ctx, query, id)
	return scanSession(row)
}

func (r *SessionRepository) FindByRefreshHash(ctx context.Context, userID string, refreshHash []byte) (models.ServerSession, error) {
	const query = `
		SELECT id, user_id, refresh_token_hash, current_page, ip_address, created_at, last_seen_at, expires_at
		FROM user_sessions
		WHERE user_id = $1 AND refresh_token_hash = $2
	`

	row := r.pool.QueryRow(ctx, query, userID, refreshHash)
	return scanSession(row)
}

// UpdatePage persists a page transition the state machine admitted.
func (r *SessionRepository) UpdatePage(ctx context.Context, id string, page string) error {
	const query = `
		UPDATE user_sessions SET current_page = $2, last_seen_at = NOW() WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, page)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// RotateRefresh swaps in a new refresh token hash and expiry.
func (r *SessionRepository) RotateRefresh(ctx context.Context, session models.ServerSession) error {
	const query = `
		UPDATE user_sessions
		SET refresh_token_hash = $2, expires_at = $3, last_seen_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, session.ID, session.RefreshTokenHash, session.ExpiresAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepository) Touch(ctx context.Context, id string, ip string) error {
	const query = `
		UPDATE user_sessions
		SET last_seen_at = NOW(),
		    ip_address = COALESCE(NULLIF($2, ''), ip_address)
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, id, ip)
	return err
}

func (r *SessionRepository) DeleteByID(ctx context.Context, id string) error {
	const query = `DELETE FROM user_sessions WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM user_sessions WHERE user_id = $1`
	var count int
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *SessionRepository) DeleteOldestSessions(ctx context.Context, userID string, keepLatest int) error {
	const query = `
		DELETE FROM user_sessions
		WHERE id IN (
			SELECT id FROM user_sessions
			WHERE user_id = $1
			ORDER BY last_seen_at DESC
			OFFSET $2
		)
	`
	_, err := r.pool.Exec(ctx, query, userID, keepLatest)
	return err
}

// DeleteExpired removes sessions past their expiry. Run from the scheduler.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	const query = `DELETE FROM user_sessions WHERE expires_at < NOW()`
	cmd, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanSession(row pgx.Row) (models.ServerSession, error) {
	var session models.ServerSession
	if err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.RefreshTokenHash,
		&session.CurrentPage,
		&session.IPAddress,
		&session.CreatedAt,
		&session.LastSeenAt,
		&session.ExpiresAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ServerSession{}, ErrSessionNotFound
		}
		return models.ServerSession{}, err
	}
	return session, nil
}
