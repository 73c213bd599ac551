package repository

import (
	"context"
	"fmt"

	"dateflix-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const sessionColumns = `s.id, s.user1_id, s.user2_id, s.is_active, s.created_at, s.updated_at`

// SessionRepository handles database operations for swipe sessions (pairings)
type SessionRepository struct {
	db *pgxpool.Pool
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create creates a new session
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO swipe_sessions (id, user1_id, user2_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		session.ID, session.User1ID, session.User2ID, session.IsActive, session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetByID retrieves a session by ID
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM swipe_sessions s WHERE s.id = $1`
	session, err := scanSession(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// ListActiveByUser retrieves the active sessions where the user is either side
func (r *SessionRepository) ListActiveByUser(ctx context.Context, userID string) ([]*models.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM swipe_sessions s
		WHERE (s.user1_id = $1 OR s.user2_id = $1) AND s.is_active
		ORDER BY s.created_at ASC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}
	return sessions, nil
}

// ListActiveWithUsers retrieves active sessions with both user profiles, newest first
func (r *SessionRepository) ListActiveWithUsers(ctx context.Context, userID string) ([]*models.Session, error) {
	query := `
		SELECT ` + sessionColumns + `, ` + prefixedUserColumns("u1") + `, ` + prefixedUserColumns("u2") + `
		FROM swipe_sessions s
		JOIN users u1 ON u1.id = s.user1_id
		JOIN users u2 ON u2.id = s.user2_id
		WHERE (s.user1_id = $1 OR s.user2_id = $1) AND s.is_active
		ORDER BY s.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []*models.Session{}
	for rows.Next() {
		s := &models.Session{User1: &models.User{}, User2: &models.User{}}
		dest := []any{&s.ID, &s.User1ID, &s.User2ID, &s.IsActive, &s.CreatedAt, &s.UpdatedAt}
		dest = append(dest, userFields(s.User1)...)
		dest = append(dest, userFields(s.User2)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}
	return sessions, nil
}

// Deactivate flips is_active to false. Sessions are never hard-deleted.
func (r *SessionRepository) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE swipe_sessions SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate session: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountActiveByUser counts active sessions involving the user
func (r *SessionRepository) CountActiveByUser(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM swipe_sessions WHERE (user1_id = $1 OR user2_id = $1) AND is_active`
	var total int
	if err := r.db.QueryRow(ctx, query, userID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return total, nil
}

func scanSession(row pgx.Row) (*models.Session, error) {
	var s models.Session
	if err := row.Scan(&s.ID, &s.User1ID, &s.User2ID, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}
