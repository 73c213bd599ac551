package repository

import (
	"context"
	"fmt"

	"dateflix-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

const matchColumns = `m.id, m.movie_id, m.user1_id, m.user2_id, m.movie_data, m.watched, m.poster_key, m.matched_at`

// MatchRepository handles database operations for matches
type MatchRepository struct {
	db *pgxpool.Pool
}

// NewMatchRepository creates a new match repository
func NewMatchRepository(db *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{db: db}
}

// Create creates a new match
func (r *MatchRepository) Create(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches (id, movie_id, user1_id, user2_id, movie_data, watched, matched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		match.ID, match.MovieID, match.User1ID, match.User2ID, match.MovieData, match.Watched, match.MatchedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

// GetByID retrieves a match by ID
func (r *MatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches m WHERE m.id = $1`
	var m models.Match
	if err := r.db.QueryRow(ctx, query, id).Scan(matchFields(&m)...); err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return &m, nil
}

// ListByUser retrieves matches involving the user with both profiles, newest first
func (r *MatchRepository) ListByUser(ctx context.Context, userID string) ([]*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `, ` + prefixedUserColumns("u1") + `, ` + prefixedUserColumns("u2") + `
		FROM matches m
		JOIN users u1 ON u1.id = m.user1_id
		JOIN users u2 ON u2.id = m.user2_id
		WHERE m.user1_id = $1 OR m.user2_id = $1
		ORDER BY m.matched_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	matches := []*models.Match{}
	for rows.Next() {
		m := &models.Match{User1: &models.User{}, User2: &models.User{}}
		dest := matchFields(m)
		dest = append(dest, userFields(m.User1)...)
		dest = append(dest, userFields(m.User2)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matches: %w", err)
	}
	return matches, nil
}

// SetWatched updates the watched flag
func (r *MatchRepository) SetWatched(ctx context.Context, id string, watched bool) error {
	result, err := r.db.Exec(ctx, `UPDATE matches SET watched = $1 WHERE id = $2`, watched, id)
	if err != nil {
		return fmt.Errorf("failed to update match watched: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPosterKey records the archived poster object key
func (r *MatchRepository) SetPosterKey(ctx context.Context, id, key string) error {
	result, err := r.db.Exec(ctx, `UPDATE matches SET poster_key = $1 WHERE id = $2`, key, id)
	if err != nil {
		return fmt.Errorf("failed to update match poster key: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByUser counts matches where the user is either side
func (r *MatchRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM matches WHERE user1_id = $1 OR user2_id = $1`
	var total int
	if err := r.db.QueryRow(ctx, query, userID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return total, nil
}

func matchFields(m *models.Match) []any {
	return []any{&m.ID, &m.MovieID, &m.User1ID, &m.User2ID, &m.MovieData, &m.Watched, &m.PosterKey, &m.MatchedAt}
}
