package repository

import (
	"context"
	"fmt"

	"dateflix-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SwipeRepository handles database operations for the swipe ledger
type SwipeRepository struct {
	db *pgxpool.Pool
}

// NewSwipeRepository creates a new swipe repository
func NewSwipeRepository(db *pgxpool.Pool) *SwipeRepository {
	return &SwipeRepository{db: db}
}

// Create appends a swipe. The ledger is append-only; repeated swipes on a movie add rows.
func (r *SwipeRepository) Create(ctx context.Context, swipe *models.Swipe) error {
	query := `
		INSERT INTO swipes (id, user_id, movie_id, liked, movie_data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		swipe.ID, swipe.UserID, swipe.MovieID, swipe.Liked, swipe.MovieData, swipe.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create swipe: %w", err)
	}
	return nil
}

// HasLiked checks whether the user has any liking swipe on the movie
func (r *SwipeRepository) HasLiked(ctx context.Context, userID string, movieID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM swipes WHERE user_id = $1 AND movie_id = $2 AND liked)`
	var liked bool
	if err := r.db.QueryRow(ctx, query, userID, movieID).Scan(&liked); err != nil {
		return false, fmt.Errorf("failed to check partner swipe: %w", err)
	}
	return liked, nil
}

// CountByUser counts all swipes recorded by the user
func (r *SwipeRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM swipes WHERE user_id = $1`
	var total int
	if err := r.db.QueryRow(ctx, query, userID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count swipes: %w", err)
	}
	return total, nil
}
