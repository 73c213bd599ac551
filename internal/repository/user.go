package repository

import (
	"context"
	"fmt"

	"dateflix-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, email, username, first_name, last_name, image_url, push_token, created_at, updated_at`

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert inserts the user or overwrites its display fields, keyed by id
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (id, email, username, first_name, last_name, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			username = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			image_url = EXCLUDED.image_url,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + userColumns
	row := r.db.QueryRow(ctx, query,
		user.ID, user.Email, user.Username, user.FirstName, user.LastName, user.ImageURL, user.UpdatedAt,
	)
	saved, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return saved, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// Exists checks if a user exists
func (r *UserRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

// UpdatePushToken updates the push token for a user
func (r *UserRepository) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	query := `UPDATE users SET push_token = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.Exec(ctx, query, pushToken, userID)
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName,
		&u.ImageURL, &u.PushToken, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// userFields returns scan targets for a joined user in column order
func userFields(u *models.User) []any {
	return []any{
		&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName,
		&u.ImageURL, &u.PushToken, &u.CreatedAt, &u.UpdatedAt,
	}
}

// prefixedUserColumns qualifies the user columns with a table alias
func prefixedUserColumns(alias string) string {
	return fmt.Sprintf(`%[1]s.id, %[1]s.email, %[1]s.username, %[1]s.first_name, %[1]s.last_name,
		%[1]s.image_url, %[1]s.push_token, %[1]s.created_at, %[1]s.updated_at`, alias)
}
