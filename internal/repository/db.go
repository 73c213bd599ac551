package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = errors.New("record not found")

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	email      TEXT NOT NULL DEFAULT '',
	username   TEXT NOT NULL DEFAULT '',
	first_name TEXT NOT NULL DEFAULT '',
	last_name  TEXT NOT NULL DEFAULT '',
	image_url  TEXT NOT NULL DEFAULT '',
	push_token TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS swipes (
	id         UUID PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users(id),
	movie_id   BIGINT NOT NULL,
	liked      BOOLEAN NOT NULL,
	movie_data JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS swipes_user_movie_idx ON swipes (user_id, movie_id) WHERE liked;

CREATE TABLE IF NOT EXISTS swipe_sessions (
	id         UUID PRIMARY KEY,
	user1_id   TEXT NOT NULL REFERENCES users(id),
	user2_id   TEXT NOT NULL REFERENCES users(id),
	is_active  BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS swipe_sessions_user1_idx ON swipe_sessions (user1_id) WHERE is_active;
CREATE INDEX IF NOT EXISTS swipe_sessions_user2_idx ON swipe_sessions (user2_id) WHERE is_active;

CREATE TABLE IF NOT EXISTS invitations (
	id              UUID PRIMARY KEY,
	sender_id       TEXT NOT NULL REFERENCES users(id),
	recipient_email TEXT,
	recipient_id    TEXT REFERENCES users(id),
	invite_code     TEXT NOT NULL,
	status          TEXT NOT NULL DEFAULT 'pending'
		CHECK (status IN ('pending', 'accepted', 'declined', 'expired')),
	expires_at      TIMESTAMPTZ NOT NULL,
	accepted_at     TIMESTAMPTZ,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS invitations_code_idx ON invitations (invite_code) WHERE status = 'pending';

CREATE TABLE IF NOT EXISTS matches (
	id           UUID PRIMARY KEY,
	movie_id     BIGINT NOT NULL,
	user1_id     TEXT NOT NULL REFERENCES users(id),
	user2_id     TEXT NOT NULL REFERENCES users(id),
	movie_data   JSONB NOT NULL,
	watched      BOOLEAN NOT NULL DEFAULT FALSE,
	poster_key   TEXT,
	matched_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// Migrate creates the tables if they don't exist
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func notFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
