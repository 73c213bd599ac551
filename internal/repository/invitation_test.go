package repository

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"dateflix-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestPool connects to DATEFLIX_TEST_DATABASE_URL and applies the schema.
func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATEFLIX_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("DATEFLIX_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pool.Ping(ctx))
	require.NoError(t, Migrate(ctx, pool))
	return pool
}

func TestMarkAcceptedOnlyOnce(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	users := NewUserRepository(pool)
	invitations := NewInvitationRepository(pool)

	now := time.Now().UTC()
	ids := []string{"sender-" + uuid.NewString(), "a-" + uuid.NewString(), "b-" + uuid.NewString()}
	for _, id := range ids {
		_, err := users.Upsert(ctx, &models.User{ID: id, Email: id + "@example.com", UpdatedAt: now})
		require.NoError(t, err)
	}

	inv := &models.Invitation{
		ID:         uuid.NewString(),
		SenderID:   ids[0],
		InviteCode: "RACE" + uuid.NewString()[:4],
		Status:     models.InvitationPending,
		ExpiresAt:  now.Add(time.Hour),
		CreatedAt:  now,
	}
	require.NoError(t, invitations.Create(ctx, inv))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []string
	)
	for _, accepter := range ids[1:] {
		wg.Add(1)
		go func(accepter string) {
			defer wg.Done()
			ok, err := invitations.MarkAccepted(ctx, inv.ID, accepter, time.Now().UTC())
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				winners = append(winners, accepter)
				mu.Unlock()
			}
		}(accepter)
	}
	wg.Wait()
	require.Len(t, winners, 1)

	again, err := invitations.MarkAccepted(ctx, inv.ID, ids[1], time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, again)

	_, err = invitations.GetPendingByCode(ctx, inv.InviteCode)
	assert.ErrorIs(t, err, ErrNotFound)
}
