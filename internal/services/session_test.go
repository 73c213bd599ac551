package services

import (
	"context"
	"errors"
	"testing"

	"dateflix-backend/internal/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionListAndPartners(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	for _, id := range []string{"u1", "u2", "u3"} {
		f.db.addUser(id)
	}
	f.db.addSession("s1", "u1", "u2", true)
	f.db.addSession("s2", "u3", "u1", true)
	f.db.addSession("s3", "u1", "u3", false)

	sessions, err := f.sessions.ListActive(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	for _, s := range sessions {
		assert.NotNil(t, s.User1)
		assert.NotNil(t, s.User2)
	}

	partners, err := f.sessions.PartnerIDs(ctx, "u1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u2", "u3"}, partners)
}

func TestSessionDeactivate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.db.addUser("u1")
	f.db.addUser("u2")
	f.db.addSession("s1", "u1", "u2", true)

	_, err := f.sessions.Deactivate(ctx, "s1", "u3")
	assert.ErrorIs(t, err, apperrors.ErrNotSessionMember)

	session, err := f.sessions.Deactivate(ctx, "s1", "u2")
	require.NoError(t, err)
	assert.False(t, session.IsActive)

	// a deactivated session takes no part in reconciliation
	_, err = f.swipes.Record(ctx, "u2", 3, true, movie(3, "Rocky"))
	require.NoError(t, err)
	res, err := f.swipes.Record(ctx, "u1", 3, true, movie(3, "Rocky"))
	require.NoError(t, err)
	assert.Nil(t, res.Match)

	_, err = f.sessions.Deactivate(ctx, "s1", "u1")
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	_, err = f.sessions.Deactivate(ctx, "missing", "u1")
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestSessionListFailure(t *testing.T) {
	f := newFixture()
	f.db.listSessionsErr = errors.New("timeout")

	_, err := f.sessions.ListActive(context.Background(), "u1")
	assert.Equal(t, apperrors.CodeUpstreamUnavailable, apperrors.CodeOf(err))
}
