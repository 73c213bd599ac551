package services

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"dateflix-backend/internal/models"

	"github.com/sideshow/apns2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePushClient struct {
	mu    sync.Mutex
	sent  []*apns2.Notification
	reply *apns2.Response
}

func (c *fakePushClient) PushWithContext(_ apns2.Context, n *apns2.Notification) (*apns2.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, n)
	if c.reply != nil {
		return c.reply, nil
	}
	return &apns2.Response{StatusCode: http.StatusOK, ApnsID: "apns-1"}, nil
}

func newTestPusher(db *memDB, client pushClient) *Pusher {
	return &Pusher{client: client, users: fakeUsers{db}, topic: "com.example.movies"}
}

func setPushToken(t *testing.T, db *memDB, userID, token string) {
	t.Helper()
	require.NoError(t, fakeUsers{db}.UpdatePushToken(context.Background(), userID, &token))
}

func TestPusherMatchCreatedNotifiesPartner(t *testing.T) {
	db := newMemDB()
	db.addUser("u1")
	db.addUser("u2")
	setPushToken(t, db, "u1", "token-u1")
	setPushToken(t, db, "u2", "token-u2")

	client := &fakePushClient{}
	pusher := newTestPusher(db, client)

	match := &models.Match{ID: "m1", MovieID: 7, User1ID: "u1", User2ID: "u2", MovieData: movie(7, "Heat"), MatchedAt: time.Now()}
	pusher.MatchCreated(context.Background(), match, "u1")

	require.Len(t, client.sent, 1)
	n := client.sent[0]
	assert.Equal(t, "token-u2", n.DeviceToken)
	assert.Equal(t, "com.example.movies", n.Topic)

	raw, err := json.Marshal(n.Payload)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Heat")
	assert.Contains(t, string(raw), `"match_id":"m1"`)
}

func TestPusherSessionCreatedNotifiesSender(t *testing.T) {
	db := newMemDB()
	db.addUser("u1")
	db.addUser("u2")
	setPushToken(t, db, "u1", "token-u1")

	client := &fakePushClient{}
	pusher := newTestPusher(db, client)

	session := &models.Session{ID: "s1", User1ID: "u1", User2ID: "u2", IsActive: true}
	pusher.SessionCreated(context.Background(), session, "u2")

	require.Len(t, client.sent, 1)
	assert.Equal(t, "token-u1", client.sent[0].DeviceToken)
}

func TestPusherSkipsUsersWithoutToken(t *testing.T) {
	db := newMemDB()
	db.addUser("u1")
	db.addUser("u2")

	client := &fakePushClient{}
	pusher := newTestPusher(db, client)

	pusher.SessionCreated(context.Background(), &models.Session{ID: "s1", User1ID: "u1", User2ID: "u2"}, "u2")
	assert.Empty(t, client.sent)
}

func TestPusherClearsUnregisteredToken(t *testing.T) {
	db := newMemDB()
	db.addUser("u1")
	db.addUser("u2")
	setPushToken(t, db, "u2", "stale")

	client := &fakePushClient{reply: &apns2.Response{StatusCode: http.StatusGone, Reason: apns2.ReasonUnregistered}}
	pusher := newTestPusher(db, client)

	match := &models.Match{ID: "m1", MovieID: 7, User1ID: "u1", User2ID: "u2", MovieData: movie(7, "Heat")}
	pusher.MatchCreated(context.Background(), match, "u1")

	user, err := fakeUsers{db}.GetByID(context.Background(), "u2")
	require.NoError(t, err)
	assert.Nil(t, user.PushToken)
}
