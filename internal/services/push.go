package services

import (
	"context"
	"fmt"

	"dateflix-backend/internal/config"
	"dateflix-backend/internal/models"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

type pushClient interface {
	PushWithContext(ctx apns2.Context, n *apns2.Notification) (*apns2.Response, error)
}

// Pusher sends APNs notifications to the partner who did not trigger an event
type Pusher struct {
	client pushClient
	users  UserStore
	topic  string
}

// NewPusher creates an APNs pusher using token-based authentication
func NewPusher(cfg config.APNsConfig, users UserStore) (*Pusher, error) {
	authKey, err := token.AuthKeyFromFile(cfg.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs auth key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   cfg.KeyID,
		TeamID:  cfg.TeamID,
	})
	if cfg.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &Pusher{client: client, users: users, topic: cfg.Topic}, nil
}

// MatchCreated tells the partner that both of them liked the movie
func (p *Pusher) MatchCreated(ctx context.Context, match *models.Match, actorID string) {
	partnerID := match.User1ID
	if partnerID == actorID {
		partnerID = match.User2ID
	}

	body := fmt.Sprintf("You both want to watch %s", match.MovieData.Title)
	if actor, err := p.users.GetByID(ctx, actorID); err == nil {
		body = fmt.Sprintf("You and %s both want to watch %s", actor.DisplayName(), match.MovieData.Title)
	}

	pl := payload.NewPayload().
		AlertTitle("It's a match!").
		AlertBody(body).
		Sound("default").
		Custom("type", "match_created").
		Custom("match_id", match.ID).
		Custom("movie_id", match.MovieID)

	p.send(ctx, partnerID, pl)
}

// SessionCreated tells the invitation sender that their code was redeemed
func (p *Pusher) SessionCreated(ctx context.Context, session *models.Session, actorID string) {
	recipientID := session.PartnerOf(actorID)

	body := "Your invitation was accepted. Start swiping together!"
	if actor, err := p.users.GetByID(ctx, actorID); err == nil {
		body = fmt.Sprintf("%s accepted your invitation. Start swiping together!", actor.DisplayName())
	}

	pl := payload.NewPayload().
		AlertTitle("New movie partner").
		AlertBody(body).
		Sound("default").
		Custom("type", "session_created").
		Custom("session_id", session.ID)

	p.send(ctx, recipientID, pl)
}

func (p *Pusher) send(ctx context.Context, userID string, pl *payload.Payload) {
	user, err := p.users.GetByID(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to load push recipient")
		return
	}
	if user.PushToken == nil || *user.PushToken == "" {
		return
	}

	res, err := p.client.PushWithContext(ctx, &apns2.Notification{
		DeviceToken: *user.PushToken,
		Topic:       p.topic,
		Payload:     pl,
	})
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to send push notification")
		return
	}

	if !res.Sent() {
		log.Warn().
			Str("user_id", userID).
			Int("status", res.StatusCode).
			Str("reason", res.Reason).
			Msg("Push notification rejected")

		if res.Reason == apns2.ReasonBadDeviceToken || res.Reason == apns2.ReasonUnregistered {
			if err := p.users.UpdatePushToken(ctx, userID, nil); err != nil {
				log.Warn().Err(err).Str("user_id", userID).Msg("Failed to clear stale push token")
			}
		}
		return
	}

	log.Debug().Str("user_id", userID).Str("apns_id", res.ApnsID).Msg("Push notification sent")
}
