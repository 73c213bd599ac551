package services

import (
	"context"
	"sync"
	"time"

	"dateflix-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// followUpTimeout bounds a single best-effort follow-up
const followUpTimeout = 30 * time.Second

// EventListener reacts to domain events. Implementations log their own
// failures; a listener never affects the outcome of the operation that fired it.
type EventListener interface {
	MatchCreated(ctx context.Context, match *models.Match, actorID string)
	SessionCreated(ctx context.Context, session *models.Session, actorID string)
}

// Listeners fans an event out to every listener in order
type Listeners []EventListener

func (l Listeners) MatchCreated(ctx context.Context, match *models.Match, actorID string) {
	for _, listener := range l {
		listener.MatchCreated(ctx, match, actorID)
	}
}

func (l Listeners) SessionCreated(ctx context.Context, session *models.Session, actorID string) {
	for _, listener := range l {
		listener.SessionCreated(ctx, session, actorID)
	}
}

// Background runs follow-ups detached from the request that triggered them.
// Wait blocks until every started follow-up has returned.
type Background struct {
	wg sync.WaitGroup
}

// NewBackground creates a background runner
func NewBackground() *Background {
	return &Background{}
}

// Go runs fn with a context that survives the caller's cancellation
func (b *Background) Go(ctx context.Context, name string, fn func(ctx context.Context)) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("task", name).Msg("Background task panicked")
			}
		}()

		taskCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), followUpTimeout)
		defer cancel()
		fn(taskCtx)
	}()
}

// Wait blocks until all follow-ups finish
func (b *Background) Wait() {
	b.wg.Wait()
}
