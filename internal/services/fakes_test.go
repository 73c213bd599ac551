package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"dateflix-backend/internal/models"
	"dateflix-backend/internal/repository"
)

// memDB is an in-memory stand-in for the postgres tables.
// Each store method runs under one lock, like a single SQL statement.
type memDB struct {
	mu          sync.Mutex
	users       map[string]*models.User
	swipes      []*models.Swipe
	sessions    []*models.Session
	invitations []*models.Invitation
	matches     []*models.Match

	// injected failures
	swipeCreateErr      error
	hasLikedErr         error
	listSessionsErr     error
	sessionCreateErr    error
	markAcceptedErr     error
	lookupInvitationErr error
	matchCreateErr      error
	countErr            error
}

func newMemDB() *memDB {
	return &memDB{users: make(map[string]*models.User)}
}

func (db *memDB) addUser(id string) *models.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	u := &models.User{ID: id, Email: id + "@example.com", FirstName: id, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	db.users[id] = u
	return u
}

func (db *memDB) addSession(id, user1, user2 string, active bool) *models.Session {
	db.mu.Lock()
	defer db.mu.Unlock()
	s := &models.Session{ID: id, User1ID: user1, User2ID: user2, IsActive: active, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	db.sessions = append(db.sessions, s)
	return s
}

func (db *memDB) matchCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.matches)
}

func (db *memDB) sessionCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.sessions)
}

func (db *memDB) swipeCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.swipes)
}

func (db *memDB) invitation(code string) *models.Invitation {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, inv := range db.invitations {
		if inv.InviteCode == code {
			cp := *inv
			return &cp
		}
	}
	return nil
}

type fakeUsers struct{ db *memDB }

func (f fakeUsers) Upsert(_ context.Context, user *models.User) (*models.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	saved := *user
	if existing, ok := f.db.users[user.ID]; ok {
		saved.CreatedAt = existing.CreatedAt
		saved.PushToken = existing.PushToken
	} else {
		saved.CreatedAt = user.UpdatedAt
	}
	f.db.users[user.ID] = &saved
	out := saved
	return &out, nil
}

func (f fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u, ok := f.db.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f fakeUsers) Exists(_ context.Context, id string) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	_, ok := f.db.users[id]
	return ok, nil
}

func (f fakeUsers) UpdatePushToken(_ context.Context, userID string, pushToken *string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u, ok := f.db.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.PushToken = pushToken
	return nil
}

type fakeSwipes struct{ db *memDB }

func (f fakeSwipes) Create(_ context.Context, swipe *models.Swipe) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.swipeCreateErr != nil {
		return f.db.swipeCreateErr
	}
	cp := *swipe
	f.db.swipes = append(f.db.swipes, &cp)
	return nil
}

func (f fakeSwipes) HasLiked(_ context.Context, userID string, movieID int64) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.hasLikedErr != nil {
		return false, f.db.hasLikedErr
	}
	for _, s := range f.db.swipes {
		if s.UserID == userID && s.MovieID == movieID && s.Liked {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeSwipes) CountByUser(_ context.Context, userID string) (int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.countErr != nil {
		return 0, f.db.countErr
	}
	n := 0
	for _, s := range f.db.swipes {
		if s.UserID == userID {
			n++
		}
	}
	return n, nil
}

type fakeSessions struct{ db *memDB }

func (f fakeSessions) Create(_ context.Context, session *models.Session) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.sessionCreateErr != nil {
		return f.db.sessionCreateErr
	}
	cp := *session
	f.db.sessions = append(f.db.sessions, &cp)
	return nil
}

func (f fakeSessions) GetByID(_ context.Context, id string) (*models.Session, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, s := range f.db.sessions {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f fakeSessions) ListActiveByUser(_ context.Context, userID string) ([]*models.Session, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.listSessionsErr != nil {
		return nil, f.db.listSessionsErr
	}
	var out []*models.Session
	for _, s := range f.db.sessions {
		if s.IsActive && s.HasMember(userID) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f fakeSessions) ListActiveWithUsers(ctx context.Context, userID string) ([]*models.Session, error) {
	sessions, err := f.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, s := range sessions {
		s.User1 = f.db.users[s.User1ID]
		s.User2 = f.db.users[s.User2ID]
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

func (f fakeSessions) Deactivate(_ context.Context, id string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, s := range f.db.sessions {
		if s.ID == id && s.IsActive {
			s.IsActive = false
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f fakeSessions) CountActiveByUser(_ context.Context, userID string) (int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	n := 0
	for _, s := range f.db.sessions {
		if s.IsActive && s.HasMember(userID) {
			n++
		}
	}
	return n, nil
}

type fakeInvitations struct{ db *memDB }

func (f fakeInvitations) Create(_ context.Context, inv *models.Invitation) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	cp := *inv
	f.db.invitations = append(f.db.invitations, &cp)
	return nil
}

func (f fakeInvitations) GetPendingByCode(_ context.Context, code string) (*models.Invitation, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.lookupInvitationErr != nil {
		return nil, f.db.lookupInvitationErr
	}
	for i := len(f.db.invitations) - 1; i >= 0; i-- {
		inv := f.db.invitations[i]
		if inv.InviteCode == code && inv.Status == models.InvitationPending {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f fakeInvitations) MarkExpired(_ context.Context, id string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, inv := range f.db.invitations {
		if inv.ID == id && inv.Status == models.InvitationPending {
			inv.Status = models.InvitationExpired
		}
	}
	return nil
}

func (f fakeInvitations) MarkAccepted(_ context.Context, id, recipientID string, at time.Time) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.markAcceptedErr != nil {
		return false, f.db.markAcceptedErr
	}
	for _, inv := range f.db.invitations {
		if inv.ID == id && inv.Status == models.InvitationPending {
			inv.Status = models.InvitationAccepted
			inv.RecipientID = &recipientID
			inv.AcceptedAt = &at
			return true, nil
		}
	}
	return false, nil
}

func (f fakeInvitations) ListByUser(_ context.Context, userID string) ([]*models.Invitation, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*models.Invitation
	for i := len(f.db.invitations) - 1; i >= 0; i-- {
		inv := f.db.invitations[i]
		if inv.SenderID == userID || (inv.RecipientID != nil && *inv.RecipientID == userID) {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeMatches struct{ db *memDB }

func (f fakeMatches) Create(_ context.Context, match *models.Match) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.matchCreateErr != nil {
		return f.db.matchCreateErr
	}
	cp := *match
	f.db.matches = append(f.db.matches, &cp)
	return nil
}

func (f fakeMatches) GetByID(_ context.Context, id string) (*models.Match, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, m := range f.db.matches {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f fakeMatches) ListByUser(_ context.Context, userID string) ([]*models.Match, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*models.Match
	for i := len(f.db.matches) - 1; i >= 0; i-- {
		m := f.db.matches[i]
		if m.HasMember(userID) {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f fakeMatches) SetWatched(_ context.Context, id string, watched bool) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, m := range f.db.matches {
		if m.ID == id {
			m.Watched = watched
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f fakeMatches) SetPosterKey(_ context.Context, id, key string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, m := range f.db.matches {
		if m.ID == id {
			m.PosterKey = &key
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f fakeMatches) CountByUser(_ context.Context, userID string) (int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	n := 0
	for _, m := range f.db.matches {
		if m.HasMember(userID) {
			n++
		}
	}
	return n, nil
}

// recordingListener captures events for assertions
type recordingListener struct {
	mu       sync.Mutex
	matches  []*models.Match
	sessions []*models.Session
	actors   []string
}

func (r *recordingListener) MatchCreated(_ context.Context, match *models.Match, actorID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matches = append(r.matches, match)
	r.actors = append(r.actors, actorID)
}

func (r *recordingListener) SessionCreated(_ context.Context, session *models.Session, actorID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = append(r.sessions, session)
	r.actors = append(r.actors, actorID)
}

type fixture struct {
	db          *memDB
	listener    *recordingListener
	users       *UserService
	matches     *MatchService
	swipes      *SwipeService
	invitations *InvitationService
	sessions    *SessionService
	stats       *StatsService
}

func newFixture() *fixture {
	db := newMemDB()
	listener := &recordingListener{}

	matches := NewMatchService(MatchDependencies{
		Sessions:  fakeSessions{db},
		Swipes:    fakeSwipes{db},
		Matches:   fakeMatches{db},
		Listeners: Listeners{listener},
	})

	return &fixture{
		db:       db,
		listener: listener,
		users:    NewUserService(fakeUsers{db}, "test-secret", time.Hour),
		matches:  matches,
		swipes:   NewSwipeService(fakeUsers{db}, fakeSwipes{db}, matches),
		invitations: NewInvitationService(InvitationDependencies{
			Invitations: fakeInvitations{db},
			Sessions:    fakeSessions{db},
			Listeners:   Listeners{listener},
		}),
		sessions: NewSessionService(fakeSessions{db}),
		stats:    NewStatsService(fakeSwipes{db}, fakeMatches{db}, fakeSessions{db}),
	}
}
