package models

import "time"

// Invitation statuses
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationDeclined = "declined"
	InvitationExpired  = "expired"
)

// Identity is the profile supplied by the external identity provider.
// ExternalID is never read from the request body; it is the verified token subject.
type Identity struct {
	ExternalID string `json:"-"`
	Email      string `json:"email" validate:"omitempty,email"`
	Username   string `json:"username" validate:"max=64"`
	FirstName  string `json:"first_name" validate:"max=64"`
	LastName   string `json:"last_name" validate:"max=64"`
	ImageURL   string `json:"image_url" validate:"omitempty,url"`
}

// User represents a user in the system, keyed by the external identity id
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	ImageURL  string    `json:"image_url"`
	PushToken *string   `json:"push_token,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName returns the best available name for the user
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.Username != "":
		return u.Username
	default:
		return u.Email
	}
}

// Movie is a catalog entry. Stored verbatim as the snapshot on swipes and matches.
type Movie struct {
	ID           int64   `json:"id" validate:"required,gt=0"`
	Title        string  `json:"title" validate:"required"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path,omitempty"`
	Overview     string  `json:"overview"`
	VoteAverage  float64 `json:"vote_average"`
	ReleaseDate  string  `json:"release_date"`
	GenreIDs     []int   `json:"genre_ids,omitempty"`
}

// MoviePage is one page of a catalog listing
type MoviePage struct {
	Page         int     `json:"page"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
	Results      []Movie `json:"results"`
}

// Swipe is a single like/pass decision
type Swipe struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	MovieID   int64     `json:"movie_id"`
	Liked     bool      `json:"liked"`
	MovieData Movie     `json:"movie_data"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is an unordered pairing of two users
type Session struct {
	ID        string    `json:"id"`
	User1ID   string    `json:"user1_id"`
	User2ID   string    `json:"user2_id"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User1 *User `json:"user1,omitempty"`
	User2 *User `json:"user2,omitempty"`
}

// PartnerOf returns the other side of the pairing
func (s *Session) PartnerOf(userID string) string {
	if s.User1ID == userID {
		return s.User2ID
	}
	return s.User1ID
}

// HasMember reports whether userID is either side of the pairing
func (s *Session) HasMember(userID string) bool {
	return s.User1ID == userID || s.User2ID == userID
}

// Invitation is a time-limited single-use code that creates a session
type Invitation struct {
	ID             string     `json:"id"`
	SenderID       string     `json:"sender_id"`
	RecipientEmail *string    `json:"recipient_email,omitempty"`
	RecipientID    *string    `json:"recipient_id,omitempty"`
	InviteCode     string     `json:"invite_code"`
	Status         string     `json:"status"`
	ExpiresAt      time.Time  `json:"expires_at"`
	AcceptedAt     *time.Time `json:"accepted_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`

	Sender *User `json:"sender,omitempty"`
}

// Match is created when both members of a session liked the same movie
type Match struct {
	ID        string    `json:"id"`
	MovieID   int64     `json:"movie_id"`
	User1ID   string    `json:"user1_id"`
	User2ID   string    `json:"user2_id"`
	MovieData Movie     `json:"movie_data"`
	Watched   bool      `json:"watched"`
	PosterKey *string   `json:"-"`
	MatchedAt time.Time `json:"matched_at"`

	User1     *User  `json:"user1,omitempty"`
	User2     *User  `json:"user2,omitempty"`
	PosterURL string `json:"poster_url,omitempty"`
}

// HasMember reports whether userID is either side of the match
func (m *Match) HasMember(userID string) bool {
	return m.User1ID == userID || m.User2ID == userID
}

// Stats aggregates a user's activity
type Stats struct {
	TotalSwipes    int `json:"total_swipes"`
	TotalMatches   int `json:"total_matches"`
	ActiveSessions int `json:"active_sessions"`
}
