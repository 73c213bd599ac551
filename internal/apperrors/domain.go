package apperrors

var (
	ErrUserNotFound               = NotFound("user not found")
	ErrInvalidOrExpiredInvitation = NotFound("invalid or expired invitation")
	ErrInvitationExpired          = New(CodeExpired, "invitation has expired")
	ErrUpdateFailed               = New(CodeWriteFailed, "failed to accept invitation")
	ErrSessionCreationFailed      = New(CodeWriteFailed, "failed to create session")
	ErrSelfInvitation             = InvalidArg("cannot accept your own invitation")
	ErrSessionNotFound            = NotFound("session not found")
	ErrNotSessionMember           = Forbidden("user is not a member of this session")
	ErrMatchNotFound              = NotFound("match not found")
	ErrNotMatchMember             = Forbidden("user is not a member of this match")
	ErrMovieNotFound              = NotFound("movie not found")
	ErrInvalidToken               = Unauthorized("invalid token")
)
