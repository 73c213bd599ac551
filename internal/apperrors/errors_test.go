package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithCauseKeepsSentinelIdentity(t *testing.T) {
	cause := errors.New("connection reset")
	err := WithCause(ErrUpdateFailed, cause)

	assert.True(t, errors.Is(err, ErrUpdateFailed))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrSessionCreationFailed))
	assert.Equal(t, CodeWriteFailed, CodeOf(err))
	assert.Equal(t, "failed to accept invitation: connection reset", err.Error())
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain error", err: errors.New("boom"), want: CodeUnknown},
		{name: "sentinel", err: ErrInvitationExpired, want: CodeExpired},
		{name: "wrapped by fmt", err: fmt.Errorf("accept: %w", ErrInvalidOrExpiredInvitation), want: CodeNotFound},
		{name: "upstream", err: Upstream("tmdb unavailable", errors.New("dial tcp")), want: CodeUpstreamUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CodeOf(tc.err))
		})
	}
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "session not found", MessageOf(fmt.Errorf("deactivate: %w", ErrSessionNotFound)))
	assert.Equal(t, "internal error", MessageOf(errors.New("raw")))
}
