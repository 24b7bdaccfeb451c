package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	s, err := NewService(Config{Secret: "test-secret", Issuer: "design-system-api", Audience: "dashboard"})
	require.NoError(t, err)
	return s
}

func TestGenerateAndValidateToken(t *testing.T) {
	s := newTestService(t)
	token, err := s.GenerateToken("u-1", "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "u-1", claims.UserID)
	require.Equal(t, "alice", claims.Username)
}

func TestValidateToken_Invalid(t *testing.T) {
	_, err := newTestService(t).ValidateToken("invalid.token")
	require.Error(t, err)
}

func TestValidateToken_WrongAudienceOrSecret(t *testing.T) {
	s := newTestService(t)
	token, err := s.GenerateToken("u-1", "alice")
	require.NoError(t, err)

	other, err := NewService(Config{Secret: "test-secret", Issuer: "design-system-api", Audience: "other"})
	require.NoError(t, err)
	_, err = other.ValidateToken(token)
	require.Error(t, err)

	wrongKey, err := NewService(Config{Secret: "another", Issuer: "design-system-api", Audience: "dashboard"})
	require.NoError(t, err)
	_, err = wrongKey.ValidateToken(token)
	require.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	s := newTestService(t)
	s.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	token, err := s.GenerateToken("u-1", "alice")
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.ValidateToken(token)
	require.Error(t, err)
}

func TestNewService_RequiresSecret(t *testing.T) {
	_, err := NewService(Config{})
	require.Error(t, err)
}
