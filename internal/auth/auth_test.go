package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/asso-backend/internal/models"
)

func newTM() *TokenManager {
	return NewTokenManager("asso-test", "access-secret", "refresh-secret", time.Minute, time.Hour)
}

func TestGeneratePairRoundTrip(t *testing.T) {
	tm := newTM()
	pair, err := tm.GeneratePair("u1", models.RoleAdmin)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), pair.ExpiresAt, 5*time.Second)

	id, err := tm.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, Identity{ID: "u1", Role: models.RoleAdmin}, id)

	id, err = tm.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", id.ID)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	tm := newTM()
	pair, err := tm.GeneratePair("u1", models.RoleMember)
	require.NoError(t, err)

	_, err = tm.ParseAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = tm.ParseRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsForeignIssuerAndExpired(t *testing.T) {
	other := NewTokenManager("someone-else", "access-secret", "refresh-secret", time.Minute, time.Hour)
	pair, err := other.GeneratePair("u1", models.RoleMember)
	require.NoError(t, err)
	_, err = newTM().ParseAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewTokenManager("asso-test", "access-secret", "refresh-secret", -time.Minute, time.Hour)
	pair, err = expired.GeneratePair("u1", models.RoleMember)
	require.NoError(t, err)
	_, err = newTM().ParseAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPassword(t *testing.T) {
	h, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NoError(t, VerifyPassword("correct horse", h))
	assert.Error(t, VerifyPassword("wrong", h))
	assert.Error(t, VerifyPassword("correct horse", ""))

	_, err = HashPassword(strings.Repeat("x", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestIdentityContext(t *testing.T) {
	assert.False(t, FromContext(context.Background()).Authenticated())
	ctx := WithIdentity(context.Background(), Identity{ID: "a", Role: models.RoleAdmin})
	assert.True(t, FromContext(ctx).IsAdmin())
}
