package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-Password", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret-Password", hash)
	assert.True(t, CheckPassword("s3cret-Password", hash))
	assert.False(t, CheckPassword("wrong", hash))
	assert.False(t, CheckPassword("s3cret-Password", "not-a-hash"))
}

func TestHashPasswordUsesRequestedCost(t *testing.T) {
	hash, err := HashPassword("pw", bcrypt.MinCost)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager(testSecret, 15*time.Minute)

	raw, exp, err := m.Issue("user-1", "ana@example.com", "ana", "admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), exp, 5*time.Second)

	claims, err := m.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "ana", claims.Username)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	m := NewTokenManager(testSecret, time.Minute)
	m.now = func() time.Time { return time.Now().Add(-time.Hour) }

	raw, _, err := m.Issue("user-1", "a@b.co", "a", "viewer")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(raw)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseRejectsOtherSecret(t *testing.T) {
	raw, _, err := NewTokenManager(testSecret, time.Minute).Issue("u", "a@b.co", "a", "viewer")
	require.NoError(t, err)

	_, err = NewTokenManager(strings.Repeat("x", 32), time.Minute).Parse(raw)
	assert.Error(t, err)
}

func TestParseRejectsOtherAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		UserID: "u",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "folio",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	raw, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = NewTokenManager(testSecret, time.Minute).Parse(raw)
	assert.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := NewTokenManager(testSecret, time.Minute).Parse("not.a.token")
	assert.Error(t, err)
}

func TestNewRefreshToken(t *testing.T) {
	raw, hash, err := NewRefreshToken()
	require.NoError(t, err)

	assert.Len(t, raw, RefreshTokenBytes*2)
	assert.Len(t, hash, 64)
	assert.Equal(t, HashToken(raw), hash)

	other, _, err := NewRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, raw, other)
}
