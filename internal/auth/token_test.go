package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("super-secret", time.Hour)
	tok, exp, err := tm.GenerateToken("user-123")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 2*time.Second)

	claims, err := tm.ParseToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.SubjectID)
	assert.WithinDuration(t, time.Now(), claims.IssuedTime(), 2*time.Second)
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := issued
	tm := NewTokenManager("secret", time.Minute).WithClock(func() time.Time { return now })

	tok, _, err := tm.GenerateToken("u1")
	require.NoError(t, err)

	now = issued.Add(2 * time.Minute)
	_, err = tm.ParseToken(tok)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestParseToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, _, err := NewTokenManager("right-secret", time.Hour).GenerateToken("u2")
	require.NoError(t, err)

	_, err = NewTokenManager("wrong-secret", time.Hour).ParseToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_Tampered(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("secret", time.Hour)
	tok, _, err := tm.GenerateToken("u3")
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	other, _, err := tm.GenerateToken("someone-else")
	require.NoError(t, err)
	forged := parts[0] + "." + strings.Split(other, ".")[1] + "." + parts[2]

	_, err = tm.ParseToken(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_Malformed(t *testing.T) {
	t.Parallel()

	_, err := NewTokenManager("k", time.Hour).ParseToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenManager_DefaultTTL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, time.Hour, NewTokenManager("k", 0).TTL())
}
