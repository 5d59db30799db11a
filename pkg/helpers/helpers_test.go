package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokens_RoundTrip(t *testing.T) {
	tokens := NewSessionTokens("secret", time.Hour)
	s, exp, err := tokens.Sign(42, "sid-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	claims, err := tokens.Parse(s)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID())
	assert.Equal(t, "sid-1", claims.SessionID)
}

func TestSessionTokens_RejectsForeignSecret(t *testing.T) {
	s, _, err := NewSessionTokens("one", time.Hour).Sign(1, "sid")
	require.NoError(t, err)

	_, err = NewSessionTokens("two", time.Hour).Parse(s)
	assert.Error(t, err)
}

func TestSessionTokens_RejectsExpired(t *testing.T) {
	tokens := NewSessionTokens("secret", -time.Minute)
	s, _, err := tokens.Sign(1, "sid")
	require.NoError(t, err)

	_, err = tokens.Parse(s)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("1234")
	require.NoError(t, err)
	assert.NotEqual(t, "1234", hash)
	assert.True(t, IsBcryptHash(hash))
	assert.False(t, IsBcryptHash("1234"))
	assert.True(t, CompareHashAndPassword(hash, "1234"))
	assert.False(t, CompareHashAndPassword(hash, "4321"))
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://storage.googleapis.com/b/idols/1/x.png", PublicURL("b", "idols/1/x.png"))
}
