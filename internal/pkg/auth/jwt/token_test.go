package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("user-1", "a@example.com", testSecret, SessionExpiration)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	payload, err := ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", payload.UserID)
	assert.Equal(t, "a@example.com", payload.Email)
	assert.Equal(t, TokenIssuer, payload.Issuer)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("user-1", "a@example.com", testSecret, SessionExpiration)
	require.NoError(t, err)

	_, err = ParseToken(token, "some-other-secret")
	assert.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	token, err := GenerateToken("user-1", "a@example.com", testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, testSecret)
	assert.Error(t, err)
}

func TestParseTokenMalformed(t *testing.T) {
	_, err := ParseToken("not.a.token", testSecret)
	assert.Error(t, err)

	_, err = ParseToken("", testSecret)
	assert.Error(t, err)
}
