package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret-32bytes-padded!!"

func TestGenerateToken_Valid(t *testing.T) {
	tok, err := GenerateToken(42, TokenTypeAccess, testSecret, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, tok)
}

func TestParseToken_Valid(t *testing.T) {
	tok, err := GenerateToken(99, TokenTypeAccess, testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(tok, TokenTypeAccess, testSecret)
	require.NoError(t, err)
	assert.Equal(t, int64(99), claims.AccountID)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
}

func TestParseToken_WrongSecret(t *testing.T) {
	tok, err := GenerateToken(1, TokenTypeAccess, testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(tok, TokenTypeAccess, "wrong-secret")
	assert.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	tok, err := GenerateToken(1, TokenTypeAccess, testSecret, -time.Second)
	require.NoError(t, err)

	_, err = ParseToken(tok, TokenTypeAccess, testSecret)
	assert.Error(t, err)
}

func TestParseToken_WrongType(t *testing.T) {
	// A refresh token must never pass where an access token is expected.
	tok, err := GenerateToken(1, TokenTypeRefresh, testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(tok, TokenTypeAccess, testSecret)
	assert.Error(t, err)

	_, err = ParseToken(tok, TokenTypeRefresh, testSecret)
	assert.NoError(t, err)
}

func TestParseToken_Malformed(t *testing.T) {
	_, err := ParseToken("not.a.jwt", TokenTypeAccess, testSecret)
	assert.Error(t, err)
}

func TestParseToken_Empty(t *testing.T) {
	_, err := ParseToken("", TokenTypeAccess, testSecret)
	assert.Error(t, err)
}

func TestGenerateToken_DifferentAccounts(t *testing.T) {
	t1, _ := GenerateToken(1, TokenTypeAccess, testSecret, time.Hour)
	t2, _ := GenerateToken(2, TokenTypeAccess, testSecret, time.Hour)
	assert.NotEqual(t, t1, t2)

	c1, _ := ParseToken(t1, TokenTypeAccess, testSecret)
	c2, _ := ParseToken(t2, TokenTypeAccess, testSecret)
	assert.Equal(t, int64(1), c1.AccountID)
	assert.Equal(t, int64(2), c2.AccountID)
}
