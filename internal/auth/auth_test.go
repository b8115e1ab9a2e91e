package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	password := "mySecretPassword123"
	hash, err := HashPassword(password)

	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotEqual(t, password, hash)
}

func TestCheckPasswordHash(t *testing.T) {
	password := "mySecretPassword123"
	hash, err := HashPassword(password)
	require.NoError(t, err)

	match := CheckPasswordHash(password, hash)
	require.True(t, match, "Password should match the hash")

	wrongPassword := "wrongPassword"
	match = CheckPasswordHash(wrongPassword, hash)
	require.False(t, match, "Wrong password should not match the hash")
}

func TestCheckPasswordHash_MalformedDigest(t *testing.T) {
	require.False(t, CheckPasswordHash("anything", "not-a-bcrypt-digest"))
	require.False(t, CheckPasswordHash("anything", ""))
}

func TestGenerateAndVerifyToken(t *testing.T) {
	secret := "my_super_secret_key_for_testing"
	userID := uuid.New()

	tokenString, err := GenerateToken(userID, TokenTypeAccess, secret)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	subject, err := VerifyToken(tokenString, TokenTypeAccess, secret)
	require.NoError(t, err)
	require.Equal(t, userID, subject)

	_, err = VerifyToken(tokenString, TokenTypeAccess, "wrong_secret")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyToken_KindMismatch(t *testing.T) {
	secret := "my_super_secret_key_for_testing"
	userID := uuid.New()

	refreshToken, err := GenerateToken(userID, TokenTypeRefresh, secret)
	require.NoError(t, err)

	// A refresh token must never pass where an access token is expected.
	_, err = VerifyToken(refreshToken, TokenTypeAccess, secret)
	require.ErrorIs(t, err, ErrInvalidToken)

	subject, err := VerifyToken(refreshToken, TokenTypeRefresh, secret)
	require.NoError(t, err)
	require.Equal(t, userID, subject)
}

func TestVerifyToken_Expired(t *testing.T) {
	secret := "my_super_secret_key_for_testing"
	userID := uuid.New()

	claimsExpired := &AppClaims{
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-1 * time.Minute)),
		},
	}
	tokenExpired := jwt.NewWithClaims(jwt.SigningMethodHS256, claimsExpired)
	tokenStringExpired, err := tokenExpired.SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = VerifyToken(tokenStringExpired, TokenTypeAccess, secret)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestGenerateTokenPair(t *testing.T) {
	secret := "my_super_secret_key_for_testing"
	userID := uuid.New()

	accessToken, refreshToken, err := GenerateTokenPair(userID, secret)
	require.NoError(t, err)
	require.NotEqual(t, accessToken, refreshToken)

	subject, err := VerifyToken(accessToken, TokenTypeAccess, secret)
	require.NoError(t, err)
	require.Equal(t, userID, subject)

	subject, err = VerifyToken(refreshToken, TokenTypeRefresh, secret)
	require.NoError(t, err)
	require.Equal(t, userID, subject)
}
