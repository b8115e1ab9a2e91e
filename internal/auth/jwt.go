package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	AccessTokenTTL  = 30 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// ErrInvalidToken is the only error VerifyToken returns. Signature
// mismatch, expiry, and token-type mismatch are indistinguishable to
// the caller.
var ErrInvalidToken = errors.New("invalid token")

type AppClaims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

func GenerateToken(userID uuid.UUID, tokenType, secret string) (string, error) {
	ttl := AccessTokenTTL
	if tokenType == TokenTypeRefresh {
		ttl = RefreshTokenTTL
	}

	generateID, err := nanoid.Standard(21)
	if err != nil {
		return "", fmt.Errorf("failed to initialize nanoid generator: %w", err)
	}

	claims := &AppClaims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        generateID(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "bookmark-server",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GenerateTokenPair issues a short-lived access token and a long-lived
// refresh token for the same subject.
func GenerateTokenPair(userID uuid.UUID, secret string) (string, string, error) {
	accessToken, err := GenerateToken(userID, TokenTypeAccess, secret)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := GenerateToken(userID, TokenTypeRefresh, secret)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// VerifyToken checks the signature and expiry of tokenString and that
// it was issued as expectedType. A refresh token is never accepted
// where an access token is expected, and vice versa.
func VerifyToken(tokenString, expectedType, secret string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AppClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*AppClaims)
	if !ok || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}
	if claims.TokenType != expectedType {
		return uuid.Nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	return userID, nil
}
