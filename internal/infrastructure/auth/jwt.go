package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer implements ports.TokenIssuer with HS256. Refresh tokens are
// marked with a dedicated claim so the two kinds cannot be swapped.
type TokenIssuer struct {
	secret []byte
	issuer string
}

type accessClaims struct {
	jwt.RegisteredClaims
	UserID  string `json:"user_id"`
	Refresh bool   `json:"refresh,omitempty"`
}

func NewTokenIssuer(secret []byte, issuer string) *TokenIssuer {
	return &TokenIssuer{secret: secret, issuer: issuer}
}

func (t *TokenIssuer) IssueAccessToken(userID string, expiresInSeconds int64) (string, error) {
	return t.issue(userID, expiresInSeconds, false)
}

func (t *TokenIssuer) IssueRefreshToken(userID string, expiresInSeconds int64) (string, error) {
	return t.issue(userID, expiresInSeconds, true)
}

func (t *TokenIssuer) issue(userID string, expiresInSeconds int64, refresh bool) (string, error) {
	now := time.Now()
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expiresInSeconds) * time.Second)),
		},
		UserID:  userID,
		Refresh: refresh,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

func (t *TokenIssuer) ValidateAccessToken(tokenString string) (string, error) {
	userID, refresh, err := t.parseClaims(tokenString)
	if err != nil {
		return "", err
	}
	if refresh {
		return "", errors.New("refresh token used as access token")
	}
	return userID, nil
}

func (t *TokenIssuer) ValidateRefreshToken(tokenString string) (string, error) {
	userID, refresh, err := t.parseClaims(tokenString)
	if err != nil {
		return "", err
	}
	if !refresh {
		return "", errors.New("not a refresh token")
	}
	return userID, nil
}

func (t *TokenIssuer) parseClaims(tokenString string) (userID string, refresh bool, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &accessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return "", false, err
	}
	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return "", false, errors.New("invalid token claims")
	}
	return claims.UserID, claims.Refresh, nil
}
