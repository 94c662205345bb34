package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ClaimsKey = "claims"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims carries the identity embedded in an issued token.
// The credential itself is never part of the claims.
type Claims struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayname"`
	Admin       bool   `json:"admin"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies signed, time-bounded tokens.
// The secret and TTL are fixed at construction, there is no ambient state.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue creates a signed token for the given identity, expiring after the codec TTL.
func (c *TokenCodec) Issue(username, displayName string, admin bool) (string, error) {
	now := time.Now()
	claims := Claims{
		Username:    username,
		DisplayName: displayName,
		Admin:       admin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify checks the signature and expiry of a token and returns its claims.
// Returns ErrExpiredToken for a past expiry, ErrInvalidToken for everything else.
func (c *TokenCodec) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// GetClaimsFromContext extracts the verified claims attached by the auth middleware.
func GetClaimsFromContext(c *gin.Context) (*Claims, error) {
	value, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, fmt.Errorf("claims not found in context")
	}

	claims, ok := value.(*Claims)
	if !ok {
		return nil, fmt.Errorf("invalid claims type")
	}

	return claims, nil
}
