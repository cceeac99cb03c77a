package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenRequest describes a development token minted with the shared
// HS256 signing key.
type TokenRequest struct {
	Issuer   string
	Audience string
	Subject  string
	Roles    []string
	TTL      time.Duration
}

// SignToken issues an HS256 token that JWTMiddleware accepts when it is
// configured with the same key.
func SignToken(key []byte, req TokenRequest) (string, error) {
	if len(key) == 0 {
		return "", errors.New("signing key is empty")
	}
	if req.TTL <= 0 {
		req.TTL = time.Hour
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    req.Issuer,
			Subject:   req.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(req.TTL)),
		},
		Roles: req.Roles,
	}
	if req.Audience != "" {
		claims.Audience = jwt.ClaimStrings{req.Audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}
