package auth

import (
	"context"
	"time"
)

// TokenTypeAccess is the token_type claim of tokens accepted for API and
// realtime access.
const TokenTypeAccess = "access"

// TokenVerifier validates bearer tokens issued by the identity service.
type TokenVerifier interface {
	// ValidateToken checks signature, expiry and token type and returns the claims.
	// Returns ErrExpiredToken for expired tokens and ErrInvalidToken (or an
	// error wrapping it) for everything else.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// JWTService issues and validates access tokens.
type JWTService interface {
	TokenVerifier

	// GenerateToken creates a signed access token for userID.
	GenerateToken(ctx context.Context, userID int64) (string, error)
}

// Claims is the validated content of an access token.
type Claims struct {
	UserID    int64
	TokenType string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}
