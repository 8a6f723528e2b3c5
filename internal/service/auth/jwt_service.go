package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/evanhall/tasklist-api/internal/domain"
)

// JWTService defines operations for managing JWT authentication tokens.
//
// Tokens are stateless and unrevocable: there is no server-side session
// table, and logout is a client-side token-discard action.
type JWTService interface {
	// GenerateToken creates a signed JWT access token for the user.
	// Returns the token string or an error if token generation fails.
	GenerateToken(ctx context.Context, user *domain.User) (string, error)

	// ValidateToken validates the provided token string and extracts the
	// claims. Returns ErrExpiredToken if the current time is at or past
	// the encoded expiration, or ErrInvalidToken if the signature does not
	// match, the structure is malformed, or required claims are missing.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the custom claims structure for the JWT tokens.
// It extends standard JWT registered claims with application-specific
// fields.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID uuid.UUID `json:"uid,omitempty"`

	// Standard registered JWT claims. Subject carries the username exactly
	// as it was encoded at issue time.
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
