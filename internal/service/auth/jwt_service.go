// Package auth issues and verifies the bearer tokens that bind an HTTP caller
// to an execution context.
package auth

import (
	"context"
	"time"
)

// TokenType is the only token type issued; it guards against tokens minted
// for another purpose with the same secret.
const TokenType = "context"

// JWTService defines operations for managing context tokens.
type JWTService interface {
	// GenerateToken creates a signed token whose subject is contextID.
	GenerateToken(ctx context.Context, contextID string) (string, error)

	// ValidateToken validates the token string and extracts its claims.
	// Returns ErrExpiredToken, ErrTokenNotYetValid or ErrInvalidToken on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the verified content of a context token.
type Claims struct {
	// ContextID is the execution context the token grants access to.
	ContextID string `json:"sub,omitempty"`

	TokenType string    `json:"type,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
