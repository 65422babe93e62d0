package service

import (
	"time"

	"kiosk/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims defines the custom claims carried by a session token. The role and
// admin flag are informational snapshots from issue time; authorization always
// re-reads the identity from the store.
type Claims struct {
	IdentityID uuid.UUID
	Role       string
	Admin      bool
	Type       string
	jwt.RegisteredClaims
}

// TokenService defines the interface for generating and validating session JWTs.
// This abstracts the details of token creation from the use cases.
type TokenService interface {
	// GenerateToken creates a new signed session token for the given identity.
	GenerateToken(identity *entity.Identity) (string, error)

	// ValidateToken checks the validity of a token string and returns its claims.
	ValidateToken(tokenString string) (*Claims, error)

	// SessionDuration returns the fixed lifetime of issued session tokens.
	SessionDuration() time.Duration
}
